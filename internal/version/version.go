package version

import "fmt"

// Overridden at build time with -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)

// Info is the build metadata served on /version and printed by the CLI.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Dirty   bool   `json:"dirty"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, Dirty: Dirty == "true"}
}

func (i Info) String() string {
	s := fmt.Sprintf("%s (%s", i.Version, i.Commit)
	if i.Dirty {
		s += ", dirty"
	}
	if i.Date != "" {
		s += ", " + i.Date
	}
	return s + ")"
}

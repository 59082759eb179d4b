package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ericogr/chimera-arena/internal/constants"
)

// healthURL derives the probe URL from ARENA_ADDR so the container check
// follows the server's listen address.
func healthURL(addr string) string {
	if addr == "" {
		addr = constants.DefaultServerAddr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + constants.RouteHealth
}

func main() {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(healthURL(os.Getenv(constants.EnvServerAddr)))
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}

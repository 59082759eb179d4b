package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/units"

	"gorm.io/datatypes"
)

const (
	DefaultSimulatorTimeout = 5 * time.Second
	DefaultStaleBattleAfter = 15 * time.Minute
)

type botTeamEntry struct {
	Name       string          `json:"name"`
	Stage      int             `json:"stage"`
	Difficulty int             `json:"difficulty"`
	Units      []game.TeamUnit `json:"units"`
}

type rawConfig struct {
	UnitList    []units.Template `json:"unit_list"`
	BotTeamList []botTeamEntry   `json:"bot_team_list"`
	Server      *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Go duration strings, e.g. "5s" or "15m".
	SimulatorTimeout string `json:"simulator_timeout"`
	StaleBattleAfter string `json:"stale_battle_after"`
}

// LoadedConfig contains the unit catalog, the bot teams to seed and the
// server settings.
type LoadedConfig struct {
	Units            []units.Template
	BotTeams         []game.BotTeam
	ServerAddress    string
	SimulatorTimeout time.Duration
	StaleBattleAfter time.Duration
}

// Catalog builds the unit catalog, falling back to the default roster when
// unit_list was omitted.
func (c *LoadedConfig) Catalog() *units.Catalog {
	if c == nil || len(c.Units) == 0 {
		return units.DefaultCatalog()
	}
	return units.NewCatalog(c.Units)
}

// LoadConfig reads the configuration file at path. Bot team budgets and
// positions are checked when the teams are seeded, not here.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Unit ids are matched case-insensitively, so duplicates are too.
	seen := make(map[string]struct{}, len(rc.UnitList))
	for _, u := range rc.UnitList {
		id := strings.ToLower(strings.TrimSpace(u.ID))
		if id == "" {
			return nil, fmt.Errorf("config file %s: unit entry missing 'id'", path)
		}
		if _, exists := seen[id]; exists {
			return nil, fmt.Errorf("config file %s: duplicate unit id '%s'", path, u.ID)
		}
		if u.Cost <= 0 {
			return nil, fmt.Errorf("config file %s: unit '%s' needs a positive 'cost'", path, u.ID)
		}
		seen[id] = struct{}{}
	}

	botTeams := make([]game.BotTeam, 0, len(rc.BotTeamList))
	for i, e := range rc.BotTeamList {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = fmt.Sprintf("bot-%d", i+1)
		}
		if len(e.Units) == 0 {
			return nil, fmt.Errorf("config file %s: bot team '%s' has no units", path, name)
		}
		botTeams = append(botTeams, game.BotTeam{
			Name:       name,
			Stage:      e.Stage,
			Difficulty: e.Difficulty,
			Team:       datatypes.NewJSONType(game.TeamSnapshot{Units: e.Units}),
		})
	}

	simTimeout, err := parseDuration(rc.SimulatorTimeout, DefaultSimulatorTimeout)
	if err != nil {
		return nil, fmt.Errorf("config file %s: simulator_timeout: %w", path, err)
	}
	staleAfter, err := parseDuration(rc.StaleBattleAfter, DefaultStaleBattleAfter)
	if err != nil {
		return nil, fmt.Errorf("config file %s: stale_battle_after: %w", path, err)
	}

	addr := constants.DefaultServerAddr
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	return &LoadedConfig{
		Units:            rc.UnitList,
		BotTeams:         botTeams,
		ServerAddress:    addr,
		SimulatorTimeout: simTimeout,
		StaleBattleAfter: staleAfter,
	}, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

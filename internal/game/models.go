package game

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Position is a cell on the battlefield grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TeamSetupUnit is a unit as submitted by a client: an opaque unit template
// id and its tier.
type TeamSetupUnit struct {
	UnitID string `json:"unit_id"`
	Tier   int    `json:"tier"`
}

// TeamSetup is the parallel-array shape clients submit. Unit i occupies
// Positions[i]. It is only used at the boundary; everything that is stored
// uses TeamSnapshot.
type TeamSetup struct {
	Units     []TeamSetupUnit `json:"units"`
	Positions []Position      `json:"positions"`
}

// TeamUnit is a unit with its position embedded.
type TeamUnit struct {
	UnitID   string   `json:"unit_id"`
	Tier     int      `json:"tier"`
	Position Position `json:"position"`
}

// TeamSnapshot is the canonical team shape persisted inside runs, snapshots,
// bot teams and battles.
type TeamSnapshot struct {
	Units []TeamUnit `json:"units"`
}

// Snapshot converts a setup into the canonical shape. Callers must validate
// the setup first: units without a matching position are dropped.
func (s TeamSetup) Snapshot() TeamSnapshot {
	n := len(s.Units)
	if len(s.Positions) < n {
		n = len(s.Positions)
	}
	units := make([]TeamUnit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, TeamUnit{
			UnitID:   s.Units[i].UnitID,
			Tier:     s.Units[i].Tier,
			Position: s.Positions[i],
		})
	}
	return TeamSnapshot{Units: units}
}

// Setup converts the canonical shape back into the parallel-array shape.
func (t TeamSnapshot) Setup() TeamSetup {
	out := TeamSetup{
		Units:     make([]TeamSetupUnit, len(t.Units)),
		Positions: make([]Position, len(t.Units)),
	}
	for i, u := range t.Units {
		out.Units[i] = TeamSetupUnit{UnitID: u.UnitID, Tier: u.Tier}
		out.Positions[i] = u.Position
	}
	return out
}

// Run is one player's roguelike attempt. Progression (stage, wins) is owned
// by logic outside this service; Team is the player's current roster.
type Run struct {
	ID        uint                             `json:"id" gorm:"primaryKey"`
	PlayerID  string                           `json:"player_id" gorm:"index;not null"`
	Stage     int                              `json:"stage" gorm:"not null;default:1"`
	Wins      int                              `json:"wins" gorm:"not null;default:0"`
	Team      datatypes.JSONType[TeamSnapshot] `json:"team" gorm:"not null"`
	CreatedAt time.Time                        `json:"created_at"`
	UpdatedAt time.Time                        `json:"updated_at"`
}

// Store runs under a name that does not clash with other game tables.
func (Run) TableName() string { return "player_runs" }

// Snapshot is an immutable copy of a player's team taken at a progression
// checkpoint. It is removed together with its run.
type Snapshot struct {
	ID        uint                             `json:"id" gorm:"primaryKey"`
	PlayerID  string                           `json:"player_id" gorm:"index:idx_snapshots_stage_player,priority:2;not null"`
	RunID     uint                             `json:"run_id" gorm:"index;not null"`
	Stage     int                              `json:"stage" gorm:"index:idx_snapshots_stage_player,priority:1;not null"`
	Wins      int                              `json:"wins" gorm:"not null"`
	Team      datatypes.JSONType[TeamSnapshot] `json:"team" gorm:"not null"`
	CreatedAt time.Time                        `json:"created_at" gorm:"index"`

	Run Run `json:"-" gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Snapshot) TableName() string { return "team_snapshots" }

// BotTeam is a pre-generated synthetic opponent.
type BotTeam struct {
	ID         uint                             `json:"id" gorm:"primaryKey"`
	Name       string                           `json:"name"`
	Stage      int                              `json:"stage" gorm:"index;not null"`
	Difficulty int                              `json:"difficulty" gorm:"not null"`
	Team       datatypes.JSONType[TeamSnapshot] `json:"team" gorm:"not null"`
	CreatedAt  time.Time                        `json:"created_at"`
}

func (BotTeam) TableName() string { return "bot_teams" }

// BattleResult is the lifecycle state of a battle.
type BattleResult string

const (
	ResultPending BattleResult = "pending"
	ResultWin     BattleResult = "win"
	ResultLoss    BattleResult = "loss"
)

// Terminal reports whether the result is a final verdict.
func (r BattleResult) Terminal() bool {
	return r == ResultWin || r == ResultLoss
}

// OpponentKind tells which source an opponent came from.
type OpponentKind string

const (
	OpponentSnapshot OpponentKind = "snapshot"
	OpponentBot      OpponentKind = "bot"
)

// BattleEvent is one entry of the simulator's event log.
type BattleEvent struct {
	Tick   int       `json:"tick"`
	Kind   string    `json:"kind"`
	Side   string    `json:"side"`
	Actor  int       `json:"actor"`
	Target int       `json:"target,omitempty"`
	Amount int       `json:"amount,omitempty"`
	To     *Position `json:"to,omitempty"`
}

// Battle records one fight. It is created pending with a fixed seed and
// moves exactly once to win or loss.
//
// EnemySnapshotID is set only when the opponent was a player snapshot and
// is cleared if that snapshot is deleted later. PlayerTeam and EnemyTeam
// freeze both rosters at creation so the outcome can still be computed
// (and re-verified) after the snapshot is gone or the deck changed.
type Battle struct {
	ID              uint                             `json:"id" gorm:"primaryKey"`
	RunID           uint                             `json:"run_id" gorm:"index;not null"`
	EnemySnapshotID *uint                            `json:"enemy_snapshot_id" gorm:"index"`
	OpponentKind    OpponentKind                     `json:"opponent_kind" gorm:"size:16;not null"`
	Seed            int64                            `json:"seed" gorm:"not null"`
	Result          BattleResult                     `json:"result" gorm:"size:16;not null;default:pending;index"`
	Events          datatypes.JSON                   `json:"events"`
	PlayerTeam      datatypes.JSONType[TeamSnapshot] `json:"player_team" gorm:"not null"`
	EnemyTeam       datatypes.JSONType[TeamSnapshot] `json:"enemy_team" gorm:"not null"`
	CreatedAt       time.Time                        `json:"created_at" gorm:"index"`
	ResolvedAt      *time.Time                       `json:"resolved_at"`

	Run           Run       `json:"-" gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	EnemySnapshot *Snapshot `json:"-" gorm:"foreignKey:EnemySnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (Battle) TableName() string { return "battles" }

// HasEvents reports whether the event log column is populated.
func (b *Battle) HasEvents() bool {
	return len(b.Events) > 0 && string(b.Events) != "null"
}

// DecodeEvents returns the stored event log, or nil when it is still null.
func (b *Battle) DecodeEvents() ([]BattleEvent, error) {
	if !b.HasEvents() {
		return nil, nil
	}
	var events []BattleEvent
	if err := json.Unmarshal(b.Events, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SimulationResult is what a battle simulator returns.
type SimulationResult struct {
	Events  []BattleEvent
	Verdict BattleResult
}

// OpponentRef is the resolver's answer: either a stored snapshot or a bot
// team. Team always carries the roster to hand to the simulator.
type OpponentRef struct {
	Kind       OpponentKind
	SnapshotID uint
	BotTeamID  uint
	Team       TeamSnapshot
}

// SnapshotOpponent builds the snapshot variant of OpponentRef.
func SnapshotOpponent(s Snapshot) OpponentRef {
	return OpponentRef{Kind: OpponentSnapshot, SnapshotID: s.ID, Team: s.Team.Data()}
}

// BotOpponent builds the bot variant of OpponentRef.
func BotOpponent(b BotTeam) OpponentRef {
	return OpponentRef{Kind: OpponentBot, BotTeamID: b.ID, Team: b.Team.Data()}
}

// EnemySnapshotRef returns the value to store in Battle.EnemySnapshotID.
func (o OpponentRef) EnemySnapshotRef() *uint {
	if o.Kind != OpponentSnapshot {
		return nil
	}
	id := o.SnapshotID
	return &id
}

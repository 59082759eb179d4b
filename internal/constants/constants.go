package constants

// Centralized constants for env keys, routes, response keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath   = "ARENA_CONFIG"
	EnvDatabasePath = "ARENA_DB"
	EnvServerAddr   = "ARENA_ADDR"
	EnvLogLevel     = "LOG_LEVEL"
	EnvStaleScan    = "ARENA_STALE_SCAN"

	DefaultConfigPath   = "./arena_config.json"
	DefaultDatabasePath = "./data/arena.db"
	DefaultServerAddr   = ":8080"

	// HTTP headers and gin context keys
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "requestID"
)

// Routes used by the backend router
const (
	RouteAPIPrefix     = "/api"
	RouteTeamsValidate = "/teams/validate"
	RouteRuns          = "/runs"
	RouteRunByID       = "/runs/:runID"
	RouteRunTeam       = "/runs/:runID/team"
	RouteRunProgress   = "/runs/:runID/progress"
	RouteRunSnapshots  = "/runs/:runID/snapshots"
	RouteRunBattles    = "/runs/:runID/battles"
	RouteRunOpponent   = "/runs/:runID/opponent"
	RouteSnapshotByID  = "/snapshots/:snapshotID"
	RouteBattleByID    = "/battles/:battleID"
	RouteBattleResolve = "/battles/:battleID/resolve"
	RouteBots          = "/bots"
	RouteVersion       = "/version"
	RouteHealth        = "/healthz"
	RouteMetrics       = "/metrics"
)

// Common JSON response keys
const (
	JSONKeyError     = "error"
	JSONKeyMessage   = "message"
	JSONKeyDetails   = "details"
	JSONKeyStatus    = "status"
	JSONKeyValid     = "valid"
	JSONKeyTotalCost = "total_cost"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrInvalidRunID          = "Invalid run ID"
	ErrInvalidSnapshotID     = "Invalid snapshot ID"
	ErrInvalidBattleID       = "Invalid battle ID"
	ErrInvalidStage          = "Invalid stage"
	ErrPlayerIDRequired      = "player_id is required"
	ErrRunNotFound           = "Run not found"
	ErrSnapshotNotFound      = "Snapshot not found"
	ErrBattleNotFound        = "Battle not found"
	ErrInvalidTeam           = "Invalid team composition"
	ErrInvalidProgress       = "Invalid progress"
	ErrNoEligibleOpponent    = "No eligible opponent for this stage"
	ErrBattleInFlight        = "A battle is already pending for this run"
	ErrBattleAlreadyResolved = "Battle already resolved"
	ErrSimulatorFailure      = "Battle simulation failed; retry later"
	ErrFailedCreateRun       = "Failed to create run"
	ErrFailedUpdateRun       = "Failed to update run"
	ErrFailedDeleteRun       = "Failed to delete run"
	ErrFailedFetchRun        = "Failed to fetch run"
	ErrFailedCreateSnapshot  = "Failed to record snapshot"
	ErrFailedDeleteSnapshot  = "Failed to delete snapshot"
	ErrFailedCreateBattle    = "Failed to create battle"
	ErrFailedResolveBattle   = "Failed to resolve battle"
	ErrFailedFetchBattle     = "Failed to fetch battle"
	ErrFailedFetchBots       = "Failed to fetch bot teams"
	ErrFailedEncodeBattle    = "Failed to encode battle"
	ErrFailedPreviewOpponent = "Failed to resolve opponent"
)

// Logging field names
const (
	LogFieldRunID      = "run_id"
	LogFieldPlayerID   = "player_id"
	LogFieldSnapshotID = "snapshot_id"
	LogFieldBotTeamID  = "bot_team_id"
	LogFieldBattleID   = "battle_id"
	LogFieldStage      = "stage"
	LogFieldWins       = "wins"
	LogFieldResult     = "result"
	LogFieldSeed       = "seed"
	LogFieldRequestID  = "request_id"
	LogFieldAddr       = "addr"
	LogFieldCount      = "count"
	LogFieldSource     = "source"
	LogFieldWorker     = "worker_id"
	LogFieldMethod     = "method"
	LogFieldPath       = "path"
	LogFieldStatus     = "status"
	LogFieldLatencyMS  = "latency_ms"
	LogFieldConfigPath = "config_path"
)

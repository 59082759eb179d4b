package service

import "errors"

var (
	ErrUnknownRun            = errors.New("unknown run")
	ErrUnknownSnapshot       = errors.New("unknown snapshot")
	ErrUnknownBattle         = errors.New("unknown battle")
	ErrBattleAlreadyResolved = errors.New("battle already resolved")
	ErrBattleInFlight        = errors.New("a battle is already pending for this run")
	// ErrSimulatorFailure leaves the battle pending; resolving again is safe.
	ErrSimulatorFailure = errors.New("battle simulator failed")
	ErrInvalidProgress  = errors.New("invalid progress")
	ErrInvalidPlayer    = errors.New("player id is required")
	ErrInvalidStage     = errors.New("invalid stage")
	ErrInvalidBotTeam   = errors.New("invalid bot team")
)

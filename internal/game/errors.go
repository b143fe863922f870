package game

import "errors"

// Game errors
var (
	ErrNoValidTarget    = errors.New("no valid target in that direction")
	ErrDeadAttacker     = errors.New("attacking team owns no cells")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNeutralHeld      = errors.New("neutral cell held out")
	ErrGameOver         = errors.New("game is over")
	ErrMalformedSetup   = errors.New("malformed setup")
	ErrNoSavedGame      = errors.New("no saved game")
)

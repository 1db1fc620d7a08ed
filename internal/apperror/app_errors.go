package apperror

import "errors"

var (
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrOutOfBounds       = errors.New("cell is out of bounds")
	ErrWrongTurn         = errors.New("it's not your turn")
	ErrNoLegalMove       = errors.New("no legal move available")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidSide       = errors.New("invalid side")
	ErrMoveInFlight      = errors.New("move application is in progress")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidState      = errors.New("invalid engine state")
)

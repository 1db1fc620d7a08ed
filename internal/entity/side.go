package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Side is one of the two players. SideFirst always opens the game.
type Side uint8

const (
	SideFirst Side = iota + 1
	SideSecond
)

const (
	SideFirstName  = "X"
	SideSecondName = "O"
)

func ParseSide(value string) (Side, error) {
	switch value {
	case SideFirstName:
		return SideFirst, nil
	case SideSecondName:
		return SideSecond, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidSide, value)
	}
}

func (that Side) IsValid() bool {
	return that == SideFirst || that == SideSecond
}

// Opponent - returns the other side.
func (that Side) Opponent() Side {
	if that == SideFirst {
		return SideSecond
	}
	return SideFirst
}

// Mark - returns the cell value this side puts on the board.
func (that Side) Mark() Cell {
	switch that {
	case SideFirst:
		return MarkX
	case SideSecond:
		return MarkO
	default:
		return EmptyCell
	}
}

func (that Side) String() string {
	switch that {
	case SideFirst:
		return SideFirstName
	case SideSecond:
		return SideSecondName
	default:
		return ""
	}
}

func (that Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Side) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to unmarshal side: %w", err)
	}

	if value == "" {
		*that = 0
		return nil
	}

	side, err := ParseSide(value)
	if err != nil {
		return err
	}

	*that = side

	return nil
}

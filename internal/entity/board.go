package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const BoardSize = 3

// Cell is the content of a single board square.
type Cell uint8

const (
	EmptyCell Cell = iota
	MarkX
	MarkO
)

// Side - returns the side owning the mark, ok is false for an empty cell.
func (that Cell) Side() (Side, bool) {
	switch that {
	case MarkX:
		return SideFirst, true
	case MarkO:
		return SideSecond, true
	default:
		return 0, false
	}
}

func (that Cell) String() string {
	side, ok := that.Side()
	if !ok {
		return ""
	}
	return side.String()
}

func (that Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var side Side
	if err := json.Unmarshal(data, &side); err != nil {
		return fmt.Errorf("failed to unmarshal cell: %w", err)
	}

	*that = side.Mark()

	return nil
}

// Position addresses a board square.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Lines lists the 8 winning lines: rows, then columns, then the two diagonals.
var Lines = [8][BoardSize]Position{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a 3x3 grid stored by value, so assigning it copies the whole grid.
type Board [BoardSize][BoardSize]Cell

func EmptyBoard() Board {
	return Board{}
}

// Place - returns a copy of the board with side's mark at (row, col).
func (that Board) Place(row, col int, side Side) (Board, error) {
	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return that, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfBounds, row, col)
	}

	if that[row][col] != EmptyCell {
		return that, fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	that[row][col] = side.Mark()

	return that, nil
}

// At - returns the cell at pos; pos must be in bounds.
func (that Board) At(pos Position) Cell {
	return that[pos.Row][pos.Col]
}

// Winner - returns the side that owns a full line. Lines are checked in order
// and the first complete one wins.
func (that Board) Winner() (Side, bool) {
	line, ok := that.WinningLine()
	if !ok {
		return 0, false
	}

	return that.At(line[0]).Side()
}

// WinningLine - returns the first line fully occupied by a single side.
func (that Board) WinningLine() ([BoardSize]Position, bool) {
	for _, line := range Lines {
		first := that.At(line[0])
		if first == EmptyCell {
			continue
		}

		if that.At(line[1]) == first && that.At(line[2]) == first {
			return line, true
		}
	}

	return [BoardSize]Position{}, false
}

// WinnersCount - counts how many distinct sides own a full line.
func (that Board) WinnersCount() int {
	var owners [3]bool
	for _, line := range Lines {
		first := that.At(line[0])
		if first != EmptyCell && that.At(line[1]) == first && that.At(line[2]) == first {
			owners[first] = true
		}
	}

	count := 0
	for _, owned := range owners {
		if owned {
			count++
		}
	}

	return count
}

func (that Board) IsFull() bool {
	for row := range BoardSize {
		for col := range BoardSize {
			if that[row][col] == EmptyCell {
				return false
			}
		}
	}

	return true
}

// EmptyCells - returns all free squares in row-major order.
func (that Board) EmptyCells() []Position {
	cells := make([]Position, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that[row][col] == EmptyCell {
				cells = append(cells, Position{Row: row, Col: col})
			}
		}
	}

	return cells
}

// Counts - returns the number of marks placed by each side.
func (that Board) Counts() (first, second int) {
	for row := range BoardSize {
		for col := range BoardSize {
			switch that[row][col] {
			case MarkX:
				first++
			case MarkO:
				second++
			}
		}
	}

	return first, second
}

// SideToMove - returns the side whose turn it is under strict alternation.
func (that Board) SideToMove() Side {
	first, second := that.Counts()
	if first > second {
		return SideSecond
	}
	return SideFirst
}

// Validate - checks that the board could have been produced by alternating legal play.
func (that Board) Validate() error {
	for row := range BoardSize {
		for col := range BoardSize {
			if that[row][col] > MarkO {
				return fmt.Errorf("%w: unknown mark at row %d, col %d", apperror.ErrInvalidState, row, col)
			}
		}
	}

	first, second := that.Counts()
	if diff := first - second; diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d first marks against %d second marks", apperror.ErrInvalidState, first, second)
	}

	if that.WinnersCount() > 1 {
		return fmt.Errorf("%w: both sides own a full line", apperror.ErrInvalidState)
	}

	return nil
}

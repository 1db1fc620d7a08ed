package entity

import "fmt"

// Move is a single recorded turn. Seq starts at 1 and follows play order.
type Move struct {
	Side Side `json:"side"`
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Seq  uint `json:"seq"`
}

// Describe - renders the move the way the history view lists it, with 1-based coordinates.
func (that Move) Describe(name string) string {
	return fmt.Sprintf("Move %d: %s placed %s at (%d, %d)", that.Seq, name, that.Side, that.Row+1, that.Col+1)
}

// MoveHistory is an append-only log of moves in chronological order.
type MoveHistory struct {
	moves []Move
}

func NewMoveHistory(moves []Move) MoveHistory {
	return MoveHistory{moves: append([]Move(nil), moves...)}
}

// Record - appends a move for side at (row, col) and returns it with its sequence number.
func (that *MoveHistory) Record(side Side, row, col int) Move {
	move := Move{
		Side: side,
		Row:  row,
		Col:  col,
		Seq:  uint(len(that.moves) + 1),
	}

	that.moves = append(that.moves, move)

	return move
}

func (that *MoveHistory) Clear() {
	that.moves = nil
}

func (that MoveHistory) Len() int {
	return len(that.moves)
}

// All - returns a copy of the moves, oldest first.
func (that MoveHistory) All() []Move {
	return append([]Move{}, that.moves...)
}

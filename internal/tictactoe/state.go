package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// State is the serializable form of an engine, used by the session store.
type State struct {
	Board   entity.Board      `json:"board"`
	History []entity.Move     `json:"history"`
	Score   entity.ScoreTally `json:"score"`
	Phase   entity.TurnPhase  `json:"phase"`
	Active  Settings          `json:"active"`
	Pending Settings          `json:"pending"`
}

// State - exports a copy of the engine state.
func (that *Engine) State() State {
	return State{
		Board:   that.board,
		History: that.history.All(),
		Score:   that.score,
		Phase:   that.phase(),
		Active:  that.active,
		Pending: that.pending,
	}
}

// Restore - rebuilds an engine from an exported state. The history must replay
// into the stored board and the stored phase must match it.
func Restore(logger *slog.Logger, bot MoveChooser, state State) (*Engine, error) {
	if err := state.Active.Validate(); err != nil {
		return nil, fmt.Errorf("invalid active settings: %w", err)
	}

	if err := state.Pending.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pending settings: %w", err)
	}

	if err := state.Board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}

	if err := replay(state.Board, state.History); err != nil {
		return nil, err
	}

	if phase := phaseOf(state.Board, state.Active); phase != state.Phase {
		return nil, fmt.Errorf("%w: phase %s does not match board (%s)", apperror.ErrInvalidState, state.Phase, phase)
	}

	engine, err := New(logger, bot, state.Active)
	if err != nil {
		return nil, err
	}

	engine.board = state.Board
	engine.history = entity.NewMoveHistory(state.History)
	engine.score = state.Score
	engine.pending = state.Pending.withDefaultNames()

	return engine, nil
}

func replay(board entity.Board, history []entity.Move) error {
	replayed := entity.EmptyBoard()

	for i, move := range history {
		if move.Seq != uint(i+1) {
			return fmt.Errorf("%w: move %d has sequence %d", apperror.ErrInvalidState, i+1, move.Seq)
		}

		if move.Side != replayed.SideToMove() {
			return fmt.Errorf("%w: move %d played out of turn", apperror.ErrInvalidState, move.Seq)
		}

		if entity.StatusOf(replayed).IsTerminal() {
			return fmt.Errorf("%w: move %d played after the game ended", apperror.ErrInvalidState, move.Seq)
		}

		next, err := replayed.Place(move.Row, move.Col, move.Side)
		if err != nil {
			return fmt.Errorf("%w: move %d: %w", apperror.ErrInvalidState, move.Seq, err)
		}
		replayed = next
	}

	if replayed != board {
		return fmt.Errorf("%w: history does not match board", apperror.ErrInvalidState)
	}

	return nil
}

package bot

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// MediumOptimalChance is the probability that a medium bot plays the hard move on a given turn.
const MediumOptimalChance = 0.7

// Rand is the random source used by the easy and medium policies. *math/rand.Rand implements it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Bot picks moves for the computer side. It keeps no reference to the boards it is given.
type Bot struct {
	rnd Rand
}

func New(rnd Rand) *Bot {
	return &Bot{rnd: rnd}
}

// ChooseMove - returns the move the bot plays for aiSide on board at the given difficulty.
func (that *Bot) ChooseMove(board entity.Board, aiSide, playerSide entity.Side, difficulty entity.Difficulty) (entity.Position, error) {
	if !aiSide.IsValid() || !playerSide.IsValid() || aiSide == playerSide {
		return entity.Position{}, fmt.Errorf("%w: ai %q, player %q", apperror.ErrInvalidSide, aiSide, playerSide)
	}

	if entity.StatusOf(board).IsTerminal() {
		return entity.Position{}, apperror.ErrNoLegalMove
	}

	switch difficulty {
	case entity.DifficultyEasy:
		return that.randomMove(board)
	case entity.DifficultyMedium:
		if that.rnd.Float64() < MediumOptimalChance {
			return that.bestMove(board, aiSide, playerSide)
		}
		return that.randomMove(board)
	case entity.DifficultyHard:
		return that.bestMove(board, aiSide, playerSide)
	default:
		return entity.Position{}, fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, difficulty)
	}
}

// randomMove - picks uniformly among the empty cells.
func (that *Bot) randomMove(board entity.Board) (entity.Position, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return entity.Position{}, apperror.ErrNoLegalMove
	}

	return cells[that.rnd.Intn(len(cells))], nil
}

func (that *Bot) bestMove(board entity.Board, aiSide, playerSide entity.Side) (entity.Position, error) {
	result := Search(board, aiSide, playerSide)
	if !result.Found {
		return entity.Position{}, apperror.ErrNoLegalMove
	}

	return result.Move, nil
}

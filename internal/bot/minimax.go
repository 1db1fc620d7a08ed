package bot

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

const (
	scoreLoss = -1
	scoreDraw = 0
	scoreWin  = 1

	// bounds sit just outside the score range.
	lowerBound = scoreLoss - 1
	upperBound = scoreWin + 1
)

// Result is the outcome of a full game-tree search.
type Result struct {
	Move  entity.Position
	Score int
	Found bool
	Nodes int
}

// Search - runs minimax with alpha-beta pruning for aiSide over every remaining ply.
// Among equally scored moves the first one in row-major order is returned.
func Search(board entity.Board, aiSide, playerSide entity.Side) Result {
	return search(board, aiSide, playerSide, true)
}

func search(board entity.Board, aiSide, playerSide entity.Side, prune bool) Result {
	s := &searcher{
		board:      board,
		aiSide:     aiSide,
		playerSide: playerSide,
		prune:      prune,
	}

	score, move, found := s.value(true, lowerBound, upperBound)

	return Result{
		Move:  move,
		Score: score,
		Found: found,
		Nodes: s.nodes,
	}
}

// searcher owns a private copy of the board. Every hypothetical move is undone
// before the branch returns, so the copy is back to the root position afterwards.
type searcher struct {
	board      entity.Board
	aiSide     entity.Side
	playerSide entity.Side
	prune      bool
	nodes      int
}

func (that *searcher) terminalScore() (int, bool) {
	if winner, ok := that.board.Winner(); ok {
		if winner == that.aiSide {
			return scoreWin, true
		}
		return scoreLoss, true
	}

	if that.board.IsFull() {
		return scoreDraw, true
	}

	return 0, false
}

func (that *searcher) value(maximizing bool, alpha, beta int) (int, entity.Position, bool) {
	that.nodes++

	if score, ok := that.terminalScore(); ok {
		return score, entity.Position{}, false
	}

	side, best := that.playerSide, upperBound
	if maximizing {
		side, best = that.aiSide, lowerBound
	}

	var bestMove entity.Position
	found := false

	for _, pos := range that.board.EmptyCells() {
		that.board[pos.Row][pos.Col] = side.Mark()
		score, _, _ := that.value(!maximizing, alpha, beta)
		that.board[pos.Row][pos.Col] = entity.EmptyCell

		if maximizing {
			if score > best {
				best, bestMove, found = score, pos, true
			}
			alpha = max(alpha, score)
		} else {
			if score < best {
				best, bestMove, found = score, pos, true
			}
			beta = min(beta, score)
		}

		if that.prune && beta <= alpha {
			break
		}
	}

	return best, bestMove, found
}

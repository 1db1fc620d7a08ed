package tictactoe

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	DefaultPlayerName = "Player"
	DefaultAIName     = "AI"
)

// MoveChooser is the AI decision engine used on AI turns.
type MoveChooser interface {
	ChooseMove(board entity.Board, aiSide, playerSide entity.Side, difficulty entity.Difficulty) (entity.Position, error)
}

// Settings describe who plays which side and how strong the AI is.
type Settings struct {
	PlayerSide entity.Side       `json:"player_side"`
	Difficulty entity.Difficulty `json:"difficulty"`
	PlayerName string            `json:"player_name,omitempty"`
	AIName     string            `json:"ai_name,omitempty"`
}

func (that Settings) Validate() error {
	if !that.PlayerSide.IsValid() {
		return fmt.Errorf("%w: player side %d", apperror.ErrInvalidSide, that.PlayerSide)
	}

	if !that.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, that.Difficulty)
	}

	return nil
}

func (that Settings) AISide() entity.Side {
	return that.PlayerSide.Opponent()
}

func (that Settings) withDefaultNames() Settings {
	if that.PlayerName == "" {
		that.PlayerName = DefaultPlayerName
	}
	if that.AIName == "" {
		that.AIName = DefaultAIName
	}
	return that
}

// Engine is the turn state machine of a single player-versus-AI table.
// It is not safe for concurrent use; callers serialize access to it.
type Engine struct {
	logger *slog.Logger
	bot    MoveChooser

	board   entity.Board
	history entity.MoveHistory
	score   entity.ScoreTally

	// active drives the running game, pending is applied by the next Reset.
	active  Settings
	pending Settings

	applying atomic.Bool
}

func New(logger *slog.Logger, bot MoveChooser, settings Settings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	settings = settings.withDefaultNames()

	return &Engine{
		logger:  logger.With("component", "engine"),
		bot:     bot,
		board:   entity.EmptyBoard(),
		active:  settings,
		pending: settings,
	}, nil
}

// SubmitPlayerMove - places the player's mark at (row, col).
func (that *Engine) SubmitPlayerMove(row, col int) (entity.Snapshot, error) {
	if !that.applying.CompareAndSwap(false, true) {
		return entity.Snapshot{}, apperror.ErrMoveInFlight
	}
	defer that.applying.Store(false)

	if phase := that.phase(); phase != entity.PhaseAwaitingPlayerMove {
		return entity.Snapshot{}, fmt.Errorf("%w: engine is %s", apperror.ErrWrongTurn, phase)
	}

	if err := that.apply(row, col, that.active.PlayerSide); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to apply player move: %w", err)
	}

	return that.Snapshot(), nil
}

// ComputeAITurn - asks the bot for a move and plays it.
func (that *Engine) ComputeAITurn() (entity.Snapshot, error) {
	if !that.applying.CompareAndSwap(false, true) {
		return entity.Snapshot{}, apperror.ErrMoveInFlight
	}
	defer that.applying.Store(false)

	if phase := that.phase(); phase != entity.PhaseAwaitingAIMove {
		return entity.Snapshot{}, fmt.Errorf("%w: engine is %s", apperror.ErrWrongTurn, phase)
	}

	aiSide := that.active.AISide()

	move, err := that.bot.ChooseMove(that.board, aiSide, that.active.PlayerSide, that.active.Difficulty)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to choose ai move: %w", err)
	}

	if err = that.apply(move.Row, move.Col, aiSide); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to apply ai move: %w", err)
	}

	return that.Snapshot(), nil
}

// Reset - starts a new board with the pending settings. A non-nil playerSide overrides the pending side.
// The score survives.
func (that *Engine) Reset(playerSide *entity.Side) (entity.Snapshot, error) {
	if playerSide != nil && !playerSide.IsValid() {
		return entity.Snapshot{}, fmt.Errorf("%w: player side %d", apperror.ErrInvalidSide, *playerSide)
	}

	if !that.applying.CompareAndSwap(false, true) {
		return entity.Snapshot{}, apperror.ErrMoveInFlight
	}
	defer that.applying.Store(false)

	if playerSide != nil {
		that.pending.PlayerSide = *playerSide
	}

	that.active = that.pending
	that.board = entity.EmptyBoard()
	that.history.Clear()

	that.logger.Debug("board reset",
		"player_side", that.active.PlayerSide.String(),
		"difficulty", that.active.Difficulty,
	)

	return that.Snapshot(), nil
}

// Configure - stores new settings for the next Reset. The running game keeps its sides and difficulty.
func (that *Engine) Configure(playerSide entity.Side, difficulty entity.Difficulty) error {
	pending := that.pending
	pending.PlayerSide = playerSide
	pending.Difficulty = difficulty

	if err := pending.Validate(); err != nil {
		return fmt.Errorf("failed to configure engine: %w", err)
	}

	that.pending = pending

	return nil
}

// ResetScore - zeroes the tally.
func (that *Engine) ResetScore() entity.ScoreTally {
	that.score = entity.ScoreTally{}
	return that.score
}

func (that *Engine) History() []entity.Move {
	return that.history.All()
}

// HistoryLines - describes every move with the player and AI display names.
func (that *Engine) HistoryLines() []string {
	moves := that.history.All()
	lines := make([]string, 0, len(moves))

	for _, move := range moves {
		name := that.active.AIName
		if move.Side == that.active.PlayerSide {
			name = that.active.PlayerName
		}
		lines = append(lines, move.Describe(name))
	}

	return lines
}

func (that *Engine) Score() entity.ScoreTally {
	return that.score
}

func (that *Engine) Settings() Settings {
	return that.active
}

func (that *Engine) PendingSettings() Settings {
	return that.pending
}

func (that *Engine) Snapshot() entity.Snapshot {
	status := entity.StatusOf(that.board)

	snapshot := entity.Snapshot{
		Board:      that.board,
		Phase:      that.phase(),
		Status:     status,
		PlayerSide: that.active.PlayerSide,
		AISide:     that.active.AISide(),
		Difficulty: that.active.Difficulty,
	}

	if !status.IsTerminal() {
		snapshot.CurrentTurn = that.board.SideToMove()
	}

	if line, ok := that.board.WinningLine(); ok {
		snapshot.WinningLine = line[:]
	}

	return snapshot
}

// phase - derives the turn phase from the board and the active sides.
func (that *Engine) phase() entity.TurnPhase {
	return phaseOf(that.board, that.active)
}

func phaseOf(board entity.Board, settings Settings) entity.TurnPhase {
	if entity.StatusOf(board).IsTerminal() {
		return entity.PhaseFinished
	}

	if board.SideToMove() == settings.PlayerSide {
		return entity.PhaseAwaitingPlayerMove
	}

	return entity.PhaseAwaitingAIMove
}

// apply - places side's mark, records it and updates the score when the game ends.
func (that *Engine) apply(row, col int, side entity.Side) error {
	next, err := that.board.Place(row, col, side)
	if err != nil {
		return err
	}

	that.board = next
	move := that.history.Record(side, row, col)

	log := that.logger.With("method", "apply")
	log.Debug("move applied", "seq", move.Seq, "side", side.String(), "row", row, "col", col)

	status := entity.StatusOf(that.board)
	if !status.IsTerminal() {
		return nil
	}

	that.score.Record(status, that.active.PlayerSide)

	log.Info("game finished",
		"status", status.State,
		"winner", status.Winner.String(),
		"moves", that.history.Len(),
		"player_wins", that.score.PlayerWins,
		"ai_wins", that.score.AIWins,
		"draws", that.score.Draws,
	)

	return nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error
	GetByID(ctx context.Context, id string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, id string) error
}

// Options are the defaults every new session starts from.
type Options struct {
	Defaults tictactoe.Settings
	// AutoAITurn answers player moves and resets with the AI move in the same call.
	AutoAITurn bool
}

// Session is what callers see of a stored engine.
type Session struct {
	ID      string             `json:"id"`
	Game    entity.Snapshot    `json:"game"`
	Score   entity.ScoreTally  `json:"score"`
	Pending tictactoe.Settings `json:"pending"`
}

// SessionHistory lists the moves of the current game.
type SessionHistory struct {
	Moves []entity.Move `json:"moves"`
	Lines []string      `json:"lines"`
}

// sessionLock counts the callers holding or waiting for mu.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type SessionManager struct {
	logger  *slog.Logger
	repo    sessionRepo
	bot     tictactoe.MoveChooser
	options Options

	mu    sync.Mutex
	locks map[string]*sessionLock
}

func NewSessionManager(logger *slog.Logger, repo sessionRepo, bot tictactoe.MoveChooser, options Options) *SessionManager {
	return &SessionManager{
		logger:  logger,
		repo:    repo,
		bot:     bot,
		options: options,
		locks:   make(map[string]*sessionLock),
	}
}

// NewSession - creates a session with a fresh board and score. Zero fields of settings take the defaults.
func (that *SessionManager) NewSession(ctx context.Context, settings tictactoe.Settings) (*Session, error) {
	log := that.logger.With("method", "NewSession")

	settings = that.withDefaults(settings)

	engine, err := tictactoe.New(that.logger, that.bot, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	id := uuid.NewString()

	unlock := that.lock(id)
	defer unlock()

	if err = that.autoAITurn(engine); err != nil {
		return nil, err
	}

	if err = that.repo.CreateOrUpdate(ctx, id, engine.State()); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info("session created", "session_id", id, "player_side", settings.PlayerSide.String(), "difficulty", settings.Difficulty)

	return newSession(id, engine), nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*Session, error) {
	var session *Session

	err := that.withEngine(ctx, id, false, func(engine *tictactoe.Engine) error {
		session = newSession(id, engine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// MakeTurn - plays the player's move and, when enabled, the AI reply.
func (that *SessionManager) MakeTurn(ctx context.Context, id string, row, col int) (*Session, error) {
	var session *Session

	err := that.withEngine(ctx, id, true, func(engine *tictactoe.Engine) error {
		if _, err := engine.SubmitPlayerMove(row, col); err != nil {
			return fmt.Errorf("failed make turn: %w", err)
		}

		if err := that.autoAITurn(engine); err != nil {
			return err
		}

		session = newSession(id, engine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// AITurn - lets the AI play when it is its turn.
func (that *SessionManager) AITurn(ctx context.Context, id string) (*Session, error) {
	var session *Session

	err := that.withEngine(ctx, id, true, func(engine *tictactoe.Engine) error {
		if _, err := engine.ComputeAITurn(); err != nil {
			return fmt.Errorf("failed ai turn: %w", err)
		}

		session = newSession(id, engine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Reset - starts a new board, optionally with the player on playerSide. The score is kept.
func (that *SessionManager) Reset(ctx context.Context, id string, playerSide *entity.Side) (*Session, error) {
	var session *Session

	err := that.withEngine(ctx, id, true, func(engine *tictactoe.Engine) error {
		if _, err := engine.Reset(playerSide); err != nil {
			return fmt.Errorf("failed reset: %w", err)
		}

		if err := that.autoAITurn(engine); err != nil {
			return err
		}

		session = newSession(id, engine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Configure - changes side and difficulty for the next reset.
func (that *SessionManager) Configure(ctx context.Context, id string, playerSide entity.Side, difficulty entity.Difficulty) (*Session, error) {
	var session *Session

	err := that.withEngine(ctx, id, true, func(engine *tictactoe.Engine) error {
		if err := engine.Configure(playerSide, difficulty); err != nil {
			return err
		}

		session = newSession(id, engine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (that *SessionManager) History(ctx context.Context, id string) (*SessionHistory, error) {
	var history *SessionHistory

	err := that.withEngine(ctx, id, false, func(engine *tictactoe.Engine) error {
		history = &SessionHistory{
			Moves: engine.History(),
			Lines: engine.HistoryLines(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}

func (that *SessionManager) Score(ctx context.Context, id string) (entity.ScoreTally, error) {
	var score entity.ScoreTally

	err := that.withEngine(ctx, id, false, func(engine *tictactoe.Engine) error {
		score = engine.Score()
		return nil
	})

	return score, err
}

func (that *SessionManager) ResetScore(ctx context.Context, id string) (entity.ScoreTally, error) {
	var score entity.ScoreTally

	err := that.withEngine(ctx, id, true, func(engine *tictactoe.Engine) error {
		score = engine.ResetScore()
		return nil
	})

	return score, err
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	log := that.logger.With("method", "DeleteSession")

	unlock := that.lock(id)
	defer unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Info("session deleted", "session_id", id)

	return nil
}

// withEngine - loads the session under its lock, runs fn and saves the state back when mutate is set.
func (that *SessionManager) withEngine(ctx context.Context, id string, mutate bool, fn func(engine *tictactoe.Engine) error) error {
	unlock := that.lock(id)
	defer unlock()

	state, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	engine, err := tictactoe.Restore(that.logger.With("session_id", id), that.bot, state)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	fnErr := fn(engine)

	// A failed auto AI reply still keeps the player's move.
	if mutate {
		if err = that.repo.CreateOrUpdate(ctx, id, engine.State()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	return fnErr
}

func (that *SessionManager) autoAITurn(engine *tictactoe.Engine) error {
	if !that.options.AutoAITurn || engine.Snapshot().Phase != entity.PhaseAwaitingAIMove {
		return nil
	}

	if _, err := engine.ComputeAITurn(); err != nil {
		return fmt.Errorf("failed ai turn: %w", err)
	}

	return nil
}

// lock - serializes work on one session. The entry is dropped once its last holder or waiter unlocks.
func (that *SessionManager) lock(id string) (unlock func()) {
	that.mu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &sessionLock{}
		that.locks[id] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.mu.Lock()
		defer that.mu.Unlock()

		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
	}
}

func (that *SessionManager) withDefaults(settings tictactoe.Settings) tictactoe.Settings {
	defaults := that.options.Defaults

	if settings.PlayerSide == 0 {
		settings.PlayerSide = defaults.PlayerSide
	}
	if settings.Difficulty == "" {
		settings.Difficulty = defaults.Difficulty
	}
	if settings.PlayerName == "" {
		settings.PlayerName = defaults.PlayerName
	}
	if settings.AIName == "" {
		settings.AIName = defaults.AIName
	}

	return settings
}

func newSession(id string, engine *tictactoe.Engine) *Session {
	return &Session{
		ID:      id,
		Game:    engine.Snapshot(),
		Score:   engine.Score(),
		Pending: engine.PendingSettings(),
	}
}

package repository

import (
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noMoves never answers an AI turn; repository tests only drive player moves.
type noMoves struct{}

func (noMoves) ChooseMove(entity.Board, entity.Side, entity.Side, entity.Difficulty) (entity.Position, error) {
	return entity.Position{}, apperror.ErrNoLegalMove
}

func sampleState(t *testing.T) tictactoe.State {
	t.Helper()

	engine, err := tictactoe.New(slog.New(slog.NewJSONHandler(io.Discard, nil)), noMoves{}, tictactoe.Settings{
		PlayerSide: entity.SideFirst,
		Difficulty: entity.DifficultyMedium,
	})
	require.NoError(t, err)

	_, err = engine.SubmitPlayerMove(1, 1)
	require.NoError(t, err)

	return engine.State()
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Minute)

	// Given: an engine state after one move
	state := sampleState(t)

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, "123", state)

	// Then: the state is stored with an expiry
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "session:123").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Minute)

		// Given: a stored session
		state := sampleState(t)
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, "123", state))

		// When: GetByID is called with existing ID
		retrieved, err := sessionRepo.GetByID(ctx, "123")

		// Then: the retrieved state matches the saved one and can be restored
		require.NoError(t, err)
		assert.Equal(t, state, retrieved)

		engine, err := tictactoe.Restore(st.Logger, noMoves{}, retrieved)
		require.NoError(t, err)
		assert.Equal(t, entity.PhaseAwaitingAIMove, engine.Snapshot().Phase)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Minute)

		// When: GetByID is called with non-existent ID
		_, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("GetByID_Corrupted", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Minute)
		require.NoError(t, st.Storage.Set(ctx, "session:bad", `{"board":`, 0).Err())

		_, err := sessionRepo.GetByID(ctx, "bad")

		require.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a stored session
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, "123", sampleState(t)))

		// When: DeleteByID is called with existing ID
		err := sessionRepo.DeleteByID(ctx, "123")

		// Then: no error should be returned and the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := sessionRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_Clear(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, 0)

	// Given: more sessions than one scan batch and an unrelated key
	state := sampleState(t)
	for i := range scanBatchSize + 20 {
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, strconv.Itoa(i), state))
	}
	require.NoError(t, st.Storage.Set(ctx, "other:1", "keep", 0).Err())

	// When: Clear is called
	deleted, err := sessionRepo.Clear(ctx)

	// Then: every session is removed and other keys stay
	require.NoError(t, err)
	assert.Equal(t, scanBatchSize+20, deleted)

	_, err = sessionRepo.GetByID(ctx, "0")
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)

	value, err := st.Storage.Get(ctx, "other:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", value)
}

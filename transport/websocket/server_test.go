package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstEmptyBot plays the first empty cell in row-major order.
type firstEmptyBot struct{}

func (firstEmptyBot) ChooseMove(board entity.Board, _, _ entity.Side, _ entity.Difficulty) (entity.Position, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return entity.Position{}, apperror.ErrNoLegalMove
	}

	return cells[0], nil
}

type memoryRepo struct {
	mu     sync.Mutex
	states map[string]tictactoe.State
}

func (that *memoryRepo) CreateOrUpdate(_ context.Context, id string, state tictactoe.State) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.states[id] = state
	return nil
}

func (that *memoryRepo) GetByID(_ context.Context, id string) (tictactoe.State, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	state, ok := that.states[id]
	if !ok {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}
	return state, nil
}

func (that *memoryRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.states, id)
	return nil
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sessions := usecase.NewSessionManager(logger, &memoryRepo{states: map[string]tictactoe.State{}}, firstEmptyBot{}, usecase.Options{
		Defaults: tictactoe.Settings{
			PlayerSide: entity.SideFirst,
			Difficulty: entity.DifficultyHard,
		},
		AutoAITurn: true,
	})

	srv := httptest.NewServer(New(logger, sessions).Handler(ctx))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, action string, payload any) (string, ResponsePayload) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	var response ResponsePayload
	require.NoError(t, json.Unmarshal(reply.Payload, &response))

	return reply.Action, response
}

func TestServer_GameFlow(t *testing.T) {
	conn := dial(t)

	// Given: a new session opened over the socket
	action, response := exchange(t, conn, ActionSessionNew, RequestPayload{PlayerName: "Eve"})
	require.Equal(t, ActionSessionNew, action)
	require.Empty(t, response.Error)
	require.NotNil(t, response.Session)
	id := response.Session.ID

	// When: the player wins the bottom row
	for _, col := range []int{0, 1, 2} {
		row := 2
		action, response = exchange(t, conn, ActionGameTurn, RequestPayload{SessionID: id, Row: &row, Col: &col})
		require.Equal(t, ActionGameTurn, action)
		require.Empty(t, response.Error)
	}

	// Then: the game is finished and counted
	assert.True(t, response.Session.Game.IsFinished())
	assert.Equal(t, entity.SideFirst, response.Session.Game.Status.Winner)

	_, response = exchange(t, conn, ActionScoreGet, RequestPayload{SessionID: id})
	require.NotNil(t, response.Score)
	assert.Equal(t, entity.ScoreTally{PlayerWins: 1}, *response.Score)

	_, response = exchange(t, conn, ActionGameHistory, RequestPayload{SessionID: id})
	require.NotNil(t, response.History)
	assert.Equal(t, "Move 1: Eve placed X at (3, 1)", response.History.Lines[0])

	// When: the next game is configured and started
	_, response = exchange(t, conn, ActionGameConfigure, RequestPayload{SessionID: id, PlayerSide: "O", Difficulty: "easy"})
	require.Empty(t, response.Error)

	_, response = exchange(t, conn, ActionGameReset, RequestPayload{SessionID: id})
	require.Empty(t, response.Error)

	// Then: the AI already opened
	assert.Equal(t, entity.MarkX, response.Session.Game.Board[0][0])
	assert.Equal(t, entity.PhaseAwaitingPlayerMove, response.Session.Game.Phase)

	_, response = exchange(t, conn, ActionScoreReset, RequestPayload{SessionID: id})
	require.NotNil(t, response.Score)
	assert.Equal(t, entity.ScoreTally{}, *response.Score)

	_, response = exchange(t, conn, ActionSessionGet, RequestPayload{SessionID: id})
	require.NotNil(t, response.Session)
	assert.Equal(t, id, response.Session.ID)
}

func TestServer_Errors(t *testing.T) {
	conn := dial(t)

	t.Run("Unknown action", func(t *testing.T) {
		action, response := exchange(t, conn, "game:leave", RequestPayload{})

		assert.Equal(t, "game:leave", action)
		assert.Contains(t, response.Error, "unknown action")
	})

	t.Run("Missing coordinates", func(t *testing.T) {
		_, response := exchange(t, conn, ActionGameTurn, RequestPayload{SessionID: "x"})

		assert.Contains(t, response.Error, "row and col are required")
	})

	t.Run("Unknown session", func(t *testing.T) {
		_, response := exchange(t, conn, ActionGameAI, RequestPayload{SessionID: "missing"})

		assert.Contains(t, response.Error, apperror.ErrSessionNotFound.Error())
	})

	t.Run("Wrong turn", func(t *testing.T) {
		_, created := exchange(t, conn, ActionSessionNew, RequestPayload{})
		require.NotNil(t, created.Session)

		_, response := exchange(t, conn, ActionGameAI, RequestPayload{SessionID: created.Session.ID})

		assert.Contains(t, response.Error, apperror.ErrWrongTurn.Error())
	})

	t.Run("Malformed message keeps the connection open", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		var reply Message
		require.NoError(t, conn.ReadJSON(&reply))

		var response ResponsePayload
		require.NoError(t, json.Unmarshal(reply.Payload, &response))
		assert.Contains(t, response.Error, "invalid payload")

		_, created := exchange(t, conn, ActionSessionNew, RequestPayload{})
		assert.Empty(t, created.Error)
	})
}

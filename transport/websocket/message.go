package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	ActionSessionNew    = "session:new"
	ActionSessionGet    = "session:get"
	ActionGameTurn      = "game:turn"
	ActionGameAI        = "game:ai"
	ActionGameReset     = "game:reset"
	ActionGameConfigure = "game:configure"
	ActionGameHistory   = "game:history"
	ActionScoreGet      = "score:get"
	ActionScoreReset    = "score:reset"
)

const internalErrorMessage = "internal error"

var (
	errUnknownAction  = errors.New("unknown action")
	errInvalidPayload = errors.New("invalid payload")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID  string `json:"session_id,omitempty"`
	Row        *int   `json:"row,omitempty"`
	Col        *int   `json:"col,omitempty"`
	PlayerSide string `json:"player_side,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	AIName     string `json:"ai_name,omitempty"`
}

type ResponsePayload struct {
	Session *usecase.Session        `json:"session,omitempty"`
	History *usecase.SessionHistory `json:"history,omitempty"`
	Score   *entity.ScoreTally      `json:"score,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// process - decodes one client message, runs its handler and builds the reply.
func (that *Server) process(ctx context.Context, data []byte) Message {
	log := that.logger.With("method", "process")

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return errorMessage("", fmt.Errorf("%w: %w", errInvalidPayload, err))
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		return errorMessage(message.Action, fmt.Errorf("%w: %q", errUnknownAction, message.Action))
	}

	var payload RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return errorMessage(message.Action, fmt.Errorf("%w: %w", errInvalidPayload, err))
		}
	}

	response, err := handler(ctx, &payload)
	if err != nil {
		if !isClientError(err) {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
		return errorMessage(message.Action, err)
	}

	return newMessage(message.Action, response)
}

func newMessage(action string, payload ResponsePayload) Message {
	encoded, err := json.Marshal(payload)
	if err != nil {
		encoded, _ = json.Marshal(ResponsePayload{Error: internalErrorMessage})
	}

	return Message{Action: action, Payload: encoded}
}

func errorMessage(action string, err error) Message {
	text := internalErrorMessage
	if isClientError(err) {
		text = err.Error()
	}

	return newMessage(action, ResponsePayload{Error: text})
}

// isClientError - reports errors caused by the request rather than the server.
func isClientError(err error) bool {
	for _, target := range []error{
		errUnknownAction,
		errInvalidPayload,
		apperror.ErrCellOccupied,
		apperror.ErrOutOfBounds,
		apperror.ErrWrongTurn,
		apperror.ErrNoLegalMove,
		apperror.ErrInvalidDifficulty,
		apperror.ErrInvalidSide,
		apperror.ErrMoveInFlight,
		apperror.ErrSessionNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

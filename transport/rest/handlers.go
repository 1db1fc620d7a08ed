package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var errBadRequest = errors.New("bad request")

type sessionUseCase interface {
	NewSession(ctx context.Context, settings tictactoe.Settings) (*usecase.Session, error)
	GetSession(ctx context.Context, id string) (*usecase.Session, error)
	DeleteSession(ctx context.Context, id string) error

	MakeTurn(ctx context.Context, id string, row, col int) (*usecase.Session, error)
	AITurn(ctx context.Context, id string) (*usecase.Session, error)
	Reset(ctx context.Context, id string, playerSide *entity.Side) (*usecase.Session, error)
	Configure(ctx context.Context, id string, playerSide entity.Side, difficulty entity.Difficulty) (*usecase.Session, error)

	History(ctx context.Context, id string) (*usecase.SessionHistory, error)
	Score(ctx context.Context, id string) (entity.ScoreTally, error)
	ResetScore(ctx context.Context, id string) (entity.ScoreTally, error)
}

type createSessionRequest struct {
	PlayerSide string `json:"player_side"`
	Difficulty string `json:"difficulty"`
	PlayerName string `json:"player_name"`
	AIName     string `json:"ai_name"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type resetRequest struct {
	PlayerSide string `json:"player_side"`
}

type configRequest struct {
	PlayerSide string `json:"player_side"`
	Difficulty string `json:"difficulty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func newHandlers(logger *slog.Logger, sessions sessionUseCase) *handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	settings := tictactoe.Settings{
		PlayerName: req.PlayerName,
		AIName:     req.AIName,
	}

	if req.PlayerSide != "" {
		side, err := entity.ParseSide(req.PlayerSide)
		if err != nil {
			that.writeError(w, err)
			return
		}
		settings.PlayerSide = side
	}

	if req.Difficulty != "" {
		difficulty, err := entity.ParseDifficulty(req.Difficulty)
		if err != nil {
			that.writeError(w, err)
			return
		}
		settings.Difficulty = difficulty
	}

	session, err := that.sessions.NewSession(r.Context(), settings)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, session)
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeError(w, fmt.Errorf("%w: row and col are required", errBadRequest))
		return
	}

	session, err := that.sessions.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Col)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) aiTurn(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.AITurn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeOptional(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	var playerSide *entity.Side
	if req.PlayerSide != "" {
		side, err := entity.ParseSide(req.PlayerSide)
		if err != nil {
			that.writeError(w, err)
			return
		}
		playerSide = &side
	}

	session, err := that.sessions.Reset(r.Context(), chi.URLParam(r, "id"), playerSide)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) configure(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	side, err := entity.ParseSide(req.PlayerSide)
	if err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := entity.ParseDifficulty(req.Difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	session, err := that.sessions.Configure(r.Context(), chi.URLParam(r, "id"), side, difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

func (that *handlers) history(w http.ResponseWriter, r *http.Request) {
	history, err := that.sessions.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, history)
}

func (that *handlers) score(w http.ResponseWriter, r *http.Request) {
	score, err := that.sessions.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, score)
}

func (that *handlers) resetScore(w http.ResponseWriter, r *http.Request) {
	score, err := that.sessions.ResetScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, score)
}

// decodeOptional - decodes a JSON body into v, an empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

// statusOf - maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrOutOfBounds),
		errors.Is(err, apperror.ErrInvalidSide),
		errors.Is(err, apperror.ErrInvalidDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrWrongTurn),
		errors.Is(err, apperror.ErrMoveInFlight),
		errors.Is(err, apperror.ErrNoLegalMove):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

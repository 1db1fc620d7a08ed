package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

func (that *Server) handleNewSession(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	settings := tictactoe.Settings{
		PlayerName: payload.PlayerName,
		AIName:     payload.AIName,
	}

	if payload.PlayerSide != "" {
		side, err := entity.ParseSide(payload.PlayerSide)
		if err != nil {
			return ResponsePayload{}, err
		}
		settings.PlayerSide = side
	}

	if payload.Difficulty != "" {
		difficulty, err := entity.ParseDifficulty(payload.Difficulty)
		if err != nil {
			return ResponsePayload{}, err
		}
		settings.Difficulty = difficulty
	}

	session, err := that.sessions.NewSession(ctx, settings)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created over websocket", "session_id", session.ID)

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleGetSession(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	session, err := that.sessions.GetSession(ctx, payload.SessionID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleGameTurn(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	if payload.Row == nil || payload.Col == nil {
		return ResponsePayload{}, fmt.Errorf("%w: row and col are required", errInvalidPayload)
	}

	session, err := that.sessions.MakeTurn(ctx, payload.SessionID, *payload.Row, *payload.Col)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleAITurn(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	session, err := that.sessions.AITurn(ctx, payload.SessionID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleReset(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	var playerSide *entity.Side
	if payload.PlayerSide != "" {
		side, err := entity.ParseSide(payload.PlayerSide)
		if err != nil {
			return ResponsePayload{}, err
		}
		playerSide = &side
	}

	session, err := that.sessions.Reset(ctx, payload.SessionID, playerSide)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleConfigure(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	side, err := entity.ParseSide(payload.PlayerSide)
	if err != nil {
		return ResponsePayload{}, err
	}

	difficulty, err := entity.ParseDifficulty(payload.Difficulty)
	if err != nil {
		return ResponsePayload{}, err
	}

	session, err := that.sessions.Configure(ctx, payload.SessionID, side, difficulty)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Session: session}, nil
}

func (that *Server) handleHistory(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	history, err := that.sessions.History(ctx, payload.SessionID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{History: history}, nil
}

func (that *Server) handleScore(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	score, err := that.sessions.Score(ctx, payload.SessionID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Score: &score}, nil
}

func (that *Server) handleResetScore(ctx context.Context, payload *RequestPayload) (ResponsePayload, error) {
	score, err := that.sessions.ResetScore(ctx, payload.SessionID)
	if err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{Score: &score}, nil
}

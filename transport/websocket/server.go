package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	maxMessageSize  = 4096
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	writeWait       = 10 * time.Second
	sendBufferSize  = 16
	shutdownTimeout = 5 * time.Second
)

type sessionUseCase interface {
	NewSession(ctx context.Context, settings tictactoe.Settings) (*usecase.Session, error)
	GetSession(ctx context.Context, id string) (*usecase.Session, error)

	MakeTurn(ctx context.Context, id string, row, col int) (*usecase.Session, error)
	AITurn(ctx context.Context, id string) (*usecase.Session, error)
	Reset(ctx context.Context, id string, playerSide *entity.Side) (*usecase.Session, error)
	Configure(ctx context.Context, id string, playerSide entity.Side, difficulty entity.Difficulty) (*usecase.Session, error)

	History(ctx context.Context, id string) (*usecase.SessionHistory, error)
	Score(ctx context.Context, id string) (entity.ScoreTally, error)
	ResetScore(ctx context.Context, id string) (entity.ScoreTally, error)
}

var errWriterStopped = errors.New("writer stopped")

type handlerFunc func(ctx context.Context, payload *RequestPayload) (ResponsePayload, error)

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionSessionNew] = server.handleNewSession
	server.handlers[ActionSessionGet] = server.handleGetSession
	server.handlers[ActionGameTurn] = server.handleGameTurn
	server.handlers[ActionGameAI] = server.handleAITurn
	server.handlers[ActionGameReset] = server.handleReset
	server.handlers[ActionGameConfigure] = server.handleConfigure
	server.handlers[ActionGameHistory] = server.handleHistory
	server.handlers[ActionScoreGet] = server.handleScore
	server.handlers[ActionScoreReset] = server.handleResetScore

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until the client leaves.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer conn.Close()

		if err := writePump(conn, send); err != nil {
			log.Debug("write pump stopped", "error", err)
		}
	}()

	if err = that.handleMessages(ctx, conn, send, done); err != nil {
		log.Debug("connection closed", "error", err)
	}

	close(send)
	<-done
}

// handleMessages - processes messages from the client in arrival order.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, send chan<- []byte, done <-chan struct{}) error {
	log := that.logger.With("method", "handleMessages")

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.process(ctx, data)

		encoded, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to marshal response", "action", response.Action, "error", err)
			continue
		}

		select {
		case send <- encoded:
		case <-done:
			return errWriterStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// writePump - writes queued responses and keeps the connection alive with pings.
func writePump(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}

			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
		}
	}
}

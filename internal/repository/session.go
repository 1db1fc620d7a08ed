package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	sessionKeyPrefix = "session:"
	scanBatchSize    = 100
)

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error
	GetByID(ctx context.Context, id string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository - stores engine states under "session:<id>". Every write refreshes the ttl; zero disables expiry.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, id string, state tictactoe.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.client.Set(ctx, sessionKey(id), stateJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (tictactoe.State, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to get session by id: %w", err)
	}

	var state tictactoe.State
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return state, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

// Clear - removes every session key and returns how many were deleted.
func (that *dbSession) Clear(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)

	for {
		keys, next, err := that.client.Scan(ctx, cursor, sessionKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan sessions: %w", err)
		}

		if len(keys) > 0 {
			count, err := that.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete sessions: %w", err)
			}
			deleted += int(count)
		}

		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

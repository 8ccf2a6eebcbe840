// Package session persists the per-session conversation state between
// turns. The orchestrator reads the state once at the start of a turn and
// writes it once at the end; keeping two turns for the same session from
// running concurrently is the caller's job.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"drivethru-dialogue/internal/common/database"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/models"
)

// Store is the session-state contract.
type Store interface {
	GetState(ctx context.Context, sessionID string) (models.ConversationState, error)
	SetState(ctx context.Context, sessionID string, state models.ConversationState) error
}

// RedisStore keeps conversation state in Redis under
// "{prefix}:{session_id}:state" with a sliding TTL. A missing or expired
// key reads as IDLE, so abandoned sessions simply start over.
type RedisStore struct {
	client    *database.RedisClient
	keyPrefix string
	ttl       time.Duration
	logger    logger.Logger
}

func NewRedisStore(client *database.RedisClient, keyPrefix string, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    log,
	}
}

func (s *RedisStore) stateKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:state", s.keyPrefix, sessionID)
}

// GetState reads the session's dialogue state. Unrecognized stored values
// also resolve to IDLE rather than failing the turn.
func (s *RedisStore) GetState(ctx context.Context, sessionID string) (models.ConversationState, error) {
	value, err := s.client.Get(ctx, s.stateKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return models.StateIdle, nil
	}
	if err != nil {
		return models.StateIdle, fmt.Errorf("get session state for %s: %w", sessionID, err)
	}
	return models.ParseConversationState(value), nil
}

// SetState writes the state and refreshes the session TTL.
func (s *RedisStore) SetState(ctx context.Context, sessionID string, state models.ConversationState) error {
	if err := s.client.Set(ctx, s.stateKey(sessionID), state.String(), s.ttl); err != nil {
		return fmt.Errorf("set session state for %s: %w", sessionID, err)
	}
	s.logger.Debug("session state persisted", map[string]interface{}{
		"session_id": sessionID,
		"state":      state.String(),
	})
	return nil
}

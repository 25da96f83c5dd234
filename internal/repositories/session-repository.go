package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "pedant-server/pkg/errors"
)

// Session - сессия WebApp, живёт в Redis с продлеваемым TTL.
type Session struct {
	ID           string    `json:"sessionId"`
	UserID       uint64    `json:"userId"`
	Platform     string    `json:"platform,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type SessionRepositoryInterface interface {
	CreateSession(ctx context.Context, session *Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	TouchSession(ctx context.Context, sessionID string, at time.Time, ttl time.Duration) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetUserSessionIDs(ctx context.Context, userID uint64) ([]string, error)
}

type SessionRepository struct {
	cache CacheRepositoryInterface
}

func NewSessionRepository(cache CacheRepositoryInterface) SessionRepositoryInterface {
	return &SessionRepository{cache: cache}
}

func sessionKey(id string) string          { return "session:" + id }
func userSessionsKey(userID uint64) string { return "user_sessions:" + strconv.FormatUint(userID, 10) }

func (r *SessionRepository) CreateSession(ctx context.Context, session *Session, ttl time.Duration) error {
	if err := r.write(ctx, session, ttl); err != nil {
		return err
	}
	if err := r.cache.SAdd(ctx, userSessionsKey(session.UserID), session.ID); err != nil {
		return fmt.Errorf("не удалось привязать сессию к пользователю: %w", err)
	}
	_, err := r.cache.Expire(ctx, userSessionsKey(session.UserID), ttl)
	return err
}

func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := r.cache.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewNotFoundError("Сессия не найдена")
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("повреждённая сессия %s: %w", sessionID, err)
	}
	return &s, nil
}

// TouchSession обновляет lastActivity и продлевает TTL.
func (r *SessionRepository) TouchSession(ctx context.Context, sessionID string, at time.Time, ttl time.Duration) (*Session, error) {
	s, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.LastActivity = at
	if err := r.write(ctx, s, ttl); err != nil {
		return nil, err
	}
	if _, err := r.cache.Expire(ctx, userSessionsKey(s.UserID), ttl); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	s, err := r.GetSession(ctx, sessionID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil
		}
		return err
	}
	if err := r.cache.Del(ctx, sessionKey(sessionID)); err != nil {
		return err
	}
	return r.cache.SRem(ctx, userSessionsKey(s.UserID), sessionID)
}

func (r *SessionRepository) GetUserSessionIDs(ctx context.Context, userID uint64) ([]string, error) {
	return r.cache.SMembers(ctx, userSessionsKey(userID))
}

func (r *SessionRepository) write(ctx context.Context, s *Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, sessionKey(s.ID), raw, ttl)
}

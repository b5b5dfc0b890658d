package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elleandro/studio-admin/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// SessionCookieName is the browser cookie carrying the session ID
	SessionCookieName = "studio_session"

	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "studio-admin-session||"
	sessionsSetKey   = "studio-admin-sessions"
)

var (
	ErrNoSession = errors.New("session not found")
)

// Session is the credential bundle kept server-side for a logged-in
// browser: the upstream practice API bearer token plus display data.
// It is the only durable client-adjacent state in the whole service.
type Session struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for session IDs (for unit and dev testing)
	RandStringFunc func(n int) (string, error)
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Create stores the session bundle and returns the new session ID
func (s *Service) Create(ctx context.Context, session Session) (string, error) {
	sessionID, err := s.RandStringFunc(35)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + sessionID
	if err := s.redisClient.Set(ctx, sessionKey, sessionBytes, 0).Err(); err != nil {
		return "", err
	}

	// add session ID to the set of sessions, used by ScanAndClean
	if err := s.redisClient.SAdd(ctx, sessionsSetKey, sessionID).Err(); err != nil {
		return "", err
	}

	return sessionID, nil
}

// Get returns the session for the given ID, or ErrNoSession when the
// session does not exist or has outlived its TTL
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	sessionKey := sessionKeyPrefix + sessionID
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(cmd.Val()), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if time.Since(session.CreatedAt) > s.ttl {
		return nil, ErrNoSession
	}

	return &session, nil
}

// Destroy removes the session; used by logout and by the upstream 401 observer
func (s *Service) Destroy(ctx context.Context, sessionID string) error {
	sessionKey := sessionKeyPrefix + sessionID
	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return err
	}
	return s.redisClient.SRem(ctx, sessionsSetKey, sessionID).Err()
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, sessionsSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! session service, scan and clean, get sessions: %s", err)
		return
	}

	sessionIDs := cmd.Val()
	if len(sessionIDs) == 0 {
		log.Debugln("=> session service, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> session service, scan and clean [%d sessions] start ...", len(sessionIDs))
	var toRemove []string
	for _, sessionID := range sessionIDs {
		sessionKey := sessionKeyPrefix + sessionID
		cmd := s.redisClient.Get(ctx, sessionKey)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				toRemove = append(toRemove, sessionID)
				continue
			}
			log.Errorf("=> session service, scan and clean %s: %s", sessionID, err)
			continue
		}

		var session Session
		if err := json.Unmarshal([]byte(cmd.Val()), &session); err != nil {
			log.Errorf("=> session service, scan and clean %s: %s", sessionID, err)
			toRemove = append(toRemove, sessionID)
			continue
		}

		if time.Since(session.CreatedAt) > s.ttl {
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		if err := s.Destroy(ctx, sessionID); err != nil {
			log.Errorf("=> session service, clean %s: %s", sessionID, err)
		}
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/models"
)

// DefaultSessionCacheTTL caps how long a validated session is served from cache.
const DefaultSessionCacheTTL = 5 * time.Minute

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL      time.Duration
	CacheTTL time.Duration
	Clock    func() time.Time
	Cache    SessionCache
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

var (
	// ErrSessionNotFound indicates that no session matches the provided token or identifier.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionRevoked marks a session that has been revoked by logout.
	ErrSessionRevoked = errors.New("session: revoked")
	// ErrSessionExpired signals that a session has reached its expiry.
	ErrSessionExpired = errors.New("session: expired")
	// ErrSessionInvalidToken is returned when the supplied token is malformed or forged.
	ErrSessionInvalidToken = errors.New("session: invalid token")
)

// SessionService issues, validates and revokes admin sessions.
type SessionService struct {
	db       *gorm.DB
	jwt      *JWTService
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time
	cache    SessionCache
}

// NewSessionService constructs a session manager backed by the provided database and JWT service.
func NewSessionService(db *gorm.DB, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = jwtService.TTL()
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultSessionCacheTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:       db,
		jwt:      jwtService,
		ttl:      ttl,
		cacheTTL: cacheTTL,
		now:      clock,
		cache:    cfg.Cache,
	}, nil
}

// TTL reports the session lifetime, used for the cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create stores a session for username and returns the signed cookie value.
func (s *SessionService) Create(ctx context.Context, username string, meta SessionMetadata) (string, *models.AdminSession, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, errors.New("session service: username is required")
	}

	now := s.now()
	session := &models.AdminSession{
		Username:   username,
		IPAddress:  strings.TrimSpace(meta.IPAddress),
		UserAgent:  truncate(strings.TrimSpace(meta.UserAgent), 512),
		ExpiresAt:  now.Add(s.ttl),
		LastUsedAt: now,
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(session).Error; err != nil {
		return "", nil, fmt.Errorf("session service: create session: %w", err)
	}

	token, err := s.jwt.GenerateToken(TokenInput{
		Username:  username,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return "", nil, fmt.Errorf("session service: sign token: %w", err)
	}

	s.remember(ctx, session)
	return token, session, nil
}

// Validate checks the token signature and the backing session row.
func (s *SessionService) Validate(ctx context.Context, token string) (*Claims, *models.AdminSession, error) {
	claims, err := s.jwt.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSessionInvalidToken, err)
	}

	session, err := s.lookup(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.RevokedAt != nil {
		return nil, nil, ErrSessionRevoked
	}
	if !session.Active(s.now()) {
		return nil, nil, ErrSessionExpired
	}
	if session.Username != claims.Username {
		return nil, nil, ErrSessionInvalidToken
	}
	return claims, session, nil
}

// Revoke marks a session as revoked.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionInvalidToken
	}
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.AdminSession{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", s.now())
	if result.Error != nil {
		return fmt.Errorf("session service: revoke session: %w", result.Error)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, sessionID)
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CleanupExpired deletes expired and revoked sessions.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ensureContext(ctx)).
		Where("expires_at < ?", s.now()).
		Or("revoked_at IS NOT NULL").
		Delete(&models.AdminSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *SessionService) lookup(ctx context.Context, sessionID string) (*models.AdminSession, error) {
	ctx = ensureContext(ctx)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, sessionID); err == nil && cached != nil {
			return cached, nil
		}
	}

	var session models.AdminSession
	err := s.db.WithContext(ctx).Take(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	if session.Active(s.now()) {
		s.remember(ctx, &session)
	}
	return &session, nil
}

func (s *SessionService) remember(ctx context.Context, session *models.AdminSession) {
	if s.cache == nil {
		return
	}
	ttl := s.cacheTTL
	if remaining := session.ExpiresAt.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	// Cache failures are non-fatal; the next request reads the row again.
	_ = s.cache.Set(ensureContext(ctx), session, ttl)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/auth"
	apperrors "mediaflow/pkg/errors"
	"mediaflow/pkg/token"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	csrfTokenBytes  = 32
	csrfTokenTTL    = 24 * time.Hour
	csrfHeaderName  = "X-CSRF-Token"
	cleanupInterval = 1 * time.Hour

	msgCSRFMissing = "CSRF token required"
	msgCSRFInvalid = "Invalid CSRF token"
	msgCSRFExpired = "CSRF token expired"
)

// CSRFHeaderName is the request and response header carrying the token.
const CSRFHeaderName = csrfHeaderName

type csrfToken struct {
	value     string
	expiresAt time.Time
}

// CSRFMiddleware protects cookie-authenticated sessions. Bearer sessions and
// share tokens are not sent ambiently by browsers and are not checked.
type CSRFMiddleware struct {
	tokens  sync.Map // user id -> *csrfToken
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewCSRFMiddleware(ctx context.Context) *CSRFMiddleware {
	cleanupCtx, cancel := context.WithCancel(ctx)
	m := &CSRFMiddleware{
		now:     time.Now,
		ctx:     cleanupCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *CSRFMiddleware) Stop() {
	m.cancel()
	<-m.stopped
}

func (m *CSRFMiddleware) cleanupLoop() {
	defer close(m.stopped)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpiredTokens()
		}
	}
}

// GetOrCreateToken returns the live token for a user, issuing a new one when
// none exists or the old one expired.
func (m *CSRFMiddleware) GetOrCreateToken(userID uuid.UUID) (string, error) {
	if raw, ok := m.tokens.Load(userID); ok {
		if t := raw.(*csrfToken); m.now().Before(t.expiresAt) {
			return t.value, nil
		}
	}

	value, err := token.GenerateHex(csrfTokenBytes)
	if err != nil {
		return "", err
	}

	m.tokens.Store(userID, &csrfToken{value: value, expiresAt: m.now().Add(csrfTokenTTL)})
	return value, nil
}

// Middleware must run after the actor has been resolved.
func (m *CSRFMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			if !auth.SessionFromCookie(c) {
				return next(c)
			}

			actor, ok := access.ActorFrom(c)
			if !ok || actor.Kind() != access.KindSession {
				return next(c)
			}

			provided := c.Request().Header.Get(csrfHeaderName)
			if provided == "" {
				return apperrors.Forbidden(msgCSRFMissing)
			}

			raw, ok := m.tokens.Load(actor.ID())
			if !ok {
				return apperrors.Forbidden(msgCSRFInvalid)
			}

			expected := raw.(*csrfToken)
			if m.now().After(expected.expiresAt) {
				return apperrors.Forbidden(msgCSRFExpired)
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected.value)) != 1 {
				return apperrors.Forbidden(msgCSRFInvalid)
			}

			return next(c)
		}
	}
}

func (m *CSRFMiddleware) CleanupExpiredTokens() {
	now := m.now()
	m.tokens.Range(func(key, value any) bool {
		if now.After(value.(*csrfToken).expiresAt) {
			m.tokens.Delete(key)
		}
		return true
	})
}

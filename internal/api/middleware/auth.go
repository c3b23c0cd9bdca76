package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/auth"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

const identityKey = "identity"

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator resolves the caller of a request from its session token.
type Authenticator struct {
	tokens     TokenVerifier
	cookieName string
	log        zerolog.Logger
}

func NewAuthenticator(tokens TokenVerifier, cookieName string, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, cookieName: cookieName, log: log}
}

// CookieName is the cookie that carries the session token.
func (a *Authenticator) CookieName() string { return a.cookieName }

// Identify returns the identity behind the request's session token, or nil
// when the request is anonymous. The auth cookie wins over an
// "Authorization: Bearer" header. A bad or expired token is treated as
// anonymous, never as an error.
func (a *Authenticator) Identify(r *http.Request) *domain.Identity {
	token := a.tokenFrom(r)
	if token == "" {
		metrics.TokenVerificationsTotal.WithLabelValues("absent").Inc()
		return nil
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		result := "invalid"
		if errors.Is(err, auth.ErrTokenExpired) {
			result = "expired"
		}
		metrics.TokenVerificationsTotal.WithLabelValues(result).Inc()
		a.log.Debug().Err(err).Str("path", r.URL.Path).Msg("session token rejected")
		return nil
	}

	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	id := claims.Identity()
	return &id
}

func (a *Authenticator) tokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate stores the caller's identity, if any, in the echo context.
// It never rejects a request; use RequireIdentity or RequirePermission for that.
func Authenticate(a *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := a.Identify(c.Request()); id != nil {
				SetIdentity(c, *id)
			}
			return next(c)
		}
	}
}

// SetIdentity attaches id to the request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); !ok {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return response.Fail(c, http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}

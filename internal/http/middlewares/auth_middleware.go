package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/authn"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (user.User, error)
}

type AuthObserver interface {
	ObserveAuth(result string)
}

type AuthMiddleware struct {
	authn   Authenticator
	log     *slog.Logger
	metrics AuthObserver
}

func NewAuthMiddleware(a Authenticator, log *slog.Logger, metrics AuthObserver) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &AuthMiddleware{authn: a, log: log, metrics: metrics}
}

// AccessDeniedMessage is the only thing a rejected caller learns.
const AccessDeniedMessage = "Access Denied"

// Identify authenticates the request. On failure it has already written the
// response and aborted the chain; the caller just returns.
func (m *AuthMiddleware) Identify(c *gin.Context) (user.User, bool) {
	ctx := c.Request.Context()
	reqID, _ := c.Get(CtxRequestID)

	u, err := m.authn.Authenticate(ctx, c.Request)

	if err == nil {
		m.observe("ok")
		m.log.DebugContext(ctx, "authentication succeeded", "user_id", u.ID, "request_id", reqID)
		return u, true
	}

	var rejected *authn.RejectedError

	if errors.As(err, &rejected) {
		m.observe(rejected.Reason.Label())

		// the reason stays server side; every rejection looks the same to the client
		m.log.WarnContext(ctx, "authentication rejected",
			"auth_reason", string(rejected.Reason),
			"identifier", rejected.Identifier,
			"request_id", reqID,
		)

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "unauthorized",
				"message": AccessDeniedMessage,
			},
		})
		return user.User{}, false
	}

	m.observe("error")
	m.log.ErrorContext(ctx, "authentication failed", "err", err, "request_id", reqID)

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":      "internal_error",
			"message":   "Something went wrong",
			"requestId": reqID,
		},
	})
	return user.User{}, false
}

// RequireAuth is the middleware form of Identify for routes without a body to
// validate first. The identity travels on the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := m.Identify(c)
		if !ok {
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), u))

		c.Next()
	}
}

func (m *AuthMiddleware) observe(result string) {
	if m.metrics != nil {
		m.metrics.ObserveAuth(result)
	}
}

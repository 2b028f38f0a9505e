package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/validation"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type UsersHandler struct {
	users  UsersStore
	hasher PasswordHasher
	log    *slog.Logger
}

func NewUsersHandler(users UsersStore, hasher PasswordHasher, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{users: users, hasher: hasher, log: log}
}

// CurrentUser returns the profile of the caller authenticated by RequireAuth.
func (h *UsersHandler) CurrentUser(ctx *gin.Context) {
	u, ok := actorctx.IdentityFrom(ctx.Request.Context())
	if !ok {
		// route registered without RequireAuth
		RespondInternal(ctx, "Could not resolve current user")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindAndValidate(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	_, err := h.users.FindByEmail(cctx, req.EmailAddress)

	switch {
	case err == nil:
		respondEmailTaken(ctx)
		return
	case !errors.Is(err, user.ErrNotFound):
		h.log.ErrorContext(cctx, "email lookup failed", "err", err, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.ErrorContext(cctx, "password hash failed", "err", err, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Could not create user")
		return
	}

	created, err := h.users.Create(cctx, user.NewFromCreateRequest(req, hash))
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, user.ErrEmailTaken) {
			respondEmailTaken(ctx)
			return
		}
		h.log.ErrorContext(cctx, "create user failed", "err", err, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.log.InfoContext(cctx, "user created", "user_id", created.ID, "request_id", requestIDFrom(ctx))

	ctx.Header("Location", "/")
	ctx.Status(http.StatusCreated)
}

func respondEmailTaken(ctx *gin.Context) {
	RespondBadRequest(ctx, "Validation failed", gin.H{
		"fields": []validation.FieldError{{
			Field:   "emailAddress",
			Rule:    "unique",
			Message: user.DuplicateEmailMessage,
		}},
	})
}

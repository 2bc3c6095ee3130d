package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/http/middlewares"
	"github.com/geocoder89/mealmood/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email string) (string, time.Time, error)
}

type UsersHandler struct {
	users  UserStore
	tokens TokenIssuer
}

func NewUsersHandler(users UserStore, tokens TokenIssuer) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens}
}

// AuthResponse is the profile plus a freshly issued bearer token.
type AuthResponse struct {
	user.Profile
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		respondPasswordTooLong(ctx)
		return
	}
	if err != nil {
		slog.ErrorContext(cctx, "hash password failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.NewFromRegisterRequest(req, hash))
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		slog.ErrorContext(cctx, "create user failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for store lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			slog.ErrorContext(cctx, "lookup user failed", "err", err)
			RespondInternal(ctx, "Could not log in")
			return
		}

		// same bcrypt cost as a real mismatch
		security.BurnPasswordCheck(req.Password)
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	h.respondWithToken(ctx, http.StatusOK, found)
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	u, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Preferences != nil {
		u.Preferences = req.Preferences.WithDefaults()
	}

	// credential is rehashed only when a new one is supplied
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if errors.Is(err, security.ErrPasswordTooLong) {
			respondPasswordTooLong(ctx)
			return
		}
		if err != nil {
			slog.ErrorContext(cctx, "hash password failed", "err", err)
			RespondInternal(ctx, "Could not update user")
			return
		}
		u.PasswordHash = hash
	}

	u.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	updated, err := h.users.Update(cctx, u)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return
		}

		slog.ErrorContext(cctx, "update user failed", "err", err)
		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, updated.Profile())
}

// currentUser loads the authenticated caller. A valid token for a deleted
// account is treated as unauthorized.
func (h *UsersHandler) currentUser(ctx *gin.Context) (user.User, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return user.User{}, false
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return user.User{}, false
		}

		slog.ErrorContext(cctx, "load user failed", "err", err)
		RespondInternal(ctx, "Could not load user")
		return user.User{}, false
	}

	return u, true
}

func (h *UsersHandler) respondWithToken(ctx *gin.Context, status int, u user.User) {
	token, expiresAt, err := h.tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		slog.ErrorContext(ctx.Request.Context(), "sign token failed", "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(status, AuthResponse{
		Profile:   u.Profile(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// respondPasswordTooLong reports a password that passed the character limit
// but exceeds bcrypt's byte limit.
func respondPasswordTooLong(ctx *gin.Context) {
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
		Field:   "password",
		Rule:    "max",
		Param:   "72",
		Message: "must be at most 72 bytes",
	}}})
}

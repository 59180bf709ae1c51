package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/auth/models"
	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/httputil"
	request "bloodbank/pkg/platform/middleware/request"
	"bloodbank/pkg/requestcontext"
)

// Service defines the interface for authentication and account operations.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, userID id.UserID, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, userID id.UserID) error
}

// Handler handles the /auth endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

// New creates a new auth Handler with the given service and logger.
func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger,
	}
}

// Register mounts the unauthenticated routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthenticated mounts routes that need a bearer token. Authentication
// middleware must be applied by the parent router; admin checks happen in the
// service.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/profile", h.HandleProfile)
	r.Get("/auth/users", h.HandleListUsers)
	r.Put("/auth/users/{id}", h.HandleUpdateUser)
	r.Delete("/auth/users/{id}", h.HandleDeleteUser)
}

// HandleRegister implements POST /auth/register.
//
// Input: { "email": "user@example.com", "password": "Passw0rd" }
// Output: { "message": "...", "user": {...} }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		h.logFailure(ctx, "register failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.UserEnvelope{
		Message: "user registered successfully",
		User:    models.ToUserResponse(user),
	})
}

// HandleLogin implements POST /auth/login.
//
// Input: { "email": "user@example.com", "password": "Passw0rd" }
// Output: { "access_token": "...", "token_type": "Bearer", "expires_in": 3600, "user": {...} }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logFailure(ctx, "login failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	expiresIn := res.ExpiresAt.Sub(requestcontext.Now(ctx)).Round(time.Second)
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Message:     "login successful",
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn / time.Second),
		User:        models.ToUserResponse(res.User),
	})
}

// HandleLogout implements POST /auth/logout. The presented token is revoked.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if err := h.auth.Logout(ctx); err != nil {
		h.logFailure(ctx, "logout failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "logged out successfully"})
}

// HandleProfile implements GET /auth/profile.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	user, err := h.auth.Profile(ctx)
	if err != nil {
		h.logFailure(ctx, "profile failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{
		Message: "profile retrieved successfully",
		User:    models.ToUserResponse(user),
	})
}

// HandleListUsers implements GET /auth/users. Admin only.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	users, err := h.auth.ListUsers(ctx)
	if err != nil {
		h.logFailure(ctx, "list users failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.ToUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, models.UsersResponse{
		Message: "users retrieved successfully",
		Users:   out,
		Total:   len(out),
	})
}

// HandleUpdateUser implements PUT /auth/users/{id}. Admin only.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[models.UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.auth.UpdateUser(ctx, userID, req)
	if err != nil {
		h.logFailure(ctx, "update user failed", err, requestID, "target_user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.UserEnvelope{
		Message: "user updated successfully",
		User:    models.ToUserResponse(user),
	})
}

// HandleDeleteUser implements DELETE /auth/users/{id}. Admin only.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.auth.DeleteUser(ctx, userID); err != nil {
		h.logFailure(ctx, "delete user failed", err, requestID, "target_user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "user deleted successfully"})
}

func parseUserID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	args := append([]any{"error", err, "request_id", requestID}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}

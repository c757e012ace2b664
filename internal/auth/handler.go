package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/platform/httpx"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// Handler wires the JSON endpoints for the operator login lifecycle.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validate       *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, validate *validator.Validate) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validate:       validate,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type operatorInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type loginResponse struct {
	Operator  operatorInfo `json:"operator"`
	CSRFToken string       `json:"csrfToken"`
}

// Login authenticates the operator, binds an upstream token to the
// session and returns the CSRF token the UI must echo on writes.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if fields, ok := httpx.ValidatorFields(err); ok {
			httpx.ValidationProblem(w, fields)
			return
		}
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session unavailable")
		return
	}

	operator, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	sess.SetUser(strconv.FormatInt(operator.ID, 10))

	token, err := h.service.IssueBackendToken(r.Context(), operator.Email)
	if err != nil {
		// The session falls back to the service token; upstream calls
		// still work, just without operator attribution.
		h.logger.Warn("backend token issue failed", "operator_id", operator.ID, "error", err)
	}
	sess.SetBackendToken(token)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, operator.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", "error", err)
	}

	csrfToken, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("csrf token issue failed", "error", err)
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Operator:  operatorInfo{ID: operator.ID, Email: operator.Email, Name: operator.Name},
		CSRFToken: csrfToken,
	})
}

// Logout tears the session down, including its upstream token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", "error", err)
		}
		sess.Destroy()
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the logged-in operator plus a CSRF token for the UI.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
		return
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
		return
	}
	operator, err := h.service.Operator(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown operator")
			return
		}
		h.logger.Error("operator fetch failed", "operator_id", id, "error", err)
		httpx.RespondError(w, err)
		return
	}
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, loginResponse{
		Operator:  operatorInfo{ID: operator.ID, Email: operator.Email, Name: operator.Name},
		CSRFToken: csrfToken,
	})
}

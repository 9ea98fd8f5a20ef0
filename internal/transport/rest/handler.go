// Package rest exposes catalog manager sessions over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/manager"
	"github.com/abgdnv/gocommerce-admin/internal/view"
	"github.com/abgdnv/gocommerce-admin/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Sessions is the registry the handler drives.
type Sessions interface {
	Open(ctx context.Context, identity manager.IdentityResolver) (*manager.Entry, error)
	Get(id uuid.UUID, operatorID string) (*manager.Entry, error)
	Close(id uuid.UUID, operatorID string) error
}

type Handler struct {
	sessions Sessions
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler backed by sessions.
func NewHandler(sessions Sessions, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// SessionResponse is the body of every successful session call.
type SessionResponse struct {
	SessionID     string                 `json:"session_id"`
	View          manager.ViewState      `json:"view"`
	Notifications []manager.Notification `json:"notifications"`
}

type DeleteResponse struct {
	Outcome manager.DeleteOutcome `json:"outcome"`
	SessionResponse
}

type ConfirmationRequiredResponse struct {
	Error  string `json:"error"`
	Prompt string `json:"prompt"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// operatorIdentity reads the operator stored in the request context by the identity middleware.
var operatorIdentity = manager.IdentityFunc(web.UserIDFromContext)

// RegisterRoutes registers the HTTP routes for the catalog manager.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/admin/sessions", func(r chi.Router) {
		r.Post("/", h.Open)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Close)
			r.Put("/search", h.Search)
			r.Post("/sort/{key}", h.Sort)
			r.Post("/pages/next", h.NextPage)
			r.Post("/pages/previous", h.PreviousPage)
			r.Post("/products/add", h.AddProduct)
			r.Post("/products/{id}/edit", h.EditProduct)
			r.Delete("/products/{id}", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Open activates a new session for the calling operator.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sessions.Open(r.Context(), operatorIdentity)
	if err != nil {
		var denied *manager.DeniedError
		if errors.As(err, &denied) {
			h.logger.InfoContext(r.Context(), "Session denied", "reason", denied.Decision.Reason, "redirect", denied.Redirect)
			web.Redirect(w, h.logger, denied.Redirect)
			return
		}
		h.logger.ErrorContext(r.Context(), "Error opening session", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to open session")
		return
	}
	h.logger.InfoContext(r.Context(), "Session opened", "session_id", entry.ID.String())
	web.RespondJSON(w, h.logger, http.StatusCreated, snapshot(entry))
}

// Get returns the current view of a session and drains its notifications.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, snapshot(entry))
}

// Close ends a session.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseUUID(w, r, h.logger, "sid")
	if !ok {
		return
	}
	operatorID, ok := h.operator(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Close(id, operatorID); err != nil {
		h.respondSessionError(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// Search replaces the search query.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validRequest(w, r, req) {
		return
	}
	h.apply(w, r, entry, func() error { return entry.Session.SetQuery(req.Query) })
}

// Sort toggles the sort on the {key} column.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	key, err := view.ParseSortKey(chi.URLParam(r, "key"))
	if err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, r, entry, func() error { return entry.Session.ToggleSort(key) })
}

func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.apply(w, r, entry, entry.Session.NextPage)
}

func (h *Handler) PreviousPage(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.apply(w, r, entry, entry.Session.PreviousPage)
}

// AddProduct redirects to the product creation page.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.navigate(w, r, entry, entry.Session.AddProduct)
}

// EditProduct redirects to the edit page of {id}.
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.navigate(w, r, entry, func() error { return entry.Session.EditProduct(id) })
}

// Delete removes product {id}. The operator confirms by passing confirm=true;
// without it the confirmation prompt is returned.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	confirm := func(context.Context, string) bool { return confirmed }

	outcome, err := entry.Session.Delete(r.Context(), id, confirm)
	switch outcome {
	case manager.OutcomeDeleted:
		h.logger.InfoContext(r.Context(), "Product deleted", "product_id", id)
		web.RespondJSON(w, h.logger, http.StatusOK, DeleteResponse{Outcome: outcome, SessionResponse: snapshot(entry)})
	case manager.OutcomeDeclined:
		web.RespondJSON(w, h.logger, http.StatusPreconditionRequired, ConfirmationRequiredResponse{
			Error:  "Deletion must be confirmed",
			Prompt: manager.ConfirmDeletePrompt,
		})
	case manager.OutcomeBusy:
		web.RespondError(w, h.logger, http.StatusConflict, "Another product is being deleted")
	case manager.OutcomeFailed:
		h.logger.ErrorContext(r.Context(), "Error deleting product", "product_id", id, "error", err)
		web.RespondJSON(w, h.logger, http.StatusBadGateway, DeleteResponse{Outcome: outcome, SessionResponse: snapshot(entry)})
	default:
		if errors.Is(err, adminerrors.ErrUnknownProduct) {
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.respondSessionError(w, r, err)
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, entry *manager.Entry, fn func() error) {
	if err := fn(); err != nil {
		h.respondSessionError(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, snapshot(entry))
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, entry *manager.Entry, fn func() error) {
	if err := fn(); err != nil {
		h.respondSessionError(w, r, err)
		return
	}
	location, ok := entry.Routes.Take()
	if !ok {
		h.logger.ErrorContext(r.Context(), "Navigation produced no route")
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Navigation failed")
		return
	}
	web.Redirect(w, h.logger, location)
}

// entry resolves the {sid} session owned by the calling operator.
func (h *Handler) entry(w http.ResponseWriter, r *http.Request) (*manager.Entry, bool) {
	id, ok := web.ParseUUID(w, r, h.logger, "sid")
	if !ok {
		return nil, false
	}
	operatorID, ok := h.operator(w, r)
	if !ok {
		return nil, false
	}
	entry, err := h.sessions.Get(id, operatorID)
	if err != nil {
		h.respondSessionError(w, r, err)
		return nil, false
	}
	return entry, true
}

func (h *Handler) operator(w http.ResponseWriter, r *http.Request) (string, bool) {
	operatorID, ok := web.UserIDFromContext(r.Context())
	if !ok {
		web.RespondError(w, h.logger, http.StatusUnauthorized, "Operator identity is required")
		return "", false
	}
	return operatorID, true
}

func (h *Handler) respondSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, adminerrors.ErrSessionNotFound), errors.Is(err, adminerrors.ErrSessionClosed):
		web.RespondError(w, h.logger, http.StatusNotFound, "Session not found")
	case errors.Is(err, adminerrors.ErrNotAuthorized):
		h.logger.WarnContext(r.Context(), "Session access refused", "error", err)
		web.RespondError(w, h.logger, http.StatusForbidden, "Access denied")
	default:
		h.logger.ErrorContext(r.Context(), "Session operation failed", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) validRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
	return false
}

func snapshot(entry *manager.Entry) SessionResponse {
	notifications := entry.Inbox.Drain()
	if notifications == nil {
		notifications = []manager.Notification{}
	}
	return SessionResponse{
		SessionID:     entry.ID.String(),
		View:          entry.Session.View(),
		Notifications: notifications,
	}
}

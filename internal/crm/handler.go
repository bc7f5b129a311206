package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/repdesk/repdesk/internal/platform/httpx"
	"github.com/repdesk/repdesk/internal/shared"
)

// IdempotencyHeader carries the client supplied request key.
const IdempotencyHeader = "Idempotency-Key"

// Writer is the subset of Service used by the handler.
type Writer interface {
	LogVisit(ctx context.Context, wc WriteContext, repID string, in VisitInput) (Visit, error)
	CreateOrder(ctx context.Context, wc WriteContext, repID string, in OrderInput) (Order, error)
	RecordCollection(ctx context.Context, wc WriteContext, repID string, in CollectionInput) (Collection, error)
}

// PermissionSource resolves the permissions of a user.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Handler serves the CRM write endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Writer
	rbac     PermissionSource
	validate *validator.Validate
}

// NewHandler builds the CRM handler.
func NewHandler(logger *slog.Logger, service Writer, rbac PermissionSource) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validate: validator.New()}
}

// MountRoutes registers CRM routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/crm", func(r chi.Router) {
		r.Post("/visits", h.createVisit)
		r.Post("/orders", h.createOrder)
		r.Post("/collections", h.createCollection)
	})
}

func (h *Handler) createVisit(w http.ResponseWriter, r *http.Request) {
	var in VisitInput
	if !h.decode(w, r, &in) {
		return
	}
	wc, repID, ok := h.authorize(w, r, in.RepresentativeID)
	if !ok {
		return
	}
	visit, err := h.service.LogVisit(r.Context(), wc, repID, in)
	if err != nil {
		h.respondWriteError(w, "log visit", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, visit)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in OrderInput
	if !h.decode(w, r, &in) {
		return
	}
	wc, repID, ok := h.authorize(w, r, in.RepresentativeID)
	if !ok {
		return
	}
	order, err := h.service.CreateOrder(r.Context(), wc, repID, in)
	if err != nil {
		h.respondWriteError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var in CollectionInput
	if !h.decode(w, r, &in) {
		return
	}
	wc, repID, ok := h.authorize(w, r, in.RepresentativeID)
	if !ok {
		return
	}
	collection, err := h.service.RecordCollection(r.Context(), wc, repID, in)
	if err != nil {
		h.respondWriteError(w, "record collection", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, collection)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return false
	}
	return true
}

// authorize resolves the representative written for. Writing for someone
// else needs crm.write_all.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, requested string) (WriteContext, string, bool) {
	principal, err := shared.PrincipalFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return WriteContext{}, "", false
	}
	repID := strings.TrimSpace(requested)
	if repID == "" {
		repID = principal.RepresentativeID
	}
	if repID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "representativeId required")
		return WriteContext{}, "", false
	}
	if !principal.Owns(repID) {
		granted, err := h.permissions(r.Context(), principal.UserID)
		if err != nil {
			h.logError("crm permissions", err)
			httpx.RespondError(w, err)
			return WriteContext{}, "", false
		}
		if !shared.HasPermission(granted, shared.PermCRMWriteAll) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return WriteContext{}, "", false
		}
	}
	return WriteContext{
		Principal:      principal,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	}, repID, true
}

func (h *Handler) permissions(ctx context.Context, userID int64) ([]string, error) {
	if h.rbac == nil {
		return nil, errors.New("crm: rbac service missing")
	}
	return h.rbac.EffectivePermissions(ctx, userID)
}

func (h *Handler) respondWriteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrDuplicateRequest):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "idempotency key already used")
	case errors.Is(err, ErrUnknownRepresentative):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "representative not found")
	case errors.Is(err, ErrEmptyOrder):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logError(op, err)
		httpx.RespondError(w, err)
	}
}

func (h *Handler) logError(op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

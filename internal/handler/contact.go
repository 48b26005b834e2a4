package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carnet/carnet/internal/auth"
	"github.com/carnet/carnet/internal/handler/dto"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/service"
)

// ContactManager is the contact service surface the handler depends on.
type ContactManager interface {
	Create(ctx context.Context, input service.CreateContactInput) (*model.Contact, error)
	List(ctx context.Context, ownerID int64) ([]*model.Contact, error)
	Get(ctx context.Context, ownerID, id int64) (*model.Contact, error)
	Update(ctx context.Context, input service.UpdateContactInput) (*model.Contact, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// ContactHandler handles HTTP requests for contact operations.
// All routes run behind the auth middleware; the owner is always the
// resolved user, never a request parameter.
type ContactHandler struct {
	svc    ContactManager
	logger *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc ContactManager, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /personnes.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	var req dto.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	contact, err := h.svc.Create(r.Context(), service.CreateContactInput{
		OwnerID:   owner.ID,
		Surname:   req.Surname,
		GivenName: req.GivenName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_created",
		"contact_id", contact.ID,
		"user_id", owner.ID,
	)

	writeJSON(w, http.StatusCreated, dto.ToContactResponse(contact))
}

// List handles GET /personnes.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	contacts, err := h.svc.List(r.Context(), owner.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactListResponse(contacts))
}

// Get handles GET /personnes/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
		return
	}

	contact, err := h.svc.Get(r.Context(), owner.ID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// Update handles PUT /personnes/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
		return
	}

	var req dto.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	contact, err := h.svc.Update(r.Context(), service.UpdateContactInput{
		OwnerID:   owner.ID,
		ID:        id,
		Surname:   req.Surname,
		GivenName: req.GivenName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_updated",
		"contact_id", contact.ID,
		"user_id", owner.ID,
	)

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// Delete handles DELETE /personnes/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
		return
	}

	if err := h.svc.Delete(r.Context(), owner.ID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_deleted",
		"contact_id", id,
		"user_id", owner.ID,
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Contact deleted"})
}

// contactID parses the {id} URL parameter. A non-numeric ID can never match
// a contact, so it reports not-ok rather than a distinct error.
func contactID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleServiceError maps contact service errors to HTTP responses.
func (h *ContactHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
	case errors.Is(err, service.ErrDuplicatePhone):
		writeError(w, http.StatusBadRequest, "DUPLICATE_PHONE", "Phone number already in contacts")
	case errors.Is(err, service.ErrMissingField):
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "Surname, given name and phone are required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

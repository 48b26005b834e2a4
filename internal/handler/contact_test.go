package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carnet/carnet/internal/auth"
	"github.com/carnet/carnet/internal/handler/dto"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/service"
)

type fakeContactManager struct {
	contact  *model.Contact
	contacts []*model.Contact
	err      error

	gotOwnerID int64
	gotID      int64
}

func (f *fakeContactManager) Create(ctx context.Context, input service.CreateContactInput) (*model.Contact, error) {
	f.gotOwnerID = input.OwnerID
	return f.contact, f.err
}

func (f *fakeContactManager) List(ctx context.Context, ownerID int64) ([]*model.Contact, error) {
	f.gotOwnerID = ownerID
	return f.contacts, f.err
}

func (f *fakeContactManager) Get(ctx context.Context, ownerID, id int64) (*model.Contact, error) {
	f.gotOwnerID, f.gotID = ownerID, id
	return f.contact, f.err
}

func (f *fakeContactManager) Update(ctx context.Context, input service.UpdateContactInput) (*model.Contact, error) {
	f.gotOwnerID, f.gotID = input.OwnerID, input.ID
	return f.contact, f.err
}

func (f *fakeContactManager) Delete(ctx context.Context, ownerID, id int64) error {
	f.gotOwnerID, f.gotID = ownerID, id
	return f.err
}

// contactRouter mounts the handler the way main does, with a fixed
// authenticated user injected ahead of it.
func contactRouter(svc ContactManager, user *model.User) http.Handler {
	h := NewContactHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithUser(req.Context(), user)))
		})
	})
	r.Post("/personnes", h.Create)
	r.Get("/personnes", h.List)
	r.Get("/personnes/{id}", h.Get)
	r.Put("/personnes/{id}", h.Update)
	r.Delete("/personnes/{id}", h.Delete)
	return r
}

var testOwner = &model.User{ID: 1, Username: "alice", Email: "a@x.com"}

func TestContactHandler_Create(t *testing.T) {
	svc := &fakeContactManager{contact: &model.Contact{
		ID: 10, Surname: "Doe", GivenName: "Jane", Phone: "555-1000", OwnerID: 1,
	}}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodPost, "/personnes",
		strings.NewReader(`{"nom":"Doe","prenom":"Jane","telephone":"555-1000"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotOwnerID != 1 {
		t.Errorf("owner must come from the resolved user, got %d", svc.gotOwnerID)
	}

	var resp dto.ContactResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 10 || resp.Surname != "Doe" || resp.Phone != "555-1000" {
		t.Errorf("unexpected contact: %+v", resp)
	}
}

func TestContactHandler_Create_DuplicatePhone(t *testing.T) {
	svc := &fakeContactManager{err: service.ErrDuplicatePhone}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodPost, "/personnes",
		strings.NewReader(`{"nom":"Doe","prenom":"Jane","telephone":"555-1000"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Code != "DUPLICATE_PHONE" {
		t.Errorf("expected code DUPLICATE_PHONE, got %s", resp.Code)
	}
}

func TestContactHandler_List(t *testing.T) {
	svc := &fakeContactManager{contacts: []*model.Contact{
		{ID: 1, Surname: "Doe", GivenName: "Jane", Phone: "555-1000", OwnerID: 1},
		{ID: 2, Surname: "Roe", GivenName: "Rick", Phone: "555-2000", OwnerID: 1},
	}}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodGet, "/personnes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.ContactResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(resp))
	}
}

func TestContactHandler_List_Empty(t *testing.T) {
	svc := &fakeContactManager{contacts: []*model.Contact{}}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodGet, "/personnes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Empty list serializes as [], not null.
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestContactHandler_Get_NotFound(t *testing.T) {
	svc := &fakeContactManager{err: service.ErrContactNotFound}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodGet, "/personnes/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if svc.gotID != 42 {
		t.Errorf("expected lookup for ID 42, got %d", svc.gotID)
	}
}

func TestContactHandler_NonNumericID(t *testing.T) {
	svc := &fakeContactManager{}
	router := contactRouter(svc, testOwner)

	// A non-numeric ID can never match a contact: 404, no service call.
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/personnes/abc", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", method, rec.Code)
		}
	}
	if svc.gotID != 0 {
		t.Errorf("service should not be called for non-numeric IDs")
	}
}

func TestContactHandler_Update(t *testing.T) {
	svc := &fakeContactManager{contact: &model.Contact{
		ID: 7, Surname: "Smith", GivenName: "Jane", Phone: "555-1000", OwnerID: 1,
	}}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodPut, "/personnes/7",
		strings.NewReader(`{"nom":"Smith"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotOwnerID != 1 || svc.gotID != 7 {
		t.Errorf("expected owner 1 / id 7, got %d / %d", svc.gotOwnerID, svc.gotID)
	}
}

func TestContactHandler_Delete(t *testing.T) {
	svc := &fakeContactManager{}
	router := contactRouter(svc, testOwner)

	req := httptest.NewRequest(http.MethodDelete, "/personnes/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.MessageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected a confirmation message")
	}
}

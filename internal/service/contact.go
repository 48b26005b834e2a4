package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/carnet/carnet/internal/metrics"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/repository"
)

// Contact service errors.
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrDuplicatePhone  = errors.New("phone number already in contacts")
)

// ContactStore is the slice of the record store the contact service needs.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	ListContacts(ctx context.Context, ownerID int64) ([]*model.Contact, error)
	GetContact(ctx context.Context, ownerID, id int64) (*model.Contact, error)
	UpdateContact(ctx context.Context, contact *model.Contact) error
	DeleteContact(ctx context.Context, ownerID, id int64) error
	PhoneInUse(ctx context.Context, ownerID int64, phone string, excludeID int64) (bool, error)
}

// ContactService handles ownership-scoped contact CRUD. Every operation takes
// the resolved owner's ID; contacts belonging to other owners behave exactly
// like missing ones.
type ContactService struct {
	store   ContactStore
	metrics metrics.Recorder
}

// NewContactService creates a new ContactService.
func NewContactService(store ContactStore, recorder metrics.Recorder) *ContactService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContactService{
		store:   store,
		metrics: recorder,
	}
}

// CreateContactInput defines input for creating a contact.
type CreateContactInput struct {
	OwnerID   int64
	Surname   string
	GivenName string
	Phone     string
}

// Create adds a contact to the owner's book. The phone number must not
// already appear in this owner's contacts; the same number under a different
// owner is fine.
func (s *ContactService) Create(ctx context.Context, input CreateContactInput) (*model.Contact, error) {
	if input.Surname == "" || input.GivenName == "" || input.Phone == "" {
		return nil, ErrMissingField
	}

	inUse, err := s.store.PhoneInUse(ctx, input.OwnerID, input.Phone, 0)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrDuplicatePhone
	}

	contact := &model.Contact{
		Surname:   input.Surname,
		GivenName: input.GivenName,
		Phone:     input.Phone,
		OwnerID:   input.OwnerID,
	}

	if err := s.store.CreateContact(ctx, contact); err != nil {
		// The unique index closes the check-then-create race.
		if errors.Is(err, repository.ErrPhoneExists) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.metrics.IncContactCreated()

	return contact, nil
}

// List returns all of the owner's contacts in creation order.
func (s *ContactService) List(ctx context.Context, ownerID int64) ([]*model.Contact, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// Get retrieves one of the owner's contacts by ID.
func (s *ContactService) Get(ctx context.Context, ownerID, id int64) (*model.Contact, error) {
	contact, err := s.store.GetContact(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// UpdateContactInput defines input for a partial contact update.
// Nil fields are left untouched.
type UpdateContactInput struct {
	OwnerID   int64
	ID        int64
	Surname   *string
	GivenName *string
	Phone     *string
}

// Update applies the provided fields to one of the owner's contacts.
// A changed phone number is re-checked for duplicates, excluding the record
// itself so re-submitting the current number is a no-op.
func (s *ContactService) Update(ctx context.Context, input UpdateContactInput) (*model.Contact, error) {
	contact, err := s.store.GetContact(ctx, input.OwnerID, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	if input.Phone != nil && *input.Phone != contact.Phone {
		inUse, err := s.store.PhoneInUse(ctx, input.OwnerID, *input.Phone, contact.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrDuplicatePhone
		}
	}

	if input.Surname != nil {
		contact.Surname = *input.Surname
	}
	if input.GivenName != nil {
		contact.GivenName = *input.GivenName
	}
	if input.Phone != nil {
		contact.Phone = *input.Phone
	}

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		switch {
		case errors.Is(err, repository.ErrContactNotFound):
			return nil, ErrContactNotFound
		case errors.Is(err, repository.ErrPhoneExists):
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.metrics.IncContactUpdated()

	return contact, nil
}

// Delete removes one of the owner's contacts by ID.
func (s *ContactService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteContact(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return ErrContactNotFound
		}
		return err
	}

	s.metrics.IncContactDeleted()

	return nil
}

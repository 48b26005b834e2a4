package dto

import (
	"time"

	"github.com/carnet/carnet/internal/model"
)

// CreateContactRequest represents the request body for creating a contact.
// Field names follow the original French API wire format.
type CreateContactRequest struct {
	Surname   string `json:"nom"`
	GivenName string `json:"prenom"`
	Phone     string `json:"telephone"`
}

// UpdateContactRequest represents a partial contact update.
// Absent fields are left untouched, not nulled.
type UpdateContactRequest struct {
	Surname   *string `json:"nom,omitempty"`
	GivenName *string `json:"prenom,omitempty"`
	Phone     *string `json:"telephone,omitempty"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID        int64     `json:"id"`
	Surname   string    `json:"nom"`
	GivenName string    `json:"prenom"`
	Phone     string    `json:"telephone"`
	OwnerID   int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToContactResponse converts a Contact model to ContactResponse DTO.
func ToContactResponse(contact *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:        contact.ID,
		Surname:   contact.Surname,
		GivenName: contact.GivenName,
		Phone:     contact.Phone,
		OwnerID:   contact.OwnerID,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
}

// ToContactListResponse converts a slice of Contact models.
func ToContactListResponse(contacts []*model.Contact) []ContactResponse {
	responses := make([]ContactResponse, len(contacts))
	for i, contact := range contacts {
		responses[i] = *ToContactResponse(contact)
	}
	return responses
}

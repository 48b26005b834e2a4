package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/carnet/carnet/internal/model"
)

// Common errors for contact repository operations.
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrPhoneExists     = errors.New("phone number already exists for this owner")
)

// CreateContact inserts a new contact and fills in its generated ID and
// timestamps. The (owner_id, telephone) unique index maps to ErrPhoneExists,
// which is the authoritative duplicate check under concurrent requests.
func (r *Repository) CreateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (nom, prenom, telephone, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		contact.Surname,
		contact.GivenName,
		contact.Phone,
		contact.OwnerID,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)

	if err != nil {
		if uniqueViolation(err, "contacts_owner_phone_key") {
			return ErrPhoneExists
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// ListContacts retrieves all contacts owned by the given user, in creation
// order (id ascending) so repeated calls see a stable ordering.
func (r *Repository) ListContacts(ctx context.Context, ownerID int64) ([]*model.Contact, error) {
	query := `
		SELECT id, nom, prenom, telephone, owner_id, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*model.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// GetContact retrieves one contact by ID, scoped to its owner. A contact that
// exists under a different owner is indistinguishable from a missing one.
func (r *Repository) GetContact(ctx context.Context, ownerID, id int64) (*model.Contact, error) {
	query := `
		SELECT id, nom, prenom, telephone, owner_id, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// UpdateContact writes the contact's mutable fields back to the row, scoped
// to its owner. The caller merges partial updates into the loaded record
// first; this method always writes all three fields.
func (r *Repository) UpdateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		UPDATE contacts
		SET nom = $1, prenom = $2, telephone = $3, updated_at = now()
		WHERE id = $4 AND owner_id = $5
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		contact.Surname,
		contact.GivenName,
		contact.Phone,
		contact.ID,
		contact.OwnerID,
	).Scan(&contact.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrContactNotFound
		}
		if uniqueViolation(err, "contacts_owner_phone_key") {
			return ErrPhoneExists
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}

	return nil
}

// DeleteContact removes a contact by ID, scoped to its owner.
// Deleting an absent (or foreign) contact returns ErrContactNotFound.
func (r *Repository) DeleteContact(ctx context.Context, ownerID, id int64) error {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND owner_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}

// PhoneInUse reports whether the owner already has a contact with the given
// phone number, excluding excludeID (pass 0 to exclude nothing). This is the
// friendly pre-check; the unique index is the real enforcement.
func (r *Repository) PhoneInUse(ctx context.Context, ownerID int64, phone string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM contacts
			WHERE owner_id = $1 AND telephone = $2 AND id <> $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, ownerID, phone, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check phone: %w", err)
	}

	return exists, nil
}

// scanContact scans a contact from a row.
func scanContact(row pgx.Row) (*model.Contact, error) {
	var contact model.Contact
	err := row.Scan(
		&contact.ID,
		&contact.Surname,
		&contact.GivenName,
		&contact.Phone,
		&contact.OwnerID,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

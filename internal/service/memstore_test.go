package service

import (
	"context"
	"sort"
	"sync"

	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/repository"
)

// memStore is an in-memory record store enforcing the same constraints as
// the SQL schema: unique username, unique email, unique (owner, phone).
type memStore struct {
	mu            sync.Mutex
	users         map[int64]*model.User
	contacts      map[int64]*model.Contact
	nextUserID    int64
	nextContactID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*model.User),
		contacts: make(map[int64]*model.Contact),
	}
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	m.nextUserID++
	user.ID = m.nextUserID
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) DeleteUser(ctx context.Context, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)
	// Cascade, like the foreign key does.
	for cid, contact := range m.contacts {
		if contact.OwnerID == id {
			delete(m.contacts, cid)
		}
	}
}

func (m *memStore) CreateContact(ctx context.Context, contact *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.contacts {
		if c.OwnerID == contact.OwnerID && c.Phone == contact.Phone {
			return repository.ErrPhoneExists
		}
	}

	m.nextContactID++
	contact.ID = m.nextContactID
	copied := *contact
	m.contacts[contact.ID] = &copied
	return nil
}

func (m *memStore) ListContacts(ctx context.Context, ownerID int64) ([]*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*model.Contact, 0)
	for _, contact := range m.contacts {
		if contact.OwnerID == ownerID {
			copied := *contact
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memStore) GetContact(ctx context.Context, ownerID, id int64) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contact, ok := m.contacts[id]
	if !ok || contact.OwnerID != ownerID {
		return nil, repository.ErrContactNotFound
	}
	copied := *contact
	return &copied, nil
}

func (m *memStore) UpdateContact(ctx context.Context, contact *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.contacts[contact.ID]
	if !ok || existing.OwnerID != contact.OwnerID {
		return repository.ErrContactNotFound
	}
	for _, c := range m.contacts {
		if c.ID != contact.ID && c.OwnerID == contact.OwnerID && c.Phone == contact.Phone {
			return repository.ErrPhoneExists
		}
	}
	copied := *contact
	m.contacts[contact.ID] = &copied
	return nil
}

func (m *memStore) DeleteContact(ctx context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	contact, ok := m.contacts[id]
	if !ok || contact.OwnerID != ownerID {
		return repository.ErrContactNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *memStore) PhoneInUse(ctx context.Context, ownerID int64, phone string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, contact := range m.contacts {
		if contact.OwnerID == ownerID && contact.Phone == phone && contact.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

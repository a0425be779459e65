package mocks

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/domain/repository"
)

// MockContactRepository implements repository.ContactRepository for testing.
// Without a Func override each method works against an in-memory map with
// the same owner scoping and (owner, email) uniqueness as the real store.
type MockContactRepository struct {
	CreateFunc           func(ctx context.Context, c *entity.Contact) error
	GetFunc              func(ctx context.Context, ownerID, id int64) (*entity.Contact, error)
	ListFunc             func(ctx context.Context, ownerID int64, f entity.ContactFilter, limit, offset int) ([]entity.Contact, error)
	ListWithBirthdayFunc func(ctx context.Context, ownerID int64, monthDays []string) ([]entity.Contact, error)
	UpdateFunc           func(ctx context.Context, c *entity.Contact) error
	DeleteFunc           func(ctx context.Context, ownerID, id int64) error

	mu       sync.Mutex
	nextID   int64
	contacts map[int64]entity.Contact
}

// NewMockContactRepository creates an empty in-memory repository
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{contacts: map[int64]entity.Contact{}}
}

func (m *MockContactRepository) emailTaken(ownerID, selfID int64, email string) bool {
	for _, c := range m.contacts {
		if c.UserID == ownerID && c.ID != selfID && c.Email == email {
			return true
		}
	}
	return false
}

func (m *MockContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(c.UserID, 0, c.Email) {
		return errs.ErrConflict
	}
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	} else if c.ID > m.nextID {
		m.nextID = c.ID
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	m.contacts[c.ID] = *c
	return nil
}

func (m *MockContactRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Contact, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.UserID != ownerID {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *MockContactRepository) owned(ownerID int64, keep func(entity.Contact) bool) []entity.Contact {
	out := make([]entity.Contact, 0)
	for _, c := range m.contacts {
		if c.UserID == ownerID && keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockContactRepository) List(ctx context.Context, ownerID int64, f entity.ContactFilter, limit, offset int) ([]entity.Contact, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, f, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.owned(ownerID, func(c entity.Contact) bool {
		return containsFold(c.FirstName, f.FirstName) && containsFold(c.LastName, f.LastName) && containsFold(c.Email, f.Email)
	})
	if offset >= len(out) {
		return []entity.Contact{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockContactRepository) ListWithBirthday(ctx context.Context, ownerID int64, monthDays []string) ([]entity.Contact, error) {
	if m.ListWithBirthdayFunc != nil {
		return m.ListWithBirthdayFunc(ctx, ownerID, monthDays)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned(ownerID, func(c entity.Contact) bool {
		return c.Birthday != nil && (monthDays == nil || slices.Contains(monthDays, c.Birthday.Format("01-02")))
	}), nil
}

func (m *MockContactRepository) Update(ctx context.Context, c *entity.Contact) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return errs.ErrNotFound
	}
	if m.emailTaken(c.UserID, c.ID, c.Email) {
		return errs.ErrConflict
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	m.contacts[c.ID] = *c
	return nil
}

func (m *MockContactRepository) Delete(ctx context.Context, ownerID, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.UserID != ownerID {
		return errs.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

// Compile-time interface compliance verification
var _ repository.ContactRepository = (*MockContactRepository)(nil)

package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/domain/repository"
)

// MockUserRepository implements repository.UserRepository for testing.
// Without a Func override each method works against an in-memory map.
type MockUserRepository struct {
	CreateFunc         func(ctx context.Context, u *entity.User) error
	GetByIDFunc        func(ctx context.Context, id int64) (*entity.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*entity.User, error)
	SetVerifiedFunc    func(ctx context.Context, id int64) (*entity.User, error)
	UpdatePasswordFunc func(ctx context.Context, id int64, hash string) (*entity.User, error)
	UpdateAvatarFunc   func(ctx context.Context, id int64, avatarURL *string) (*entity.User, error)
	UpdateRoleFunc     func(ctx context.Context, id int64, role entity.Role) (*entity.User, error)

	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
	calls  map[string]int
}

// NewMockUserRepository creates an empty in-memory repository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: map[int64]*entity.User{}, calls: map[string]int{}}
}

// Calls returns how many times method was invoked
func (m *MockUserRepository) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockUserRepository) track(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// Put stores a copy of u, assigning an id when it has none
func (m *MockUserRepository) Put(u entity.User) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	cp := u
	m.users[u.ID] = &cp
	out := cp
	return &out
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	m.track("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	m.mu.Lock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			m.mu.Unlock()
			return errs.ErrConflict
		}
	}
	m.mu.Unlock()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := m.Put(*u)
	*u = *stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	m.track("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.track("GetByEmail")
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *MockUserRepository) update(id int64, fn func(u *entity.User)) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id int64) (*entity.User, error) {
	m.track("SetVerified")
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, id)
	}
	return m.update(id, func(u *entity.User) { u.IsVerified = true })
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (*entity.User, error) {
	m.track("UpdatePassword")
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, hash)
	}
	return m.update(id, func(u *entity.User) { u.PasswordHash = hash })
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL *string) (*entity.User, error) {
	m.track("UpdateAvatar")
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(ctx, id, avatarURL)
	}
	return m.update(id, func(u *entity.User) { u.AvatarURL = avatarURL })
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int64, role entity.Role) (*entity.User, error) {
	m.track("UpdateRole")
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, id, role)
	}
	return m.update(id, func(u *entity.User) { u.Role = role })
}

// Compile-time interface compliance verification
var _ repository.UserRepository = (*MockUserRepository)(nil)

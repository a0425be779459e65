package mocks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

// SentMail records one notifier call
type SentMail struct {
	Kind      string
	Email     string
	Link      string
	ExpiresAt time.Time
}

// MockNotifier records every email it is asked to send
type MockNotifier struct {
	SendVerificationFunc  func(ctx context.Context, email, link string, expiresAt time.Time) error
	SendPasswordResetFunc func(ctx context.Context, email, link string, expiresAt time.Time) error

	mu   sync.Mutex
	sent []SentMail
}

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

func (m *MockNotifier) record(kind, email, link string, exp time.Time) {
	m.mu.Lock()
	m.sent = append(m.sent, SentMail{Kind: kind, Email: email, Link: link, ExpiresAt: exp})
	m.mu.Unlock()
}

// Sent returns a copy of the recorded emails
func (m *MockNotifier) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

func (m *MockNotifier) SendVerification(ctx context.Context, email, link string, expiresAt time.Time) error {
	m.record("verify", email, link, expiresAt)
	if m.SendVerificationFunc != nil {
		return m.SendVerificationFunc(ctx, email, link, expiresAt)
	}
	return nil
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, link string, expiresAt time.Time) error {
	m.record("reset", email, link, expiresAt)
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, email, link, expiresAt)
	}
	return nil
}

// MockAvatarStore implements the avatar hosting port
type MockAvatarStore struct {
	UploadFunc func(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (string, error)
}

func (m *MockAvatarStore) Upload(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, r, filename, contentType)
	}
	// Default behavior: drain the body and return a fixed URL
	_, _ = io.Copy(io.Discard, r)
	return "https://images.test/" + filename, nil
}

// MockContactIndex implements the contact search port
type MockContactIndex struct {
	IndexFunc  func(ctx context.Context, c entity.Contact) error
	RemoveFunc func(ctx context.Context, contactID int64) error
	SearchFunc func(ctx context.Context, ownerID int64, q string, size int) ([]int64, error)

	mu      sync.Mutex
	Indexed []int64
	Removed []int64
}

func (m *MockContactIndex) Index(ctx context.Context, c entity.Contact) error {
	m.mu.Lock()
	m.Indexed = append(m.Indexed, c.ID)
	m.mu.Unlock()
	if m.IndexFunc != nil {
		return m.IndexFunc(ctx, c)
	}
	return nil
}

func (m *MockContactIndex) Remove(ctx context.Context, contactID int64) error {
	m.mu.Lock()
	m.Removed = append(m.Removed, contactID)
	m.mu.Unlock()
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, contactID)
	}
	return nil
}

func (m *MockContactIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, ownerID, q, size)
	}
	return []int64{}, nil
}

// MockIdentityCache is an in-memory identity cache that records TTLs
type MockIdentityCache struct {
	GetFunc func(ctx context.Context, key string) (entity.UserSnapshot, bool, error)
	SetFunc func(ctx context.Context, key string, snap entity.UserSnapshot, ttl time.Duration) error

	mu      sync.Mutex
	entries map[string]entity.UserSnapshot
	ttls    map[string]time.Duration
}

func NewMockIdentityCache() *MockIdentityCache {
	return &MockIdentityCache{entries: map[string]entity.UserSnapshot{}, ttls: map[string]time.Duration{}}
}

func (m *MockIdentityCache) Get(ctx context.Context, key string) (entity.UserSnapshot, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.entries[key]
	return s, ok, nil
}

func (m *MockIdentityCache) Set(ctx context.Context, key string, snap entity.UserSnapshot, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, snap, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = snap
	m.ttls[key] = ttl
	return nil
}

// TTL returns the ttl recorded for key
func (m *MockIdentityCache) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.ttls[key]
	return d, ok
}

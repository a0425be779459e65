package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/domain/birthday"
	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	repo "github.com/oksasatya/go-contactbook/internal/domain/repository"
)

const (
	DefaultListLimit  = 100
	MaxListLimit      = 1000
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

// ContactService is the owner-scoped address book. Every operation takes
// the authenticated owner id; ids of other owners behave as missing.
type ContactService struct {
	Contacts repo.ContactRepository
	Index    ContactIndex
	Logger   *logrus.Logger

	now func() time.Time
}

func NewContactService(contacts repo.ContactRepository, index ContactIndex, logger *logrus.Logger) *ContactService {
	return &ContactService{Contacts: contacts, Index: index, Logger: logger, now: time.Now}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func (s *ContactService) List(ctx context.Context, ownerID int64, f entity.ContactFilter, limit, offset int) ([]entity.Contact, error) {
	if offset < 0 {
		offset = 0
	}
	return s.Contacts.List(ctx, ownerID, f, clampLimit(limit, DefaultListLimit, MaxListLimit), offset)
}

func (s *ContactService) Get(ctx context.Context, ownerID, id int64) (*entity.Contact, error) {
	return s.Contacts.Get(ctx, ownerID, id)
}

func (s *ContactService) Create(ctx context.Context, ownerID int64, c entity.Contact) (*entity.Contact, error) {
	c.ID = 0
	c.UserID = ownerID
	if err := s.Contacts.Create(ctx, &c); err != nil {
		return nil, err
	}
	s.index(ctx, c)
	return &c, nil
}

// Update applies a partial change to an owned contact.
func (s *ContactService) Update(ctx context.Context, ownerID, id int64, p entity.ContactPatch) (*entity.Contact, error) {
	c, err := s.Contacts.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	p.Apply(c)
	if err := s.Contacts.Update(ctx, c); err != nil {
		return nil, err
	}
	s.index(ctx, *c)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.Contacts.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("contact_id", id).Warn("contact index remove failed")
		}
	}
	return nil
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls in
// [today, today+days] (UTC), soonest first.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID int64, days, limit, offset int) ([]birthday.Match, error) {
	today := s.now().UTC()
	contacts, err := s.Contacts.ListWithBirthday(ctx, ownerID, birthday.MonthDays(today, days))
	if err != nil {
		return nil, err
	}
	return birthday.Upcoming(contacts, today, days, clampLimit(limit, DefaultListLimit, MaxListLimit), offset), nil
}

// Search runs a full-text query over the owner's contacts. Hits that no
// longer exist in the store are skipped. Without an index the result is
// empty.
func (s *ContactService) Search(ctx context.Context, ownerID int64, q string, size int) ([]entity.Contact, error) {
	out := make([]entity.Contact, 0)
	if s.Index == nil || q == "" {
		return out, nil
	}
	ids, err := s.Index.Search(ctx, ownerID, q, clampLimit(size, DefaultSearchSize, MaxSearchSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}
	for _, id := range ids {
		c, err := s.Contacts.Get(ctx, ownerID, id)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *ContactService) index(ctx context.Context, c entity.Contact) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, c); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("contact_id", c.ID).Warn("contact index failed")
	}
}

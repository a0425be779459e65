package repository

import (
	"context"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

// ContactRepository defines the owner-scoped contact store.
// A contact id that belongs to another owner is reported as errs.ErrNotFound.
// Create and Update fail with errs.ErrConflict on an (owner, email) collision.
type ContactRepository interface {
	Create(ctx context.Context, c *entity.Contact) error
	Get(ctx context.Context, ownerID, id int64) (*entity.Contact, error)
	List(ctx context.Context, ownerID int64, f entity.ContactFilter, limit, offset int) ([]entity.Contact, error)
	// ListWithBirthday returns dated contacts whose birthday "MM-DD" is in
	// monthDays. A nil monthDays returns every dated contact.
	ListWithBirthday(ctx context.Context, ownerID int64, monthDays []string) ([]entity.Contact, error)
	Update(ctx context.Context, c *entity.Contact) error
	Delete(ctx context.Context, ownerID, id int64) error
}

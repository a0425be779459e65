package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/domain/repository"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, extra_info, created_at, updated_at`

type ContactRepository struct {
	db DB
}

func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContact(row pgx.Row, c *entity.Contact) error {
	return row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Birthday, &c.ExtraInfo, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, extra_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday, c.ExtraInfo)

	return translate(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *ContactRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Contact, error) {
	c := &entity.Contact{}
	row := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err := scanContact(row, c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// escapeLike escapes LIKE wildcards so filters match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ContactRepository) List(ctx context.Context, ownerID int64, f entity.ContactFilter, limit, offset int) ([]entity.Contact, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`)
	args := []any{ownerID}
	for _, flt := range []struct{ col, val string }{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
	} {
		if flt.val == "" {
			continue
		}
		args = append(args, "%"+escapeLike(flt.val)+"%")
		sb.WriteString(" AND " + flt.col + " ILIKE $" + strconv.Itoa(len(args)))
	}
	args = append(args, limit, offset)
	sb.WriteString(" ORDER BY id LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))

	return r.query(ctx, sb.String(), args...)
}

func (r *ContactRepository) ListWithBirthday(ctx context.Context, ownerID int64, monthDays []string) ([]entity.Contact, error) {
	if monthDays == nil {
		return r.query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 AND birthday IS NOT NULL ORDER BY id`, ownerID)
	}
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE user_id = $1 AND birthday IS NOT NULL AND to_char(birthday, 'MM-DD') = ANY($2)
		ORDER BY id`, ownerID, monthDays)
}

func (r *ContactRepository) query(ctx context.Context, sql string, args ...any) ([]entity.Contact, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Contact, 0)
	for rows.Next() {
		var c entity.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContactRepository) Update(ctx context.Context, c *entity.Contact) error {
	row := r.db.QueryRow(ctx, `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone = $6, birthday = $7, extra_info = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday, c.ExtraInfo)

	return translate(row.Scan(&c.UpdatedAt))
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

var _ repository.ContactRepository = (*ContactRepository)(nil)

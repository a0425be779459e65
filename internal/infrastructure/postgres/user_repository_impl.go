package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/repository"
)

const userColumns = `id, email, password_hash, is_verified, role, avatar_url, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsVerified, &role, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, is_verified, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.IsVerified, string(u.Role), u.AvatarURL)

	return translate(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) SetVerified(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, hash))
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL *string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET avatar_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, avatarURL))
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role entity.Role) (*entity.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, string(role)))
}

var _ repository.UserRepository = (*UserRepository)(nil)

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"eventsphere/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, full_name, password_hash, is_admin, is_active, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	id := newID()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, is_admin, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, u.Email, u.FullName, u.PasswordHash, u.IsAdmin, u.IsActive, utc(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	u.ID = id
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.User, error) {
	return r.getOne(ctx, `UPDATE users SET is_admin = ? WHERE id = ? RETURNING `+userColumns, isAdmin, id)
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

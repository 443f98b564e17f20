package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/document-manager/internal/model"
)

// UserRepo persists users in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,first_name,last_name,password_hash,role,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts the user. The caller supplies the password hash and role;
// ID and timestamps are filled in here.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,email,first_name,last_name,password_hash,role,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email regardless of active state.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetActiveByEmail fetches an active user by normalized email.
func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND is_active=1 LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetActiveByID fetches an active user by id.
func (r *UserRepo) GetActiveByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_active=1 LIMIT 1", id))
}

// List returns all users ordered newest-first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update saves all mutable fields of the user.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?,first_name=?,last_name=?,password_hash=?,role=?,is_active=?,updated_at=? WHERE id=?",
		u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Role, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean a no-op update of an existing row; verify.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user row (hard delete).
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns how many users hold the given role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", role).Scan(&n)
	return n, err
}

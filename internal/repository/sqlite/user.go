package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/userdir/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
// Rows are keyed by lookup_email; the email column holds the stored user's
// own field, which Update may set to a different value than the key.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT name, surname, email FROM users WHERE lookup_email = ?`, email,
	).Scan(&u.Name, &u.Surname, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("query user by email: %w", err)
	}
	return u, true, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, surname, email FROM users ORDER BY lookup_email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, surname, email FROM users WHERE name = ? ORDER BY lookup_email`, name)
	if err != nil {
		return nil, fmt.Errorf("list users by name: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	if err := r.put(ctx, user.Email, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, email string, user domain.User) error {
	if err := r.put(ctx, email, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE lookup_email = ?", email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// put writes user under key, replacing any existing row.
func (r *UserRepository) put(ctx context.Context, key string, user domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (lookup_email, name, surname, email)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(lookup_email) DO UPDATE SET
		   name = excluded.name,
		   surname = excluded.surname,
		   email = excluded.email`,
		key, user.Name, user.Surname, user.Email,
	)
	return err
}

func scanUsers(rows *sql.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Name, &u.Surname, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

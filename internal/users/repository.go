// Package users stores user accounts. Accounts are not used for access
// control.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

type Repository struct {
	db   *sql.DB
	cost int
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, cost: bcrypt.DefaultCost}
}

// Create stores a new active user with a bcrypt hash of password.
func (r *Repository) Create(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.BadRequest("email is required")
	}
	if password == "" {
		return nil, domain.BadRequest("password is required")
	}

	hash, err := HashPassword(password, r.cost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Email: email, PasswordHash: hash, IsActive: true}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, is_active)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Email, u.PasswordHash, u.IsActive).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.Conflict("user already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, password_hash, is_active
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(u domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SeedEmail is the address of the n-th generated test user.
func SeedEmail(n int) string {
	return fmt.Sprintf("test_user%d@test.com", n)
}

package users

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

// Store is the part of Repository that Seed needs.
type Store interface {
	Create(ctx context.Context, email, password string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type SeedResult struct {
	Users    []domain.User
	Created  int
	Existing int
}

// Seed makes sure test users 1..count exist with password. Users that are
// already there are kept; one with a different password is an error.
func Seed(ctx context.Context, store Store, count int, password string) (SeedResult, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list users: %w", err)
	}
	byEmail := make(map[string]domain.User, len(existing))
	for _, u := range existing {
		byEmail[u.Email] = u
	}

	res := SeedResult{Users: make([]domain.User, 0, count)}
	for n := 1; n <= count; n++ {
		email := SeedEmail(n)
		if u, ok := byEmail[email]; ok {
			if !CheckPassword(u, password) {
				return res, domain.Conflict("user " + email + " exists with a different password")
			}
			res.Users = append(res.Users, u)
			res.Existing++
			continue
		}

		u, err := store.Create(ctx, email, password)
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", email, err)
		}
		res.Users = append(res.Users, *u)
		res.Created++
	}
	return res, nil
}

package domain

import (
	"context"
	"slices"
	"strings"
)

// User is a directory entry. It is a value type: updates replace the stored
// User rather than mutating it.
type User struct {
	Name    string
	Surname string
	Email   string
}

// WithName returns a copy of u with the given name.
func (u User) WithName(name string) User {
	u.Name = name
	return u
}

// WithSurname returns a copy of u with the given surname.
func (u User) WithSurname(surname string) User {
	u.Surname = surname
	return u
}

// WithEmail returns a copy of u with the given email.
func (u User) WithEmail(email string) User {
	u.Email = email
	return u
}

// CompareUsers orders users by email, descending.
func CompareUsers(a, b User) int {
	return strings.Compare(b.Email, a.Email)
}

// SortUsers sorts users in place using CompareUsers.
func SortUsers(users []User) {
	slices.SortFunc(users, CompareUsers)
}

// UserRepository defines storage operations for users keyed by email.
// Implementations perform no business validation: Create and Update overwrite
// silently and Delete of a missing key is a no-op.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (User, bool, error)
	FindAll(ctx context.Context) ([]User, error)
	FindByName(ctx context.Context, name string) ([]User, error)
	Create(ctx context.Context, user User) error
	// Update stores user under the key email. The key is not changed even
	// when user.Email differs from it.
	Update(ctx context.Context, email string, user User) error
	Delete(ctx context.Context, email string) error
}

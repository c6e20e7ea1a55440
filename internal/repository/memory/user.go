package memory

import (
	"context"
	"sync"

	"github.com/msomdec/userdir/internal/domain"
)

// UserRepository implements domain.UserRepository with an in-process map.
// It is safe for concurrent use and never returns an error.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository creates an empty in-memory UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]domain.User),
	}
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	return user, ok, nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) FindByName(_ context.Context, name string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []domain.User{}
	for _, u := range r.users {
		if u.Name == name {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.Email] = user
	return nil
}

func (r *UserRepository) Update(_ context.Context, email string, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[email] = user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, email)
	return nil
}

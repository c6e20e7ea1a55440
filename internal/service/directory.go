package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/msomdec/userdir/internal/domain"
)

// DirectoryService enforces the directory invariants over a UserRepository:
// emails are unique on create, and update/delete require an existing entry.
//
// Mutations hold a single lock for the whole check-then-act sequence, so the
// invariants hold with concurrent callers as long as the repository is only
// written through this service.
type DirectoryService struct {
	mu    sync.Mutex
	users domain.UserRepository
}

// NewDirectoryService creates a DirectoryService over users. The caller keeps
// ownership of the repository.
func NewDirectoryService(users domain.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// Create stores user, rejecting it with ErrDuplicateUser if its email is
// already present.
func (s *DirectoryService) Create(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAbsent(ctx, "create", user.Email); err != nil {
		return err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	slog.Debug("user created", "email", user.Email)
	return nil
}

// FindByEmail returns the user stored under email.
func (s *DirectoryService) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.users.FindByEmail(ctx, email)
}

// FindAll returns every stored user in no particular order.
func (s *DirectoryService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

// FindByName returns the users whose name matches exactly.
func (s *DirectoryService) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	return s.users.FindByName(ctx, name)
}

// Update replaces the user stored under email. The entry stays under email
// even when user.Email differs.
func (s *DirectoryService) Update(ctx context.Context, email string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireExisting(ctx, "update", email); err != nil {
		return err
	}
	if err := s.users.Update(ctx, email, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	slog.Debug("user updated", "email", email, "stored_email", user.Email)
	return nil
}

// Delete removes the user stored under email.
func (s *DirectoryService) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireExisting(ctx, "delete", email); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.Debug("user deleted", "email", email)
	return nil
}

func (s *DirectoryService) requireAbsent(ctx context.Context, op, email string) error {
	_, ok, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if ok {
		slog.Debug("rejected duplicate user", "op", op, "email", email)
		return &domain.UserError{Email: email, Err: domain.ErrDuplicateUser}
	}
	return nil
}

func (s *DirectoryService) requireExisting(ctx context.Context, op, email string) error {
	_, ok, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if !ok {
		slog.Debug("rejected missing user", "op", op, "email", email)
		return &domain.UserError{Email: email, Err: domain.ErrNotFound}
	}
	return nil
}

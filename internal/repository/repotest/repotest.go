// Package repotest holds a behavioral test suite that every
// domain.UserRepository implementation must pass.
package repotest

import (
	"context"
	"testing"

	"github.com/msomdec/userdir/internal/domain"
)

// Factory returns a fresh, empty repository for a single subtest.
type Factory func(t *testing.T) domain.UserRepository

// RunUserRepositoryTests runs the shared storage contract against repositories
// produced by newRepo.
func RunUserRepositoryTests(t *testing.T, newRepo Factory) {
	t.Run("CreateThenFind", func(t *testing.T) { testCreateThenFind(t, newRepo(t)) })
	t.Run("FindByEmailMissing", func(t *testing.T) { testFindByEmailMissing(t, newRepo(t)) })
	t.Run("CreateOverwrites", func(t *testing.T) { testCreateOverwrites(t, newRepo(t)) })
	t.Run("FindAll", func(t *testing.T) { testFindAll(t, newRepo(t)) })
	t.Run("FindByName", func(t *testing.T) { testFindByName(t, newRepo(t)) })
	t.Run("UpdateKeepsKey", func(t *testing.T) { testUpdateKeepsKey(t, newRepo(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("DeleteMissing", func(t *testing.T) { testDeleteMissing(t, newRepo(t)) })
}

func someUser() domain.User {
	return domain.User{Name: "name", Surname: "surname", Email: "email"}
}

func mustCreate(t *testing.T, repo domain.UserRepository, users ...domain.User) {
	t.Helper()
	for _, u := range users {
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatalf("Create %s: %v", u.Email, err)
		}
	}
}

func mustFind(t *testing.T, repo domain.UserRepository, email string) domain.User {
	t.Helper()
	u, ok, err := repo.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("FindByEmail %s: %v", email, err)
	}
	if !ok {
		t.Fatalf("expected user at %s", email)
	}
	return u
}

func testCreateThenFind(t *testing.T, repo domain.UserRepository) {
	user := someUser()
	mustCreate(t, repo, user)

	if got := mustFind(t, repo, user.Email); got != user {
		t.Fatalf("expected %+v, got %+v", user, got)
	}
}

func testFindByEmailMissing(t *testing.T, repo domain.UserRepository) {
	_, ok, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if ok {
		t.Fatal("expected no user")
	}
}

func testCreateOverwrites(t *testing.T, repo domain.UserRepository) {
	first := someUser()
	second := first.WithName("replaced")
	mustCreate(t, repo, first, second)

	if got := mustFind(t, repo, first.Email); got != second {
		t.Fatalf("expected %+v, got %+v", second, got)
	}
	all, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

func testFindAll(t *testing.T, repo domain.UserRepository) {
	all, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty repository, got %d users", len(all))
	}

	mustCreate(t, repo,
		someUser().WithEmail("email1@gmail.com"),
		someUser().WithEmail("email2@gmail.com"),
		someUser().WithEmail("email3@gmail.com"),
	)

	all, err = repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
}

func testFindByName(t *testing.T, repo domain.UserRepository) {
	ctx := context.Background()
	user1 := someUser().WithEmail("email1@gmail.com")
	user2 := someUser().WithEmail("email2@gmail.com")
	user3 := someUser().WithName("newName").WithEmail("email3@gmail.com")
	mustCreate(t, repo, user1, user2, user3)

	found, err := repo.FindByName(ctx, "name")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	domain.SortUsers(found)
	if len(found) != 2 || found[0] != user2 || found[1] != user1 {
		t.Fatalf("expected [%+v %+v], got %+v", user2, user1, found)
	}

	found, err = repo.FindByName(ctx, "newName")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(found) != 1 || found[0] != user3 {
		t.Fatalf("expected [%+v], got %+v", user3, found)
	}

	// Matching is exact and case-sensitive.
	found, err = repo.FindByName(ctx, "Name")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no users, got %+v", found)
	}
}

func testUpdateKeepsKey(t *testing.T, repo domain.UserRepository) {
	ctx := context.Background()
	user := someUser().WithEmail("email1@gmail.com")
	mustCreate(t, repo, user)

	replacement := user.WithEmail("newEmail@gmail.com").WithSurname("changed")
	if err := repo.Update(ctx, user.Email, replacement); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := mustFind(t, repo, user.Email); got != replacement {
		t.Fatalf("expected %+v under old key, got %+v", replacement, got)
	}
	_, ok, err := repo.FindByEmail(ctx, replacement.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if ok {
		t.Fatal("expected no entry under the new email")
	}
}

func testDelete(t *testing.T, repo domain.UserRepository) {
	ctx := context.Background()
	mustCreate(t, repo,
		someUser().WithEmail("email1@gmail.com"),
		someUser().WithEmail("email2@gmail.com"),
	)

	if err := repo.Delete(ctx, "email1@gmail.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, ok, err := repo.FindByEmail(ctx, "email1@gmail.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if ok {
		t.Fatal("expected user to be deleted")
	}
	mustFind(t, repo, "email2@gmail.com")
}

func testDeleteMissing(t *testing.T, repo domain.UserRepository) {
	mustCreate(t, repo, someUser())

	if err := repo.Delete(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}

	all, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

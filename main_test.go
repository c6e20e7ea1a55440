package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msomdec/userdir/internal/config"
	"github.com/msomdec/userdir/internal/domain"
	"github.com/msomdec/userdir/internal/repository/memory"
	"github.com/msomdec/userdir/internal/service"
)

func runCommand(t *testing.T, directory *service.DirectoryService, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), directory, args, &out)
	return out.String(), err
}

func TestRun_CreateListDelete(t *testing.T) {
	directory := service.NewDirectoryService(memory.NewUserRepository())

	for _, email := range []string{"a@example.com", "c@example.com", "b@example.com"} {
		if _, err := runCommand(t, directory, "create", "name", "surname", email); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	out, err := runCommand(t, directory, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"c@example.com", "b@example.com", "a@example.com"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), out)
	}
	for i, line := range lines {
		var u userJSON
		if err := json.Unmarshal([]byte(line), &u); err != nil {
			t.Fatalf("decode line %d: %v", i, err)
		}
		if u.Email != want[i] {
			t.Fatalf("line %d: expected %s, got %s", i, want[i], u.Email)
		}
	}

	if _, err := runCommand(t, directory, "delete", "a@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = runCommand(t, directory, "find-name", "name")
	if err != nil {
		t.Fatalf("find-name: %v", err)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Fatalf("expected 2 users after delete, got %d", n)
	}
}

func TestRun_Errors(t *testing.T) {
	directory := service.NewDirectoryService(memory.NewUserRepository())
	if _, err := runCommand(t, directory, "create", "n", "s", "dup@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"no command", nil, errUsage},
		{"unknown command", []string{"frobnicate"}, errUsage},
		{"missing args", []string{"create", "only-name"}, errUsage},
		{"duplicate", []string{"create", "n", "s", "dup@example.com"}, domain.ErrDuplicateUser},
		{"update missing", []string{"update", "nobody@example.com", "n", "s", "x@example.com"}, domain.ErrNotFound},
		{"delete missing", []string{"delete", "nobody@example.com"}, domain.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCommand(t, directory, tc.args...)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestRun_Demo(t *testing.T) {
	directory := service.NewDirectoryService(memory.NewUserRepository())

	out, err := runCommand(t, directory, "demo")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	var result lookupJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Found || result.User != nil || result.Email != "email1@wp.pl" {
		t.Fatalf("unexpected demo result: %+v", result)
	}

	out, err = runCommand(t, directory, "get", "email@email.pl")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Found || result.User == nil || result.User.Name != "Adam" {
		t.Fatalf("expected demo user, got %+v", result)
	}
}

func TestOpenStore_SQLitePersists(t *testing.T) {
	cfg := config.Config{
		Store:        config.StoreSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
		LogLevel:     "info",
	}
	ctx := context.Background()

	users, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	directory := service.NewDirectoryService(users)
	if _, err := runCommand(t, directory, "create", "n", "s", "kept@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := runCommand(t, directory, "update", "kept@example.com", "m", "t", "other@example.com"); err != nil {
		t.Fatalf("update: %v", err)
	}
	closeStore()

	users, closeStore, err = openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeStore()

	found, ok, err := users.FindByEmail(ctx, "kept@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	want := domain.User{Name: "m", Surname: "t", Email: "other@example.com"}
	if !ok || found != want {
		t.Fatalf("expected %+v, got %+v (ok=%v)", want, found, ok)
	}
}

// executeWithEnv runs the driver against a fresh SQLite file and returns its
// exit code, stdout and stderr.
func executeWithEnv(t *testing.T, dbPath string, args ...string) (int, string, string) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("USERDIR_STORE", config.StoreSQLite)
	t.Setenv("USERDIR_DATABASE_PATH", dbPath)
	t.Setenv("USERDIR_LOG_LEVEL", "info")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_StdoutIsOnlyJSONLines(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	code, stdout, stderr := executeWithEnv(t, dbPath, "demo")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr: %s", code, stderr)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 stdout line, got %d: %q", len(lines), stdout)
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("stdout line %d is not JSON: %q", i, line)
		}
	}

	// Migration and demo logs must go to stderr.
	if !strings.Contains(stderr, "migration applied") {
		t.Fatalf("expected migration log on stderr, got %q", stderr)
	}
	if !strings.Contains(stderr, "demo user created") {
		t.Fatalf("expected demo log on stderr, got %q", stderr)
	}
}

func TestExecute_RejectedCommandLogsOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	if code, _, stderr := executeWithEnv(t, dbPath, "create", "n", "s", "dup@example.com"); code != 0 {
		t.Fatalf("first create: exit %d; stderr: %s", code, stderr)
	}

	code, stdout, stderr := executeWithEnv(t, dbPath, "create", "n", "s", "dup@example.com")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout for a rejected command, got %q", stdout)
	}
	if n := strings.Count(stderr, "dup@example.com"); n != 1 {
		t.Fatalf("expected the rejection logged once, got %d times: %q", n, stderr)
	}
	if !strings.Contains(stderr, "User with email: [dup@example.com] is already created") {
		t.Fatalf("expected rejection message on stderr, got %q", stderr)
	}
}

func TestExecute_InvalidLogLevel(t *testing.T) {
	t.Setenv("USERDIR_STORE", config.StoreMemory)
	t.Setenv("USERDIR_LOG_LEVEL", "verbose")

	var stdout, stderr bytes.Buffer
	if code := execute(context.Background(), []string{"list"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "invalid configuration") {
		t.Fatalf("expected configuration error on stderr, got %q", stderr.String())
	}
}

type failingDatabase struct {
	closed bool
}

func (d *failingDatabase) Migrate(context.Context) error { return errors.New("disk full") }

func (d *failingDatabase) Close() error {
	d.closed = true
	return nil
}

func TestPrepare_ClosesOnMigrationFailure(t *testing.T) {
	db := &failingDatabase{}

	err := prepare(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected migration error, got %v", err)
	}
	if !db.closed {
		t.Fatal("expected database to be closed after failed migration")
	}
}

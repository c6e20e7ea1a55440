package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/userdir/internal/config"
	"github.com/msomdec/userdir/internal/domain"
	"github.com/msomdec/userdir/internal/repository/memory"
	"github.com/msomdec/userdir/internal/repository/sqlite"
	"github.com/msomdec/userdir/internal/service"
)

const usage = `usage: userdir <command> [args]

commands:
  create <name> <surname> <email>
  get <email>
  find-name <name>
  list
  update <email> <name> <surname> <new-email>
  delete <email>
  demo`

var errUsage = errors.New(usage)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the driver and returns the process exit code. Command results
// go to stdout as JSON lines; logs and usage text go to stderr only.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "invalid configuration:", err)
		return 1
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(stderr, "invalid configuration:", err)
		return 1
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	users, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		return 1
	}
	defer closeStore()

	directory := service.NewDirectoryService(users)
	if err := run(ctx, directory, args, stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, err)
		} else {
			slog.Error("command failed", "error", err)
		}
		return 1
	}
	return 0
}

// openStore builds the configured repository and a function that releases it.
func openStore(ctx context.Context, cfg config.Config) (domain.UserRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewUserRepository(), func() {}, nil
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if err := prepare(ctx, db); err != nil {
		return nil, nil, err
	}
	slog.Debug("database ready", "path", cfg.DatabasePath)
	return db.Users(), func() { db.Close() }, nil
}

// prepare migrates a persistent backend, closing it if migration fails.
func prepare(ctx context.Context, db domain.Database) error {
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// run executes a single directory command and writes its results to out as
// JSON lines.
func run(ctx context.Context, directory *service.DirectoryService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	enc := json.NewEncoder(out)

	cmd, args := args[0], args[1:]
	switch cmd {
	case "create":
		if len(args) != 3 {
			return errUsage
		}
		user := domain.User{Name: args[0], Surname: args[1], Email: args[2]}
		if err := directory.Create(ctx, user); err != nil {
			return err
		}
		return enc.Encode(toUserJSON(user))

	case "get":
		if len(args) != 1 {
			return errUsage
		}
		user, ok, err := directory.FindByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		return enc.Encode(lookupJSON{Email: args[0], Found: ok, User: optionalUser(user, ok)})

	case "find-name":
		if len(args) != 1 {
			return errUsage
		}
		users, err := directory.FindByName(ctx, args[0])
		if err != nil {
			return err
		}
		return encodeUsers(enc, users)

	case "list":
		if len(args) != 0 {
			return errUsage
		}
		users, err := directory.FindAll(ctx)
		if err != nil {
			return err
		}
		return encodeUsers(enc, users)

	case "update":
		if len(args) != 4 {
			return errUsage
		}
		user := domain.User{Name: args[1], Surname: args[2], Email: args[3]}
		if err := directory.Update(ctx, args[0], user); err != nil {
			return err
		}
		return enc.Encode(toUserJSON(user))

	case "delete":
		if len(args) != 1 {
			return errUsage
		}
		if err := directory.Delete(ctx, args[0]); err != nil {
			return err
		}
		return enc.Encode(map[string]string{"deleted": args[0]})

	case "demo":
		return runDemo(ctx, directory, enc)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// runDemo creates a sample user and looks up an email that was never created.
func runDemo(ctx context.Context, directory *service.DirectoryService, enc *json.Encoder) error {
	user := domain.User{Name: "Adam", Surname: "Tabaka", Email: "email@email.pl"}
	if err := directory.Create(ctx, user); err != nil {
		return err
	}
	slog.Info("demo user created", "email", user.Email)

	const missing = "email1@wp.pl"
	found, ok, err := directory.FindByEmail(ctx, missing)
	if err != nil {
		return err
	}
	return enc.Encode(lookupJSON{Email: missing, Found: ok, User: optionalUser(found, ok)})
}

type userJSON struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

type lookupJSON struct {
	Email string    `json:"email"`
	Found bool      `json:"found"`
	User  *userJSON `json:"user,omitempty"`
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{Name: u.Name, Surname: u.Surname, Email: u.Email}
}

func optionalUser(u domain.User, ok bool) *userJSON {
	if !ok {
		return nil
	}
	j := toUserJSON(u)
	return &j
}

func encodeUsers(enc *json.Encoder, users []domain.User) error {
	domain.SortUsers(users)
	for _, u := range users {
		if err := enc.Encode(toUserJSON(u)); err != nil {
			return err
		}
	}
	return nil
}

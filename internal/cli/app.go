package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mfgquality/burnin/internal/auth"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/mfgquality/burnin/internal/repositories/repomanager"
)

// App dispatches operator subcommands.
type App struct {
	cfg    *config.Config
	client *APIClient
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		client: NewAPIClient("http://" + trimBind(cfg.EndpointAddrHTTP)),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// trimBind turns a bind address like ":8080" into a dialable host:port.
func trimBind(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: burninctl <user add|pending|decide|status|history> [args]")
	}

	switch args[0] {
	case "user":
		if len(args) < 2 || args[1] != "add" {
			return fmt.Errorf("usage: burninctl user add")
		}
		return a.runUserAdd(ctx)
	case "pending":
		return a.withLogin(ctx, a.runPending)
	case "decide":
		if len(args) != 3 {
			return fmt.Errorf("usage: burninctl decide <request-id> <approve|reject>")
		}
		return a.withLogin(ctx, func(ctx context.Context) error {
			return a.runDecide(ctx, args[1], args[2])
		})
	case "status":
		return a.withLogin(ctx, a.runStatus)
	case "history":
		device := ""
		if len(args) > 1 {
			device = args[1]
		}
		return a.withLogin(ctx, func(ctx context.Context) error {
			return a.runHistory(ctx, device)
		})
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// withLogin prompts for credentials, logs in and runs fn.
func (a *App) withLogin(ctx context.Context, fn func(ctx context.Context) error) error {
	username, err := GetSimpleText(a.in, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, username, string(password)); err != nil {
		return err
	}
	return fn(ctx)
}

func (a *App) runUserAdd(ctx context.Context) error {
	username, err := GetSimpleText(a.in, "New approver username", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := rm.Users(db).Create(ctx, user); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(a.out, "approver %q created\n", username)
	return nil
}

func (a *App) runPending(ctx context.Context) error {
	pending, err := a.client.Pending(ctx)
	if err != nil {
		return err
	}
	printPending(a.out, pending)
	return nil
}

func (a *App) runDecide(ctx context.Context, requestID, verdict string) error {
	decided, err := a.client.Decide(ctx, requestID, verdict)
	if err != nil {
		return err
	}
	c := color.New(color.FgGreen)
	if decided.Status == "rejected" {
		c = color.New(color.FgYellow)
	}
	c.Fprintf(a.out, "request %s: %s (device %s, %s -> %s)\n",
		decided.ID, decided.Status, decided.DeviceID, decided.FromTier, decided.ToTier)
	return nil
}

func (a *App) runStatus(ctx context.Context) error {
	devs, err := a.client.Status(ctx)
	if err != nil {
		return err
	}
	printStatus(a.out, devs)
	return nil
}

func (a *App) runHistory(ctx context.Context, device string) error {
	entries, err := a.client.History(ctx, device, 50)
	if err != nil {
		return err
	}
	printHistory(a.out, entries)
	return nil
}

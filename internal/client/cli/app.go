package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/cmsauth/internal/client/api"
	"github.com/dmitrijs2005/cmsauth/internal/client/config"
	"github.com/dmitrijs2005/cmsauth/internal/common"
)

// API is the subset of the HTTP client the commands use.
type API interface {
	Register(ctx context.Context, username, email, password string) (*api.User, error)
	Login(ctx context.Context, username, password string) (*api.Token, error)
	Me(ctx context.Context, token string) (*api.User, error)
	Ping(ctx context.Context) error
}

var ErrUsage = errors.New("usage: cmsauth-cli [-a url] [-token token] [-timeout seconds] register|login|me|ping|version")

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, client API, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: client, reader: bufio.NewReader(in), out: out}
}

// Run executes one sub-command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "me":
		return a.Me(ctx)
	case "ping":
		if err := a.api.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "pong")
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
}

// Register prompts for username, email and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, userName, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id=%s, role=%s)\n", u.UserName, u.ID, u.Role)
	return nil
}

// Login prompts for credentials and prints the issued token.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	t, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Token (expires %s):\n%s\n", t.ExpiresAt.Local().Format(time.RFC1123), t.Token)
	return nil
}

// Me prints the account the configured token belongs to.
func (a *App) Me(ctx context.Context) error {
	if a.config.Token == "" {
		return errors.New("no token: pass -token or set CMS_TOKEN")
	}

	u, err := a.api.Me(ctx, a.config.Token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s <%s>\nid:   %s\nrole: %s\n", u.UserName, u.Email, u.ID, u.Role)
	return nil
}

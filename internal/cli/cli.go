// Package cli wires configuration, logging, and the subcommands of the
// rdq-notify binary.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/app"
	"github.com/nhle/rdq-notify/internal/credential"
	"github.com/nhle/rdq-notify/internal/logging"
	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/remote"
	"github.com/nhle/rdq-notify/internal/server"
	"github.com/nhle/rdq-notify/internal/store"
	notifysync "github.com/nhle/rdq-notify/internal/sync"
)

// ErrUsage is returned for unknown subcommands and bad arguments.
var ErrUsage = errors.New("usage error")

const usage = `usage: rdq-notify [command] [flags]

commands:
  ui       open the notification center (default)
  serve    run the development notification store
  token    mint a session token (--user N)
  login    store a session token in the keyring
  logout   remove the stored session token
`

// Env is the process environment a command runs in.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses args and executes the selected subcommand.
func Run(ctx context.Context, args []string, env Env) error {
	name := "ui"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	fs := pflag.NewFlagSet("rdq-notify "+name, pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	configPath := fs.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	fs.String("base-url", "", "notification API root URL")
	fs.String("log-level", "", "log level (debug, info, warn, error)")

	v := model.NewViper()
	var run func(*model.AppConfig) error

	switch name {
	case "ui":
		fs.Int("poll-interval", 0, "polling interval in seconds")
		bind(v, fs, "polling.interval_sec", "poll-interval")
		run = func(cfg *model.AppConfig) error { return runUI(ctx, cfg) }

	case "serve":
		fs.String("addr", "", "listen address")
		fs.String("db", "", "SQLite database path")
		bind(v, fs, "server.addr", "addr")
		bind(v, fs, "server.db_path", "db")
		run = func(cfg *model.AppConfig) error { return runServe(ctx, cfg) }

	case "token":
		user := fs.Int64("user", 0, "user id to issue the token for")
		ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
		run = func(cfg *model.AppConfig) error { return runToken(cfg, *user, *ttl, env.Stdout) }

	case "login":
		run = func(*model.AppConfig) error { return runLogin(fs.Args(), env) }

	case "logout":
		run = func(*model.AppConfig) error {
			if err := credential.Delete(credential.SessionTokenKey); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "logged out")
			return nil
		}

	case "help":
		fmt.Fprint(env.Stdout, usage)
		return nil

	default:
		fmt.Fprint(env.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}

	bind(v, fs, "api.base_url", "base-url")
	bind(v, fs, "log.level", "log-level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := model.LoadConfig(v, *configPath)
	if err != nil {
		return err
	}
	return run(cfg)
}

// bind makes a flag override the config key, but only when it is set.
func bind(v *viper.Viper, fs *pflag.FlagSet, key, flag string) {
	_ = v.BindPFlag(key, fs.Lookup(flag))
}

// runUI opens the notification center against the configured API.
func runUI(ctx context.Context, cfg *model.AppConfig) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	token := func() string {
		if cfg.API.Token != "" {
			return cfg.API.Token
		}
		return credential.SessionToken()
	}

	client := remote.NewClient(cfg.API.BaseURL, token, nil, logger.Named("remote"))
	adapter := remote.NewAdapter(client)

	s := notifysync.New(adapter, notifysync.WithLogger(logger.Named("sync")))
	defer s.Close()
	pm := notifysync.NewPreferenceManager(adapter, logger.Named("preferences"))

	logger.Info("starting notification center",
		zap.String("api", cfg.API.BaseURL),
		zap.Duration("poll_interval", cfg.Polling.Interval()),
	)

	p := tea.NewProgram(
		app.New(s, pm, app.Options{
			PollInterval: cfg.Polling.Interval(),
			PageSize:     cfg.Polling.PageSize,
			Logger:       logger.Named("ui"),
		}),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// runServe runs the development store until ctx is cancelled. Its logs go
// to stderr rather than the UI log file.
func runServe(ctx context.Context, cfg *model.AppConfig) error {
	logCfg := cfg.Log
	logCfg.File = ""
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Server.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Server.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("notification store listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("db", cfg.Server.DBPath),
	)
	return server.New(st, cfg.Server, logger).Run(ctx, cfg.Server.Addr)
}

// runToken prints a signed session token for userID.
func runToken(cfg *model.AppConfig, userID int64, ttl time.Duration, out io.Writer) error {
	if userID <= 0 {
		return fmt.Errorf("%w: --user must be a positive id", ErrUsage)
	}
	tok, err := server.IssueToken([]byte(cfg.Server.JWTSecret), userID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	return nil
}

// runLogin stores the token given as the only argument, or read from stdin.
func runLogin(args []string, env Env) error {
	var tok string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(env.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading token: %w", err)
		}
		tok = strings.TrimSpace(line)
	case 1:
		tok = strings.TrimSpace(args[0])
	default:
		return fmt.Errorf("%w: login takes at most one token", ErrUsage)
	}
	if tok == "" {
		return fmt.Errorf("%w: empty token", ErrUsage)
	}

	if err := credential.Set(credential.SessionTokenKey, tok); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "session token stored")
	return nil
}

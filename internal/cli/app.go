// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/luna-tui/internal/backend"
	"github.com/jeranaias/luna-tui/internal/config"
	"github.com/jeranaias/luna-tui/internal/logging"
	"github.com/jeranaias/luna-tui/internal/session"
	"github.com/jeranaias/luna-tui/internal/storage"
	"github.com/jeranaias/luna-tui/internal/ui/chat"
	"github.com/jeranaias/luna-tui/internal/ui/styles"
)

// App wires configuration, logging, the store, the backend client and the
// session controller for one invocation.
type App struct {
	Config  *config.Config
	Client  *backend.Client
	Store   storage.Store
	Ctrl    *session.Controller
	DataDir string

	Out   io.Writer
	Err   io.Writer
	Quiet bool

	logger *logging.Logger
}

// LoadConfig loads the config file named by args (or the default one) and
// applies the command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides cfg with global flags and re-validates it.
func ApplyFlags(cfg *config.Config, args Args) error {
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Variant != "" {
		cfg.Chat.Variant = args.Variant
	}
	if args.Store != "" {
		cfg.Storage.Backend = args.Store
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// NewApp builds an App from cfg. Logs go to a file under the data
// directory so they never interleave with terminal output.
func NewApp(cfg *config.Config, out, errOut io.Writer, quiet bool) (*App, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(dataDir, cfg.Log.Level)
	if err != nil {
		// Logging is not worth failing over.
		logging.Discard()
		fmt.Fprintf(errOut, "%s %v\n", warningStyle.Render("[Warning]"), err)
	}

	store, err := storage.Open(cfg.Storage.Backend, dataDir)
	if err != nil {
		if logger != nil {
			logger.Close()
		}
		return nil, err
	}

	client := backend.NewClient(&backend.ClientConfig{
		BaseURL:   cfg.Server.URL,
		Timeout:   cfg.Server.Timeout,
		UserAgent: "luna/" + Version,
	})

	ctrl, err := session.FromConfig(cfg, client, store)
	if err != nil {
		store.Close()
		if logger != nil {
			logger.Close()
		}
		return nil, err
	}

	themeRes := ctrl.LoadTheme()
	// Resolves AdaptiveColors in CLI output to the persisted theme.
	styles.NewTheme(ctrl.DarkMode())

	slog.Info("luna started",
		"version", Version,
		"server", client.BaseURL(),
		"variant", cfg.Chat.Variant,
		"store", store.Path())

	a := &App{
		Config:  cfg,
		Client:  client,
		Store:   store,
		Ctrl:    ctrl,
		DataDir: dataDir,
		Out:     out,
		Err:     errOut,
		Quiet:   quiet,
		logger:  logger,
	}
	a.printNotice(themeRes)
	return a, nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	err := a.Store.Close()
	if a.logger != nil {
		a.logger.Close()
	}
	return err
}

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	switch cmd {
	case CmdTUI:
		return a.RunTUI(ctx)
	case CmdChat:
		return a.RunChat(ctx)
	case CmdAsk:
		return a.Ask(ctx, args.Query)
	case CmdStatus:
		return a.Status(ctx)
	case CmdConfigure:
		return a.Configure(ctx, args.Query)
	case CmdHistory:
		return a.History(args.Limit, args.JSON)
	case CmdTheme:
		return a.Theme(args.Subcommand)
	case CmdVersion:
		PrintVersion(a.Out)
		return nil
	default:
		PrintUsage(a.Out)
		return nil
	}
}

// RunTUI starts the full-screen interface, reloading the transcript when
// the store changes on disk (for example from a second luna process).
func (a *App) RunTUI(ctx context.Context) error {
	opts := chat.Options{
		MinInputHeight: a.Config.UI.MinInputHeight,
		MaxInputHeight: a.Config.UI.MaxInputHeight,
	}

	if a.Config.Storage.Watch {
		w, err := storage.Watch(a.Store.Path(), storage.DefaultDebounce)
		if err != nil {
			slog.Warn("store watcher unavailable", "error", err)
		} else {
			defer w.Close()
			opts.StoreEvents = w.Events()
		}
	}

	return chat.Run(ctx, a.Ctrl, opts)
}

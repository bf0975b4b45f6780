package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"hellosession/internal/config"
	applog "hellosession/internal/log"
	"hellosession/internal/repos"
	"hellosession/internal/server"
)

// Build information, set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hellosession",
		Usage: "welcome pages, registration and session login",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"HELLOSESSION_CONFIG_FILE"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP server", Action: serve},
			{Name: "migrate", Usage: "apply database migrations and exit", Action: migrate},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "hellosession %s (commit: %s)\n", version, commit)
					return nil
				},
			},
		},
	}
}

// setup loads config and installs the process logger. The returned closer
// releases the log file, if any.
func setup(c *cli.Context) (config.Config, io.Writer, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("load config: %w", err)
	}

	var out io.Writer = os.Stdout
	closer := func() {}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return cfg, nil, nil, fmt.Errorf("open log file %s: %w", cfg.Log.File, err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = func() { _ = f.Close() }
	}
	l := applog.New(out, cfg.Log.Level, cfg.Log.Format)
	applog.SetLogger(l)
	slog.SetDefault(l)
	return cfg, out, closer, nil
}

func serve(c *cli.Context) error {
	cfg, out, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()
	log := applog.Logger()

	db, err := repos.OpenDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, db, out)
	log.Info("starting hellosession",
		"version", version,
		"addr", cfg.Server.Addr,
		"db_driver", cfg.DB.Driver,
		"metrics", cfg.Metrics.Enabled)
	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

func migrate(c *cli.Context) error {
	cfg, _, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := repos.Connect(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := repos.Migrate(ctx, db); err != nil {
		return err
	}
	applog.Logger().Info("migrations applied", "driver", cfg.DB.Driver)
	return nil
}

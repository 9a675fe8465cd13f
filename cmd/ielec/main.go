package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esime/ielec/archive"
	"github.com/esime/ielec/config"
	"github.com/esime/ielec/database"
	"github.com/esime/ielec/logging"
	"github.com/esime/ielec/server"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the process surroundings into the commands so tests can
// replace them.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	getenv         func(string) string
	configPath     string
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	root := newRootCmd(&env{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "ielec",
		Short: "Electrical installation calculators: lighting and conductor sizing",
		Long: `ielec sizes lighting installations (zonal cavity and total flux
methods) and branch circuit conductors, and serves the calculators
over HTTP with per-user history, clients and PDF reports.

Config resolution:
  1. --config flag
  2. IELEC_CONFIG environment variable
  3. ./ielec.yaml
  4. ~/.config/ielec/ielec.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to config file")

	root.AddCommand(
		newServeCmd(e),
		newCalcCmd(e),
		newReportCmd(e),
		newUsersCmd(e),
		newConfigCmd(e),
		newVersionCmd(e),
	)
	return root
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(e.stdout, "ielec version %s (%s)\n", Version, Commit)
			return nil
		},
	}
}

func newServeCmd(e *env) *cobra.Command {
	var (
		dev   bool
		quiet bool
		port  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig(true)
			if err != nil {
				return err
			}

			// Apply CLI overrides
			if dev {
				cfg.Server.Dev = true
			}
			if quiet {
				cfg.Logging.Quiet = true
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			// Full validation after CLI overrides applied
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			for _, warning := range config.Warnings(cfg) {
				fmt.Fprintf(e.stderr, "warning: %s\n", warning)
			}

			return serve(cmd.Context(), cfg, e.stdout, e.stderr)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (HTTP on localhost)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress request logs")
	cmd.Flags().IntVar(&port, "port", 0, "Override listen port")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closeLog, err := logging.New(cfg.Logging, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	defer logger.Sync()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := archive.New(ctx, cfg.Archive, cfg.BaseDir, logger)
	if err != nil {
		return fmt.Errorf("configuring archive: %w", err)
	}

	srv, err := server.New(cfg, server.Deps{DB: db, Archive: store, Logger: logger}, stdout)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets hidden",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig(false)
			if err != nil {
				return err
			}
			out, err := config.Redacted(cfg)
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(out)
			return err
		},
	})
	return cmd
}

// loadConfig reads the configuration file. When required is false and no
// file is found by the default search, the defaults are used; an explicit
// --config path must always exist.
func (e *env) loadConfig(required bool) (*config.Config, error) {
	cfg, _, err := config.LoadWithPath(e.configPath, e.getenv)
	if err == nil {
		return cfg, nil
	}
	if !required && e.configPath == "" && e.getenv("IELEC_CONFIG") == "" && errors.Is(err, config.ErrNoConfig) {
		return config.Defaults(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// openDB opens the configured database for the maintenance commands.
func (e *env) openDB(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := e.loadConfig(true)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

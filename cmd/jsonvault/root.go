package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonvault"
	"github.com/aretw0/jsonvault/internal/platform"
)

// defaultDB is used when neither --db nor the config file name a database.
const defaultDB = "jsonvault.json"

var (
	verbose    bool
	dbPath     string
	keyHex     string
	encrypted  bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsonvault",
	Short: "An embedded JSON document store in a single, optionally encrypted, file",
	Long: `jsonvault keeps typed JSON documents in one file on disk.
Every change rewrites the file atomically; with --encrypted the file is
sealed with AES-256-CBC.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyConfig(cmd); err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path of the database file (default \""+defaultDB+"\")")
	rootCmd.PersistentFlags().StringVar(&keyHex, "key", "", "Encryption key as 64 hex chars (or $"+platform.KeyEnv+")")
	rootCmd.PersistentFlags().BoolVar(&encrypted, "encrypted", false, "Encrypt the database file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: nearest "+platform.ConfigFileName+")")
}

// applyConfig fills the persistent settings from the config file and the
// environment. Explicit flags always win.
func applyConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()

	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		// No config file is fine.
		path, _ = platform.FindConfig(wd)
	}

	if path != "" {
		cfg, err := platform.LoadConfig(path)
		if err != nil {
			return err
		}
		if !flags.Changed("db") && cfg.DB != "" {
			dbPath = cfg.DB
		}
		if !flags.Changed("key") && cfg.Key != "" {
			keyHex = cfg.Key
		}
		if !flags.Changed("encrypted") && cfg.Encrypted {
			encrypted = true
		}
		if !flags.Changed("verbose") && cfg.Verbose {
			verbose = true
		}
	}

	if !flags.Changed("key") {
		if env := os.Getenv(platform.KeyEnv); env != "" {
			keyHex = env
		}
	}
	if dbPath == "" {
		dbPath = defaultDB
	}
	return nil
}

// openDB opens the configured database and waits for it to load.
func openDB(ctx context.Context, readOnly bool) (*jsonvault.Service, error) {
	opts := []jsonvault.Option{
		jsonvault.WithLogger(slog.Default()),
		jsonvault.WithReadOnly(readOnly),
	}
	if encrypted {
		opts = append(opts, jsonvault.WithEncryption(true), jsonvault.WithKey(keyHex))
	}

	svc, err := jsonvault.Open(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	if err := svc.WaitReady(ctx); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dbPath, err)
	}
	return svc, nil
}

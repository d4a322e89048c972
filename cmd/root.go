package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/catalog"
	"github.com/abhisek/laesemaskine/internal/config"
	"github.com/abhisek/laesemaskine/internal/store"
)

// cfg is loaded by the root command before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "laesemaskine",
	Short: "Reading trainer backend for children",
	Long: "Læsemaskine diagnoses why a word was read aloud wrongly and tracks " +
		"each student's mastery per reading level.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LAESEMASKINE_DB env var)")
	rootCmd.PersistentFlags().String("words", "", "Path to words JSON catalog (overrides LAESEMASKINE_WORDS env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/laesemaskine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(importWordsCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(difficultyCmd)
	rootCmd.AddCommand(disputeCmd)
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	c, err := config.Read(path)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		c.Database = v
	}
	if v, _ := cmd.Flags().GetString("words"); v != "" {
		c.Words = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.LogLevel = config.LogLevel(v)
	}
	if err := config.Validate(c); err != nil {
		return err
	}
	cfg = c

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
	slog.SetDefault(logger)
	slog.Debug("config loaded", "path", path, "database", cfg.Database, "words", cfg.Words)
	return nil
}

// resolveDBPath returns the configured database path (flag, env var or
// config file), falling back to the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.Database != "" {
		return cfg.Database, store.EnsureDir(cfg.Database)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadCatalog loads the configured word catalog. Without one, required
// reports an error and otherwise an empty catalog is returned, so every word
// falls back to the session's estimated level.
func loadCatalog(required bool) (*catalog.Catalog, error) {
	if cfg.Words == "" {
		if required {
			return nil, fmt.Errorf("no word catalog configured; use --words or %s", config.EnvWords)
		}
		slog.Warn("no word catalog configured; word levels fall back to the estimated level")
		return catalog.New(nil), nil
	}
	c, err := catalog.Load(cfg.Words)
	if err != nil {
		return nil, fmt.Errorf("load word catalog: %w", err)
	}
	slog.Debug("catalog loaded", "version", c.Version(), "words", c.Len())
	return c, nil
}

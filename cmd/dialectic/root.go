package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/dialectic"
	"github.com/aretw0/dialectic/internal/config"
	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "dialectic",
	Short:         "Dialectic runs mentor dialogues for narrative learning games",
	Long:          `Dialectic loads authored dialogue graphs and lets you play, validate, visualise or serve them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the dialogue content (default $DIALECTIC_CONTENT_DIR or ./content)")
	rootCmd.PersistentFlags().Bool("markdown", false, "Read content as markdown stage documents")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file merged into the environment")
	rootCmd.PersistentFlags().String("store", "", "Save backend: memory, file, redis, sqlite")
}

// loadConfig resolves the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.ContentDir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = logging.ParseLevel(lvl)
	}
	if format, _ := cmd.Flags().GetString("log-format"); format == string(logging.FormatJSON) {
		cfg.LogFormat = logging.FormatJSON
	} else if format == string(logging.FormatText) {
		cfg.LogFormat = logging.FormatText
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}

	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

// openEngine builds the engine over the configured content directory.
func openEngine(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*dialectic.Engine, error) {
	opts := []dialectic.Option{dialectic.WithLogger(logger)}
	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		opts = append(opts, dialectic.WithMarkdown())
	}
	if len(hooks) > 0 {
		opts = append(opts, dialectic.WithLifecycleHooks(hooks[0]))
	}

	eng, err := dialectic.New(cfg.ContentDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

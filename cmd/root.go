package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/config"
	"github.com/abhisek/examforge/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examforge",
	Short: "Turn lesson PDFs into multiple-choice exams",
	Long: "ExamForge extracts the text of a lesson PDF, asks an LLM for multiple-choice\n" +
		"questions, and renders a shuffled exam sheet with its correction.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EXAMFORGE_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(creditsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment (and --env-file), then applies flag
// overrides. --db wins over EXAMFORGE_DB.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return config.Config{}, fmt.Errorf("create database dir: %w", err)
	}
	return cfg, nil
}

// openStore opens the database named by --db or the configuration.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.DBPath)
}

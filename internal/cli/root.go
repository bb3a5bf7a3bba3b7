// Package cli implements the lawgraph command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/config"
)

var (
	dirFlag     string
	verboseFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lawgraph",
	Short: "Statutory cross-reference detection and impact analysis",
	Long: `lawgraph scans a corpus of Japanese statutes in e-Gov XML format,
detects cross-references between provisions (第N条, 前条, 同法, 準用
relations and more), and builds a reference graph for impact analysis
and full-text search.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "project directory holding .lawgraph/config.yml (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}

// projectDir resolves the directory configuration is loaded from.
func projectDir() (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// loadConfig loads configuration from the project directory.
func loadConfig() (*config.Config, string, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, dir, nil
}

// newLogger builds the process logger. Verbose mode enables debug records.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

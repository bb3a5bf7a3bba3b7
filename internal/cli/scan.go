package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/config"
	"github.com/s-hayashi/lawgraph/internal/ingest"
	"github.com/s-hayashi/lawgraph/internal/oracle"
	"github.com/s-hayashi/lawgraph/internal/scan"
	"github.com/s-hayashi/lawgraph/internal/search"
	"github.com/s-hayashi/lawgraph/internal/storage"
)

var (
	quietFlag bool
	watchFlag bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the law corpus and build the reference graph",
	Long: `Scan loads every law XML file under the corpus root, detects
cross-references between provisions, and stores the resulting reference
graph in the local database.

Examples:
  # Scan the corpus configured in .lawgraph/config.yml
  lawgraph scan

  # Scan without progress bars
  lawgraph scan --quiet

  # Keep watching the corpus and rescan on changes
  lawgraph scan --watch
`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	scanCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the corpus for changes and rescan")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling scan...")
		cancel()
	}()

	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	loader, err := ingest.NewLoader(
		ingest.WithPattern(cfg.Corpus.Pattern),
		ingest.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	store, err := storage.Open(resolvePath(dir, cfg.Storage.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []scan.Option{
		scan.WithWorkers(cfg.Detection.MaxWorkers),
		scan.WithReviewThreshold(cfg.Detection.ReviewThreshold),
		scan.WithProgress(NewCLIProgressReporter(quietFlag)),
		scan.WithLogger(logger),
	}

	if cfg.Search.IndexPath != "" {
		ix, err := search.Open(resolvePath(dir, cfg.Search.IndexPath))
		if err != nil {
			return err
		}
		defer ix.Close()
		opts = append(opts, scan.WithSearchIndex(ix))
	}

	if cfg.Oracle.Enabled {
		client, err := newOracleClient(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, scan.WithOracle(client, cfg.Oracle.MaxConcurrent))
		if !quietFlag {
			fmt.Printf("Oracle verification enabled (%s)\n", cfg.Oracle.Model)
		}
	}

	scanner := scan.NewScanner(loader, store, opts...)
	corpusRoot := resolvePath(dir, cfg.Corpus.Root)

	stats, err := scanner.Scan(ctx, corpusRoot)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("scan cancelled")
		}
		return fmt.Errorf("scan failed: %w", err)
	}
	if quietFlag {
		fmt.Printf("Scan complete: %d laws, %d references in %.2fs\n",
			stats.LawsScanned, stats.References, stats.Duration.Seconds())
	}

	if !watchFlag {
		return nil
	}

	watcher, err := scan.NewWatcher(scanner, corpusRoot, logger)
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	defer watcher.Stop()
	watcher.Start(ctx)

	if !quietFlag {
		fmt.Println("Watching corpus for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return nil
}

func newOracleClient(cfg *config.Config) (oracle.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	client, err := oracle.NewOpenAIClient(apiKey,
		oracle.WithModel(cfg.Oracle.Model),
		oracle.WithTimeout(cfg.Oracle.Timeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("oracle is enabled but unavailable: %w", err)
	}
	return client, nil
}

// resolvePath anchors relative config paths at the project directory.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

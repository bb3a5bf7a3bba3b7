package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/storage"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the reference database",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(resolvePath(dir, cfg.Storage.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database:    %s\n", store.Path())
	fmt.Printf("Laws:        %d\n", stats.Laws)
	fmt.Printf("References:  %d\n", stats.References)
	fmt.Printf("Review:      %d flagged\n", stats.NeedsReview)
	fmt.Printf("Failures:    %d recorded\n", stats.Failures)
	if stats.LastScan.IsZero() {
		fmt.Println("Last scan:   never")
	} else {
		fmt.Printf("Last scan:   %s\n", stats.LastScan.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

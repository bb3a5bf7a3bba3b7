package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/storage"
)

var (
	reviewLimit int
	reviewJSON  bool
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List references flagged for human review",
	Long: `Review lists detected references whose confidence fell below the review
threshold, lowest confidence first. These are kept rather than silently
dropped so a human can confirm or reject them.`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().IntVarP(&reviewLimit, "limit", "n", 50, "maximum entries (0 for all)")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "emit JSON")
}

func runReview(cmd *cobra.Command, args []string) error {
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

	items, err := store.ReviewQueue(ctx, reviewLimit)
	if err != nil {
		return err
	}

	if reviewJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("Nothing awaiting review")
		return nil
	}

	for _, it := range items {
		target := it.TargetLawID
		if it.TargetArticle != "" {
			target = fmt.Sprintf("%s 第%s条", it.TargetLawID, it.TargetArticle)
		}
		if target == "" {
			target = "(unresolved)"
		}
		fmt.Printf("%.2f  %s 第%s条 -> %s\n", it.Confidence, it.SourceLawID, it.SourceArticle, target)
		fmt.Printf("      [%s/%s] %s\n", it.Kind, it.PatternType, truncate(it.SourceText, 80))
	}
	fmt.Printf("\n%d references awaiting review\n", len(items))
	return nil
}

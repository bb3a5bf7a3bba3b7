package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/search"
)

var (
	searchLawID string
	searchLimit int
	searchJSON  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over scanned provisions",
	Long: `Search runs a full-text query against the provision index built during
scanning and prints ranked hits at paragraph granularity.

Examples:
  lawgraph search 労働時間
  lawgraph search 割増賃金 --law 322AC0000000049 --limit 5
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchLawID, "law", "", "restrict hits to one law ID")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum hits (default 15)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Search.IndexPath == "" {
		return fmt.Errorf("search.index_path is not configured; rescan with an index path set")
	}

	ix, err := search.Open(resolvePath(dir, cfg.Search.IndexPath))
	if err != nil {
		return err
	}
	defer ix.Close()

	results, err := ix.Search(ctx, query, search.Options{
		LawID: searchLawID,
		Limit: searchLimit,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Printf("No provisions match %q\n", query)
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s 第%s条第%d項 (score %.2f)\n", i+1, r.LawTitle, r.Article, r.Paragraph, r.Score)
		if len(r.Highlights) > 0 {
			for _, h := range r.Highlights {
				fmt.Printf("   %s\n", h)
			}
		} else {
			fmt.Printf("   %s\n", truncate(r.Text, 120))
		}
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

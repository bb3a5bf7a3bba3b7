package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/impact"
	"github.com/s-hayashi/lawgraph/internal/law"
	"github.com/s-hayashi/lawgraph/internal/storage"
)

var (
	impactDepth int
	impactJSON  bool
)

// impactCmd represents the impact command
var impactCmd = &cobra.Command{
	Use:   "impact <law-id> <article>",
	Short: "List provisions affected by a change to an article",
	Long: `Impact walks the reference graph backward from the given article and
reports every provision that references it, directly or transitively,
within the given depth.

The article accepts the normalized form ("32" or "32-2" for 第三十二条の二).

Examples:
  # Direct referrers of 労働基準法第32条
  lawgraph impact 322AC0000000049 32

  # Two hops, machine-readable
  lawgraph impact 322AC0000000049 32 --depth 2 --json
`,
	Args: cobra.ExactArgs(2),
	RunE: runImpact,
}

func init() {
	rootCmd.AddCommand(impactCmd)
	impactCmd.Flags().IntVarP(&impactDepth, "depth", "d", impact.DefaultDepth, "maximum hop distance (1-10)")
	impactCmd.Flags().BoolVar(&impactJSON, "json", false, "emit JSON")
}

func runImpact(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	lawID := args[0]

	article, err := parseArticleArg(args[1])
	if err != nil {
		return err
	}

	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(resolvePath(dir, cfg.Storage.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer, err := impact.NewAnalyzer(ctx, store)
	if err != nil {
		return err
	}

	results, err := analyzer.ImpactSet(ctx, lawID, article, impactDepth)
	if err != nil {
		return err
	}

	if impactJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Printf("No provisions reference %s 第%s条 within depth %d\n", lawID, article, impactDepth)
		return nil
	}

	titles, err := lawTitles(ctx, store)
	if err != nil {
		return err
	}

	fmt.Printf("Provisions affected by %s 第%s条 (depth %d):\n\n", lawID, article, impactDepth)
	for _, r := range results {
		name := r.LawID
		if t, ok := titles[r.LawID]; ok {
			name = t
		}
		fmt.Printf("  %-30s 第%s条  distance=%d paths=%d\n", name, r.Article, r.Distance, r.PathCount)
	}
	fmt.Printf("\n%d provisions\n", len(results))
	return nil
}

func parseArticleArg(arg string) (law.ArticleNumber, error) {
	var n law.ArticleNumber
	if _, err := fmt.Sscanf(arg, "%d-%d", &n.Base, &n.Branch); err == nil {
		return n, nil
	}
	if _, err := fmt.Sscanf(arg, "%d", &n.Base); err == nil && n.Base > 0 {
		return law.ArticleNumber{Base: n.Base}, nil
	}
	// Also accept the kanji form used in running text, e.g. 三十二の二.
	if parsed, err := law.ParseArticleNumber(arg); err == nil {
		return parsed, nil
	}
	return law.ArticleNumber{}, fmt.Errorf("invalid article number %q (expected e.g. 32, 32-2 or 三十二)", arg)
}

func lawTitles(ctx context.Context, store *storage.Store) (map[string]string, error) {
	laws, err := store.Laws(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(laws))
	for _, l := range laws {
		titles[l.ID] = l.Title
	}
	return titles, nil
}

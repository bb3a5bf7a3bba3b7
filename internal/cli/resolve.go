package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s-hayashi/lawgraph/internal/lawname"
	"github.com/s-hayashi/lawgraph/internal/storage"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <law-name>",
	Short: "Resolve a law display name to its document ID",
	Long: `Resolve maps a law name as written in running text (full title,
abbreviation such as 労基法, or a parenthetical-numbered form) to the
canonical document ID of a scanned law.

Examples:
  lawgraph resolve 労働基準法
  lawgraph resolve 労基法
`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	if lawname.IsSelfReference(name) {
		return fmt.Errorf("%q is a self-reference, not a law name", name)
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

	laws, err := store.Laws(ctx)
	if err != nil {
		return err
	}
	if len(laws) == 0 {
		return fmt.Errorf("no laws scanned yet; run 'lawgraph scan' first")
	}

	entries := make([]lawname.Entry, 0, len(laws))
	titles := make(map[string]string, len(laws))
	for _, l := range laws {
		entries = append(entries, lawname.Entry{ID: l.ID, Title: l.Title})
		if l.Abbreviation != "" {
			entries = append(entries, lawname.Entry{ID: l.ID, Title: l.Abbreviation})
		}
		titles[l.ID] = l.Title
	}

	resolver, err := lawname.NewResolver(entries)
	if err != nil {
		return err
	}

	id, ok := resolver.Resolve(name)
	if !ok {
		return fmt.Errorf("no scanned law matches %q", name)
	}
	fmt.Printf("%s  %s\n", id, titles[id])
	return nil
}

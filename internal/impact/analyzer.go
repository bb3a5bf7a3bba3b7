// Package impact answers change-impact queries over the persisted reference
// graph: which provisions reference a given provision, directly or
// transitively, within a bounded hop distance.
package impact

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/s-hayashi/lawgraph/internal/law"
)

// Query defaults and limits. Legal reference graphs are dense; unbounded
// traversal is out of scope by design.
const (
	DefaultDepth = 1
	MaxDepth     = 10
)

// Edge is one dependency edge: From references To. Node keys are
// "{lawID}:{articleNumber}" (law.Position.NodeKey).
type Edge struct {
	From string
	To   string
}

// EdgeSource is the read-only persistence collaborator the analyzer loads
// the corpus-wide edge set from.
type EdgeSource interface {
	LoadEdges(ctx context.Context) ([]Edge, error)
}

// Impact is one reachable node in the result set.
type Impact struct {
	LawID     string `json:"law_id"`
	Article   string `json:"article"`
	Distance  int    `json:"distance"`
	PathCount int    `json:"path_count"`
}

// Analyzer holds an in-memory snapshot of the reference graph plus a reverse
// index for O(1) incoming-edge lookups. Queries are read-only and safe to
// run in parallel; Reload takes the write lock.
type Analyzer struct {
	source EdgeSource

	mu       sync.RWMutex
	graph    graph.Graph[string, string]
	incoming map[string][]string
}

// NewAnalyzer loads the graph from the source.
func NewAnalyzer(ctx context.Context, source EdgeSource) (*Analyzer, error) {
	a := &Analyzer{source: source}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload re-reads the edge set and rebuilds the reverse index.
func (a *Analyzer) Reload(ctx context.Context) error {
	edges, err := a.source.LoadEdges(ctx)
	if err != nil {
		return fmt.Errorf("impact: loading edges: %w", err)
	}

	g := graph.New(graph.StringHash, graph.Directed())
	incoming := make(map[string][]string)
	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if e.From == e.To {
			// Self-loops from relative references that resolve to their own
			// article are permitted in the data but never influence
			// reachability.
			continue
		}
		if seen[e] {
			// References of several kinds between the same pair collapse to
			// one edge so path counts stay counts of node paths.
			continue
		}
		seen[e] = true
		_ = g.AddVertex(e.From)
		_ = g.AddVertex(e.To)
		_ = g.AddEdge(e.From, e.To)
		incoming[e.To] = append(incoming[e.To], e.From)
	}

	a.mu.Lock()
	a.graph = g
	a.incoming = incoming
	a.mu.Unlock()
	return nil
}

// ImpactSet walks backward along incoming references from the target up to
// maxDepth hops. Each reachable node is reported once at its minimum
// distance, with the count of distinct shortest paths at that distance. The
// origin is never part of its own impact set.
func (a *Analyzer) ImpactSet(ctx context.Context, lawID string, article law.ArticleNumber, maxDepth int) ([]Impact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	if maxDepth > MaxDepth {
		return nil, fmt.Errorf("impact: depth %d exceeds limit %d", maxDepth, MaxDepth)
	}

	origin := law.Position{LawID: lawID, Article: article}.NodeKey()

	a.mu.RLock()
	defer a.mu.RUnlock()

	dist := map[string]int{origin: 0}
	paths := map[string]int{origin: 1}
	frontier := []string{origin}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, node := range frontier {
			for _, in := range a.incoming[node] {
				if in == origin {
					continue // a cycle back to the origin is not impact
				}
				if d, seen := dist[in]; seen {
					if d == depth {
						paths[in] += paths[node]
					}
					continue
				}
				dist[in] = depth
				paths[in] = paths[node]
				next = append(next, in)
			}
		}
		frontier = next
	}

	results := make([]Impact, 0, len(dist)-1)
	for node, d := range dist {
		if node == origin {
			continue
		}
		id, art := splitNodeKey(node)
		results = append(results, Impact{
			LawID:     id,
			Article:   art,
			Distance:  d,
			PathCount: paths[node],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		if results[i].LawID != results[j].LawID {
			return results[i].LawID < results[j].LawID
		}
		return results[i].Article < results[j].Article
	})
	return results, nil
}

// Order returns the number of nodes currently in the graph snapshot.
func (a *Analyzer) Order() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, _ := a.graph.Order()
	return n
}

// splitNodeKey undoes law.Position.NodeKey. Law IDs never contain ':'.
func splitNodeKey(key string) (lawID, article string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

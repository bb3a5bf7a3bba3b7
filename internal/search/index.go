// Package search provides full-text search over statutory provision text.
// Each paragraph is indexed as one document so hits land at citation
// granularity.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/s-hayashi/lawgraph/internal/law"
)

// Result is a single provision hit.
type Result struct {
	LawID      string   `json:"law_id"`
	LawTitle   string   `json:"law_title"`
	Article    string   `json:"article"`
	Paragraph  int      `json:"paragraph"`
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// Options narrows a search. The zero value searches everything with the
// default limit.
type Options struct {
	LawID string // restrict hits to one law
	Limit int
}

const defaultLimit = 15

// Index is a bleve-backed provision index. Safe for concurrent use; writes
// take the write lock.
type Index struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// Open opens the index at path, creating it if absent. An empty path yields
// an in-memory index.
func Open(path string) (*Index, error) {
	m := buildMapping()
	if path == "" {
		idx, err := bleve.NewMemOnly(m)
		if err != nil {
			return nil, fmt.Errorf("search: creating memory index: %w", err)
		}
		return &Index{idx: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, m)
	}
	if err != nil {
		return nil, fmt.Errorf("search: opening index at %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

// buildMapping indexes Japanese text with the CJK analyzer and identifier
// fields as keywords.
func buildMapping() *mapping.IndexMappingImpl {
	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "cjk"
	textMapping.Store = true
	textMapping.IncludeTermVectors = true // phrase search and highlighting

	titleMapping := bleve.NewTextFieldMapping()
	titleMapping.Analyzer = "cjk"
	titleMapping.Store = true

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = true

	numMapping := bleve.NewNumericFieldMapping()
	numMapping.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("law_title", titleMapping)
	docMapping.AddFieldMappingsAt("law_id", keywordMapping)
	docMapping.AddFieldMappingsAt("article", keywordMapping)
	docMapping.AddFieldMappingsAt("paragraph", numMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = "cjk"
	return indexMapping
}

// IndexDocument (re)indexes every paragraph of a law. Prior entries for the
// same law are replaced so a rescan never leaves stale provisions behind.
func (ix *Index) IndexDocument(ctx context.Context, doc *law.Document) error {
	if err := ix.DeleteLaw(ctx, doc.ID); err != nil {
		return err
	}

	type entry struct {
		id     string
		fields map[string]any
	}
	byParagraph := map[string]*entry{}
	var order []string

	err := law.WalkSentences(doc, func(pos law.Position, sentence string) error {
		id := fmt.Sprintf("%s/art%s/para%d", pos.LawID, pos.Article.Key(), pos.Paragraph)
		e, ok := byParagraph[id]
		if !ok {
			e = &entry{id: id, fields: map[string]any{
				"law_id":    pos.LawID,
				"law_title": doc.Title,
				"article":   pos.Article.Key(),
				"paragraph": pos.Paragraph,
				"text":      "",
			}}
			byParagraph[id] = e
			order = append(order, id)
		}
		e.fields["text"] = e.fields["text"].(string) + sentence
		return nil
	})
	if err != nil {
		return fmt.Errorf("search: walking %s: %w", doc.ID, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.idx.NewBatch()
	for i, id := range order {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := batch.Index(id, byParagraph[id].fields); err != nil {
			return fmt.Errorf("search: batching %s: %w", id, err)
		}
	}
	if err := ix.idx.Batch(batch); err != nil {
		return fmt.Errorf("search: indexing %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteLaw removes every indexed provision of a law.
func (ix *Index) DeleteLaw(ctx context.Context, lawID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	term := bleve.NewTermQuery(lawID)
	term.SetField("law_id")
	req := bleve.NewSearchRequestOptions(term, 10000, 0, false)
	res, err := ix.idx.Search(req)
	if err != nil {
		return fmt.Errorf("search: finding provisions of %s: %w", lawID, err)
	}
	if len(res.Hits) == 0 {
		return nil
	}

	batch := ix.idx.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	if err := ix.idx.Batch(batch); err != nil {
		return fmt.Errorf("search: deleting provisions of %s: %w", lawID, err)
	}
	return nil
}

// Search runs a full-text query and returns ranked provision hits with
// highlighted snippets.
func (ix *Index) Search(ctx context.Context, queryStr string, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	var q query.Query = bleve.NewMatchQuery(queryStr)
	if opts.LawID != "" {
		lawQ := bleve.NewTermQuery(opts.LawID)
		lawQ.SetField("law_id")
		q = bleve.NewConjunctionQuery(q, lawQ)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"law_id", "law_title", "article", "paragraph", "text"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{"text"}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: query %q: %w", queryStr, err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{Score: hit.Score}
		r.LawID, _ = hit.Fields["law_id"].(string)
		r.LawTitle, _ = hit.Fields["law_title"].(string)
		r.Article, _ = hit.Fields["article"].(string)
		if p, ok := hit.Fields["paragraph"].(float64); ok {
			r.Paragraph = int(p)
		}
		r.Text, _ = hit.Fields["text"].(string)
		for _, snippets := range hit.Fragments {
			r.Highlights = append(r.Highlights, snippets...)
		}
		if len(r.Highlights) > 3 {
			r.Highlights = r.Highlights[:3]
		}
		results = append(results, r)
	}
	return results, nil
}

// Count returns the number of indexed provisions.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.idx.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.idx.Close()
}

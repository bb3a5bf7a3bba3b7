// Package storage persists law metadata and detected reference edges in a
// local SQLite database. Writes are batched per source law: a rescan replaces
// that law's edges atomically, so readers never observe a half-scanned law.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/s-hayashi/lawgraph/internal/detect"
	"github.com/s-hayashi/lawgraph/internal/impact"
	"github.com/s-hayashi/lawgraph/internal/law"
)

// Store wraps the SQLite handle. Safe for concurrent use; SQLite serializes
// writers internally.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version != schemaVersion {
		db.Close()
		return nil, fmt.Errorf("database schema version %s does not match expected %s (delete %s to rebuild)", version, schemaVersion, path)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// LawRecord is the stored metadata row for one law.
type LawRecord struct {
	ID           string
	Type         string
	Title        string
	TitleKana    string
	Abbreviation string
	NumberText   string
	ScannedAt    time.Time
}

// SaveLaw upserts the metadata row for a document and stamps scanned_at.
func (s *Store) SaveLaw(ctx context.Context, doc *law.Document) error {
	promulgated := ""
	if !doc.Promulgated.IsZero() {
		promulgated = doc.Promulgated.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO laws (law_id, law_type, title, title_kana, abbreviation, law_num, era, era_year, promulgated_at, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(law_id) DO UPDATE SET
			law_type       = excluded.law_type,
			title          = excluded.title,
			title_kana     = excluded.title_kana,
			abbreviation   = excluded.abbreviation,
			law_num        = excluded.law_num,
			era            = excluded.era,
			era_year       = excluded.era_year,
			promulgated_at = excluded.promulgated_at,
			scanned_at     = excluded.scanned_at
	`, doc.ID, string(doc.Type), doc.Title, doc.TitleKana, doc.Abbreviation,
		doc.NumberText, doc.Era, doc.EraYear, promulgated,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save law %s: %w", doc.ID, err)
	}
	return nil
}

// SaveBatch replaces all stored edges and failures for the result's law in a
// single transaction. The law row must already exist (SaveLaw runs first in
// the scan pipeline).
func (s *Store) SaveBatch(ctx context.Context, res *detect.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reference_edges WHERE source_law_id = ?`, res.LawID); err != nil {
		return fmt.Errorf("failed to clear edges for %s: %w", res.LawID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_failures WHERE law_id = ?`, res.LawID); err != nil {
		return fmt.Errorf("failed to clear failures for %s: %w", res.LawID, err)
	}

	insertEdge, err := tx.PrepareContext(ctx, `
		INSERT INTO reference_edges (
			reference_id,
			source_law_id, source_division, source_article, source_paragraph, source_item,
			target_law_id, target_article, target_paragraph, target_item,
			range_start, range_end,
			kind, pattern_type, relation, source_text,
			confidence, method, requires_review, oracle_verified, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer insertEdge.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range res.References {
		ref := &res.References[i]
		id := ref.ID
		if id == "" {
			id = uuid.NewString()
		}
		targetArticle := ""
		if !ref.Target.Article.IsZero() {
			targetArticle = ref.Target.Article.Key()
		}
		rangeStart, rangeEnd := "", ""
		if ref.Range != nil {
			rangeStart = ref.Range.StartKey()
			rangeEnd = ref.Range.EndKey()
		}
		_, err := insertEdge.ExecContext(ctx,
			id,
			ref.Source.LawID, ref.Source.Division, ref.Source.Article.Key(), ref.Source.Paragraph, ref.Source.Item,
			ref.TargetLawID, targetArticle, ref.Target.Paragraph, ref.Target.Item,
			rangeStart, rangeEnd,
			string(ref.Kind), string(ref.PatternType), string(ref.Relation), ref.SourceText,
			ref.Confidence, string(ref.Method), ref.RequiresReview, ref.OracleVerified, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", id, err)
		}
	}

	for _, f := range res.Failures {
		errText := ""
		if f.Err != nil {
			errText = f.Err.Error()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scan_failures (law_id, position, source_text, error, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, f.LawID, f.Position.String(), f.Text, errText, now)
		if err != nil {
			return fmt.Errorf("failed to insert failure for %s: %w", f.LawID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE store_metadata SET value = ?, updated_at = ? WHERE key = 'last_scan'
	`, now, now); err != nil {
		return fmt.Errorf("failed to stamp last_scan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch for %s: %w", res.LawID, err)
	}
	return nil
}

// LoadEdges returns the article-level dependency edges for graph analysis.
// Only dependency kinds with a resolved target participate; structural and
// contextual references are annotations, not edges.
func (s *Store) LoadEdges(ctx context.Context) ([]impact.Edge, error) {
	kinds := make([]string, 0, len(detect.DependencyKinds))
	for k := range detect.DependencyKinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	placeholders := strings.Repeat("?,", len(kinds))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(kinds))
	for i, k := range kinds {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_law_id, source_article, target_law_id, target_article
		FROM reference_edges
		WHERE kind IN (`+placeholders+`)
		  AND target_law_id != '' AND target_article != ''
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	var edges []impact.Edge
	for rows.Next() {
		var srcLaw, srcArt, tgtLaw, tgtArt string
		if err := rows.Scan(&srcLaw, &srcArt, &tgtLaw, &tgtArt); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		edges = append(edges, impact.Edge{
			From: srcLaw + ":" + srcArt,
			To:   tgtLaw + ":" + tgtArt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading edges: %w", err)
	}
	return edges, nil
}

// Laws lists all stored law metadata, ordered by title.
func (s *Store) Laws(ctx context.Context) ([]LawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT law_id, law_type, title, title_kana, abbreviation, law_num, scanned_at
		FROM laws ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list laws: %w", err)
	}
	defer rows.Close()

	var records []LawRecord
	for rows.Next() {
		var r LawRecord
		var scanned string
		if err := rows.Scan(&r.ID, &r.Type, &r.Title, &r.TitleKana, &r.Abbreviation, &r.NumberText, &scanned); err != nil {
			return nil, fmt.Errorf("failed to scan law row: %w", err)
		}
		if scanned != "" {
			r.ScannedAt, _ = time.Parse(time.RFC3339, scanned)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ReviewItem is one reference flagged for human review.
type ReviewItem struct {
	ReferenceID   string
	SourceLawID   string
	SourceArticle string
	TargetLawID   string
	TargetArticle string
	Kind          string
	PatternType   string
	SourceText    string
	Confidence    float64
}

// ReviewQueue returns flagged references ordered by ascending confidence, up
// to limit (0 means no limit).
func (s *Store) ReviewQueue(ctx context.Context, limit int) ([]ReviewItem, error) {
	q := `
		SELECT reference_id, source_law_id, source_article,
		       target_law_id, target_article,
		       kind, pattern_type, source_text, confidence
		FROM reference_edges
		WHERE requires_review = 1
		ORDER BY confidence ASC, source_law_id, source_article
	`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review queue: %w", err)
	}
	defer rows.Close()

	var items []ReviewItem
	for rows.Next() {
		var it ReviewItem
		if err := rows.Scan(&it.ReferenceID, &it.SourceLawID, &it.SourceArticle,
			&it.TargetLawID, &it.TargetArticle,
			&it.Kind, &it.PatternType, &it.SourceText, &it.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Stats summarizes the stored corpus for status output.
type Stats struct {
	Laws        int
	References  int
	NeedsReview int
	Failures    int
	LastScan    time.Time
}

// GetStats returns corpus-wide counters.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM laws`, &st.Laws},
		{`SELECT COUNT(*) FROM reference_edges`, &st.References},
		{`SELECT COUNT(*) FROM reference_edges WHERE requires_review = 1`, &st.NeedsReview},
		{`SELECT COUNT(*) FROM scan_failures`, &st.Failures},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to count: %w", err)
		}
	}

	var last string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_metadata WHERE key = 'last_scan'`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, fmt.Errorf("failed to read last_scan: %w", err)
	}
	if last != "" {
		st.LastScan, _ = time.Parse(time.RFC3339, last)
	}
	return st, nil
}

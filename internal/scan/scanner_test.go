package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-hayashi/lawgraph/internal/ingest"
	"github.com/s-hayashi/lawgraph/internal/search"
	"github.com/s-hayashi/lawgraph/internal/storage"
)

// Test Plan for the scanner:
// - A corpus scan loads every XML file, detects references and persists them
// - Cross-law references resolve because the resolver sees all titles first
// - A file that fails to load is skipped, counted and never aborts the scan
// - Rescanning is idempotent
// - The watcher triggers a rescan after a change burst

func lawXML(title, article, sentence string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Law Era="Showa" Year="22" LawType="Act" Num="1">
  <LawNum>昭和二十二年法律第一号</LawNum>
  <LawBody>
    <LawTitle>%s</LawTitle>
    <MainProvision>
      <Article Num="%s">
        <ArticleTitle>第%s条</ArticleTitle>
        <Paragraph Num="1">
          <ParagraphSentence><Sentence>%s</Sentence></ParagraphSentence>
        </Paragraph>
      </Article>
    </MainProvision>
  </LawBody>
</Law>`, title, article, article, sentence)
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestScanner(t *testing.T, opts ...Option) (*Scanner, *storage.Store) {
	t.Helper()
	loader, err := ingest.NewLoader()
	require.NoError(t, err)
	store, err := storage.Open(filepath.Join(t.TempDir(), "lawgraph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewScanner(loader, store, opts...), store
}

func TestScanPersistsCrossLawReferences(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "使用者は、労働者に、休憩時間を除き一週間について四十時間を超えて、労働させてはならない。"),
		"417AC0000000001_1.xml": lawXML("甲手当法", "3", "手当の支給については、労働基準法第三十二条の規定を適用する。"),
	})

	s, store := newTestScanner(t)
	stats, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesFound)
	assert.Equal(t, 2, stats.LawsScanned)
	assert.Zero(t, stats.FilesFailed)
	assert.Positive(t, stats.References)

	edges, err := store.LoadEdges(context.Background())
	require.NoError(t, err)

	found := false
	for _, e := range edges {
		if e.From == "417AC0000000001:3" && e.To == "322AC0000000049:32" {
			found = true
		}
	}
	assert.True(t, found, "cross-law reference resolved against the corpus titles")
}

func TestScanSkipsUnloadableFiles(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "労働時間の定めである。"),
		"broken_1.xml":          "<Law><LawBody></LawBody></Law>",
	})

	s, _ := newTestScanner(t)
	stats, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesFound)
	assert.Equal(t, 1, stats.LawsScanned)
	assert.Equal(t, 1, stats.FilesFailed)
}

func TestScanIdempotent(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "前条の規定は、適用しない。"),
	})

	s, store := newTestScanner(t)
	_, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	first, err := store.LoadEdges(context.Background())
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), root)
	require.NoError(t, err)
	second, err := store.LoadEdges(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScanIndexesProvisions(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "使用者は労働時間を管理しなければならない。"),
	})

	ix, err := search.Open("")
	require.NoError(t, err)
	defer ix.Close()

	s, _ := newTestScanner(t, WithSearchIndex(ix))
	_, err = s.Scan(context.Background(), root)
	require.NoError(t, err)

	hits, err := ix.Search(context.Background(), "労働時間", search.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "322AC0000000049", hits[0].LawID)
}

func TestScanCancellation(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "労働時間の定めである。"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newTestScanner(t)
	_, err := s.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcherTriggersRescan(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"322AC0000000049_1.xml": lawXML("労働基準法", "32", "労働時間の定めである。"),
	})

	s, store := newTestScanner(t)
	_, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	w, err := NewWatcher(s, root, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Drop a new law into the corpus and wait for the debounced rescan.
	newLaw := lawXML("甲手当法", "3", "労働基準法第三十二条の規定を適用する。")
	require.NoError(t, os.WriteFile(filepath.Join(root, "417AC0000000001_1.xml"), []byte(newLaw), 0o644))

	deadline := time.After(10 * time.Second)
	for {
		stats, err := store.GetStats(context.Background())
		require.NoError(t, err)
		if stats.Laws == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher did not trigger a rescan in time")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

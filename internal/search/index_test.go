package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-hayashi/lawgraph/internal/law"
)

func provisionDoc(id, title string, sentences map[int]string) *law.Document {
	articles := make([]law.Article, 0, len(sentences))
	for base := 1; len(articles) < len(sentences); base++ {
		s, ok := sentences[base]
		if !ok {
			continue
		}
		articles = append(articles, law.Article{
			Number:     law.ArticleNumber{Base: base},
			Paragraphs: []law.Paragraph{{Number: 1, Sentences: []string{s}}},
		})
	}
	return &law.Document{
		ID:        id,
		Type:      law.TypeAct,
		Title:     title,
		Divisions: []law.Division{{Label: "本則", Articles: articles}},
	}
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestSearchFindsProvision(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	doc := provisionDoc("L1", "労働基準法", map[int]string{
		1: "労働条件は、労働者と使用者が、対等の立場において決定すべきものである。",
		2: "この法律で労働者とは、職業の種類を問わず、事業に使用される者をいう。",
	})
	require.NoError(t, ix.IndexDocument(ctx, doc))

	results, err := ix.Search(ctx, "労働条件", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "L1", results[0].LawID)
	assert.Equal(t, "労働基準法", results[0].LawTitle)
	assert.Equal(t, "1", results[0].Article)
	assert.Equal(t, 1, results[0].Paragraph)
	assert.NotEmpty(t, results[0].Highlights)
}

func TestSearchLawFilter(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L1", "甲法", map[int]string{
		1: "使用者は、労働者に休憩時間を与えなければならない。",
	})))
	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L2", "乙法", map[int]string{
		1: "使用者は、労働者の請求に応じなければならない。",
	})))

	all, err := ix.Search(ctx, "使用者", Options{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := ix.Search(ctx, "使用者", Options{LawID: "L2"})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "L2", only[0].LawID)
}

func TestReindexReplacesLaw(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L1", "甲法", map[int]string{
		1: "旧規定の文言である。",
		2: "削除される条文である。",
	})))
	before, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), before)

	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L1", "甲法", map[int]string{
		1: "新規定の文言である。",
	})))
	after, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), after, "rescan replaces prior provisions")

	stale, err := ix.Search(ctx, "削除される条文", Options{})
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestDeleteLaw(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L1", "甲法", map[int]string{1: "条文。"})))
	require.NoError(t, ix.DeleteLaw(ctx, "L1"))
	require.NoError(t, ix.DeleteLaw(ctx, "L1"), "deleting an absent law is a no-op")

	n, err := ix.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchLimit(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexDocument(ctx, provisionDoc("L1", "甲法", map[int]string{
		1: "労働者の保護に関する規定。",
		2: "労働者の権利に関する規定。",
		3: "労働者の義務に関する規定。",
	})))

	results, err := ix.Search(ctx, "労働者", Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestOpenPersistentIndex(t *testing.T) {
	path := t.TempDir() + "/index.bleve"

	ix, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ix.IndexDocument(context.Background(), provisionDoc("L1", "甲法", map[int]string{1: "条文。"})))
	require.NoError(t, ix.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

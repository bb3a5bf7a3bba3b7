package law

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Tracker and WalkSentences:
// - Current() returns value snapshots that later updates do not mutate
// - Entering an article clears paragraph and item from the previous sibling
// - Exiting a container clears only that container's label
// - Article numbers in walk order are non-decreasing within a division
// - Unnumbered first paragraph defaults to 1
// - MaxArticles reports the last article per division, branches included

func TestTrackerSnapshotIsolation(t *testing.T) {
	tr := NewTracker("D1")
	tr.EnterArticle(ArticleNumber{Base: 5})
	tr.EnterParagraph(2)

	snap := tr.Current()
	tr.EnterParagraph(3)
	tr.EnterItem(1)

	assert.Equal(t, 2, snap.Paragraph, "snapshot must not track later updates")
	assert.Equal(t, 0, snap.Item)
	assert.Equal(t, 3, tr.Current().Paragraph)
}

func TestTrackerSiblingReset(t *testing.T) {
	tr := NewTracker("D1")
	tr.EnterChapter("第一章")
	tr.EnterArticle(ArticleNumber{Base: 1})
	tr.EnterParagraph(2)
	tr.EnterItem(3)

	tr.ExitArticle()
	tr.EnterArticle(ArticleNumber{Base: 2})

	pos := tr.Current()
	assert.Equal(t, 0, pos.Paragraph, "stale paragraph from sibling article")
	assert.Equal(t, 0, pos.Item, "stale item from sibling article")
	assert.Equal(t, "第一章", pos.Chapter, "exit must not pop ancestors")
}

func TestTrackerParagraphDefault(t *testing.T) {
	tr := NewTracker("D1")
	tr.EnterArticle(ArticleNumber{Base: 1})
	tr.EnterParagraph(0)
	assert.Equal(t, 1, tr.Current().Paragraph)
}

func TestWalkSentencesOrderAndMonotonicity(t *testing.T) {
	doc := &Document{
		ID: "D1",
		Divisions: []Division{{
			Label: "本則",
			Chapters: []Chapter{{
				Label: "第一章",
				Articles: []Article{
					{
						Number: ArticleNumber{Base: 1},
						Paragraphs: []Paragraph{
							{Number: 1, Sentences: []string{"a"}},
							{Number: 2, Sentences: []string{"b"}, Items: []Item{
								{Number: 1, Sentences: []string{"c"}},
							}},
						},
					},
					{
						Number:     ArticleNumber{Base: 2},
						Paragraphs: []Paragraph{{Number: 1, Sentences: []string{"d"}}},
					},
				},
			}},
		}},
	}

	var positions []Position
	var sentences []string
	err := WalkSentences(doc, func(pos Position, s string) error {
		positions = append(positions, pos)
		sentences = append(sentences, s)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, sentences)

	last := 0
	for _, pos := range positions {
		require.GreaterOrEqual(t, pos.Article.Base, last, "article numbers must be non-decreasing")
		last = pos.Article.Base
		assert.Equal(t, "第一章", pos.Chapter)
	}

	// Item sentence carries paragraph and item; next article carries neither.
	assert.Equal(t, 2, positions[2].Paragraph)
	assert.Equal(t, 1, positions[2].Item)
	assert.Equal(t, 1, positions[3].Paragraph)
	assert.Equal(t, 0, positions[3].Item)
}

func TestParseArticleNumber(t *testing.T) {
	n, err := ParseArticleNumber("三十二の二")
	require.NoError(t, err)
	assert.Equal(t, ArticleNumber{Base: 32, Branch: 2}, n)
	assert.Equal(t, "32-2", n.String())
	assert.Equal(t, "D:32-2", Position{LawID: "D", Article: n}.NodeKey())
}

func TestMaxArticlesPerDivision(t *testing.T) {
	doc := &Document{
		ID: "D1",
		Divisions: []Division{
			{
				Label: "本則",
				Chapters: []Chapter{{
					Label: "第一章",
					Articles: []Article{
						{Number: ArticleNumber{Base: 1}},
						{Number: ArticleNumber{Base: 32}},
						{Number: ArticleNumber{Base: 32, Branch: 2}},
					},
				}},
			},
			{
				Label:         "附則",
				Supplementary: true,
				Articles: []Article{
					{Number: ArticleNumber{Base: 1}},
					{Number: ArticleNumber{Base: 3}},
				},
			},
		},
	}

	max := MaxArticles(doc)
	assert.Equal(t, ArticleNumber{Base: 32, Branch: 2}, max["本則"])
	assert.Equal(t, ArticleNumber{Base: 3}, max["附則"], "supplementary numbering is independent")
}

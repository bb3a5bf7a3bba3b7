package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-hayashi/lawgraph/internal/law"
)

func implicitCandidate(t *testing.T, text string) Candidate {
	t.Helper()
	cands := NewMatcher(NewCatalog()).Match(text)
	require.NotEmpty(t, cands)
	require.Equal(t, CategoryImplicit, cands[0].Category)
	return cands[0]
}

func TestResolvePreviousArticle(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}}
	res, err := ResolveRelative(implicitCandidate(t, "前条"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 11}, res.Target.Article)
	assert.Equal(t, KindRelative, res.Kind)
	assert.False(t, res.MultiStep)
}

func TestResolvePreviousArticleOutOfRange(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 1}}
	_, err := ResolveRelative(implicitCandidate(t, "前条"), pos, nil, law.ArticleNumber{})
	assert.ErrorIs(t, err, ErrOutOfRange, "must be surfaced, not clamped")
}

func TestResolveNextArticleWithinBounds(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 8}}
	res, err := ResolveRelative(implicitCandidate(t, "次条"), pos, nil, law.ArticleNumber{Base: 9})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 9}, res.Target.Article)
}

func TestResolveNextArticlePastLastArticle(t *testing.T) {
	// 次条 in the division's final article has nothing to point at.
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 9}}
	_, err := ResolveRelative(implicitCandidate(t, "次条"), pos, nil, law.ArticleNumber{Base: 9})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestResolveNextArticleUnboundedWithoutLast(t *testing.T) {
	// A zero bound disables the upper check; callers without document
	// knowledge keep the old behavior.
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 9}}
	res, err := ResolveRelative(implicitCandidate(t, "次条"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 10}, res.Target.Article)
}

func TestResolvePreviousParagraph(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 3}
	res, err := ResolveRelative(implicitCandidate(t, "前項"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 12}, res.Target.Article)
	assert.Equal(t, 2, res.Target.Paragraph)
}

func TestResolvePreviousParagraphDefaultsToOne(t *testing.T) {
	// 次項 with no current paragraph: default to 1 before the arithmetic,
	// flagged as multi-step so the scorer caps it.
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 5}}
	res, err := ResolveRelative(implicitCandidate(t, "次項"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Target.Paragraph)
	assert.True(t, res.MultiStep)
}

func TestResolvePreviousNArticles(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 10}}
	res, err := ResolveRelative(implicitCandidate(t, "前三条"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	require.NotNil(t, res.Range)
	assert.Equal(t, KindRange, res.Kind)
	assert.Equal(t, law.ArticleNumber{Base: 7}, res.Range.Start)
	assert.Equal(t, law.ArticleNumber{Base: 9}, res.Range.End)
	assert.True(t, res.Range.Inclusive)
	assert.True(t, res.MultiStep)
}

func TestResolvePreviousNArticlesOutOfRange(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 2}}
	_, err := ResolveRelative(implicitCandidate(t, "前三条"), pos, nil, law.ArticleNumber{})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestResolvePreviousNParagraphs(t *testing.T) {
	// 前三項 at paragraph 5 covers paragraphs 2 through 4 of the same
	// article, mirroring the 前N条 range treatment.
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 5}
	res, err := ResolveRelative(implicitCandidate(t, "前三項"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	require.NotNil(t, res.Range)
	assert.Equal(t, KindRange, res.Kind)
	assert.Equal(t, law.ArticleNumber{Base: 12}, res.Range.Start)
	assert.Equal(t, law.ArticleNumber{Base: 12}, res.Range.End)
	assert.Equal(t, 2, res.Range.StartParagraph)
	assert.Equal(t, 4, res.Range.EndParagraph)
	assert.True(t, res.Range.Inclusive)
	assert.True(t, res.MultiStep)
}

func TestResolvePreviousEachParagraph(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 4}
	res, err := ResolveRelative(implicitCandidate(t, "前各項"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	require.NotNil(t, res.Range)
	assert.Equal(t, KindRange, res.Kind)
	assert.Equal(t, 1, res.Range.StartParagraph)
	assert.Equal(t, 3, res.Range.EndParagraph)
}

func TestResolvePreviousEachParagraphAtFirst(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 1}
	_, err := ResolveRelative(implicitCandidate(t, "前各項"), pos, nil, law.ArticleNumber{})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestResolveSameArticlePrefersAntecedent(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 40}}
	antecedent := &Reference{
		TargetLawID: "OTHER",
		Target:      law.Position{LawID: "OTHER", Article: law.ArticleNumber{Base: 7}},
	}
	res, err := ResolveRelative(implicitCandidate(t, "同条第二項"), pos, antecedent, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, "OTHER", res.Target.LawID)
	assert.Equal(t, law.ArticleNumber{Base: 7}, res.Target.Article)
	assert.Equal(t, 2, res.Target.Paragraph)
}

func TestResolveSameArticleFallsBackToPosition(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 40}}
	res, err := ResolveRelative(implicitCandidate(t, "同条第二項"), pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 40}, res.Target.Article)
	assert.Equal(t, 2, res.Target.Paragraph)
}

func TestResolveSameParagraphConsultsAntecedent(t *testing.T) {
	// 同項第二号 inside a sentence that already named a different paragraph:
	// the bare number is absent from the current position, so the resolver
	// consults the immediately preceding reference.
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 40}}
	antecedent := &Reference{
		Target: law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 3},
	}
	res, err := ResolveRelative(implicitCandidate(t, "同項第二号"), pos, antecedent, law.ArticleNumber{})
	require.NoError(t, err)
	assert.Equal(t, law.ArticleNumber{Base: 12}, res.Target.Article)
	assert.Equal(t, 3, res.Target.Paragraph)
	assert.Equal(t, 2, res.Target.Item)
}

func TestResolveDeterminism(t *testing.T) {
	pos := law.Position{LawID: "D", Article: law.ArticleNumber{Base: 12}, Paragraph: 3}
	cand := implicitCandidate(t, "前項")
	first, err := ResolveRelative(cand, pos, nil, law.ArticleNumber{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ResolveRelative(cand, pos, nil, law.ArticleNumber{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

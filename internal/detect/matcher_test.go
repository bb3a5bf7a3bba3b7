package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the catalog and matcher:
// - Structural forms: article, article with branch, paragraph, item, range
// - Law-name-qualified articles capture the display name
// - Self-referential law names are left to the implicit entries
// - Implicit forms: 前条, 前項, 前N条, 同条, 同項, 同法第N条
// - Overlap rule: earlier category wins; strict containment replaces
// - Compound forms capture left and right spans

func matchOne(t *testing.T, sentence string) Candidate {
	t.Helper()
	cands := NewMatcher(NewCatalog()).Match(sentence)
	require.Len(t, cands, 1, "sentence %q", sentence)
	return cands[0]
}

func TestMatchStructural(t *testing.T) {
	tests := []struct {
		sentence string
		pattern  string
		typ      PatternType
		groups   []string
	}{
		{"第90条の規定に違反してはならない。", "article", PatternArticle, []string{"90", "", "", ""}},
		{"第二条の三に規定する事項", "article", PatternArticle, []string{"二", "三", "", ""}},
		{"第十二条第三項の規定を適用する。", "article", PatternArticle, []string{"十二", "", "三", ""}},
		{"第五条第二項第三号に掲げる者", "article", PatternArticle, []string{"五", "", "二", "三"}},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			cand := matchOne(t, tt.sentence)
			assert.Equal(t, tt.pattern, cand.Pattern)
			assert.Equal(t, tt.typ, cand.Type)
			assert.Equal(t, CategoryStructural, cand.Category)
			assert.Equal(t, tt.groups, cand.Groups)
		})
	}
}

func TestMatchRange(t *testing.T) {
	cand := matchOne(t, "第32条から第35条まで")
	assert.Equal(t, "range_article", cand.Pattern)
	assert.Equal(t, []string{"32", "", "35", ""}, cand.Groups)
	assert.Equal(t, "第32条から第35条まで", cand.Text)
}

func TestMatchLawArticle(t *testing.T) {
	// The relation keyword 準用する also matches; find the structural one.
	cands := NewMatcher(NewCatalog()).Match("民法第五百六十六条の規定を準用する。")
	require.GreaterOrEqual(t, len(cands), 2)
	cand := cands[0]
	assert.Equal(t, "law_article", cand.Pattern)
	assert.Equal(t, "民法", cand.Groups[0])
	assert.Equal(t, "五百六十六", cand.Groups[2])

	assert.Equal(t, "apply", cands[len(cands)-1].Pattern)
}

func TestMatchLawArticleWithBrackets(t *testing.T) {
	cands := NewMatcher(NewCatalog()).Match("商法（明治三十二年法律第四十八号）第五百条の規定による。")
	require.NotEmpty(t, cands)
	cand := cands[0]
	assert.Equal(t, "law_article", cand.Pattern)
	assert.Equal(t, "商法", cand.Groups[0])
	assert.Equal(t, "（明治三十二年法律第四十八号）", cand.Groups[1])
	assert.Equal(t, "五百", cand.Groups[2])
}

func TestMatchSelfReferentialLawNameGoesImplicit(t *testing.T) {
	cands := NewMatcher(NewCatalog()).Match("同法第10条の規定を適用する。")
	require.NotEmpty(t, cands)
	assert.Equal(t, "same_law_article", cands[0].Pattern)
	assert.Equal(t, CategoryImplicit, cands[0].Category)
	assert.Equal(t, "10", cands[0].Groups[0])
}

func TestMatchImplicit(t *testing.T) {
	tests := []struct {
		sentence string
		pattern  string
	}{
		{"前条の規定にかかわらず", "prev_article"},
		{"前項の場合において", "prev_paragraph"},
		{"前三条の規定は、適用しない。", "prev_articles_n"},
		{"次条に定めるところによる。", "next_article"},
		{"同条第二項の規定", "same_article"},
		{"前各項の規定", "prev_each_paragraph"},
		{"同法の規定により無効とする。", "same_law"},
		{"この法律の施行の日", "this_law"},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			cands := NewMatcher(NewCatalog()).Match(tt.sentence)
			require.NotEmpty(t, cands)
			assert.Equal(t, tt.pattern, cands[0].Pattern)
		})
	}
}

func TestMatchOverlapContainment(t *testing.T) {
	// 同条第二項 strictly contains the bare paragraph match 第二項: the
	// containing implicit match must win even though structural runs first.
	cands := NewMatcher(NewCatalog()).Match("同条第二項に規定する場合")
	require.Len(t, cands, 1)
	assert.Equal(t, "same_article", cands[0].Pattern)
	assert.Equal(t, "二", cands[0].Groups[0])
}

func TestMatchCompoundCapturesSpans(t *testing.T) {
	sentence := "第一項の場合において、第三十条の規定を準用する。"
	cands := NewMatcher(NewCatalog()).Match(sentence)
	require.Len(t, cands, 1, "compound must swallow contained candidates")
	cand := cands[0]
	assert.Equal(t, "conditional_apply", cand.Pattern)
	assert.Equal(t, CategoryCompound, cand.Category)
	require.Len(t, cand.Groups, 2)
	assert.Contains(t, cand.Groups[1], "第三十条")
}

func TestCatalogVersionedEntries(t *testing.T) {
	for _, e := range NewCatalog().Entries() {
		assert.NotEmpty(t, e.Name)
		assert.GreaterOrEqual(t, e.Version, 1, "entry %s", e.Name)
		assert.NotNil(t, e.Matcher, "entry %s", e.Name)
	}
}

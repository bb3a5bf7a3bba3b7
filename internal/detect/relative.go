package detect

import (
	"fmt"

	"github.com/s-hayashi/lawgraph/internal/kansuji"
	"github.com/s-hayashi/lawgraph/internal/law"
)

// Resolution is the outcome of resolving an implicit candidate.
type Resolution struct {
	Target   law.Position
	Range    *RangeTarget
	Kind     Kind
	// MultiStep is true when the resolution needed more than one arithmetic
	// step (count > 1, or a missing paragraph number defaulted to 1); the
	// scorer caps such references one tier below the category default.
	MultiStep bool
}

// ResolveRelative turns an implicit-category candidate into absolute target
// coordinates using the position active at the candidate's offset.
//
// antecedent is the immediately preceding reference detected in the same
// sentence, or nil. The 同-forms (same article/paragraph/item) prefer the
// most recent explicitly mentioned structural target and fall back to the
// current position. last is the highest article number in the position's
// division; zero disables the upper bound. This is deliberately
// deterministic: same position plus same text always yields the same target.
func ResolveRelative(cand Candidate, pos law.Position, antecedent *Reference, last law.ArticleNumber) (Resolution, error) {
	switch cand.Pattern {
	case "prev_article":
		return shiftArticle(pos, -1, last)
	case "next_article":
		return shiftArticle(pos, +1, last)
	case "prev_articles_n":
		return previousArticles(cand, pos)
	case "prev_paragraph":
		return shiftParagraph(pos, -1)
	case "next_paragraph":
		return shiftParagraph(pos, +1)
	case "prev_paragraphs_n":
		return previousParagraphs(cand, pos)
	case "prev_each_paragraph":
		return previousEachParagraphs(pos)
	case "same_article":
		return sameArticle(cand, pos, antecedent)
	case "same_paragraph":
		return sameParagraph(cand, pos, antecedent)
	case "same_item":
		return sameItem(pos, antecedent)
	}
	return Resolution{}, fmt.Errorf("detect: no relative rule for pattern %q", cand.Pattern)
}

func shiftArticle(pos law.Position, delta int, last law.ArticleNumber) (Resolution, error) {
	target := pos.Article.Base + delta
	if target < 1 {
		return Resolution{}, fmt.Errorf("%w: article %d%+d", ErrOutOfRange, pos.Article.Base, delta)
	}
	if !last.IsZero() && target > last.Base {
		return Resolution{}, fmt.Errorf("%w: article %d%+d past last article %s", ErrOutOfRange, pos.Article.Base, delta, last)
	}
	return Resolution{
		Target: law.Position{LawID: pos.LawID, Article: law.ArticleNumber{Base: target}},
		Kind:   KindRelative,
	}, nil
}

func previousArticles(cand Candidate, pos law.Position) (Resolution, error) {
	n, err := kansuji.ToInteger(cand.Groups[0])
	if err != nil {
		return Resolution{}, err
	}
	start := pos.Article.Base - n
	if start < 1 {
		return Resolution{}, fmt.Errorf("%w: previous %d articles from article %d", ErrOutOfRange, n, pos.Article.Base)
	}
	return Resolution{
		Target: law.Position{LawID: pos.LawID},
		Range: &RangeTarget{
			Start:     law.ArticleNumber{Base: start},
			End:       law.ArticleNumber{Base: pos.Article.Base - 1},
			Inclusive: true,
		},
		Kind:      KindRange,
		MultiStep: n > 1,
	}, nil
}

func shiftParagraph(pos law.Position, delta int) (Resolution, error) {
	current := pos.Paragraph
	multiStep := false
	if current == 0 {
		current = 1
		multiStep = true
	}
	target := current + delta
	if target < 1 {
		return Resolution{}, fmt.Errorf("%w: paragraph %d%+d", ErrOutOfRange, current, delta)
	}
	return Resolution{
		Target: law.Position{
			LawID:     pos.LawID,
			Article:   pos.Article,
			Paragraph: target,
		},
		Kind:      KindRelative,
		MultiStep: multiStep,
	}, nil
}

func previousParagraphs(cand Candidate, pos law.Position) (Resolution, error) {
	n, err := kansuji.ToInteger(cand.Groups[0])
	if err != nil {
		return Resolution{}, err
	}
	current := pos.Paragraph
	if current == 0 {
		current = 1
	}
	if current-n < 1 {
		return Resolution{}, fmt.Errorf("%w: previous %d paragraphs from paragraph %d", ErrOutOfRange, n, current)
	}
	return Resolution{
		Target: law.Position{LawID: pos.LawID, Article: pos.Article},
		Range: &RangeTarget{
			Start:          pos.Article,
			End:            pos.Article,
			StartParagraph: current - n,
			EndParagraph:   current - 1,
			Inclusive:      true,
		},
		Kind:      KindRange,
		MultiStep: n > 1,
	}, nil
}

func previousEachParagraphs(pos law.Position) (Resolution, error) {
	current := pos.Paragraph
	if current <= 1 {
		return Resolution{}, fmt.Errorf("%w: 前各項 at paragraph %d", ErrOutOfRange, current)
	}
	return Resolution{
		Target: law.Position{LawID: pos.LawID, Article: pos.Article},
		Range: &RangeTarget{
			Start:          pos.Article,
			End:            pos.Article,
			StartParagraph: 1,
			EndParagraph:   current - 1,
			Inclusive:      true,
		},
		Kind:      KindRange,
		MultiStep: current > 2,
	}, nil
}

// sameArticle handles 同条 with optional 第N項/第N号 qualifiers.
func sameArticle(cand Candidate, pos law.Position, antecedent *Reference) (Resolution, error) {
	base := pos
	if antecedent != nil && !antecedent.Target.Article.IsZero() {
		base.LawID = targetLawID(antecedent, pos)
		base.Article = antecedent.Target.Article
	}
	target := law.Position{LawID: base.LawID, Article: base.Article}
	var err error
	if target.Paragraph, err = optionalNumber(cand.Groups, 0); err != nil {
		return Resolution{}, err
	}
	if target.Item, err = optionalNumber(cand.Groups, 1); err != nil {
		return Resolution{}, err
	}
	return Resolution{Target: target, Kind: KindRelative}, nil
}

// sameParagraph handles 同項 with an optional 第N号 qualifier. When the bare
// paragraph number is absent from the current position the resolver consults
// the immediately preceding reference in the sentence.
func sameParagraph(cand Candidate, pos law.Position, antecedent *Reference) (Resolution, error) {
	target := law.Position{LawID: pos.LawID, Article: pos.Article, Paragraph: pos.Paragraph}
	multi := false
	if antecedent != nil && antecedent.Target.Paragraph > 0 {
		target.LawID = targetLawID(antecedent, pos)
		target.Article = antecedent.Target.Article
		target.Paragraph = antecedent.Target.Paragraph
	} else if target.Paragraph == 0 {
		target.Paragraph = 1
		multi = true
	}
	var err error
	if target.Item, err = optionalNumber(cand.Groups, 0); err != nil {
		return Resolution{}, err
	}
	return Resolution{Target: target, Kind: KindRelative, MultiStep: multi}, nil
}

func sameItem(pos law.Position, antecedent *Reference) (Resolution, error) {
	target := law.Position{LawID: pos.LawID, Article: pos.Article, Paragraph: pos.Paragraph, Item: pos.Item}
	if antecedent != nil && antecedent.Target.Item > 0 {
		target = antecedent.Target
		target.LawID = targetLawID(antecedent, pos)
	}
	if target.Item == 0 {
		return Resolution{}, fmt.Errorf("%w: 同号 with no item in scope", ErrOutOfRange)
	}
	return Resolution{Target: target, Kind: KindRelative}, nil
}

// targetLawID keeps 同-forms inside the antecedent's document when that
// antecedent pointed at another law.
func targetLawID(antecedent *Reference, pos law.Position) string {
	if antecedent.TargetLawID != "" {
		return antecedent.TargetLawID
	}
	return pos.LawID
}

func optionalNumber(groups []string, idx int) (int, error) {
	if idx >= len(groups) || groups[idx] == "" {
		return 0, nil
	}
	return kansuji.ToInteger(groups[idx])
}

package law

// SentenceFunc receives each sentence of a document in reading order along
// with a position snapshot taken at the sentence. Returning an error aborts
// the walk.
type SentenceFunc func(pos Position, sentence string) error

// WalkSentences traverses the document depth-first, driving a Tracker and
// calling fn for every sentence in the main body and each supplementary
// division.
func WalkSentences(doc *Document, fn SentenceFunc) error {
	t := NewTracker(doc.ID)
	for _, div := range doc.Divisions {
		t.EnterDivision(div.Label)
		for _, part := range div.Parts {
			t.EnterPart(part.Label)
			for i := range part.Chapters {
				if err := walkChapter(t, &part.Chapters[i], fn); err != nil {
					return err
				}
			}
			t.ExitPart()
		}
		for i := range div.Chapters {
			if err := walkChapter(t, &div.Chapters[i], fn); err != nil {
				return err
			}
		}
		for i := range div.Articles {
			if err := walkArticle(t, &div.Articles[i], fn); err != nil {
				return err
			}
		}
		t.ExitDivision()
	}
	return nil
}

// MaxArticles returns the highest article number per division label. Each
// supplementary division numbers its articles independently of the main
// body, so the bound must be looked up by the position's division.
func MaxArticles(doc *Document) map[string]ArticleNumber {
	max := make(map[string]ArticleNumber, len(doc.Divisions))
	for _, div := range doc.Divisions {
		top := max[div.Label]
		for _, part := range div.Parts {
			for i := range part.Chapters {
				top = laterArticle(top, chapterMax(&part.Chapters[i]))
			}
		}
		for i := range div.Chapters {
			top = laterArticle(top, chapterMax(&div.Chapters[i]))
		}
		for i := range div.Articles {
			top = laterArticle(top, div.Articles[i].Number)
		}
		max[div.Label] = top
	}
	return max
}

func chapterMax(ch *Chapter) ArticleNumber {
	var top ArticleNumber
	for i := range ch.Sections {
		sec := &ch.Sections[i]
		for j := range sec.Subsections {
			for k := range sec.Subsections[j].Articles {
				top = laterArticle(top, sec.Subsections[j].Articles[k].Number)
			}
		}
		for j := range sec.Articles {
			top = laterArticle(top, sec.Articles[j].Number)
		}
	}
	for i := range ch.Articles {
		top = laterArticle(top, ch.Articles[i].Number)
	}
	return top
}

func laterArticle(a, b ArticleNumber) ArticleNumber {
	if b.Base > a.Base || (b.Base == a.Base && b.Branch > a.Branch) {
		return b
	}
	return a
}

func walkChapter(t *Tracker, ch *Chapter, fn SentenceFunc) error {
	t.EnterChapter(ch.Label)
	defer t.ExitChapter()
	for i := range ch.Sections {
		sec := &ch.Sections[i]
		t.EnterSection(sec.Label)
		for j := range sec.Subsections {
			sub := &sec.Subsections[j]
			t.EnterSubsection(sub.Label)
			for k := range sub.Articles {
				if err := walkArticle(t, &sub.Articles[k], fn); err != nil {
					return err
				}
			}
			t.ExitSubsection()
		}
		for j := range sec.Articles {
			if err := walkArticle(t, &sec.Articles[j], fn); err != nil {
				return err
			}
		}
		t.ExitSection()
	}
	for i := range ch.Articles {
		if err := walkArticle(t, &ch.Articles[i], fn); err != nil {
			return err
		}
	}
	return nil
}

func walkArticle(t *Tracker, art *Article, fn SentenceFunc) error {
	t.EnterArticle(art.Number)
	defer t.ExitArticle()
	for i := range art.Paragraphs {
		para := &art.Paragraphs[i]
		t.EnterParagraph(para.Number)
		for _, s := range para.Sentences {
			if err := fn(t.Current(), s); err != nil {
				return err
			}
		}
		for j := range para.Items {
			item := &para.Items[j]
			t.EnterItem(item.Number)
			for _, s := range item.Sentences {
				if err := fn(t.Current(), s); err != nil {
					return err
				}
			}
			t.ExitItem()
		}
		t.ExitParagraph()
	}
	return nil
}

package law

import "strings"

// Position is a snapshot of the scan location inside a document. Labels
// above the article are optional and inherited from the nearest enclosing
// container. Paragraph and Item are 0 when unset.
type Position struct {
	LawID      string
	Division   string
	Part       string
	Chapter    string
	Section    string
	Subsection string
	Article    ArticleNumber
	Paragraph  int
	Item       int
}

// NodeKey identifies the article-level graph node for this position.
func (p Position) NodeKey() string {
	return p.LawID + ":" + p.Article.Key()
}

func (p Position) String() string {
	var b strings.Builder
	b.WriteString(p.LawID)
	if p.Division != "" {
		b.WriteString("/" + p.Division)
	}
	if !p.Article.IsZero() {
		b.WriteString("/art" + p.Article.String())
	}
	if p.Paragraph > 0 {
		b.WriteString("/para")
		b.WriteString(itoa(p.Paragraph))
	}
	if p.Item > 0 {
		b.WriteString("/item")
		b.WriteString(itoa(p.Item))
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Tracker maintains the current Position while a document is walked
// depth-first. Entering an article resets paragraph and item; exiting a
// container clears only that container's label, never its ancestors.
// Current() returns a value copy, so snapshots taken earlier in a scan are
// never retroactively mutated.
type Tracker struct {
	pos Position
}

// NewTracker starts a tracker at the top of the given document.
func NewTracker(lawID string) *Tracker {
	return &Tracker{pos: Position{LawID: lawID}}
}

// Current returns a snapshot of the present position.
func (t *Tracker) Current() Position { return t.pos }

func (t *Tracker) EnterDivision(label string) { t.pos.Division = label }
func (t *Tracker) ExitDivision()              { t.pos.Division = "" }

func (t *Tracker) EnterPart(label string) { t.pos.Part = label }
func (t *Tracker) ExitPart()              { t.pos.Part = "" }

func (t *Tracker) EnterChapter(label string) { t.pos.Chapter = label }
func (t *Tracker) ExitChapter()              { t.pos.Chapter = "" }

func (t *Tracker) EnterSection(label string) { t.pos.Section = label }
func (t *Tracker) ExitSection()              { t.pos.Section = "" }

func (t *Tracker) EnterSubsection(label string) { t.pos.Subsection = label }
func (t *Tracker) ExitSubsection()              { t.pos.Subsection = "" }

// EnterArticle sets the article number and unsets paragraph and item so a
// stale child label from a sibling article can never leak into snapshots.
func (t *Tracker) EnterArticle(n ArticleNumber) {
	t.pos.Article = n
	t.pos.Paragraph = 0
	t.pos.Item = 0
}

func (t *Tracker) ExitArticle() {
	t.pos.Article = ArticleNumber{}
	t.pos.Paragraph = 0
	t.pos.Item = 0
}

// EnterParagraph sets the paragraph number, defaulting an unnumbered first
// paragraph to 1, and unsets the item.
func (t *Tracker) EnterParagraph(n int) {
	if n <= 0 {
		n = 1
	}
	t.pos.Paragraph = n
	t.pos.Item = 0
}

func (t *Tracker) ExitParagraph() {
	t.pos.Paragraph = 0
	t.pos.Item = 0
}

func (t *Tracker) EnterItem(n int) { t.pos.Item = n }
func (t *Tracker) ExitItem()       { t.pos.Item = 0 }

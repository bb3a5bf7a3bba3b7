// Package law defines the statutory document tree consumed from the
// ingestion collaborator and the structural position types shared by every
// detection component.
package law

import (
	"fmt"
	"time"

	"github.com/s-hayashi/lawgraph/internal/kansuji"
)

// Type classifies a law (e-Gov LawType attribute).
type Type string

const (
	TypeAct               Type = "Act"
	TypeCabinetOrder      Type = "CabinetOrder"
	TypeOrdinance         Type = "Ordinance"
	TypeImperialOrdinance Type = "ImperialOrdinance"
	TypeRule              Type = "Rule"
	TypeOther             Type = "Other"
)

// ArticleNumber is a normalized article number. Branch is non-zero for
// inserted articles written 第N条のM.
type ArticleNumber struct {
	Base   int
	Branch int
}

// ParseArticleNumber normalizes a numeral token such as 九十 or 二の三.
func ParseArticleNumber(text string) (ArticleNumber, error) {
	base, branch, err := kansuji.ParseBranch(text)
	if err != nil {
		return ArticleNumber{}, err
	}
	return ArticleNumber{Base: base, Branch: branch}, nil
}

// IsZero reports whether the number is unset.
func (a ArticleNumber) IsZero() bool { return a.Base == 0 }

func (a ArticleNumber) String() string {
	if a.Branch > 0 {
		return fmt.Sprintf("%d-%d", a.Base, a.Branch)
	}
	return fmt.Sprintf("%d", a.Base)
}

// Key renders the number for use in graph node and storage keys.
func (a ArticleNumber) Key() string { return a.String() }

// Document is one law as delivered by the ingestion collaborator. Container
// nesting is guaranteed well-formed by construction; the ingestion layer
// rejects sources it cannot shape into this tree.
type Document struct {
	ID           string
	Type         Type
	Title        string
	TitleKana    string
	Abbreviation string
	NumberText   string // 法令番号, e.g. 昭和二十二年法律第六十七号
	Era          string
	EraYear      int
	Promulgated  time.Time

	Divisions []Division
}

// Division is either the main body (本則) or one supplementary-provision set
// (附則), which carries its own article numbering space.
type Division struct {
	Label         string
	Supplementary bool
	AmendLawNum   string // set for amendment supplementary provisions

	Parts    []Part
	Chapters []Chapter
	Articles []Article
}

// Part (編) groups chapters in large codes such as the Civil Code.
type Part struct {
	Label    string
	Chapters []Chapter
}

// Chapter (章).
type Chapter struct {
	Label    string
	Sections []Section
	Articles []Article
}

// Section (節).
type Section struct {
	Label       string
	Subsections []Subsection
	Articles    []Article
}

// Subsection (款).
type Subsection struct {
	Label    string
	Articles []Article
}

// Article (条).
type Article struct {
	Number     ArticleNumber
	Title      string // 第N条
	Caption    string // （見出し）
	Paragraphs []Paragraph
}

// Paragraph (項). Number defaults to 1 when the first paragraph of an
// article carries no explicit numeral.
type Paragraph struct {
	Number    int
	Sentences []string
	Items     []Item
}

// Item (号).
type Item struct {
	Number    int
	Title     string
	Sentences []string
}

// Package ingest loads e-Gov standard law XML files into the document tree.
// Malformed structure is fatal for the file it occurs in and never aborts a
// corpus load; the caller decides how to surface per-file failures.
package ingest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/s-hayashi/lawgraph/internal/law"
)

// ErrMalformedSource marks an XML file whose structure cannot be shaped into
// a well-formed document tree.
var ErrMalformedSource = errors.New("ingest: malformed law source")

// DefaultPattern selects e-Gov law XML files under a corpus root.
const DefaultPattern = "**.xml"

// Loader reads law XML files from a corpus directory.
type Loader struct {
	pattern glob.Glob
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPattern overrides the file selection glob ('**' crosses separators).
func WithPattern(pattern string) Option {
	return func(l *Loader) error {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("ingest: invalid pattern %q: %w", pattern, err)
		}
		l.pattern = g
		return nil
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger != nil {
			l.logger = logger
		}
		return nil
	}
}

// NewLoader creates a loader selecting files by DefaultPattern.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{
		pattern: glob.MustCompile(DefaultPattern, '/'),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Files walks root and returns the matching law source files, sorted by
// filepath.WalkDir order. Paths are matched relative to root with forward
// slashes.
func (l *Loader) Files(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if l.pattern.Match(filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: walking %s: %w", root, err)
	}
	return files, nil
}

// LoadFile parses one law XML file. The law ID is the filename stem up to the
// first underscore, matching e-Gov's "{lawID}_{revision}.xml" naming.
func (l *Loader) LoadFile(path string) (*law.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading %s: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	lawID, _, _ := strings.Cut(stem, "_")
	doc, err := Parse(data, lawID)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes e-Gov law XML into a document tree.
func Parse(data []byte, lawID string) (*law.Document, error) {
	var raw xmlLaw
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	if raw.LawBody.LawTitle.Text == "" {
		return nil, fmt.Errorf("%w: missing LawTitle", ErrMalformedSource)
	}

	doc := &law.Document{
		ID:           lawID,
		Type:         lawType(raw.LawType),
		Title:        strings.TrimSpace(raw.LawBody.LawTitle.Text),
		TitleKana:    raw.LawBody.LawTitle.Kana,
		Abbreviation: raw.LawBody.LawTitle.Abbrev,
		NumberText:   strings.TrimSpace(raw.LawNum),
		Era:          raw.Era,
		EraYear:      raw.Year,
		Promulgated:  gregorianDate(raw.Era, raw.Year, raw.PromulgateMonth, raw.PromulgateDay),
	}

	if raw.LawBody.MainProvision != nil {
		div, err := convertProvision("本則", raw.LawBody.MainProvision)
		if err != nil {
			return nil, err
		}
		doc.Divisions = append(doc.Divisions, div)
	}
	for i := range raw.LawBody.SupplProvisions {
		sp := &raw.LawBody.SupplProvisions[i]
		div, err := convertProvision("附則", &sp.xmlProvision)
		if err != nil {
			return nil, err
		}
		div.Supplementary = true
		div.AmendLawNum = sp.AmendLawNum
		doc.Divisions = append(doc.Divisions, div)
	}
	if len(doc.Divisions) == 0 {
		return nil, fmt.Errorf("%w: no provisions", ErrMalformedSource)
	}
	return doc, nil
}

// e-Gov wire format. Only the elements the detector consumes are mapped;
// unknown elements are ignored by encoding/xml.

type xmlLaw struct {
	XMLName         xml.Name   `xml:"Law"`
	Era             string     `xml:"Era,attr"`
	Year            int        `xml:"Year,attr"`
	LawType         string     `xml:"LawType,attr"`
	PromulgateMonth int        `xml:"PromulgateMonth,attr"`
	PromulgateDay   int        `xml:"PromulgateDay,attr"`
	LawNum          string     `xml:"LawNum"`
	LawBody         xmlLawBody `xml:"LawBody"`
}

type xmlLawBody struct {
	LawTitle        xmlLawTitle         `xml:"LawTitle"`
	MainProvision   *xmlProvision       `xml:"MainProvision"`
	SupplProvisions []xmlSupplProvision `xml:"SupplProvision"`
}

type xmlLawTitle struct {
	Kana   string `xml:"Kana,attr"`
	Abbrev string `xml:"Abbrev,attr"`
	Text   string `xml:",chardata"`
}

type xmlProvision struct {
	Parts      []xmlPart      `xml:"Part"`
	Chapters   []xmlChapter   `xml:"Chapter"`
	Articles   []xmlArticle   `xml:"Article"`
	Paragraphs []xmlParagraph `xml:"Paragraph"`
}

type xmlSupplProvision struct {
	AmendLawNum string `xml:"AmendLawNum,attr"`
	xmlProvision
}

type xmlPart struct {
	Title    string       `xml:"PartTitle"`
	Chapters []xmlChapter `xml:"Chapter"`
}

type xmlChapter struct {
	Title    string       `xml:"ChapterTitle"`
	Sections []xmlSection `xml:"Section"`
	Articles []xmlArticle `xml:"Article"`
}

type xmlSection struct {
	Title       string          `xml:"SectionTitle"`
	Subsections []xmlSubsection `xml:"Subsection"`
	Articles    []xmlArticle    `xml:"Article"`
}

type xmlSubsection struct {
	Title    string       `xml:"SubsectionTitle"`
	Articles []xmlArticle `xml:"Article"`
}

type xmlArticle struct {
	Num        string         `xml:"Num,attr"`
	Title      string         `xml:"ArticleTitle"`
	Caption    string         `xml:"ArticleCaption"`
	Paragraphs []xmlParagraph `xml:"Paragraph"`
}

type xmlParagraph struct {
	Num      string       `xml:"Num,attr"`
	Sentence xmlSentences `xml:"ParagraphSentence"`
	Items    []xmlItem    `xml:"Item"`
}

type xmlItem struct {
	Num      string       `xml:"Num,attr"`
	Title    string       `xml:"ItemTitle"`
	Sentence xmlSentences `xml:"ItemSentence"`
}

type xmlSentences struct {
	Sentences []string `xml:"Sentence"`
}

func convertProvision(label string, p *xmlProvision) (law.Division, error) {
	div := law.Division{Label: label}

	for i := range p.Parts {
		part := law.Part{Label: p.Parts[i].Title}
		for j := range p.Parts[i].Chapters {
			ch, err := convertChapter(&p.Parts[i].Chapters[j])
			if err != nil {
				return law.Division{}, err
			}
			part.Chapters = append(part.Chapters, ch)
		}
		div.Parts = append(div.Parts, part)
	}
	for i := range p.Chapters {
		ch, err := convertChapter(&p.Chapters[i])
		if err != nil {
			return law.Division{}, err
		}
		div.Chapters = append(div.Chapters, ch)
	}
	for i := range p.Articles {
		a, err := convertArticle(&p.Articles[i])
		if err != nil {
			return law.Division{}, err
		}
		div.Articles = append(div.Articles, a)
	}

	// A provision carrying bare paragraphs with no articles (common in short
	// supplementary provisions) is shaped as a single unnumbered article 1.
	if len(p.Paragraphs) > 0 && len(p.Articles) == 0 && len(p.Chapters) == 0 && len(p.Parts) == 0 {
		a := law.Article{Number: law.ArticleNumber{Base: 1}}
		for i := range p.Paragraphs {
			para, err := convertParagraph(&p.Paragraphs[i])
			if err != nil {
				return law.Division{}, err
			}
			a.Paragraphs = append(a.Paragraphs, para)
		}
		div.Articles = append(div.Articles, a)
	}

	return div, nil
}

func convertChapter(c *xmlChapter) (law.Chapter, error) {
	ch := law.Chapter{Label: c.Title}
	for i := range c.Sections {
		sec := law.Section{Label: c.Sections[i].Title}
		for j := range c.Sections[i].Subsections {
			sub := law.Subsection{Label: c.Sections[i].Subsections[j].Title}
			for k := range c.Sections[i].Subsections[j].Articles {
				a, err := convertArticle(&c.Sections[i].Subsections[j].Articles[k])
				if err != nil {
					return law.Chapter{}, err
				}
				sub.Articles = append(sub.Articles, a)
			}
			sec.Subsections = append(sec.Subsections, sub)
		}
		for j := range c.Sections[i].Articles {
			a, err := convertArticle(&c.Sections[i].Articles[j])
			if err != nil {
				return law.Chapter{}, err
			}
			sec.Articles = append(sec.Articles, a)
		}
		ch.Sections = append(ch.Sections, sec)
	}
	for i := range c.Articles {
		a, err := convertArticle(&c.Articles[i])
		if err != nil {
			return law.Chapter{}, err
		}
		ch.Articles = append(ch.Articles, a)
	}
	return ch, nil
}

func convertArticle(x *xmlArticle) (law.Article, error) {
	num, err := parseArticleNum(x.Num)
	if err != nil {
		return law.Article{}, err
	}
	a := law.Article{
		Number:  num,
		Title:   strings.TrimSpace(x.Title),
		Caption: strings.TrimSpace(x.Caption),
	}
	for i := range x.Paragraphs {
		p, err := convertParagraph(&x.Paragraphs[i])
		if err != nil {
			return law.Article{}, err
		}
		a.Paragraphs = append(a.Paragraphs, p)
	}
	return a, nil
}

func convertParagraph(x *xmlParagraph) (law.Paragraph, error) {
	num, err := parseOrdinal(x.Num, 1)
	if err != nil {
		return law.Paragraph{}, fmt.Errorf("%w: paragraph Num %q", ErrMalformedSource, x.Num)
	}
	p := law.Paragraph{
		Number:    num,
		Sentences: trimSentences(x.Sentence.Sentences),
	}
	for i := range x.Items {
		itemNum, err := parseOrdinal(x.Items[i].Num, i+1)
		if err != nil {
			return law.Paragraph{}, fmt.Errorf("%w: item Num %q", ErrMalformedSource, x.Items[i].Num)
		}
		p.Items = append(p.Items, law.Item{
			Number:    itemNum,
			Title:     strings.TrimSpace(x.Items[i].Title),
			Sentences: trimSentences(x.Items[i].Sentence.Sentences),
		})
	}
	return p, nil
}

// parseArticleNum handles e-Gov's Num attribute: "32" for 第三十二条 and
// "32_2" for 第三十二条の二.
func parseArticleNum(num string) (law.ArticleNumber, error) {
	basePart, branchPart, hasBranch := strings.Cut(num, "_")
	base, err := strconv.Atoi(basePart)
	if err != nil || base < 1 {
		return law.ArticleNumber{}, fmt.Errorf("%w: article Num %q", ErrMalformedSource, num)
	}
	n := law.ArticleNumber{Base: base}
	if hasBranch {
		branch, err := strconv.Atoi(branchPart)
		if err != nil || branch < 1 {
			return law.ArticleNumber{}, fmt.Errorf("%w: article Num %q", ErrMalformedSource, num)
		}
		n.Branch = branch
	}
	return n, nil
}

// parseOrdinal parses a Num attribute, defaulting when absent.
func parseOrdinal(num string, fallback int) (int, error) {
	if num == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive ordinal")
	}
	return n, nil
}

func trimSentences(sentences []string) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lawType(attr string) law.Type {
	switch attr {
	case "Act":
		return law.TypeAct
	case "CabinetOrder":
		return law.TypeCabinetOrder
	case "Ordinance":
		return law.TypeOrdinance
	case "ImperialOrdinance":
		return law.TypeImperialOrdinance
	case "Rule":
		return law.TypeRule
	}
	return law.TypeOther
}

// eraStart maps era names to the Gregorian year of that era's year 1.
var eraStart = map[string]int{
	"Meiji":  1868,
	"Taisho": 1912,
	"Showa":  1926,
	"Heisei": 1989,
	"Reiwa":  2019,
}

// gregorianDate converts an era date. Unknown eras and unset years yield the
// zero time rather than an error; promulgation dates are metadata only.
func gregorianDate(era string, year, month, day int) time.Time {
	start, ok := eraStart[era]
	if !ok || year < 1 {
		return time.Time{}
	}
	if month < 1 || month > 12 {
		month = 1
	}
	if day < 1 || day > 31 {
		day = 1
	}
	return time.Date(start+year-1, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

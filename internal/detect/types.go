// Package detect implements the reference detection pipeline: the pattern
// catalog and matcher, relative reference resolution, confidence scoring,
// the optional oracle phase, and final aggregation into deduplicated
// reference records.
package detect

import (
	"errors"
	"fmt"

	"github.com/s-hayashi/lawgraph/internal/law"
)

// Category orders pattern application. Earlier categories win span overlaps
// unless a later match strictly contains the earlier one.
type Category int

const (
	CategoryStructural Category = iota
	CategoryRelation
	CategoryImplicit
	CategoryCompound
)

func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategoryRelation:
		return "basic-relation"
	case CategoryImplicit:
		return "implicit"
	case CategoryCompound:
		return "compound"
	}
	return "unknown"
}

// PatternType enumerates the surface forms the catalog recognizes.
type PatternType string

const (
	PatternArticle    PatternType = "ARTICLE"
	PatternLawArticle PatternType = "LAW_ARTICLE"
	PatternRange      PatternType = "RANGE"
	PatternParagraph  PatternType = "PARAGRAPH"
	PatternItem       PatternType = "ITEM"

	PatternApply      PatternType = "APPLY"
	PatternDeem       PatternType = "DEEM"
	PatternReplace    PatternType = "REPLACE"
	PatternExcept     PatternType = "EXCEPT"
	PatternFollow     PatternType = "FOLLOW"
	PatternLimit      PatternType = "LIMIT"
	PatternRegardless PatternType = "REGARDLESS"
	PatternStipulate  PatternType = "STIPULATE"
	PatternRelate     PatternType = "RELATE"

	PatternPrevious     PatternType = "PREVIOUS"
	PatternPreviousN    PatternType = "PREVIOUS_N"
	PatternPreviousEach PatternType = "PREVIOUS_EACH"
	PatternNext         PatternType = "NEXT"
	PatternSame         PatternType = "SAME"
	PatternSameLaw      PatternType = "SAME_LAW"
	PatternThisLaw      PatternType = "THIS_LAW"

	PatternConditionalApply PatternType = "CONDITIONAL_APPLY"
	PatternExceptedApply    PatternType = "EXCEPTED_APPLY"
	PatternReplacedApply    PatternType = "REPLACED_APPLY"
)

// Kind is the closed set of reference kinds. Kind-specific required fields
// are enforced by the pipeline, not checked ad hoc at read time.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindExternal    Kind = "external"
	KindRelative    Kind = "relative"
	KindRange       Kind = "range"
	KindStructural  Kind = "structural"
	KindApplication Kind = "application"
	KindContextual  Kind = "contextual"
)

// DependencyKinds are the kinds that denote a genuine dependency and belong
// in the reference graph.
var DependencyKinds = map[Kind]bool{
	KindInternal:    true,
	KindExternal:    true,
	KindRelative:    true,
	KindApplication: true,
}

// Method records how a reference was detected. Rank orders dedup preference.
type Method string

const (
	MethodPattern  Method = "pattern"
	MethodRelative Method = "relative"
	MethodOracle   Method = "oracle"
)

// Rank returns the dedup precedence of the method (higher wins).
func (m Method) Rank() int {
	switch m {
	case MethodOracle:
		return 3
	case MethodRelative:
		return 2
	case MethodPattern:
		return 1
	}
	return 0
}

// Candidate is the raw output of one pattern match. Candidates live only for
// the duration of a document scan and are never persisted.
type Candidate struct {
	Pattern  string
	Type     PatternType
	Category Category
	Start    int // byte offset within the sentence
	End      int
	Text     string
	Groups   []string // captured sub-groups, "" for non-participating
}

func (c Candidate) overlaps(other Candidate) bool {
	return c.Start < other.End && other.Start < c.End
}

func (c Candidate) contains(other Candidate) bool {
	return c.Start <= other.Start && other.End <= c.End &&
		(c.End-c.Start) > (other.End-other.Start)
}

// RangeTarget is an inclusive interval of article numbers, or of paragraph
// numbers within a single article when StartParagraph is set.
type RangeTarget struct {
	Start          law.ArticleNumber
	End            law.ArticleNumber
	StartParagraph int
	EndParagraph   int
	Inclusive      bool
}

// StartKey renders the range start for keys and storage; paragraph-level
// endpoints carry the paragraph after the article.
func (r RangeTarget) StartKey() string {
	if r.StartParagraph > 0 {
		return fmt.Sprintf("%s:%d", r.Start, r.StartParagraph)
	}
	return r.Start.Key()
}

// EndKey renders the range end, mirroring StartKey.
func (r RangeTarget) EndKey() string {
	if r.StartParagraph > 0 {
		return fmt.Sprintf("%s:%d", r.End, r.EndParagraph)
	}
	return r.End.Key()
}

func (r RangeTarget) String() string {
	return fmt.Sprintf("[%s..%s]", r.StartKey(), r.EndKey())
}

// Reference is the final typed detection record. After the aggregator hands
// a batch to the persistence collaborator the record is never mutated again.
type Reference struct {
	ID          string
	SourceLawID string
	Source      law.Position

	TargetLawID string       // empty until resolved; required for external
	Target      law.Position // partial; article required for internal/relative/resolved range
	Range       *RangeTarget // set for range kind

	Kind        Kind
	PatternType PatternType
	Relation    PatternType // basic-relation attached to this reference, if any
	SourceText  string

	Confidence     float64
	Method         Method
	RequiresReview bool
	OracleVerified bool

	// sentence is the enclosing sentence, kept only as the oracle context
	// window; it is not part of the persisted record.
	sentence string
}

// dedupKey identifies a reference for aggregation.
func (r *Reference) dedupKey() string {
	target := r.Target.String()
	if r.Range != nil {
		target = r.Range.String()
	}
	return r.Source.String() + "|" + r.TargetLawID + "|" + target + "|" + string(r.Kind)
}

// Failure is the structured per-document failure record emitted when a scan
// aborts or a candidate is discarded.
type Failure struct {
	LawID    string
	Position law.Position
	Text     string
	Err      error
}

// ErrOutOfRange marks a relative reference that resolves before article 1 or
// past the last known article. It is surfaced on the reference, not thrown.
var ErrOutOfRange = errors.New("detect: relative reference out of range")

// ErrMalformedDocument is the only fatal-to-the-document class: container
// nesting from the ingestion collaborator was not well-formed.
var ErrMalformedDocument = errors.New("detect: malformed document structure")

package detect

import "regexp"

// Entry is one declarative catalog row. The catalog is data, not code: the
// matcher walks the table in category order and knows nothing about any
// individual surface form.
type Entry struct {
	Name     string
	Version  int
	Category Category
	Type     PatternType
	Matcher  *regexp.Regexp
}

// Catalog is an immutable pattern table, built once at startup and shared
// read-only across document workers.
type Catalog struct {
	entries []Entry
}

// numeral matches kanji numerals and plain or full-width Arabic digits.
const numeral = `[一二三四五六七八九十百千万0-9０-９]+`

// lawBody matches the body of a law display name up to its suffix. The
// suffix list covers the statute types the corpus cites (法/法律/政令/省令/
// 規則/条例). Self-referential pseudo-names also match this shape; the
// matcher filters them so the implicit 同法/この法律 entries can claim them.
const lawBody = `[一-龠々〆ヵヶぁ-んァ-ヶー]{1,30}?(?:法律|法|政令|省令|規則|条例)`

// artRef is an article reference with optional branch, paragraph and item.
const artRef = `第(` + numeral + `)条(?:の(` + numeral + `))?(?:第(` + numeral + `)項)?(?:第(` + numeral + `)号)?`

// articleRefPattern re-scans compound sub-spans for their structural target.
var articleRefPattern = regexp.MustCompile(artRef)

// NewCatalog builds the default pattern catalog. Entries within a category
// are applied in declaration order; put longer or more specific forms first
// so the overlap rule never has to arbitrate between same-category entries.
func NewCatalog() *Catalog {
	return &Catalog{entries: []Entry{
		// Structural: absolute numerals, ranges, law-name-qualified articles.
		{Name: "range_article", Version: 2, Category: CategoryStructural, Type: PatternRange,
			Matcher: regexp.MustCompile(`第(` + numeral + `)条(?:の(` + numeral + `))?から第(` + numeral + `)条(?:の(` + numeral + `))?まで`)},
		{Name: "law_article", Version: 3, Category: CategoryStructural, Type: PatternLawArticle,
			Matcher: regexp.MustCompile(`(` + lawBody + `)(（[^）]{1,60}）)?` + artRef)},
		{Name: "article", Version: 2, Category: CategoryStructural, Type: PatternArticle,
			Matcher: regexp.MustCompile(artRef)},
		{Name: "paragraph", Version: 1, Category: CategoryStructural, Type: PatternParagraph,
			Matcher: regexp.MustCompile(`第(` + numeral + `)項(?:第(` + numeral + `)号)?`)},
		{Name: "item", Version: 1, Category: CategoryStructural, Type: PatternItem,
			Matcher: regexp.MustCompile(`第(` + numeral + `)号`)},

		// Basic relations: denote the kind of a containing reference and are
		// attached to the nearest preceding structural or law-name candidate.
		{Name: "apply", Version: 1, Category: CategoryRelation, Type: PatternApply,
			Matcher: regexp.MustCompile(`準用する|準用し`)},
		{Name: "deem", Version: 1, Category: CategoryRelation, Type: PatternDeem,
			Matcher: regexp.MustCompile(`みなす|みなし`)},
		{Name: "replace", Version: 1, Category: CategoryRelation, Type: PatternReplace,
			Matcher: regexp.MustCompile(`読み替える|読み替え`)},
		{Name: "follow", Version: 1, Category: CategoryRelation, Type: PatternFollow,
			Matcher: regexp.MustCompile(`なお従前の例による|の例による`)},
		{Name: "except", Version: 1, Category: CategoryRelation, Type: PatternExcept,
			Matcher: regexp.MustCompile(`を除くほか|を除き|を除く`)},
		{Name: "limit", Version: 1, Category: CategoryRelation, Type: PatternLimit,
			Matcher: regexp.MustCompile(`に限る|に限り`)},
		{Name: "regardless", Version: 1, Category: CategoryRelation, Type: PatternRegardless,
			Matcher: regexp.MustCompile(`にかかわらず`)},
		{Name: "stipulate", Version: 1, Category: CategoryRelation, Type: PatternStipulate,
			Matcher: regexp.MustCompile(`の定めるところにより|に定める`)},
		{Name: "relate", Version: 1, Category: CategoryRelation, Type: PatternRelate,
			Matcher: regexp.MustCompile(`に関する|に係る`)},

		// Implicit / relative: positional forms resolved against the cursor.
		{Name: "same_law_article", Version: 2, Category: CategoryImplicit, Type: PatternSameLaw,
			Matcher: regexp.MustCompile(`同法` + artRef)},
		{Name: "same_law", Version: 1, Category: CategoryImplicit, Type: PatternSameLaw,
			Matcher: regexp.MustCompile(`同法|同令`)},
		{Name: "this_law", Version: 1, Category: CategoryImplicit, Type: PatternThisLaw,
			Matcher: regexp.MustCompile(`この法律|本法`)},
		{Name: "prev_articles_n", Version: 1, Category: CategoryImplicit, Type: PatternPreviousN,
			Matcher: regexp.MustCompile(`前(` + numeral + `)条`)},
		{Name: "prev_article", Version: 1, Category: CategoryImplicit, Type: PatternPrevious,
			Matcher: regexp.MustCompile(`前条`)},
		{Name: "next_article", Version: 1, Category: CategoryImplicit, Type: PatternNext,
			Matcher: regexp.MustCompile(`次条`)},
		{Name: "prev_each_paragraph", Version: 1, Category: CategoryImplicit, Type: PatternPreviousEach,
			Matcher: regexp.MustCompile(`前各項`)},
		{Name: "prev_paragraphs_n", Version: 1, Category: CategoryImplicit, Type: PatternPreviousN,
			Matcher: regexp.MustCompile(`前(` + numeral + `)項`)},
		{Name: "prev_paragraph", Version: 1, Category: CategoryImplicit, Type: PatternPrevious,
			Matcher: regexp.MustCompile(`前項`)},
		{Name: "next_paragraph", Version: 1, Category: CategoryImplicit, Type: PatternNext,
			Matcher: regexp.MustCompile(`次項`)},
		{Name: "same_article", Version: 1, Category: CategoryImplicit, Type: PatternSame,
			Matcher: regexp.MustCompile(`同条(?:第(` + numeral + `)項)?(?:第(` + numeral + `)号)?`)},
		{Name: "same_paragraph", Version: 1, Category: CategoryImplicit, Type: PatternSame,
			Matcher: regexp.MustCompile(`同項(?:第(` + numeral + `)号)?`)},
		{Name: "same_item", Version: 1, Category: CategoryImplicit, Type: PatternSame,
			Matcher: regexp.MustCompile(`同号`)},

		// Compound: a left span (condition or exclusion) and a right span
		// (the provisions being applied, excepted or replaced).
		{Name: "replaced_apply", Version: 2, Category: CategoryCompound, Type: PatternReplacedApply,
			Matcher: regexp.MustCompile(`([^。]{1,120}?読み替え(?:るものとし)?て)、?([^。]{1,120}?準用する)`)},
		{Name: "excepted_apply", Version: 1, Category: CategoryCompound, Type: PatternExceptedApply,
			Matcher: regexp.MustCompile(`([^。]{1,120}?を除くほか)、?([^。]{1,120}?(?:適用|準用)する)`)},
		{Name: "conditional_apply", Version: 1, Category: CategoryCompound, Type: PatternConditionalApply,
			Matcher: regexp.MustCompile(`([^。]{1,120}?場合において)、?(?:は、)?([^。]{1,120}?準用する)`)},
	}}
}

// Entries returns the catalog rows in application order.
func (c *Catalog) Entries() []Entry { return c.entries }

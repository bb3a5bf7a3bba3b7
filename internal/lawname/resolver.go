// Package lawname maps law display names found in running text (full titles,
// abbreviations, parenthetical-numbered forms) to canonical document IDs.
package lawname

import (
	"strings"

	"github.com/maypok86/otter"
)

// Entry seeds the resolver with one known document title.
type Entry struct {
	ID    string
	Title string
}

// wellKnownAliases maps abbreviations that are too short or too ambiguous to
// trust partial matching for. An alias binds only when its canonical title is
// present in the corpus seed.
var wellKnownAliases = map[string]string{
	"憲法":    "日本国憲法",
	"労基法":   "労働基準法",
	"民訴法":   "民事訴訟法",
	"刑訴法":   "刑事訴訟法",
	"独禁法":   "私的独占の禁止及び公正取引の確保に関する法律",
	"個人情報保護法": "個人情報の保護に関する法律",
}

// selfNames are pseudo-names that refer to the enclosing or previously
// mentioned law. They must never resolve to an external document; the
// pipeline handles them as contextual references.
var selfNames = map[string]bool{
	"この法律": true,
	"本法":   true,
	"同法":   true,
	"当該法律": true,
	"この政令": true,
	"同令":   true,
	"この省令": true,
}

const cacheCapacity = 16_384

type result struct {
	id string
	ok bool
}

// Resolver resolves display names against a corpus-wide title cache built
// once at startup. It is immutable after construction and safe for
// concurrent use by document workers.
type Resolver struct {
	wellKnown map[string]string // alias -> document ID
	exact     map[string]string // title variants -> document ID
	titles    []Entry           // canonical titles for containment scan
	cache     otter.Cache[string, result]
}

// NewResolver builds the resolver from (documentId, displayTitle) pairs. For
// each title it also indexes the bracket-stripped short form and the
// trailing-法 substring, so 「民法（明治二十九年法律第八十九号）」 resolves
// from 民法 alone.
func NewResolver(entries []Entry) (*Resolver, error) {
	cache, err := otter.MustBuilder[string, result](cacheCapacity).Build()
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		wellKnown: make(map[string]string),
		exact:     make(map[string]string, len(entries)*2),
		cache:     cache,
	}
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		canonical := stripBrackets(title)
		r.addExact(title, e.ID)
		r.addExact(canonical, e.ID)
		if short := trailingLawForm(canonical); short != "" {
			r.addExact(short, e.ID)
		}
		r.titles = append(r.titles, Entry{ID: e.ID, Title: canonical})
	}
	for alias, canonical := range wellKnownAliases {
		if id, ok := r.exact[canonical]; ok {
			r.wellKnown[alias] = id
		}
	}
	return r, nil
}

// IsSelfReference reports whether the name is a self-referential pseudo-name
// such as この法律 or 同法.
func IsSelfReference(name string) bool {
	return selfNames[strings.TrimSpace(name)]
}

// Resolve maps a display name to a document ID. The second return is false
// when no candidate matches; callers decide whether to keep the reference at
// low confidence or discard it.
func (r *Resolver) Resolve(displayName string) (string, bool) {
	name := strings.TrimSpace(displayName)
	if name == "" || IsSelfReference(name) {
		return "", false
	}
	if cached, ok := r.cache.Get(name); ok {
		return cached.id, cached.ok
	}
	id, ok := r.resolve(name)
	r.cache.Set(name, result{id: id, ok: ok})
	return id, ok
}

func (r *Resolver) resolve(name string) (string, bool) {
	// (a) well-known table, exact only.
	if id, ok := r.wellKnown[name]; ok {
		return id, true
	}

	// (b) exact match against the title cache, bracket-stripped.
	stripped := stripBrackets(name)
	if id, ok := r.exact[stripped]; ok {
		return id, true
	}

	// (c) bidirectional substring containment, longest title wins.
	bestID, bestLen := "", 0
	for _, t := range r.titles {
		if len([]rune(t.Title)) < 3 {
			continue // too short to trust as a partial match
		}
		if strings.Contains(stripped, t.Title) || strings.Contains(t.Title, stripped) {
			if n := len(t.Title); n > bestLen {
				bestID, bestLen = t.ID, n
			}
		}
	}
	if bestLen > 0 {
		return bestID, true
	}
	return "", false
}

func (r *Resolver) addExact(key, id string) {
	if key == "" {
		return
	}
	if _, exists := r.exact[key]; !exists {
		r.exact[key] = id
	}
}

// stripBrackets removes a trailing parenthetical law number, full-width or
// ASCII: 民法（明治二十九年法律第八十九号） -> 民法.
func stripBrackets(title string) string {
	for _, open := range []string{"（", "("} {
		if i := strings.Index(title, open); i >= 0 {
			title = title[:i]
		}
	}
	return strings.TrimSpace(title)
}

// trailingLawForm returns the substring ending at the last 法 rune, the short
// form by which long enabling-act titles are commonly cited. Returns "" when
// the title does not contain 法 or the form equals the whole title.
func trailingLawForm(title string) string {
	i := strings.LastIndex(title, "法")
	if i < 0 {
		return ""
	}
	form := title[:i+len("法")]
	if form == title {
		return ""
	}
	return form
}

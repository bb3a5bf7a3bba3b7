package detect

import (
	"sort"

	"github.com/s-hayashi/lawgraph/internal/lawname"
)

// Matcher runs the catalog over sentences. It is stateless apart from the
// shared read-only catalog and safe for concurrent use.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(catalog *Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match produces all candidates for one sentence, with span overlaps already
// resolved. Candidates are returned in textual order.
//
// Overlap rule: when two candidates share any character, the one from the
// earlier-applied category (structural, relation, implicit, compound) wins
// unless the later one strictly contains the earlier one, in which case the
// containing match replaces everything it covers.
func (m *Matcher) Match(sentence string) []Candidate {
	var accepted []Candidate

	for _, entry := range m.catalog.Entries() {
		for _, loc := range entry.Matcher.FindAllStringSubmatchIndex(sentence, -1) {
			cand := buildCandidate(entry, sentence, loc)
			if skipCandidate(entry, cand) {
				continue
			}
			accepted = place(accepted, cand)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].Start != accepted[j].Start {
			return accepted[i].Start < accepted[j].Start
		}
		return accepted[i].End > accepted[j].End
	})
	return accepted
}

func buildCandidate(entry Entry, sentence string, loc []int) Candidate {
	groups := make([]string, 0, len(loc)/2-1)
	for g := 1; g < len(loc)/2; g++ {
		if loc[2*g] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, sentence[loc[2*g]:loc[2*g+1]])
	}
	return Candidate{
		Pattern:  entry.Name,
		Type:     entry.Type,
		Category: entry.Category,
		Start:    loc[0],
		End:      loc[1],
		Text:     sentence[loc[0]:loc[1]],
		Groups:   groups,
	}
}

// skipCandidate filters structural law-name matches whose captured name is a
// self-referential pseudo-name (同法, この法律); those spans belong to the
// implicit entries instead.
func skipCandidate(entry Entry, cand Candidate) bool {
	if entry.Type != PatternLawArticle {
		return false
	}
	return len(cand.Groups) > 0 && lawname.IsSelfReference(cand.Groups[0])
}

// place applies the overlap rule against already-accepted candidates.
func place(accepted []Candidate, cand Candidate) []Candidate {
	var overlapping []int
	for i, a := range accepted {
		if cand.overlaps(a) {
			overlapping = append(overlapping, i)
		}
	}
	if len(overlapping) == 0 {
		return append(accepted, cand)
	}

	// The new candidate survives only if it strictly contains every
	// overlapping earlier match.
	for _, i := range overlapping {
		if !cand.contains(accepted[i]) {
			return accepted
		}
	}

	kept := accepted[:0]
	drop := make(map[int]bool, len(overlapping))
	for _, i := range overlapping {
		drop[i] = true
	}
	for i, a := range accepted {
		if !drop[i] {
			kept = append(kept, a)
		}
	}
	return append(kept, cand)
}

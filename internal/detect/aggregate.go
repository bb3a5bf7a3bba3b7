package detect

import "sort"

// Aggregate deduplicates references by (source position, target document,
// target position, kind). When duplicates exist the one with the higher
// detection-method rank wins (oracle > relative > pattern), ties broken by
// higher confidence. The operation is idempotent and order-independent: the
// output is sorted by dedup key.
func Aggregate(refs []Reference) []Reference {
	if len(refs) == 0 {
		return refs
	}

	best := make(map[string]Reference, len(refs))
	for _, ref := range refs {
		key := ref.dedupKey()
		cur, exists := best[key]
		if !exists || betterThan(ref, cur) {
			best[key] = ref
		}
	}

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Reference, 0, len(best))
	for _, key := range keys {
		out = append(out, best[key])
	}
	return out
}

func betterThan(a, b Reference) bool {
	if a.Method.Rank() != b.Method.Rank() {
		return a.Method.Rank() > b.Method.Rank()
	}
	return a.Confidence > b.Confidence
}

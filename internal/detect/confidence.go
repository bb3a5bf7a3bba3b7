package detect

// Confidence tiers. Base confidence is fixed per category at catalog-build
// time and then adjusted by the scorer.
const (
	ConfidenceStructural = 0.95
	ConfidenceRelation   = 0.85
	ConfidenceCompound   = 0.80
	ConfidenceImplicit   = 0.70

	// ConfidenceMax is the ceiling for a fully-numeric structural match with
	// a successfully resolved law name.
	ConfidenceMax = 0.98

	// ConfidenceFloor is the lowest tier, forced for out-of-range relatives
	// and other recoverable resolution failures (recall over silence).
	ConfidenceFloor = 0.30

	// tierStep is the distance of "one tier below" used for multi-step
	// relative arithmetic caps.
	tierStep = 0.10

	// DefaultReviewThreshold flags any unverified reference below it.
	DefaultReviewThreshold = 0.75
)

// Scorer assigns and adjusts confidence and derives the review flag. It is
// immutable and shared across workers.
type Scorer struct {
	reviewThreshold float64
}

// NewScorer creates a scorer; threshold <= 0 selects the default.
func NewScorer(reviewThreshold float64) *Scorer {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Scorer{reviewThreshold: reviewThreshold}
}

// ReviewThreshold returns the configured threshold.
func (s *Scorer) ReviewThreshold() float64 { return s.reviewThreshold }

// Base returns the category's base confidence.
func (s *Scorer) Base(c Category) float64 {
	switch c {
	case CategoryStructural:
		return ConfidenceStructural
	case CategoryRelation:
		return ConfidenceRelation
	case CategoryImplicit:
		return ConfidenceImplicit
	case CategoryCompound:
		return ConfidenceCompound
	}
	return ConfidenceFloor
}

// BoostResolvedExternal lifts an explicit numeric structural match whose law
// name resolved to the maximum tier.
func (s *Scorer) BoostResolvedExternal(ref *Reference) {
	ref.Confidence = ConfidenceMax
}

// CapUnresolvedExternal caps an external reference whose law name failed to
// resolve below the review threshold so it always surfaces for review.
func (s *Scorer) CapUnresolvedExternal(ref *Reference) {
	ceiling := s.reviewThreshold - 0.05
	if ref.Confidence > ceiling {
		ref.Confidence = ceiling
	}
}

// CapMultiStep caps a relative reference that needed multi-step arithmetic
// one tier below its category default.
func (s *Scorer) CapMultiStep(ref *Reference) {
	ceiling := ConfidenceImplicit - tierStep
	if ref.Confidence > ceiling {
		ref.Confidence = ceiling
	}
}

// ForceFloor drops a reference to the lowest tier and marks it for review;
// used for out-of-range and unresolvable candidates that are kept anyway.
func (s *Scorer) ForceFloor(ref *Reference) {
	ref.Confidence = ConfidenceFloor
	ref.RequiresReview = true
}

// Finalize derives RequiresReview: below threshold and not oracle-verified.
func (s *Scorer) Finalize(ref *Reference) {
	ref.RequiresReview = ref.Confidence < s.reviewThreshold && !ref.OracleVerified
}

package detect

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/s-hayashi/lawgraph/internal/kansuji"
	"github.com/s-hayashi/lawgraph/internal/law"
	"github.com/s-hayashi/lawgraph/internal/lawname"
	"github.com/s-hayashi/lawgraph/internal/oracle"
)

// DefaultOracleWorkers bounds concurrent oracle calls per document so the
// oracle phase never blocks other documents' pipelines.
const DefaultOracleWorkers = 4

// Result is the immutable outcome of one document scan, handed to the
// persistence collaborator as a single batch.
type Result struct {
	LawID      string
	References []Reference
	Failures   []Failure
}

// Pipeline runs the per-document state machine:
// Scanning -> PatternPhase -> ContextPhase -> (optional) OraclePhase -> Aggregated.
// It holds only shared read-only state and is safe for concurrent use across
// documents.
type Pipeline struct {
	matcher       *Matcher
	scorer        *Scorer
	names         *lawname.Resolver
	oracle        oracle.Client
	oracleWorkers int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOracle enables the oracle phase for low-confidence references.
func WithOracle(client oracle.Client, workers int) Option {
	return func(p *Pipeline) {
		p.oracle = client
		if workers > 0 {
			p.oracleWorkers = workers
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline assembles a detection pipeline. catalog and names must be
// fully built before any worker starts; they are shared read-only.
func NewPipeline(catalog *Catalog, names *lawname.Resolver, scorer *Scorer, opts ...Option) *Pipeline {
	p := &Pipeline{
		matcher:       NewMatcher(catalog),
		scorer:        scorer,
		names:         names,
		oracleWorkers: DefaultOracleWorkers,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DetectDocument scans one document and returns the aggregated reference
// batch. The only error returned is context cancellation or a malformed
// document; every recoverable problem surfaces as a low-confidence reference
// or a Failure entry instead.
func (p *Pipeline) DetectDocument(ctx context.Context, doc *law.Document) (*Result, error) {
	res := &Result{LawID: doc.ID}

	// The last article per division bounds forward-pointing relatives: 次条
	// in a division's final article has nothing to point at.
	bounds := law.MaxArticles(doc)

	// PatternPhase + ContextPhase run sentence by sentence: the relative
	// resolver must see candidates in textual order.
	err := law.WalkSentences(doc, func(pos law.Position, sentence string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.scanSentence(res, pos, sentence, bounds[pos.Division])
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrMalformedDocument, err)
	}

	if p.oracle != nil {
		if err := p.oraclePhase(ctx, res); err != nil {
			return nil, err
		}
	}

	for i := range res.References {
		p.scorer.Finalize(&res.References[i])
	}
	res.References = Aggregate(res.References)
	return res, nil
}

// sentenceState carries the textual-order context inside one sentence.
type sentenceState struct {
	lastLawID string     // most recent resolved external law name
	lastRef   *Reference // immediately preceding reference
}

func (p *Pipeline) scanSentence(res *Result, pos law.Position, sentence string, last law.ArticleNumber) {
	state := &sentenceState{}
	var refs []*Reference
	for _, cand := range p.matcher.Match(sentence) {
		ref, err := p.buildReference(cand, pos, state, last)
		if err != nil {
			// Recover locally: discard only this candidate, keep the record.
			res.Failures = append(res.Failures, Failure{
				LawID:    pos.LawID,
				Position: pos,
				Text:     cand.Text,
				Err:      err,
			})
			p.logger.Debug("discarded candidate",
				"law", pos.LawID, "text", cand.Text, "error", err)
			continue
		}
		if ref == nil {
			continue // relation attached to a previous reference
		}
		ref.sentence = sentence
		refs = append(refs, ref)
		state.lastRef = ref
		if ref.Kind == KindExternal && ref.TargetLawID != "" {
			state.lastLawID = ref.TargetLawID
		}
	}
	for _, ref := range refs {
		res.References = append(res.References, *ref)
	}
}

func (p *Pipeline) buildReference(cand Candidate, pos law.Position, state *sentenceState, last law.ArticleNumber) (*Reference, error) {
	switch cand.Category {
	case CategoryStructural:
		return p.buildStructural(cand, pos)
	case CategoryRelation:
		p.attachRelation(cand, state)
		return nil, nil
	case CategoryImplicit:
		return p.buildImplicit(cand, pos, state, last)
	case CategoryCompound:
		return p.buildCompound(cand, pos)
	}
	return nil, nil
}

func (p *Pipeline) newReference(cand Candidate, pos law.Position, kind Kind, method Method) *Reference {
	return &Reference{
		ID:          uuid.NewString(),
		SourceLawID: pos.LawID,
		Source:      pos,
		Kind:        kind,
		PatternType: cand.Type,
		SourceText:  cand.Text,
		Confidence:  p.scorer.Base(cand.Category),
		Method:      method,
	}
}

func (p *Pipeline) buildStructural(cand Candidate, pos law.Position) (*Reference, error) {
	switch cand.Type {
	case PatternRange:
		start, err := articleNumber(cand.Groups[0], cand.Groups[1])
		if err != nil {
			return nil, err
		}
		end, err := articleNumber(cand.Groups[2], cand.Groups[3])
		if err != nil {
			return nil, err
		}
		ref := p.newReference(cand, pos, KindRange, MethodPattern)
		ref.TargetLawID = pos.LawID
		ref.Range = &RangeTarget{Start: start, End: end, Inclusive: true}
		return ref, nil

	case PatternLawArticle:
		target, err := targetPosition(cand.Groups[2:], "")
		if err != nil {
			return nil, err
		}
		ref := p.newReference(cand, pos, KindExternal, MethodPattern)
		ref.Target = target
		name := cand.Groups[0] + cand.Groups[1]
		if id, ok := p.names.Resolve(name); ok {
			ref.TargetLawID = id
			ref.Target.LawID = id
			p.scorer.BoostResolvedExternal(ref)
		} else {
			p.scorer.CapUnresolvedExternal(ref)
		}
		return ref, nil

	case PatternArticle:
		target, err := targetPosition(cand.Groups, pos.LawID)
		if err != nil {
			return nil, err
		}
		ref := p.newReference(cand, pos, KindInternal, MethodPattern)
		ref.TargetLawID = pos.LawID
		ref.Target = target
		return ref, nil

	case PatternParagraph:
		n, err := kansuji.ToInteger(cand.Groups[0])
		if err != nil {
			return nil, err
		}
		item, err := optionalNumber(cand.Groups, 1)
		if err != nil {
			return nil, err
		}
		// Paragraph- and item-only matches never leave the current article,
		// so they are structural anchors, not dependency edges.
		ref := p.newReference(cand, pos, KindStructural, MethodPattern)
		ref.TargetLawID = pos.LawID
		ref.Target = law.Position{LawID: pos.LawID, Article: pos.Article, Paragraph: n, Item: item}
		if pos.Article.IsZero() {
			p.scorer.ForceFloor(ref)
		}
		return ref, nil

	case PatternItem:
		n, err := kansuji.ToInteger(cand.Groups[0])
		if err != nil {
			return nil, err
		}
		ref := p.newReference(cand, pos, KindStructural, MethodPattern)
		ref.TargetLawID = pos.LawID
		ref.Target = law.Position{LawID: pos.LawID, Article: pos.Article, Paragraph: pos.Paragraph, Item: n}
		if pos.Article.IsZero() {
			p.scorer.ForceFloor(ref)
		}
		return ref, nil
	}
	return nil, nil
}

// attachRelation hooks a basic-relation keyword onto the nearest preceding
// structural or law-name reference in the sentence. A relation with no
// antecedent denotes nothing by itself and is dropped.
func (p *Pipeline) attachRelation(cand Candidate, state *sentenceState) {
	ref := state.lastRef
	if ref == nil {
		return
	}
	ref.Relation = cand.Type
	switch cand.Type {
	case PatternApply, PatternDeem, PatternReplace, PatternFollow:
		// Same-document provisions being applied become application edges.
		// External references keep their kind; the relation is recorded.
		if ref.Kind == KindInternal || ref.Kind == KindStructural {
			ref.Kind = KindApplication
			if ref.Confidence > ConfidenceRelation {
				ref.Confidence = ConfidenceRelation
			}
		}
	}
}

func (p *Pipeline) buildImplicit(cand Candidate, pos law.Position, state *sentenceState, last law.ArticleNumber) (*Reference, error) {
	switch cand.Type {
	case PatternThisLaw:
		ref := p.newReference(cand, pos, KindContextual, MethodPattern)
		ref.TargetLawID = pos.LawID
		ref.Target = law.Position{LawID: pos.LawID}
		return ref, nil

	case PatternSameLaw:
		if len(cand.Groups) == 0 {
			// Bare 同法/同令 names the antecedent law as a whole, the way
			// この法律 names the current one.
			ref := p.newReference(cand, pos, KindContextual, MethodRelative)
			if state.lastLawID != "" {
				ref.TargetLawID = state.lastLawID
				ref.Target = law.Position{LawID: state.lastLawID}
			} else {
				ref.TargetLawID = pos.LawID
				ref.Target = law.Position{LawID: pos.LawID}
				p.scorer.CapUnresolvedExternal(ref)
			}
			return ref, nil
		}
		target, err := targetPosition(cand.Groups, state.lastLawID)
		if err != nil {
			return nil, err
		}
		ref := p.newReference(cand, pos, KindExternal, MethodRelative)
		ref.Target = target
		if state.lastLawID != "" {
			// Fully numeric with a law name resolved from the sentence
			// context: trustworthy, but not as strong as an explicit name.
			ref.TargetLawID = state.lastLawID
			ref.Target.LawID = state.lastLawID
			ref.Confidence = ConfidenceRelation
		} else {
			// 同法 with no antecedent law name in the sentence: keep the
			// reference, capped for review.
			p.scorer.CapUnresolvedExternal(ref)
		}
		return ref, nil
	}

	resolution, err := ResolveRelative(cand, pos, state.lastRef, last)
	if err != nil {
		if errors.Is(err, ErrOutOfRange) {
			// Surfaced, not thrown: keep a floor-confidence reference whose
			// target stays at the current article.
			ref := p.newReference(cand, pos, KindRelative, MethodRelative)
			ref.TargetLawID = pos.LawID
			ref.Target = law.Position{LawID: pos.LawID, Article: pos.Article}
			p.scorer.ForceFloor(ref)
			return ref, nil
		}
		return nil, err
	}

	ref := p.newReference(cand, pos, resolution.Kind, MethodRelative)
	ref.Target = resolution.Target
	ref.Range = resolution.Range
	ref.TargetLawID = resolution.Target.LawID
	if resolution.MultiStep {
		p.scorer.CapMultiStep(ref)
	}
	return ref, nil
}

// buildCompound emits one application reference for the whole construct,
// targeting the first structural reference inside the right (applied) span.
func (p *Pipeline) buildCompound(cand Candidate, pos law.Position) (*Reference, error) {
	ref := p.newReference(cand, pos, KindApplication, MethodPattern)
	ref.Relation = cand.Type

	right := cand.Groups[len(cand.Groups)-1]
	if m := articleRefPattern.FindStringSubmatch(right); m != nil {
		target, err := targetPosition(m[1:], pos.LawID)
		if err != nil {
			return nil, err
		}
		ref.TargetLawID = pos.LawID
		ref.Target = target
	}
	return ref, nil
}

// oraclePhase sends low-confidence references to the advisory oracle with a
// bounded number of in-flight calls. Errors and timeouts keep the pre-oracle
// confidence; only context cancellation aborts the phase.
func (p *Pipeline) oraclePhase(ctx context.Context, res *Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.oracleWorkers)

	for i := range res.References {
		ref := &res.References[i]
		if ref.Confidence >= p.scorer.ReviewThreshold() {
			continue
		}
		g.Go(func() error {
			verdict, err := p.oracle.Review(gctx, oracle.Request{
				SourceText:    ref.SourceText,
				ContextWindow: contextWindow(ref),
				Position:      ref.Source,
				GuessLawID:    ref.TargetLawID,
				GuessTarget:   ref.Target,
				Kind:          string(ref.Kind),
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("oracle consultation failed",
					"law", ref.SourceLawID, "text", ref.SourceText, "error", err)
				return nil
			}
			p.applyVerdict(ref, verdict)
			return nil
		})
	}
	return g.Wait()
}

// applyVerdict mutates the reference exactly once. The detection method is
// upgraded to oracle and never downgraded again.
func (p *Pipeline) applyVerdict(ref *Reference, verdict oracle.Verdict) {
	if verdict.Valid {
		ref.OracleVerified = true
		ref.Method = MethodOracle
		if verdict.Confidence > ref.Confidence {
			ref.Confidence = verdict.Confidence
		}
		if verdict.CorrectedTarget != nil {
			ref.Target = *verdict.CorrectedTarget
			if ref.Target.LawID == "" {
				ref.Target.LawID = ref.TargetLawID
			}
		}
		return
	}
	// A rejection lowers confidence; it clears the review flag only when the
	// rejection itself is high-confidence. The record is never deleted here.
	ref.Confidence = ConfidenceFloor
	if verdict.Confidence >= 0.9 {
		ref.OracleVerified = true
		ref.Method = MethodOracle
	}
}

func contextWindow(ref *Reference) string {
	if ref.sentence != "" {
		return ref.sentence
	}
	return ref.SourceText
}

func articleNumber(baseText, branchText string) (law.ArticleNumber, error) {
	base, err := kansuji.ToInteger(baseText)
	if err != nil {
		return law.ArticleNumber{}, err
	}
	n := law.ArticleNumber{Base: base}
	if branchText != "" {
		if n.Branch, err = kansuji.ToInteger(branchText); err != nil {
			return law.ArticleNumber{}, err
		}
	}
	return n, nil
}

// targetPosition parses the (base, branch, paragraph, item) capture groups
// shared by the article-shaped patterns.
func targetPosition(groups []string, lawID string) (law.Position, error) {
	article, err := articleNumber(groups[0], groups[1])
	if err != nil {
		return law.Position{}, err
	}
	target := law.Position{LawID: lawID, Article: article}
	if target.Paragraph, err = optionalNumber(groups, 2); err != nil {
		return law.Position{}, err
	}
	if target.Item, err = optionalNumber(groups, 3); err != nil {
		return law.Position{}, err
	}
	return target, nil
}

// Package pipeline orchestrates one ATS simulation: normalize the resume,
// extract entities and build the target profile concurrently, run the five
// layer evaluators concurrently, and aggregate their verdicts.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/ats-simulator/internal/extraction"
	"github.com/jonathan/ats-simulator/internal/ingestion"
	"github.com/jonathan/ats-simulator/internal/observability"
	"github.com/jonathan/ats-simulator/internal/parsing"
	"github.com/jonathan/ats-simulator/internal/scoring"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

// DefaultRequestTimeout bounds one simulation when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// Options configures an Engine.
type Options struct {
	Taxonomy       *taxonomy.Taxonomy
	Settings       scoring.Settings
	Weights        map[types.LayerID]float64
	GateThreshold  int
	Extractor      ingestion.TextExtractor
	PDFTimeout     time.Duration
	RequestTimeout time.Duration
	// Expander is optional; when set, short postings are expanded before
	// profile building.
	Expander   *parsing.Expander
	Logger     *zap.Logger
	OnProgress ProgressCallback
	// Evaluators replaces the standard five evaluators when non-nil.
	Evaluators []scoring.Evaluator
}

// DefaultOptions returns options with the standard settings over tax.
func DefaultOptions(tax *taxonomy.Taxonomy) Options {
	return Options{
		Taxonomy:       tax,
		Settings:       scoring.DefaultSettings(),
		Weights:        scoring.DefaultWeights(),
		GateThreshold:  scoring.DefaultGateThreshold,
		PDFTimeout:     ingestion.DefaultTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Engine runs simulations. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	normalizer *ingestion.Normalizer
	extractor  entityExtractor
	builder    profileBuilder
	expander   *parsing.Expander
	evaluators []scoring.Evaluator
	aggregator *scoring.Aggregator
	timeout    time.Duration
	logger     *zap.Logger
	onProgress ProgressCallback
}

type entityExtractor interface {
	Extract(normalized string) *types.ExtractedProfile
}

type profileBuilder interface {
	Build(posting string) *types.TargetRoleProfile
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Taxonomy == nil {
		return nil, fmt.Errorf("taxonomy is required")
	}
	aggregator, err := scoring.NewAggregator(opts.Weights, opts.GateThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	evaluators := opts.Evaluators
	if evaluators == nil {
		evaluators = scoring.NewEvaluators(opts.Settings, opts.Taxonomy)
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Engine{
		normalizer: ingestion.NewNormalizer(opts.Extractor, opts.PDFTimeout, logger),
		extractor:  extraction.NewExtractor(opts.Taxonomy),
		builder:    parsing.NewBuilder(opts.Taxonomy),
		expander:   opts.Expander,
		evaluators: evaluators,
		aggregator: aggregator,
		timeout:    timeout,
		logger:     logger,
		onProgress: opts.OnProgress,
	}, nil
}

// Simulate runs one simulation. The only error for bad input is a
// *types.InvalidRequestError; every downstream failure degrades into low
// scores and flags instead.
func (e *Engine) Simulate(ctx context.Context, req types.SimulationRequest) (*types.SimulationResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "pipeline.Simulate")
	defer span.End()
	start := time.Now()

	if err := req.Validate(); err != nil {
		observability.SimulationsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	source := req.Source()
	span.SetAttributes(attribute.String("resume.source_kind", string(source.Kind())))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	posting := e.preparePosting(ctx, req)

	doc, confidence := e.normalize(ctx, source)
	e.emit(ctx, StageNormalize, fmt.Sprintf("normalized %d characters into %d sections (confidence %d)",
		len(doc.NormalizedText), len(doc.Sections), confidence))

	profile, target, degraded := e.analyze(ctx, doc.NormalizedText, posting)

	input := &scoring.Input{
		Profile:         profile,
		Target:          target,
		NormalizedText:  doc.NormalizedText,
		PriorResumeText: req.PriorResumeText,
		TargetComp:      req.TargetComp,
	}
	layers := e.evaluate(ctx, input)
	card := e.aggregator.Aggregate(layers)
	e.emit(ctx, StageAggregate, fmt.Sprintf("overall %d (%s)", card.OverallScore, card.Status))

	result := &types.SimulationResult{
		ParserView: types.ParserView{
			ExtractedName:          profile.Name,
			ExtractedEmail:         profile.Email,
			ExtractedPhone:         profile.Phone,
			ExtractedSkills:        profile.Skills,
			ParsingConfidenceScore: confidence,
			RawTextDump:            profile.RawTextDump,
			ExtractionWarning:      doc.ExtractionWarning,
		},
		Scorecard: card,
	}

	for id, layer := range card.Layers {
		observability.LayerScore.WithLabelValues(string(id)).Observe(float64(layer.Score))
	}
	outcome := observability.OutcomeOK
	if degraded {
		outcome = observability.OutcomeDegraded
	}
	observability.SimulationsTotal.WithLabelValues(outcome).Inc()
	observability.SimulationDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("scorecard.overall", card.OverallScore))

	e.logger.Debug("simulation complete",
		zap.Int("overall", card.OverallScore),
		zap.String("status", string(card.Status)),
		zap.Int("confidence", confidence),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// preparePosting cleans the posting and expands it when an expander is set.
func (e *Engine) preparePosting(ctx context.Context, req types.SimulationRequest) string {
	posting := ingestion.CleanText(req.TargetRoleRaw)
	if e.expander == nil || !parsing.NeedsExpansion(posting) {
		return posting
	}

	ctx, span := observability.Tracer().Start(ctx, "pipeline.ExpandPosting")
	defer span.End()
	expanded, err := e.expander.Expand(ctx, posting, req.TargetComp)
	if err != nil {
		e.logger.Warn("posting expansion failed, using original text", zap.Error(err))
		span.RecordError(err)
		return posting
	}
	e.emit(ctx, StageExpand, fmt.Sprintf("expanded %d-character posting to %d characters", len(posting), len(expanded)))
	return ingestion.CleanText(expanded)
}

func (e *Engine) normalize(ctx context.Context, source types.ResumeSource) (*types.ResumeDocument, int) {
	ctx, span := observability.Tracer().Start(ctx, "pipeline.Normalize")
	defer span.End()

	doc, confidence := e.normalizer.Normalize(ctx, source)
	if doc.ExtractionWarning != "" {
		e.logger.Warn("resume document unreadable", zap.String("warning", doc.ExtractionWarning))
		span.SetAttributes(attribute.String("extraction.warning", doc.ExtractionWarning))
	}
	span.SetAttributes(attribute.Int("parsing.confidence", confidence))
	return doc, confidence
}

// analyze runs the entity extractor and the profile builder concurrently.
// A stage that panics degrades to an empty profile (or an all-null target)
// so the evaluators still run.
func (e *Engine) analyze(ctx context.Context, normalized, posting string) (*types.ExtractedProfile, *types.TargetRoleProfile, bool) {
	_, span := observability.Tracer().Start(ctx, "pipeline.Analyze")
	defer span.End()

	var (
		profile *types.ExtractedProfile
		target  *types.TargetRoleProfile
		g       errgroup.Group
	)
	g.Go(func() (err error) {
		defer recoverStage("entity extraction", &err)
		profile = e.extractor.Extract(normalized)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverStage("target profile", &err)
		target = e.builder.Build(posting)
		return nil
	})
	err := g.Wait()
	if err != nil {
		e.logger.Error("analysis stage failed, continuing with empty output", zap.Error(err))
		span.RecordError(err)
	}
	if profile == nil {
		profile = &types.ExtractedProfile{Skills: []string{}, RawTextDump: normalized}
	}
	if target == nil {
		target = &types.TargetRoleProfile{}
	}

	e.emit(ctx, StageExtract, fmt.Sprintf("extracted %d skills", len(profile.Skills)))
	e.emit(ctx, StageProfile, fmt.Sprintf("posting has %d location, %d division and %d culture tags",
		len(target.LocationTags), len(target.DivisionTags), len(target.CultureKeywords)))
	return profile, target, err != nil
}

func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v", stage, r)
	}
}

type layerResult struct {
	layer types.ScorecardLayer
	err   error
}

// evaluate runs every evaluator in its own goroutine. An evaluator that
// errors, panics or is still running when ctx ends reports a failed layer.
func (e *Engine) evaluate(ctx context.Context, in *scoring.Input) map[types.LayerID]types.ScorecardLayer {
	ctx, span := observability.Tracer().Start(ctx, "pipeline.Evaluate")
	defer span.End()

	results := make(chan layerResult, len(e.evaluators))
	for _, ev := range e.evaluators {
		go func(ev scoring.Evaluator) {
			results <- runEvaluator(ev, in)
		}(ev)
	}

	layers := make(map[types.LayerID]types.ScorecardLayer, len(e.evaluators))
	for received := 0; received < len(e.evaluators); received++ {
		select {
		case res := <-results:
			if res.err != nil {
				layer := string(res.layer.LayerID)
				observability.EvaluatorFailures.WithLabelValues(layer).Inc()
				e.logger.Warn("evaluator failed", zap.String("layer", layer), zap.Error(res.err))
				span.RecordError(res.err)
			}
			layers[res.layer.LayerID] = res.layer
			e.emit(ctx, StageEvaluate, fmt.Sprintf("%s scored %d", res.layer.LayerID, res.layer.Score))
		case <-ctx.Done():
			e.logger.Warn("evaluation interrupted", zap.Int("completed", len(layers)), zap.Error(ctx.Err()))
			span.SetStatus(codes.Error, "evaluation interrupted")
			return layers
		}
	}
	return layers
}

// runEvaluator calls ev and converts an error or panic into a failed layer.
func runEvaluator(ev scoring.Evaluator, in *scoring.Input) (res layerResult) {
	id := ev.Layer()
	defer func() {
		if r := recover(); r != nil {
			res = layerResult{
				layer: scoring.FailedLayer(id),
				err:   &scoring.EvaluatorError{Layer: id, Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack())},
			}
		}
	}()

	layer, err := ev.Evaluate(in)
	if err != nil {
		return layerResult{layer: scoring.FailedLayer(id), err: &scoring.EvaluatorError{Layer: id, Cause: err}}
	}
	layer.LayerID = id
	return layerResult{layer: scoring.Finalize(layer)}
}

package pipeline

import "context"

// Simulation stages reported through ProgressCallback.
const (
	StageExpand    = "expand_posting"
	StageNormalize = "normalize"
	StageExtract   = "extract_entities"
	StageProfile   = "build_profile"
	StageEvaluate  = "evaluate"
	StageAggregate = "aggregate"
)

// ProgressEvent represents a progress update during a simulation.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called as a simulation progresses. Evaluate events
// arrive from the collecting goroutine, one per layer, in completion order.
type ProgressCallback func(event ProgressEvent)

type progressKey struct{}

// WithProgress returns a context whose simulation reports progress to cb,
// in addition to the engine-wide callback.
func WithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

func (e *Engine) emit(ctx context.Context, stage, message string) {
	event := ProgressEvent{Stage: stage, Message: message}
	if e.onProgress != nil {
		e.onProgress(event)
	}
	if cb, ok := ctx.Value(progressKey{}).(ProgressCallback); ok && cb != nil {
		cb(event)
	}
}

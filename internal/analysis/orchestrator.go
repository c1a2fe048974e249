// Package analysis runs remote image analysis for a draft: it picks the
// backend operation from the request, allows one request at a time and
// reduces every outcome to a Result or a single error.
package analysis

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitrinelab/vitrine/internal/catalog"
	"github.com/vitrinelab/vitrine/internal/domain"
	apperrors "github.com/vitrinelab/vitrine/internal/errors"
)

// Backend performs the remote analysis calls. *catalog.Client implements it.
type Backend interface {
	AnalyzeSingle(ctx context.Context, img domain.Image) (*domain.AnalyzedProduct, error)
	AnalyzeMultiple(ctx context.Context, imgs []domain.Image) (*domain.AnalyzedProduct, error)
	ExtractMenu(ctx context.Context, img domain.Image) (*domain.MenuBatch, error)
}

// DraftSink receives a product result. *form.Session implements it.
type DraftSink interface {
	ApplyAnalysis(p *domain.AnalyzedProduct)
}

// Observer is told about requests that actually go out. Rejected and
// discarded requests are not reported. Calls happen on the analyzing
// goroutine and must not block.
type Observer interface {
	AnalysisStarted(op domain.AnalysisMode, images int)
	AnalysisSucceeded(result *Result)
	AnalysisFailed(op domain.AnalysisMode, err *RemoteError)
}

// Result is the outcome of one analysis. Operation tells which field is set:
// Product for single and multiple, Batch for menu-ocr.
type Result struct {
	Operation   domain.AnalysisMode     `json:"operation"`
	Product     *domain.AnalyzedProduct `json:"product,omitempty"`
	Batch       *domain.MenuBatch       `json:"batch,omitempty"`
	Method      domain.AnalysisMethod   `json:"method,omitempty"`
	Images      int                     `json:"images"`
	CompletedAt time.Time               `json:"completedAt"`
}

// MethodInfo returns display copy for the result's method tag.
func (r *Result) MethodInfo() domain.MethodInfo {
	return r.Method.Info()
}

// State is what the UI renders while and after an analysis runs.
type State struct {
	InProgress bool                `json:"inProgress"`
	Discarded  bool                `json:"discarded,omitempty"`
	Operation  domain.AnalysisMode `json:"operation,omitempty"`
	StartedAt  time.Time           `json:"startedAt,omitzero"`
	Result     *Result             `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// SelectOperation decides which remote operation serves a request.
// menu-ocr always means bulk extraction; otherwise the image count decides.
// An empty mode is allowed and derived the same way.
func SelectOperation(mode domain.AnalysisMode, images int) (domain.AnalysisMode, error) {
	if images < 1 {
		return "", apperrors.Validation("at least one image is required")
	}
	if mode != "" && !mode.Valid() {
		return "", apperrors.ValidationWithDetails("unknown analysis mode",
			map[string]string{"mode": string(mode)})
	}
	switch {
	case mode == domain.ModeMenuOCR:
		return domain.ModeMenuOCR, nil
	case images == 1:
		return domain.ModeSingle, nil
	default:
		return domain.ModeMultiple, nil
	}
}

// Orchestrator runs at most one analysis at a time.
//
// Thread safety: all methods are safe for concurrent use.
type Orchestrator struct {
	backend Backend
	logger  *slog.Logger
	metrics *Metrics

	busy atomic.Bool

	mu       sync.Mutex // protects epoch, state and observer
	epoch    uint64
	state    State
	observer Observer
}

// New creates an orchestrator. metrics may be nil.
func New(backend Backend, logger *slog.Logger, metrics *Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
}

// Observe installs obs, replacing any previous observer. nil removes it.
func (o *Orchestrator) Observe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observer = obs
}

// Analyze runs one analysis and returns its result.
func (o *Orchestrator) Analyze(ctx context.Context, images []domain.Image, mode domain.AnalysisMode) (*Result, error) {
	return o.run(ctx, images, mode, nil)
}

// AnalyzeInto is Analyze followed by applying a product result to sink.
// Nothing is applied when the result was discarded or is a menu batch.
func (o *Orchestrator) AnalyzeInto(ctx context.Context, images []domain.Image, mode domain.AnalysisMode, sink DraftSink) (*Result, error) {
	return o.run(ctx, images, mode, sink)
}

// Busy reports whether a request is outstanding.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Discard drops interest in the current request, if any, and clears the last
// result and error. The request itself keeps running; when it completes its
// result is thrown away. It reports whether a request was in flight.
func (o *Orchestrator) Discard() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.epoch++
	inFlight := o.state.InProgress
	o.state.Result = nil
	o.state.Error = ""
	o.state.Discarded = inFlight
	return inFlight
}

func (o *Orchestrator) run(ctx context.Context, images []domain.Image, mode domain.AnalysisMode, sink DraftSink) (*Result, error) {
	op, err := o.acquire(mode, len(images))
	if err != nil {
		return nil, err
	}
	defer o.busy.Store(false)
	return o.execute(ctx, op, images, sink)
}

// Start takes the guard before returning and then analyzes in the
// background. A concurrent request fails here rather than in the goroutine.
// done, if non-nil, receives the outcome after the guard is released.
func (o *Orchestrator) Start(ctx context.Context, images []domain.Image, mode domain.AnalysisMode, sink DraftSink, done func(*Result, error)) error {
	op, err := o.acquire(mode, len(images))
	if err != nil {
		return err
	}
	go func() {
		result, err := o.execute(ctx, op, images, sink)
		o.busy.Store(false)
		if done != nil {
			done(result, err)
		}
	}()
	return nil
}

// acquire selects the operation and takes the concurrency guard.
func (o *Orchestrator) acquire(mode domain.AnalysisMode, images int) (domain.AnalysisMode, error) {
	op, err := SelectOperation(mode, images)
	if err != nil {
		return "", err
	}
	if !o.busy.CompareAndSwap(false, true) {
		o.metrics.rejected(op)
		o.logger.Debug("analysis rejected, another request is outstanding", "operation", op)
		return "", ErrConcurrentRequest
	}
	return op, nil
}

// execute issues the backend call. The caller holds the guard. The sink and
// the observer are called after o.mu is released.
func (o *Orchestrator) execute(ctx context.Context, op domain.AnalysisMode, images []domain.Image, sink DraftSink) (*Result, error) {
	epoch, obs := o.begin(op)
	if obs != nil {
		obs.AnalysisStarted(op, len(images))
	}
	o.metrics.started()
	start := time.Now()

	o.logger.Info("analysis started", "operation", op, "images", len(images))
	result, err := o.call(ctx, op, images)
	elapsed := time.Since(start)

	o.mu.Lock()
	o.state.InProgress = false
	if epoch != o.epoch {
		o.state.Discarded = false
		o.mu.Unlock()
		o.metrics.finished(op, outcomeDiscarded, elapsed)
		o.logger.Info("analysis result discarded", "operation", op, "duration_ms", elapsed.Milliseconds())
		return nil, ErrDiscarded
	}
	obs = o.observer

	if err != nil {
		remote := toRemoteError(op, err)
		o.state.Error = remote.Message
		o.mu.Unlock()

		o.metrics.finished(op, outcomeFailed, elapsed)
		o.logger.Warn("analysis failed",
			"operation", op,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		if obs != nil {
			obs.AnalysisFailed(op, remote)
		}
		return nil, remote
	}

	result.Images = len(images)
	result.CompletedAt = time.Now()
	o.state.Result = result
	o.mu.Unlock()

	o.metrics.finished(op, outcomeSucceeded, elapsed)
	o.metrics.method(result.Method)
	o.logger.Info("analysis completed",
		"operation", op,
		"method", result.Method,
		"duration_ms", elapsed.Milliseconds(),
	)

	if sink != nil && result.Product != nil {
		sink.ApplyAnalysis(result.Product)
	}
	if obs != nil {
		obs.AnalysisSucceeded(result)
	}
	return result, nil
}

func (o *Orchestrator) begin(op domain.AnalysisMode) (uint64, Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = State{
		InProgress: true,
		Operation:  op,
		StartedAt:  time.Now(),
	}
	return o.epoch, o.observer
}

// call issues exactly one backend request for op.
func (o *Orchestrator) call(ctx context.Context, op domain.AnalysisMode, images []domain.Image) (*Result, error) {
	switch op {
	case domain.ModeMenuOCR:
		batch, err := o.backend.ExtractMenu(ctx, images[0])
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, errEmptyResponse
		}
		return &Result{Operation: op, Batch: batch}, nil
	case domain.ModeSingle:
		product, err := o.backend.AnalyzeSingle(ctx, images[0])
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, errEmptyResponse
		}
		return &Result{Operation: op, Product: product, Method: product.AnalysisMethod}, nil
	default:
		product, err := o.backend.AnalyzeMultiple(ctx, images)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, errEmptyResponse
		}
		return &Result{Operation: op, Product: product, Method: product.AnalysisMethod}, nil
	}
}

// toRemoteError keeps the backend's own message when it sent one.
func toRemoteError(op domain.AnalysisMode, err error) *RemoteError {
	msg := catalog.Message(err)
	if msg == "" {
		msg = DefaultFailureMessage
		if op == domain.ModeMenuOCR {
			msg = DefaultMenuFailureMessage
		}
	}
	return &RemoteError{Message: msg, Err: err}
}

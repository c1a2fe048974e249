// Package drafts keeps the in-memory configuration sessions the API serves.
// Each draft pairs a form session with its own analysis orchestrator; drafts
// that nobody touches for a while are dropped.
package drafts

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/form"
	"github.com/vitrinelab/vitrine/internal/id"
)

const (
	// DefaultIdleTTL is how long an untouched draft is kept.
	DefaultIdleTTL = 2 * time.Hour

	// DefaultSweepInterval is how often idle drafts are looked for.
	DefaultSweepInterval = 5 * time.Minute
)

// Entry is one live draft.
type Entry struct {
	ID        string
	Session   *form.Session
	Analysis  *analysis.Orchestrator
	CreatedAt time.Time

	lastSeen atomic.Int64 // unix nanoseconds
}

// LastSeen returns when the entry was last used.
func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

// Factory builds the session and orchestrator for a new draft.
type Factory func() (*form.Session, *analysis.Orchestrator)

// Options configures a Registry.
type Options struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Logger        *slog.Logger
	// OnEvict is called, outside any lock, for every draft the sweeper drops.
	OnEvict func(id string)
}

// Registry maps draft IDs to live drafts.
//
// Thread safety: all methods are safe for concurrent use.
type Registry struct {
	entries *SyncMap[string, *Entry]
	factory Factory
	opts    Options
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		entries: NewSyncMap[string, *Entry](),
		factory: factory,
		opts:    opts,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Create starts a new draft.
func (r *Registry) Create() (*Entry, error) {
	draftID, err := id.Generate(id.PrefixDraft)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create draft")
	}

	session, orchestrator := r.factory()
	now := r.now()
	e := &Entry{
		ID:        draftID,
		Session:   session,
		Analysis:  orchestrator,
		CreatedAt: now,
	}
	e.touch(now)
	r.entries.Store(draftID, e)

	r.opts.Logger.Debug("draft created", "draft_id", draftID)
	return e, nil
}

// Get returns a draft and marks it as used.
func (r *Registry) Get(draftID string) (*Entry, error) {
	e, ok := r.entries.Load(draftID)
	if !ok {
		return nil, errors.NotFoundf("draft %s not found", draftID)
	}
	e.touch(r.now())
	return e, nil
}

// Delete cancels a draft. An analysis still in flight is discarded.
func (r *Registry) Delete(draftID string) error {
	e, ok := r.entries.LoadAndDelete(draftID)
	if !ok {
		return errors.NotFoundf("draft %s not found", draftID)
	}
	e.Analysis.Discard()
	r.opts.Logger.Debug("draft cancelled", "draft_id", draftID)
	return nil
}

// Len returns the number of live drafts.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// Sweep drops drafts idle for longer than the TTL and returns how many went.
// Drafts with an analysis in flight are kept until it finishes.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTTL).UnixNano()
	removed := r.entries.DeleteFunc(func(_ string, e *Entry) bool {
		return e.lastSeen.Load() < cutoff && !e.Analysis.Busy()
	})

	for _, e := range removed {
		if r.opts.OnEvict != nil {
			r.opts.OnEvict(e.ID)
		}
	}
	if len(removed) > 0 {
		r.opts.Logger.Info("idle drafts dropped", "count", len(removed), "remaining", r.entries.Len())
	}
	return len(removed)
}

// Run sweeps on an interval until ctx is done or Stop is called.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

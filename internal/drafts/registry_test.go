package drafts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/form"
	"github.com/vitrinelab/vitrine/internal/logger"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

// blockingBackend holds every call until release is closed.
type blockingBackend struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) AnalyzeSingle(context.Context, domain.Image) (*domain.AnalyzedProduct, error) {
	b.entered <- struct{}{}
	<-b.release
	return &domain.AnalyzedProduct{Title: "Late"}, nil
}

func (b *blockingBackend) AnalyzeMultiple(context.Context, []domain.Image) (*domain.AnalyzedProduct, error) {
	return nil, nil
}

func (b *blockingBackend) ExtractMenu(context.Context, domain.Image) (*domain.MenuBatch, error) {
	return nil, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(t *testing.T, backend analysis.Backend, opts Options) (*Registry, *clock) {
	t.Helper()
	resolver, err := taxonomy.NewDefaultResolver(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })

	factory := func() (*form.Session, *analysis.Orchestrator) {
		return form.NewSession(resolver, nil), analysis.New(backend, logger.Discard(), nil)
	}
	opts.Logger = logger.Discard()
	r := NewRegistry(factory, opts)

	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r.now = c.Now
	return r, c
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r, _ := newTestRegistry(t, nil, Options{})

	e, err := r.Create()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(e.ID, "draft-"))
	assert.NotNil(t, e.Session)
	assert.NotNil(t, e.Analysis)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(e.ID)
	require.NoError(t, err)
	assert.Same(t, e, got)

	require.NoError(t, r.Delete(e.ID))
	_, err = r.Get(e.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(r.Delete(e.ID), errors.ErrNotFound))
}

func TestRegistry_SweepDropsIdle(t *testing.T) {
	var evicted []string
	r, c := newTestRegistry(t, nil, Options{
		IdleTTL: time.Hour,
		OnEvict: func(id string) { evicted = append(evicted, id) },
	})

	stale, err := r.Create()
	require.NoError(t, err)
	c.Advance(30 * time.Minute)
	fresh, err := r.Create()
	require.NoError(t, err)

	c.Advance(45 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, []string{stale.ID}, evicted)

	_, err = r.Get(fresh.ID)
	require.NoError(t, err, "touched by Get")
	c.Advance(59 * time.Minute)
	assert.Zero(t, r.Sweep())
}

func TestRegistry_SweepKeepsBusyDrafts(t *testing.T) {
	backend := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	r, c := newTestRegistry(t, backend, Options{IdleTTL: time.Minute})

	e, err := r.Create()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Analysis.Analyze(context.Background(), []domain.Image{{Data: []byte{1}}}, domain.ModeSingle)
	}()
	<-backend.entered

	c.Advance(time.Hour)
	assert.Zero(t, r.Sweep())

	close(backend.release)
	<-done
	assert.Equal(t, 1, r.Sweep())
}

func TestRegistry_DeleteDiscardsAnalysis(t *testing.T) {
	backend := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	r, _ := newTestRegistry(t, backend, Options{})

	e, err := r.Create()
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := e.Analysis.AnalyzeInto(context.Background(), []domain.Image{{Data: []byte{1}}}, domain.ModeSingle, e.Session)
		errc <- err
	}()
	<-backend.entered

	require.NoError(t, r.Delete(e.ID))
	close(backend.release)

	assert.ErrorIs(t, <-errc, analysis.ErrDiscarded)
	assert.Empty(t, e.Session.Draft().Title)
}

func TestRegistry_RunStops(t *testing.T) {
	r, _ := newTestRegistry(t, nil, Options{SweepInterval: time.Millisecond})

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	r.Stop()
	r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/vitrinelab/vitrine/internal/domain"
)

// Resolver serves lookups from the current taxonomy snapshot.
// Lookups are pure reads; Swap installs a new snapshot (and search index)
// in one step, so readers never see a half-replaced tree.
//
// Thread safety: all methods are safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	tree   *Tree
	index  bleve.Index
	logger *slog.Logger
}

// NewResolver indexes tree and returns a resolver over it.
func NewResolver(tree *Tree, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := buildIndex(tree)
	if err != nil {
		return nil, err
	}
	return &Resolver{tree: tree, index: index, logger: logger}, nil
}

// NewDefaultResolver returns a resolver over the built-in taxonomy.
func NewDefaultResolver(logger *slog.Logger) (*Resolver, error) {
	tree, err := NewTree(DefaultSeed())
	if err != nil {
		return nil, fmt.Errorf("build default taxonomy: %w", err)
	}
	return NewResolver(tree, logger)
}

// Tree returns the current snapshot.
func (r *Resolver) Tree() *Tree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// Swap replaces the snapshot. The previous search index is closed.
func (r *Resolver) Swap(tree *Tree) error {
	index, err := buildIndex(tree)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.index
	r.tree = tree
	r.index = index
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			r.logger.Warn("failed to close previous taxonomy index", "error", err)
		}
	}
	r.logger.Info("taxonomy replaced", "types", len(tree.types))
	return nil
}

// Types returns the product type options.
func (r *Resolver) Types() []domain.Option {
	return r.Tree().Types()
}

// ClassificationsFor returns the classifications of a type.
// Unknown types yield an empty list, never an error.
func (r *Resolver) ClassificationsFor(typeValue string) []domain.Option {
	return r.Tree().ClassificationsFor(typeValue)
}

// CategoriesFor returns the categories of a classification.
// Unknown classifications yield an empty list, never an error.
func (r *Resolver) CategoriesFor(classificationValue string) []domain.Option {
	return r.Tree().CategoriesFor(classificationValue)
}

// Node looks up a node by level and value.
func (r *Resolver) Node(level Level, value string) (Node, bool) {
	return r.Tree().Node(level, value)
}

// Match maps free text (a label, a value or a known alias) onto a node.
func (r *Resolver) Match(level Level, parent, text string) (Node, bool) {
	return r.Tree().Match(level, parent, text)
}

// Search runs a fuzzy label search. level restricts results when non-nil.
func (r *Resolver) Search(ctx context.Context, q string, level *Level, limit int) ([]Hit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.index == nil {
		return nil, fmt.Errorf("taxonomy index is closed")
	}
	return search(ctx, r.index, r.tree, q, level, limit)
}

// Close releases the search index.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == nil {
		return nil
	}
	err := r.index.Close()
	r.index = nil
	return err
}

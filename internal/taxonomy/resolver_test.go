package taxonomy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelab/vitrine/internal/logger"
)

const drinksYAML = `
types:
  - id: 10
    value: bar
    label: Bar
    children:
      - id: 40
        value: drinks
        label: Drinks
        aliases: [coquetel]
        children:
          - id: 400
            value: caipirinha
            label: Caipirinha
measureUnits:
  - value: ml
    label: Mililitros (ml)
`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewDefaultResolver(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResolver_Lookups(t *testing.T) {
	r := newTestResolver(t)

	assert.Len(t, r.Types(), 3)
	assert.Equal(t, []string{"entrada", "prato_principal", "bebida"}, values(r.ClassificationsFor("menu")))
	assert.Empty(t, r.ClassificationsFor("unknown"))
	assert.Empty(t, r.CategoriesFor("unknown"))

	n, ok := r.Node(LevelClassification, "bebida")
	require.True(t, ok)
	assert.Equal(t, 6, n.ID)

	n, ok = r.Match(LevelCategory, "bebida", "Alcoólica")
	require.True(t, ok)
	assert.Equal(t, 18, n.ID)
}

func TestResolver_Search(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	hits, err := r.Search(ctx, "ceramica", nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "ceramica", hits[0].Node.Value)
	assert.Equal(t, "category", hits[0].Level)
	assert.Equal(t, "artesanato", hits[0].Parent)

	level := LevelClassification
	hits, err = r.Search(ctx, "prato", &level, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "prato_principal", hits[0].Node.Value)
	for _, h := range hits {
		assert.Equal(t, "classification", h.Level)
	}

	hits, err = r.Search(ctx, "   ", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestResolver_Swap(t *testing.T) {
	r := newTestResolver(t)

	tree, err := ParseYAML([]byte(drinksYAML))
	require.NoError(t, err)
	require.NoError(t, r.Swap(tree))

	assert.Equal(t, []string{"bar"}, values(r.Types()))
	assert.Empty(t, r.ClassificationsFor("menu"))
	assert.Equal(t, []string{"caipirinha"}, values(r.CategoriesFor("drinks")))

	hits, err := r.Search(context.Background(), "caipirinha", nil, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 400, hits[0].Node.ID)
}

func TestResolver_SearchAfterClose(t *testing.T) {
	r, err := NewDefaultResolver(logger.Discard())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Search(context.Background(), "menu", nil, 5)
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	tree, err := ParseYAML([]byte(drinksYAML))
	require.NoError(t, err)

	n, ok := tree.Match(LevelClassification, "bar", "Coquetel")
	require.True(t, ok)
	assert.Equal(t, "drinks", n.Value)

	assert.Equal(t, []string{"ml"}, values(tree.MeasureUnits()))
	// lists missing from the file fall back to the built-in ones
	assert.Len(t, tree.Partners(), 4)
	assert.Len(t, tree.Statuses(), 3)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "  \n"},
		{"unknown field", "types: []\ncolour: red\n"},
		{"no types", "types: []\n"},
		{"not yaml", "types: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestMarshalYAML_RoundTripsDefaults(t *testing.T) {
	data, err := MarshalYAML(DefaultSeed())
	require.NoError(t, err)

	tree, err := ParseYAML(data)
	require.NoError(t, err)

	assert.Equal(t, defaultTree(t).Types(), tree.Types())
	assert.Equal(t, defaultTree(t).CategoriesFor("bone"), tree.CategoriesFor("bone"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReloader_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")

	initial, err := MarshalYAML(DefaultSeed())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, initial, 0o600))

	r := newTestResolver(t)
	reloader := NewReloader(path, r, logger.Discard())
	reloader.settleDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- reloader.Run(ctx) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(drinksYAML), 0o600))

	// a save can surface as several events; wait for the first good reload
	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case err := <-reloader.reloaded:
			reloaded = err == nil
		case <-deadline:
			t.Fatal("taxonomy was not reloaded")
		}
	}
	assert.Equal(t, []string{"bar"}, values(r.Types()))

	cancel()
	assert.NoError(t, <-done)
}

func TestReloader_BadFileKeepsPreviousTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types: [\n"), 0o600))

	r := newTestResolver(t)
	reloader := NewReloader(path, r, logger.Discard())

	assert.Error(t, reloader.Reload())
	assert.Len(t, r.Types(), 3)
}

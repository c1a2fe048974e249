package taxonomy

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Hit is one search result.
type Hit struct {
	Level  string  `json:"level"`
	Node   Node    `json:"node"`
	Parent string  `json:"parent,omitempty"`
	Score  float64 `json:"score"`
}

// labelDoc is the indexed form of a node. Text holds the folded label and
// aliases so accent-free queries match accented labels.
type labelDoc struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = simple.Name
	doc.AddFieldMappingsAt("text", text)

	level := bleve.NewTextFieldMapping()
	level.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("level", level)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

// buildIndex creates an in-memory index over every node of t.
func buildIndex(t *Tree) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create taxonomy index: %w", err)
	}

	batch := index.NewBatch()
	for _, level := range []Level{LevelType, LevelClassification, LevelCategory} {
		for _, n := range t.all(level) {
			parts := []string{searchable(n.Label), searchable(n.Value)}
			for _, a := range n.Aliases {
				parts = append(parts, searchable(a))
			}
			if err := batch.Index(docID(level, n.Value), labelDoc{
				Level: level.String(),
				Text:  strings.Join(parts, " "),
			}); err != nil {
				return nil, fmt.Errorf("index %s %q: %w", level, n.Value, err)
			}
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("index taxonomy: %w", err)
	}
	return index, nil
}

func searchQuery(q string, level *Level) query.Query {
	terms := strings.Fields(searchable(q))

	match := bleve.NewMatchQuery(strings.Join(terms, " "))
	match.SetField("text")
	match.SetFuzziness(1)

	var last query.Query = match
	if len(terms) > 0 {
		prefix := bleve.NewPrefixQuery(terms[len(terms)-1])
		prefix.SetField("text")
		last = bleve.NewDisjunctionQuery(match, prefix)
	}

	if level == nil {
		return last
	}
	lq := bleve.NewTermQuery(level.String())
	lq.SetField("level")
	return bleve.NewConjunctionQuery(last, lq)
}

func search(ctx context.Context, index bleve.Index, t *Tree, q string, level *Level, limit int) ([]Hit, error) {
	if strings.TrimSpace(q) == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(searchQuery(q, level), limit, 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search taxonomy: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		lvl, value, ok := parseDocID(h.ID)
		if !ok {
			continue
		}
		n, ok := t.Node(lvl, value)
		if !ok {
			continue
		}
		parent, _ := t.Parent(lvl, value)
		hits = append(hits, Hit{Level: lvl.String(), Node: n, Parent: parent, Score: h.Score})
	}
	return hits, nil
}

func docID(level Level, value string) string {
	return level.String() + ":" + value
}

func parseDocID(id string) (Level, string, bool) {
	name, value, ok := strings.Cut(id, ":")
	if !ok {
		return 0, "", false
	}
	level, ok := ParseLevel(name)
	return level, value, ok
}

// searchable folds text and splits it into words for the simple analyzer.
func searchable(s string) string {
	return strings.ReplaceAll(Fold(s), "_", " ")
}

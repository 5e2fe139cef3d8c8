package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/storage"
)

// Index is an in-memory full text index over subscriptions, keyed by URL.
type Index struct {
	idx bleve.Index
}

// Result is one matching subscription.
type Result struct {
	URL            string
	Title          string
	ThemoviedbName string
	Subgroup       string
	Score          float64
}

// NewIndex builds an empty index and adds subs to it.
func NewIndex(subs ...*storage.Subscription) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, errors.Wrap(err, "creating index")
	}
	i := &Index{idx: idx}
	if err := i.Index(subs...); err != nil {
		idx.Close()
		return nil, err
	}
	return i, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	// Show names are mostly CJK; bigrams make partial names match.
	title := bleve.NewTextFieldMapping()
	title.Analyzer = cjk.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true

	tmdbName := bleve.NewTextFieldMapping()
	tmdbName.Analyzer = cjk.AnalyzerName
	tmdbName.Store = true

	subgroup := bleve.NewTextFieldMapping()
	subgroup.Analyzer = cjk.AnalyzerName
	subgroup.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("themoviedb_name", tmdbName)
	dm.AddFieldMappingsAt("subgroup", subgroup)
	dm.AddFieldMappingsAt("url", url)

	im.DefaultMapping = dm
	return im
}

// Index adds or replaces subs.
func (i *Index) Index(subs ...*storage.Subscription) error {
	if len(subs) == 0 {
		return nil
	}
	batch := i.idx.NewBatch()
	for _, s := range subs {
		if s == nil || strings.TrimSpace(s.URL) == "" {
			continue
		}
		if err := batch.Index(s.URL, map[string]any{
			"title":           s.Title,
			"themoviedb_name": s.ThemoviedbName,
			"subgroup":        s.Subgroup,
			"url":             s.URL,
		}); err != nil {
			return errors.Wrapf(err, "indexing %s", s.URL)
		}
	}
	return i.idx.Batch(batch)
}

// Remove drops the subscription with url.
func (i *Index) Remove(url string) error {
	return i.idx.Delete(url)
}

// Search returns subscriptions matching query, best first. Queries shorter
// than two characters match nothing.
func (i *Index) Search(query string, limit int) ([]*Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range []struct {
			name  string
			boost float64
		}{
			{"title", 4.0},
			{"themoviedb_name", 3.0},
			{"subgroup", 1.5},
			{"url", 0.5},
		} {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(f.name)
			qm.SetBoost(f.boost)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(f.name)
			qp.SetBoost(f.boost * 0.9)
			qs = append(qs, qp)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "themoviedb_name", "subgroup", "url"}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, errors.Wrap(err, "searching index")
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r := &Result{URL: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			r.Title = v
		}
		if v, ok := h.Fields["themoviedb_name"].(string); ok {
			r.ThemoviedbName = v
		}
		if v, ok := h.Fields["subgroup"].(string); ok {
			r.Subgroup = v
		}
		out = append(out, r)
	}
	return out, nil
}

func (i *Index) Close() error {
	return i.idx.Close()
}

// tokenize breaks text into lower-cased letter and digit runs.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if utf8.RuneCountInString(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	if current.Len() > 0 {
		flush()
	}
	return terms
}

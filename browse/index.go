package browse

import (
	"strconv"
	"strings"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/aniwatch/aniwatch-server/catalog"
)

// Index is an in-memory full-text index over accumulated catalog
// records, used to filter a browsing session locally.
type Index struct {
	index bleve.Index
}

// document is what we store in bleve per catalog record.
type document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	TitleEnglish string `json:"title_english"`
	// TitleExact makes exact title matches rank first.
	TitleExact string `json:"title_exact"`
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "en"
	text.Store = false
	text.Index = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("title_english", text)
	doc.AddFieldMappingsAt("title_exact", keyword)

	m.DefaultMapping = doc
	return m
}

// Add indexes a batch of records. Re-adding an id overwrites it.
func (i *Index) Add(records []catalog.Anime) error {
	batch := i.index.NewBatch()
	for _, r := range records {
		doc := document{
			ID:           strconv.FormatInt(r.ID, 10),
			Title:        r.Title,
			TitleEnglish: r.TitleEnglish,
			TitleExact:   strings.ToLower(r.Title),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return err
		}
	}
	return i.index.Batch(batch)
}

// Search returns the ids of matching records, best match first.
func (i *Index) Search(searchTerm string, size int) ([]int64, error) {
	searchTerm = strings.ToLower(strings.TrimSpace(searchTerm))
	if searchTerm == "" {
		return nil, nil
	}

	const (
		boostTitleExact  = 50.0
		boostTitlePhrase = 10.0
		boostTitlePrefix = 5.0
	)

	boolQuery := bleve.NewBooleanQuery()

	termExact := bleve.NewTermQuery(searchTerm)
	termExact.SetField("title_exact")
	termExact.SetBoost(boostTitleExact)
	boolQuery.AddShould(termExact)

	matchPhrase := bleve.NewMatchPhraseQuery(searchTerm)
	matchPhrase.SetField("title")
	matchPhrase.SetBoost(boostTitlePhrase)
	boolQuery.AddShould(matchPhrase)

	prefix := bleve.NewPrefixQuery(searchTerm)
	prefix.SetField("title")
	prefix.SetBoost(boostTitlePrefix)
	boolQuery.AddShould(prefix)

	for _, field := range []string{"title", "title_english"} {
		match := bleve.NewMatchQuery(searchTerm)
		match.SetField(field)
		boolQuery.AddShould(match)
	}

	req := bleve.NewSearchRequestOptions(boolQuery, size, 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Filter returns the subset of records matching the term, best match
// first. An empty term returns records unchanged.
func (i *Index) Filter(records []catalog.Anime, searchTerm string) ([]catalog.Anime, error) {
	if strings.TrimSpace(searchTerm) == "" {
		return records, nil
	}
	ids, err := i.Search(searchTerm, len(records))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Anime, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]catalog.Anime, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

package search

import (
	"errors"
	"testing"
	"time"

	"rental-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIndex struct {
	added   []PropertyDocument
	deleted []string
	lastReq *meilisearch.SearchRequest
	hits    []interface{}
	err     error
}

func (f *fakeIndex) AddDocuments(docs interface{}, _ ...string) (*meilisearch.TaskInfo, error) {
	f.added = append(f.added, docs.([]PropertyDocument)...)
	return &meilisearch.TaskInfo{}, f.err
}

func (f *fakeIndex) DeleteDocument(id string) (*meilisearch.TaskInfo, error) {
	f.deleted = append(f.deleted, id)
	return &meilisearch.TaskInfo{}, f.err
}

func (f *fakeIndex) Search(_ string, req *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &meilisearch.SearchResponse{Hits: f.hits, EstimatedTotalHits: int64(len(f.hits))}, nil
}

func newTestClient(idx *fakeIndex) *SearchClient {
	return &SearchClient{index: idx, uid: "properties", log: zap.NewNop()}
}

func TestNilClientIsDisabled(t *testing.T) {
	var s *SearchClient
	assert.Nil(t, NewSearchClient("", "", "", nil))
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.IndexProperty(&models.Property{}), ErrDisabled)
	_, err := s.Search("loft", 10)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestIndexAndDelete(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestClient(idx)

	p := &models.Property{ID: 7, Name: "The Lofts", City: "Austin", CreatedAt: time.Unix(100, 0)}
	require.NoError(t, s.IndexProperty(p))
	require.NoError(t, s.IndexProperties([]models.Property{{ID: 8, Name: "Oak Court"}}))
	require.NoError(t, s.IndexProperties(nil))
	require.NoError(t, s.DeleteProperty(7))

	require.Len(t, idx.added, 2)
	assert.Equal(t, "The Lofts", idx.added[0].Name)
	assert.EqualValues(t, 100, idx.added[0].CreatedAt)
	assert.Equal(t, []string{"7"}, idx.deleted)
}

func TestSearchParsesHits(t *testing.T) {
	idx := &fakeIndex{hits: []interface{}{
		map[string]interface{}{"id": float64(3), "name": "Maple House", "city": "Denver"},
		map[string]interface{}{"id": "not-a-number"},
	}}
	s := newTestClient(idx)

	res, err := s.Search("maple", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, res.IDs)
	assert.Equal(t, "Maple House", res.Hits[0].Name)
	assert.EqualValues(t, 20, idx.lastReq.Limit)
	assert.Nil(t, idx.lastReq.Filter)
}

func TestSearchSkipsBadHitWithoutLogger(t *testing.T) {
	idx := &fakeIndex{hits: []interface{}{
		map[string]interface{}{"id": "not-a-number"},
	}}
	s := &SearchClient{index: idx, uid: "properties"}

	res, err := s.Search("maple", 5)
	require.NoError(t, err)
	assert.Empty(t, res.IDs)
}

func TestFilterSearchBuildsFilter(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestClient(idx)
	two := 2

	_, err := s.FilterSearch(SearchParams{City: "Austin", MinBedrooms: &two, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, `city = "Austin" AND bedrooms >= 2`, idx.lastReq.Filter)
	assert.EqualValues(t, 5, idx.lastReq.Limit)
}

func TestSearchError(t *testing.T) {
	s := newTestClient(&fakeIndex{err: errors.New("down")})
	_, err := s.Search("x", 1)
	assert.Error(t, err)
}

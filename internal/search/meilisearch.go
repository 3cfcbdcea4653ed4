package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rental-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// ErrDisabled is returned when no search host is configured
var ErrDisabled = errors.New("search is not configured")

// indexAPI is the subset of *meilisearch.Index the client uses
type indexAPI interface {
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	DeleteDocument(identifier string) (*meilisearch.TaskInfo, error)
	Search(query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error)
}

// PropertyDocument is the indexed form of a property
type PropertyDocument struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zipCode"`
	Neighborhood string   `json:"neighborhood"`
	Description  string   `json:"description"`
	Amenities    string   `json:"amenities"`
	Bedrooms     int      `json:"bedrooms"`
	TotalUnits   int      `json:"totalUnits"`
	Images       []string `json:"images"`
	Latitude     string   `json:"latitude"`
	Longitude    string   `json:"longitude"`
	CreatedAt    int64    `json:"createdAt"`
}

// NewPropertyDocument converts a property row into its search document
func NewPropertyDocument(p *models.Property) PropertyDocument {
	return PropertyDocument{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		Neighborhood: p.Neighborhood,
		Description:  p.Description,
		Amenities:    p.Amenities,
		Bedrooms:     p.Bedrooms,
		TotalUnits:   p.TotalUnits,
		Images:       p.Images,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		CreatedAt:    p.CreatedAt.Unix(),
	}
}

type SearchClient struct {
	client *meilisearch.Client
	index  indexAPI
	uid    string
	log    *zap.Logger
}

// NewSearchClient connects to Meilisearch. It returns nil when host is
// empty; every method on a nil client reports ErrDisabled
func NewSearchClient(host, apiKey, index string, log *zap.Logger) *SearchClient {
	if host == "" {
		return nil
	}
	if index == "" {
		index = "properties"
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  client.Index(index),
		uid:    index,
		log:    log,
	}
}

func (s *SearchClient) logger() *zap.Logger {
	if s.log == nil {
		return zap.NewNop()
	}
	return s.log
}

// Enabled reports whether the client is usable
func (s *SearchClient) Enabled() bool {
	return s != nil
}

// InitIndex creates the index and configures its attributes
func (s *SearchClient) InitIndex() error {
	if !s.Enabled() {
		return ErrDisabled
	}
	// Creation is asynchronous; an existing index only fails the task
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.uid,
		PrimaryKey: "id",
	}); err != nil {
		return fmt.Errorf("create index %s: %w", s.uid, err)
	}

	index := s.client.Index(s.uid)
	if _, err := index.UpdateSearchableAttributes(&[]string{
		"name", "city", "neighborhood", "address", "description", "amenities",
	}); err != nil {
		return fmt.Errorf("update searchable attributes: %w", err)
	}
	if _, err := index.UpdateFilterableAttributes(&[]string{
		"city", "state", "bedrooms",
	}); err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}
	if _, err := index.UpdateSortableAttributes(&[]string{
		"bedrooms", "createdAt",
	}); err != nil {
		return fmt.Errorf("update sortable attributes: %w", err)
	}
	return nil
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	_, err := s.index.AddDocuments([]PropertyDocument{NewPropertyDocument(property)}, "id")
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if len(properties) == 0 {
		return nil
	}
	docs := make([]PropertyDocument, 0, len(properties))
	for i := range properties {
		docs = append(docs, NewPropertyDocument(&properties[i]))
	}
	_, err := s.index.AddDocuments(docs, "id")
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id uint) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	_, err := s.index.DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// SearchParams represents search parameters
type SearchParams struct {
	Query       string
	City        string
	MinBedrooms *int
	Limit       int64
}

// SearchResult is one page of hits
type SearchResult struct {
	IDs            []uint             `json:"ids"`
	Hits           []PropertyDocument `json:"hits"`
	TotalHits      int64              `json:"totalHits"`
	ProcessingTime int64              `json:"processingTimeMs"`
}

// Search searches for properties with basic options
func (s *SearchClient) Search(query string, limit int64) (*SearchResult, error) {
	return s.FilterSearch(SearchParams{Query: query, Limit: limit})
}

// FilterSearch performs a search narrowed by city and bedroom count
func (s *SearchClient) FilterSearch(params SearchParams) (*SearchResult, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	req := &meilisearch.SearchRequest{Limit: params.Limit}
	if filter := buildFilter(params); filter != "" {
		req.Filter = filter
	}

	res, err := s.index.Search(params.Query, req)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		IDs:            make([]uint, 0, len(res.Hits)),
		Hits:           make([]PropertyDocument, 0, len(res.Hits)),
		TotalHits:      res.EstimatedTotalHits,
		ProcessingTime: res.ProcessingTimeMs,
	}
	for _, hit := range res.Hits {
		// Convert hit to JSON then to the document struct
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc PropertyDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.logger().Debug("Skipping unreadable search hit", zap.Error(err))
			continue
		}
		result.IDs = append(result.IDs, doc.ID)
		result.Hits = append(result.Hits, doc)
	}
	return result, nil
}

func buildFilter(params SearchParams) string {
	var filters []string
	if params.City != "" {
		filters = append(filters, "city = "+strconv.Quote(params.City))
	}
	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}
	return strings.Join(filters, " AND ")
}

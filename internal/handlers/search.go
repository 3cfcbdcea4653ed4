package handlers

import (
	"net/http"
	"strconv"

	"rental-portal/internal/database"
	"rental-portal/internal/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchHandler serves full text property search
type SearchHandler struct {
	db     *database.GormDB
	client *search.SearchClient
	log    *zap.Logger
}

// NewSearchHandler creates a search handler. client may be nil when search
// is not configured
func NewSearchHandler(db *database.GormDB, client *search.SearchClient, log *zap.Logger) *SearchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchHandler{db: db, client: client, log: log}
}

// Search handles GET /api/search?q=&limit=&city=&minBedrooms=
func (h *SearchHandler) Search(c *gin.Context) {
	if !h.client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	params := search.SearchParams{
		Query: c.Query("q"),
		City:  c.Query("city"),
		Limit: 20,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		params.Limit = limit
	}
	if raw := c.Query("minBedrooms"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minBedrooms must be a non-negative integer"})
			return
		}
		params.MinBedrooms = &n
	}

	result, err := h.client.FilterSearch(params)
	if err != nil {
		h.log.Error("Search failed", zap.String("query", params.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reindex handles POST /api/search/reindex
func (h *SearchHandler) Reindex(c *gin.Context) {
	if !h.client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	properties, err := h.db.GetAllProperties(c.Request.Context())
	if err != nil {
		h.log.Error("Reindex: failed to fetch properties", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties from database"})
		return
	}

	if err := h.client.IndexProperties(properties); err != nil {
		h.log.Error("Reindex failed", zap.Int("total", len(properties)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to index properties"})
		return
	}

	h.log.Info("Reindex complete", zap.Int("total", len(properties)))
	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex complete",
		"total":   len(properties),
		"indexed": len(properties),
	})
}

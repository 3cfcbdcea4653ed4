package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"rental-portal/internal/database"

	"github.com/gin-gonic/gin"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// BrandingHandler serves the site theme
type BrandingHandler struct {
	db *database.GormDB
}

// NewBrandingHandler creates a branding handler
func NewBrandingHandler(db *database.GormDB) *BrandingHandler {
	return &BrandingHandler{db: db}
}

// Get handles GET /api/branding
func (h *BrandingHandler) Get(c *gin.Context) {
	branding, err := h.db.GetBranding(c.Request.Context())
	if err != nil {
		writeStoreError(c, err, "Branding not found", "Failed to fetch branding")
		return
	}
	c.JSON(http.StatusOK, branding)
}

// Update handles PUT /api/branding. Missing fields keep their current value
func (h *BrandingHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	branding, err := h.db.GetBranding(ctx)
	if err != nil {
		writeStoreError(c, err, "Branding not found", "Failed to update branding")
		return
	}
	if err := c.ShouldBindJSON(branding); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branding data"})
		return
	}
	if strings.TrimSpace(branding.CompanyName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branding data: companyName is required"})
		return
	}
	if !hexColor.MatchString(branding.PrimaryColor) || !hexColor.MatchString(branding.SecondaryColor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branding data: colors must be #rrggbb"})
		return
	}

	saved, err := h.db.UpsertBranding(ctx, branding)
	if err != nil {
		writeStoreError(c, err, "Branding not found", "Failed to update branding")
		return
	}
	c.JSON(http.StatusOK, saved)
}

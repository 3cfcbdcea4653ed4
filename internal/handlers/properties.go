package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"rental-portal/internal/database"
	"rental-portal/internal/geocode"
	"rental-portal/internal/models"
	"rental-portal/internal/photos"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PropertyHandler serves the property catalogue
type PropertyHandler struct {
	db       *database.GormDB
	geocoder Geocoder
	index    Indexer
	photos   PhotoMover
	log      *zap.Logger
}

// NewPropertyHandler creates a property handler. geocoder, index and photos
// may be nil
func NewPropertyHandler(db *database.GormDB, geocoder Geocoder, index Indexer, photos PhotoMover, log *zap.Logger) *PropertyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PropertyHandler{db: db, geocoder: geocoder, index: index, photos: photos, log: log}
}

// List handles GET /api/properties?city=&isAvailable=
func (h *PropertyHandler) List(c *gin.Context) {
	filters := database.PropertyFilters{City: strings.TrimSpace(c.Query("city"))}
	if raw, ok := c.GetQuery("isAvailable"); ok {
		available := raw == "true"
		filters.IsAvailable = &available
	}

	properties, err := h.db.ListProperties(c.Request.Context(), filters)
	if err != nil {
		writeStoreError(c, err, "Property not found", "Failed to fetch properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// Get handles GET /api/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "property")
	if !ok {
		return
	}
	property, err := h.db.GetPropertyByID(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err, "Property not found", "Failed to fetch property")
		return
	}
	c.JSON(http.StatusOK, property)
}

// Create handles POST /api/properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property data"})
		return
	}
	property.ID = 0
	if err := validateProperty(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.fillCoordinates(c, &property)

	if err := h.db.CreateProperty(c.Request.Context(), &property); err != nil {
		writeStoreError(c, err, "Property not found", "Failed to create property")
		return
	}
	h.reindex(&property)
	c.JSON(http.StatusCreated, property)
}

// Update handles PUT /api/properties/:id. Fields absent from the body keep
// their stored values
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "property")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	property, err := h.db.GetPropertyByID(ctx, id)
	if err != nil {
		writeStoreError(c, err, "Property not found", "Failed to update property")
		return
	}
	address := property.FullAddress()
	oldLat, oldLng := property.Latitude, property.Longitude
	oldCity, oldName := property.City, property.Name

	if err := c.ShouldBindJSON(property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property data"})
		return
	}
	property.ID = id
	if err := validateProperty(property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if property.FullAddress() != address && property.Latitude == oldLat && property.Longitude == oldLng {
		// The stored coordinates belong to the old address
		property.Latitude, property.Longitude = "", ""
		h.fillCoordinates(c, property)
	}

	// Photos live under a directory named after city and name
	renamed := h.photos != nil && (property.City != oldCity || property.Name != oldName)
	if renamed {
		if err := h.photos.MovePropertyPhotos(ctx, oldCity, oldName, property.City, property.Name); err != nil {
			h.log.Error("Failed to move property photos", zap.Uint("property_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
			return
		}
	}

	if err := h.db.SaveProperty(ctx, property); err != nil {
		if renamed {
			if err := h.photos.MovePropertyPhotos(ctx, property.City, property.Name, oldCity, oldName); err != nil {
				h.log.Error("Failed to restore property photos", zap.Uint("property_id", id), zap.Error(err))
			}
		}
		writeStoreError(c, err, "Property not found", "Failed to update property")
		return
	}
	h.reindex(property)
	c.JSON(http.StatusOK, property)
}

// Delete handles DELETE /api/properties/:id. Photo directories are left
// for the orphan sweep
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "property")
	if !ok {
		return
	}
	if err := h.db.DeleteProperty(c.Request.Context(), id); err != nil {
		writeStoreError(c, err, "Property not found", "Failed to delete property")
		return
	}
	if h.index != nil && h.index.Enabled() {
		if err := h.index.DeleteProperty(id); err != nil {
			h.log.Warn("Failed to remove property from search index", zap.Uint("property_id", id), zap.Error(err))
		}
	}
	c.Status(http.StatusNoContent)
}

// fillCoordinates geocodes the address when no coordinates were given. A
// failed lookup leaves them empty for the nightly backfill
func (h *PropertyHandler) fillCoordinates(c *gin.Context, p *models.Property) {
	if p.HasCoordinates() || h.geocoder == nil {
		return
	}
	coords, ok := h.geocoder.Lookup(c.Request.Context(), p.FullAddress())
	if !ok {
		h.log.Info("No coordinates for property address", zap.String("address", p.FullAddress()))
		return
	}
	p.Latitude = coords.Latitude
	p.Longitude = coords.Longitude
}

func (h *PropertyHandler) reindex(p *models.Property) {
	if h.index == nil || !h.index.Enabled() {
		return
	}
	if err := h.index.IndexProperty(p); err != nil {
		h.log.Warn("Failed to index property", zap.Uint("property_id", p.ID), zap.Error(err))
	}
}

func validateProperty(p *models.Property) error {
	var missing []string
	for field, value := range map[string]string{
		"name": p.Name, "address": p.Address, "city": p.City,
		"state": p.State, "zipCode": p.ZipCode, "bathrooms": p.Bathrooms,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.New("invalid property data: missing " + strings.Join(missing, ", "))
	}
	if _, err := photos.PropertyDirName(p.City, p.Name); err != nil {
		return errors.New("invalid property data: name and city must contain letters or digits")
	}
	if p.Bedrooms < 0 || p.TotalUnits < 0 {
		return errors.New("invalid property data: bedrooms and totalUnits must not be negative")
	}
	if err := validCoordinate(p.Latitude, 90); err != nil {
		return err
	}
	if err := validCoordinate(p.Longitude, 180); err != nil {
		return err
	}
	normalizeCoordinates(p)
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

func validCoordinate(raw string, limit float64) error {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < -limit || v > limit {
		return errors.New("invalid property data: coordinates out of range")
	}
	return nil
}

// Coordinates entered by hand are stored with the same precision as
// geocoded ones
func normalizeCoordinates(p *models.Property) {
	if lat, err := strconv.ParseFloat(p.Latitude, 64); err == nil {
		p.Latitude = geocode.FormatCoordinate(lat)
	}
	if lng, err := strconv.ParseFloat(p.Longitude, 64); err == nil {
		p.Longitude = geocode.FormatCoordinate(lng)
	}
}

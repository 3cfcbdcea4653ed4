package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rental-portal/internal/database"
	"rental-portal/internal/models"
	"rental-portal/internal/photos"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UnitHandler serves the units of properties
type UnitHandler struct {
	db     *database.GormDB
	photos PhotoMover
	log    *zap.Logger
}

// NewUnitHandler creates a unit handler. photos may be nil
func NewUnitHandler(db *database.GormDB, photos PhotoMover, log *zap.Logger) *UnitHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UnitHandler{db: db, photos: photos, log: log}
}

// List handles GET /api/units?propertyId=
func (h *UnitHandler) List(c *gin.Context) {
	var propertyID *uint
	if raw := c.Query("propertyId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
			return
		}
		v := uint(id)
		propertyID = &v
	}
	units, err := h.db.ListUnits(c.Request.Context(), propertyID)
	if err != nil {
		writeStoreError(c, err, "Unit not found", "Failed to fetch units")
		return
	}
	c.JSON(http.StatusOK, units)
}

// Get handles GET /api/units/:id
func (h *UnitHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "unit")
	if !ok {
		return
	}
	unit, err := h.db.GetUnitByID(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err, "Unit not found", "Failed to fetch unit")
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Create handles POST /api/units
func (h *UnitHandler) Create(c *gin.Context) {
	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit data"})
		return
	}
	unit.ID = 0
	if err := validateUnit(&unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.db.GetPropertyByID(ctx, unit.PropertyID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit data: property does not exist"})
			return
		}
		writeStoreError(c, err, "Property not found", "Failed to create unit")
		return
	}
	if err := h.db.CreateUnit(ctx, &unit); err != nil {
		writeStoreError(c, err, "Unit not found", "Failed to create unit")
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// Update handles PUT /api/units/:id
func (h *UnitHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "unit")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	unit, err := h.db.GetUnitByID(ctx, id)
	if err != nil {
		writeStoreError(c, err, "Unit not found", "Failed to update unit")
		return
	}
	propertyID := unit.PropertyID
	oldNumber := unit.UnitNumber
	if err := c.ShouldBindJSON(unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit data"})
		return
	}
	unit.ID = id
	// Moving a unit would orphan its photo directory
	unit.PropertyID = propertyID
	if err := validateUnit(unit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var property *models.Property
	if h.photos != nil && unit.UnitNumber != oldNumber {
		property, err = h.db.GetPropertyByID(ctx, propertyID)
		if err != nil {
			writeStoreError(c, err, "Property not found", "Failed to update unit")
			return
		}
		if err := h.photos.MoveUnitPhotos(ctx, property, oldNumber, unit.UnitNumber); err != nil {
			h.log.Error("Failed to move unit photos", zap.Uint("unit_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update unit"})
			return
		}
	}

	if err := h.db.SaveUnit(ctx, unit); err != nil {
		if property != nil {
			if err := h.photos.MoveUnitPhotos(ctx, property, unit.UnitNumber, oldNumber); err != nil {
				h.log.Error("Failed to restore unit photos", zap.Uint("unit_id", id), zap.Error(err))
			}
		}
		writeStoreError(c, err, "Unit not found", "Failed to update unit")
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Delete handles DELETE /api/units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "unit")
	if !ok {
		return
	}
	if err := h.db.DeleteUnit(c.Request.Context(), id); err != nil {
		writeStoreError(c, err, "Unit not found", "Failed to delete unit")
		return
	}
	c.Status(http.StatusNoContent)
}

func validateUnit(u *models.Unit) error {
	switch {
	case u.PropertyID == 0:
		return errors.New("invalid unit data: propertyId is required")
	case strings.TrimSpace(u.UnitNumber) == "":
		return errors.New("invalid unit data: unitNumber is required")
	case photos.Slugify(u.UnitNumber) == "":
		return errors.New("invalid unit data: unitNumber must contain letters or digits")
	case strings.TrimSpace(u.Bathrooms) == "":
		return errors.New("invalid unit data: bathrooms is required")
	case u.Bedrooms < 0:
		return errors.New("invalid unit data: bedrooms must not be negative")
	case u.Rent != nil && *u.Rent < 0:
		return errors.New("invalid unit data: rent must not be negative")
	}
	if u.Images == nil {
		u.Images = []string{}
	}
	return nil
}

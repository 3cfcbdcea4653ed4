package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"rental-portal/internal/geocode"
	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// Geocoder resolves an address into coordinates
type Geocoder interface {
	Lookup(ctx context.Context, address string) (geocode.Coordinates, bool)
}

// Indexer keeps the property search index in sync with the database
type Indexer interface {
	Enabled() bool
	IndexProperty(property *models.Property) error
	IndexProperties(properties []models.Property) error
	DeleteProperty(id uint) error
}

// PhotoMover keeps photo directories in step with renamed properties and units
type PhotoMover interface {
	MovePropertyPhotos(ctx context.Context, oldCity, oldName, newCity, newName string) error
	MoveUnitPhotos(ctx context.Context, property *models.Property, oldNumber, newNumber string) error
}

// parseID reads a numeric path parameter, writing a 400 when it is not one
func parseID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return uint(id), true
}

// writeStoreError answers a persistence error, hiding anything but not-found
func writeStoreError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
}

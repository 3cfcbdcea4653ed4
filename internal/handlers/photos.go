package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"rental-portal/internal/photos"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PhotoHandler serves photo upload, listing and deletion
type PhotoHandler struct {
	service *photos.Service
	maxBody int64
	log     *zap.Logger
}

// NewPhotoHandler creates a photo handler. maxBody bounds the whole
// multipart request; zero leaves it unbounded
func NewPhotoHandler(service *photos.Service, maxBody int64, log *zap.Logger) *PhotoHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PhotoHandler{service: service, maxBody: maxBody, log: log}
}

// Upload handles POST /api/photos/upload
func (h *PhotoHandler) Upload(c *gin.Context) {
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Upload is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected a multipart form with a photos field"})
		return
	}

	dest, err := parseDestination(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headers := form.File["photos"]
	files := make([]photos.FileInput, 0, len(headers))
	for _, fh := range headers {
		files = append(files, photos.FileInput{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Open:         opener(fh),
		})
	}

	report, err := h.service.Upload(c.Request.Context(), dest, files)
	if err != nil {
		status := photos.HTTPStatus(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			h.log.Error("Photo upload failed", zap.Uint("property_id", dest.PropertyID), zap.Error(err))
			msg = "Failed to upload photos"
		}
		if report == nil {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(status, gin.H{"error": msg, "files": report.Files, "errors": report.Errors})
		return
	}

	c.JSON(http.StatusOK, report)
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

// parseDestination reads propertyId, type and unitId. propertyName and
// unitNumber are accepted but paths come from the stored rows
func parseDestination(form *multipart.Form) (photos.Destination, error) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var dest photos.Destination
	rawProperty := value("propertyId")
	if rawProperty == "" {
		return dest, errors.New("propertyId is required")
	}
	id, err := strconv.ParseUint(rawProperty, 10, 32)
	if err != nil || id == 0 {
		return dest, errors.New("propertyId must be a positive integer")
	}
	dest.PropertyID = uint(id)

	if rawUnit := value("unitId"); rawUnit != "" {
		unitID, err := strconv.ParseUint(rawUnit, 10, 32)
		if err != nil || unitID == 0 {
			return dest, errors.New("unitId must be a positive integer")
		}
		u := uint(unitID)
		dest.UnitID = &u
		return dest, nil
	}

	category, err := photos.ParseCategory(value("type"))
	if err != nil {
		return dest, errors.New("type must be one of exterior, interior, amenities")
	}
	dest.Category = category
	return dest, nil
}

// GetPropertyPhotos handles GET /api/photos/property/:id
func (h *PhotoHandler) GetPropertyPhotos(c *gin.Context) {
	id, ok := parseID(c, "id", "property")
	if !ok {
		return
	}
	taxonomy, err := h.service.Taxonomy(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Property not found", "Failed to fetch photos")
		return
	}
	c.JSON(http.StatusOK, taxonomy)
}

// Delete handles DELETE /api/photos
func (h *PhotoHandler) Delete(c *gin.Context) {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Path) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), req.Path); err != nil {
		h.writeError(c, err, "Photo not found", "Failed to delete photo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

func (h *PhotoHandler) writeError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	status := photos.HTTPStatus(err)
	switch {
	case status == http.StatusNotFound:
		c.JSON(status, gin.H{"error": notFoundMsg})
	case status >= http.StatusInternalServerError:
		h.log.Error(failMsg, zap.Error(err))
		c.JSON(status, gin.H{"error": failMsg})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

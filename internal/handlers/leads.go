package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"rental-portal/internal/database"
	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeadHandler accepts and manages prospective tenant contacts
type LeadHandler struct {
	db  *database.GormDB
	log *zap.Logger
}

// NewLeadHandler creates a lead handler
func NewLeadHandler(db *database.GormDB, log *zap.Logger) *LeadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadHandler{db: db, log: log}
}

// Create handles POST /api/lead-submissions
func (h *LeadHandler) Create(c *gin.Context) {
	var lead models.LeadSubmission
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission data"})
		return
	}
	lead.ID = 0
	lead.Contacted = false
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)

	if lead.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission data: name is required"})
		return
	}
	if _, err := mail.ParseAddress(lead.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission data: a valid email is required"})
		return
	}

	if err := h.db.CreateLead(c.Request.Context(), &lead); err != nil {
		writeStoreError(c, err, "Lead not found", "Failed to submit lead")
		return
	}
	h.log.Info("New lead submission received", zap.Uint("lead_id", lead.ID), zap.String("email", lead.Email))
	c.JSON(http.StatusCreated, lead)
}

// List handles GET /api/lead-submissions
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.db.ListLeads(c.Request.Context())
	if err != nil {
		writeStoreError(c, err, "Lead not found", "Failed to fetch lead submissions")
		return
	}
	c.JSON(http.StatusOK, leads)
}

// SetContacted handles PATCH /api/lead-submissions/:id
func (h *LeadHandler) SetContacted(c *gin.Context) {
	id, ok := parseID(c, "id", "lead")
	if !ok {
		return
	}
	var req struct {
		Contacted *bool `json:"contacted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Contacted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contacted is required"})
		return
	}
	lead, err := h.db.SetLeadContacted(c.Request.Context(), id, *req.Contacted)
	if err != nil {
		writeStoreError(c, err, "Lead not found", "Failed to update lead")
		return
	}
	c.JSON(http.StatusOK, lead)
}

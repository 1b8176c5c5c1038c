package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/specials-api/internal/models"
	"github.com/venuehub/specials-api/internal/service"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/response"
)

type venueService interface {
	Get(ctx context.Context, id string) (*models.Venue, error)
	Create(ctx context.Context, req service.CreateVenueRequest) (*models.Venue, error)
	Update(ctx context.Context, id string, req service.UpdateVenueRequest) (*models.Venue, error)
	ListSpecials(ctx context.Context, venueID string) ([]models.Special, error)
}

type exportService interface {
	Render(ctx context.Context, venueID, format string) (*service.ExportDocument, error)
}

// VenueHandler manages the venue endpoints.
type VenueHandler struct {
	venues  venueService
	exports exportService
}

// NewVenueHandler constructs the handler. A nil export service disables
// the export endpoint.
func NewVenueHandler(venues venueService, exports exportService) *VenueHandler {
	return &VenueHandler{venues: venues, exports: exports}
}

// Get godoc
// @Summary Get a venue
// @Tags Venues
// @Produce json
// @Param id path string true "Venue ID"
// @Success 200 {object} response.Envelope
// @Router /venues/{id} [get]
func (h *VenueHandler) Get(c *gin.Context) {
	venue, err := h.venues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venue, nil)
}

// Create godoc
// @Summary Create a venue
// @Tags Venues
// @Accept json
// @Produce json
// @Param payload body service.CreateVenueRequest true "Venue payload"
// @Success 201 {object} response.Envelope
// @Router /venues [post]
func (h *VenueHandler) Create(c *gin.Context) {
	var req service.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	venue, err := h.venues.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, venue)
}

// Update godoc
// @Summary Update a venue
// @Tags Venues
// @Accept json
// @Produce json
// @Param id path string true "Venue ID"
// @Param payload body service.UpdateVenueRequest true "Venue payload"
// @Success 200 {object} response.Envelope
// @Router /venues/{id} [put]
func (h *VenueHandler) Update(c *gin.Context) {
	var req service.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	venue, err := h.venues.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venue, nil)
}

// ListSpecials godoc
// @Summary List a venue's specials
// @Tags Venues
// @Produce json
// @Param id path string true "Venue ID"
// @Success 200 {object} response.Envelope
// @Router /venues/{id}/specials [get]
func (h *VenueHandler) ListSpecials(c *gin.Context) {
	specials, err := h.venues.ListSpecials(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, specials, nil)
}

// ExportSpecials godoc
// @Summary Export a venue's specials schedule
// @Tags Venues
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Venue ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /venues/{id}/specials/export [get]
func (h *VenueHandler) ExportSpecials(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrExportDisabled)
		return
	}
	doc, err := h.exports.Render(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

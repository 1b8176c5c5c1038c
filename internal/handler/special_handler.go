package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/specials-api/internal/dto"
	"github.com/venuehub/specials-api/internal/models"
	"github.com/venuehub/specials-api/internal/service"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/response"
)

type searchService interface {
	Search(ctx context.Context, req dto.SearchSpecialsRequest) ([]models.SpecialStatus, *models.Pagination, map[string]interface{}, error)
}

type specialService interface {
	Get(ctx context.Context, id string) (*models.SpecialStatus, error)
	Create(ctx context.Context, req service.CreateSpecialRequest) (*models.Special, error)
	Update(ctx context.Context, id string, req service.UpdateSpecialRequest) (*models.Special, error)
	Delete(ctx context.Context, id string) error
}

// SpecialHandler manages the specials endpoints.
type SpecialHandler struct {
	search   searchService
	specials specialService
}

// NewSpecialHandler constructs the handler.
func NewSpecialHandler(search searchService, specials specialService) *SpecialHandler {
	return &SpecialHandler{search: search, specials: specials}
}

// Search godoc
// @Summary Search specials near an address
// @Tags Specials
// @Produce json
// @Param address query string false "Free-text address to center the search on"
// @Param radius query number false "Radius in miles"
// @Param searchDateTime query string false "Reference instant, RFC3339 UTC; defaults to now"
// @Param searchTerm query string false "Free-text match on content or venue name"
// @Param venueId query string false "Restrict to one venue"
// @Param specialTypeId query string false "Food, Drink or Entertainment"
// @Param isCurrentlyRunning query bool false "Only specials running at the reference instant"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /specials [get]
func (h *SpecialHandler) Search(c *gin.Context) {
	req := dto.SearchSpecialsRequest{
		Address:        c.Query("address"),
		SearchDateTime: c.Query("searchDateTime"),
		SearchTerm:     c.Query("searchTerm"),
		VenueID:        c.Query("venueId"),
		SpecialType:    c.Query("specialTypeId"),
	}
	if raw := c.Query("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "radius must be a number"))
			return
		}
		req.RadiusMiles = radius
	}
	if raw := c.Query("isCurrentlyRunning"); raw != "" {
		running, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isCurrentlyRunning must be a boolean"))
			return
		}
		req.CurrentlyRunningOnly = running
	}
	req.Page = 1
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be an integer"))
			return
		}
		req.Page = page
	}
	req.PageSize = 20
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pageSize must be an integer"))
			return
		}
		req.PageSize = size
	}

	items, pagination, meta, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination, meta)
}

// Get godoc
// @Summary Get a special with its current availability
// @Tags Specials
// @Produce json
// @Param id path string true "Special ID"
// @Success 200 {object} response.Envelope
// @Router /specials/{id} [get]
func (h *SpecialHandler) Get(c *gin.Context) {
	special, err := h.specials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, special, nil)
}

// Create godoc
// @Summary Create a special
// @Tags Specials
// @Accept json
// @Produce json
// @Param payload body service.CreateSpecialRequest true "Special payload"
// @Success 201 {object} response.Envelope
// @Router /specials [post]
func (h *SpecialHandler) Create(c *gin.Context) {
	var req service.CreateSpecialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	special, err := h.specials.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, special)
}

// Update godoc
// @Summary Update a special
// @Tags Specials
// @Accept json
// @Produce json
// @Param id path string true "Special ID"
// @Param payload body service.UpdateSpecialRequest true "Special payload"
// @Success 200 {object} response.Envelope
// @Router /specials/{id} [put]
func (h *SpecialHandler) Update(c *gin.Context) {
	var req service.UpdateSpecialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	special, err := h.specials.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, special, nil)
}

// Delete godoc
// @Summary Delete a special
// @Tags Specials
// @Param id path string true "Special ID"
// @Success 204 {object} nil
// @Router /specials/{id} [delete]
func (h *SpecialHandler) Delete(c *gin.Context) {
	if err := h.specials.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/specials-api/internal/models"
	"github.com/venuehub/specials-api/internal/service"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
)

type venueServiceMock struct {
	venue      *models.Venue
	specials   []models.Special
	err        error
	lastID     string
	lastCreate service.CreateVenueRequest
}

func (m *venueServiceMock) Get(ctx context.Context, id string) (*models.Venue, error) {
	m.lastID = id
	return m.venue, m.err
}

func (m *venueServiceMock) Create(ctx context.Context, req service.CreateVenueRequest) (*models.Venue, error) {
	m.lastCreate = req
	return m.venue, m.err
}

func (m *venueServiceMock) Update(ctx context.Context, id string, req service.UpdateVenueRequest) (*models.Venue, error) {
	m.lastID = id
	return m.venue, m.err
}

func (m *venueServiceMock) ListSpecials(ctx context.Context, venueID string) ([]models.Special, error) {
	m.lastID = venueID
	return m.specials, m.err
}

type exportServiceMock struct {
	doc        *service.ExportDocument
	err        error
	lastFormat string
}

func (m *exportServiceMock) Render(ctx context.Context, venueID, format string) (*service.ExportDocument, error) {
	m.lastFormat = format
	return m.doc, m.err
}

func TestVenueHandlerGet(t *testing.T) {
	mockVenues := &venueServiceMock{venue: &models.Venue{ID: "v-1", Name: "The Spot"}}
	h := NewVenueHandler(mockVenues, nil)

	c, w := testContext(t, http.MethodGet, "/venues/v-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "v-1"}}
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v-1", mockVenues.lastID)
}

func TestVenueHandlerCreate(t *testing.T) {
	mockVenues := &venueServiceMock{venue: &models.Venue{ID: "v-1"}}
	h := NewVenueHandler(mockVenues, nil)

	body := []byte(`{"name":"The Spot","address":"123 Main St","timezone":"America/New_York"}`)
	c, w := testContext(t, http.MethodPost, "/venues", body)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "The Spot", mockVenues.lastCreate.Name)
	assert.Equal(t, "America/New_York", mockVenues.lastCreate.Timezone)
}

func TestVenueHandlerCreateMalformedBody(t *testing.T) {
	h := NewVenueHandler(&venueServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/venues", []byte(`{"name":`))
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVenueHandlerUpdate(t *testing.T) {
	mockVenues := &venueServiceMock{venue: &models.Venue{ID: "v-1", Name: "New Name"}}
	h := NewVenueHandler(mockVenues, nil)

	body := []byte(`{"name":"New Name","address":"456 Oak Ave","timezone":"UTC"}`)
	c, w := testContext(t, http.MethodPut, "/venues/v-1", body)
	c.Params = gin.Params{{Key: "id", Value: "v-1"}}
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v-1", mockVenues.lastID)
}

func TestVenueHandlerListSpecials(t *testing.T) {
	mockVenues := &venueServiceMock{specials: []models.Special{{ID: "sp-1"}}}
	h := NewVenueHandler(mockVenues, nil)

	c, w := testContext(t, http.MethodGet, "/venues/v-1/specials", nil)
	c.Params = gin.Params{{Key: "id", Value: "v-1"}}
	h.ListSpecials(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v-1", mockVenues.lastID)
}

func TestVenueHandlerExportSpecials(t *testing.T) {
	mockExports := &exportServiceMock{doc: &service.ExportDocument{
		Content:     []byte("Content,Type\n"),
		ContentType: "text/csv",
		Filename:    "the-spot-specials.csv",
	}}
	h := NewVenueHandler(&venueServiceMock{}, mockExports)

	c, w := testContext(t, http.MethodGet, "/venues/v-1/specials/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "v-1"}}
	h.ExportSpecials(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockExports.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "the-spot-specials.csv")
	assert.Equal(t, "Content,Type\n", w.Body.String())
}

func TestVenueHandlerExportDisabled(t *testing.T) {
	h := NewVenueHandler(&venueServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/venues/v-1/specials/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "v-1"}}
	h.ExportSpecials(c)

	assert.Equal(t, appErrors.ErrExportDisabled.Status, w.Code)
}

func TestVenueHandlerExportNotFound(t *testing.T) {
	mockExports := &exportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "venue not found")}
	h := NewVenueHandler(&venueServiceMock{}, mockExports)

	c, w := testContext(t, http.MethodGet, "/venues/v-missing/specials/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "v-missing"}}
	h.ExportSpecials(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

package router

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/models"
)

func newTestApp(cfg *config.Config) *fiber.App {
	return New(logging.NewDevelopment(), nil, nil, *cfg)
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(config.DefaultConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
}

func TestRouter_ComputeChart(t *testing.T) {
	app := newTestApp(config.DefaultConfig())

	values := make([]float64, 0, 30)
	for i := 0; i < 15; i++ {
		values = append(values, 10.0, 10.2)
	}
	body, err := json.Marshal(models.ChartRequest{Values: values, SubgroupSize: 2})
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/charts/xbar_r", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var chartResp models.ChartResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&chartResp))
	assert.NotNil(t, chartResp.Result)
	assert.Equal(t, 15, chartResp.Result.Summary.Subgroups)
}

func TestRouter_ChartTypesNotShadowedByTypeParam(t *testing.T) {
	app := newTestApp(config.DefaultConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/charts/types", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp models.ChartTypesResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	assert.Len(t, listResp.ChartTypes, 4)
}

func TestRouter_AuthProtectsV1(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"abcdefghijklmnopqrstuvwxyz012345"}
	app := newTestApp(cfg)

	// Health stays open
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// v1 requires a key
	resp, err = app.Test(httptest.NewRequest("GET", "/v1/rules", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/v1/rules", nil)
	req.Header.Set("X-API-Key", "abcdefghijklmnopqrstuvwxyz012345")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(config.DefaultConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var errResp models.ErrorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Error.Code)
}

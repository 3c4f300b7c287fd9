package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/backend/pkg/config"
	"socialgraph/backend/pkg/logger"
)

const communityFixture = "../../internal/store/testdata/community.yaml"

func testRouter(t *testing.T, fixture string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Port: "0", Env: "development", MaxBodyBytes: 1 << 20}
	a, err := newApp(context.Background(), cfg, fixture, logger.Get())
	require.NoError(t, err)
	router, err := a.router(cfg)
	require.NoError(t, err)
	return router
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestFixtureServedOverGraphQL(t *testing.T) {
	router := testRouter(t, communityFixture)

	body := []byte(`{"query": "{ users { firstName profile { city } posts { title } subscribedToUser { firstName } } }"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/graphql", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": {"users": [
		{"firstName": "Ann", "profile": {"city": "Oslo"}, "posts": [{"title": "Hello"}, {"title": "Again"}], "subscribedToUser": [{"firstName": "Bob"}]},
		{"firstName": "Bob", "profile": null, "posts": [], "subscribedToUser": []}
	]}}`, w.Body.String())
}

func TestExportDisabledWithoutNeo4j(t *testing.T) {
	router := testRouter(t, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewAppRejectsMissingFixture(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development"}
	_, err := newApp(context.Background(), cfg, "does-not-exist.yaml", logger.Get())
	assert.Error(t, err)
}

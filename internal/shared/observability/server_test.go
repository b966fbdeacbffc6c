package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	status := HealthStatus{Status: "up"}
	srv := NewServer("127.0.0.1:0", func(ctx context.Context) HealthStatus { return status })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "up", got.Status)

	status = HealthStatus{Status: "degraded", LastFailure: "[UNHANDLED_KIND] unknown node kind"}
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	FragmentsEmittedTotal.Add(3)
	SkippedNodesTotal.WithLabelValues("needs_review").Inc()

	rec := httptest.NewRecorder()
	NewServer("", nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bindgen_fragments_emitted_total")
	assert.Contains(t, rec.Body.String(), `bindgen_skipped_nodes_total{reason="needs_review"}`)
}

func TestOpenAPIEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer("", nil).WithVersion("1.2.3").Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := openapi3.NewLoader().LoadFromData(rec.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.Equal(t, "1.2.3", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/health"))
	assert.NotNil(t, doc.Paths.Find("/metrics"))
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingOptions{ServiceName: "bindgen"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

package observability

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// APIDocument describes the endpoints served by Server.
func APIDocument(version string) *openapi3.T {
	health := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema().WithEnum("up", "degraded")).
		WithProperty("last_run", openapi3.NewDateTimeSchema()).
		WithProperty("last_failure", openapi3.NewStringSchema())
	health.Required = []string{"status"}

	healthOp := &openapi3.Operation{
		OperationID: "getHealth",
		Summary:     "Outcome of the most recent generation",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("last generation succeeded").WithJSONSchema(health),
			}),
			openapi3.WithStatus(503, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("last generation had failures").WithJSONSchema(health),
			}),
		),
	}

	metricsOp := &openapi3.Operation{
		OperationID: "getMetrics",
		Summary:     "Prometheus metrics",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("text exposition format").
					WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})),
			}),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "bindgen observability",
			Version: version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/health", &openapi3.PathItem{Get: healthOp}),
			openapi3.WithPath("/metrics", &openapi3.PathItem{Get: metricsOp}),
		),
	}
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"taxonomy": s.checkTaxonomy(ctx),
		"drafts":   s.checkDrafts(),
		"sse":      s.checkSSEManager(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkTaxonomy runs a tiny search to prove the label index answers.
func (s *Server) checkTaxonomy(ctx context.Context) ComponentHealth {
	if s.services.Taxonomy == nil {
		return ComponentHealth{Status: "unhealthy", Message: "taxonomy not configured"}
	}

	start := time.Now()
	_, err := s.services.Taxonomy.Search(ctx, "a", nil, 1)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "taxonomy search unavailable",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: fmt.Sprintf("%d product types", len(s.services.Taxonomy.Types())),
	}
}

func (s *Server) checkDrafts() ComponentHealth {
	if s.services.Drafts == nil {
		return ComponentHealth{Status: "unhealthy", Message: "draft registry not configured"}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: countLabel(s.services.Drafts.Len(), "open draft", "open drafts"),
	}
}

// checkSSEManager verifies the SSE event system is running.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.services.Events == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "SSE manager not configured",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: countLabel(s.services.Events.ClientCount(), "connected client", "connected clients"),
	}
}

func countLabel(n int, one, many string) string {
	switch n {
	case 0:
		return "no " + many
	case 1:
		return "1 " + one
	default:
		return fmt.Sprintf("%d %s", n, many)
	}
}

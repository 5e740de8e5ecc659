package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/lsst-sqre/templatebot-aide/pkg/controller/http"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

func TestHealthEndpoint(t *testing.T) {
	ctx := context.Background()
	server := controller.NewServer(ctx, controller.WithAddr("localhost:0"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Status = %v, want healthy", status.Status)
	}

	if status.Service != "templatebot-aide" {
		t.Errorf("Service = %v, want templatebot-aide", status.Service)
	}

	if status.Version == "" {
		t.Error("Version should not be empty")
	}
}

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceHealthy(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpGet(t, baseURL()+"/health")

	requireStatus(t, status, http.StatusOK, body)
	assert.Equal(t, "healthy", body["status"])
}

func TestServiceReady(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpGet(t, baseURL()+"/health/ready")

	// A degraded Kafka is still 200; an unhealthy critical check is 503.
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected readiness status %d: %v", status, body)
	}
	checks, _ := body["checks"].(map[string]any)
	assert.Contains(t, checks, "storage")
	assert.Contains(t, checks, "llm")
}

func TestRootBanner(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpGet(t, baseURL()+"/")

	requireStatus(t, status, http.StatusOK, body)
	assert.Equal(t, "Fynd AI Assessment API", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
}

// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check pings one dependency and returns an error when it is unhealthy.
type Check func(ctx context.Context) error

// Health serves /healthz. Each registered check runs with a shared timeout;
// any failure turns the response into 503.
type Health struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealth creates a health handler. With no checks it always reports ok.
func NewHealth(checks map[string]Check, timeout time.Duration) *Health {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Health{checks: checks, timeout: timeout}
}

// Handle responds according to the HTTP method and prevents caching.
func (h *Health) Handle(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	results, healthy := h.run(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}

	body := gin.H{"status": "ok"}
	if !healthy {
		body["status"] = "unavailable"
	}
	if len(results) > 0 {
		body["checks"] = results
	}
	c.JSON(status, body)
}

func (h *Health) run(ctx context.Context) (map[string]string, bool) {
	if len(h.checks) == 0 {
		return nil, true
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = "error"
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

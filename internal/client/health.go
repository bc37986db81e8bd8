package client

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health probe states reported per service.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// HealthProber checks service health endpoints for the gateway fanout.
type HealthProber struct {
	timeout time.Duration
}

// NewHealthProber builds a prober with a per-probe timeout.
func NewHealthProber(timeout time.Duration) *HealthProber {
	return &HealthProber{timeout: timeout}
}

// Probe reports the health state of the service behind url. Any
// transport failure or non-200 answer counts as unhealthy.
func (p *HealthProber) Probe(url string) string {
	agent := fiber.Get(url)
	agent.Timeout(p.timeout)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 || code != fiber.StatusOK {
		return HealthUnhealthy
	}
	return HealthHealthy
}

package client

import (
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apperrors "github.com/smartticket/platform/pkg/util"
)

// Forwarder proxies gateway requests to the backing services,
// translating transport failures into gateway error responses.
type Forwarder struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewForwarder builds a forwarder with a per-request timeout.
func NewForwarder(timeout time.Duration, logger *zap.Logger) *Forwarder {
	return &Forwarder{timeout: timeout, logger: logger}
}

// Forward proxies the request in c to url and writes the upstream
// response through unchanged. An upstream timeout becomes 504, an
// unreachable upstream 503.
func (f *Forwarder) Forward(c *fiber.Ctx, service, url string) error {
	if err := proxy.DoTimeout(c, url, f.timeout); err != nil {
		if isTimeout(err) {
			f.logger.Error("timeout forwarding request",
				zap.String("upstream", service),
				zap.String("url", url),
				zap.Error(err))
			return apperrors.NewUpstreamTimeout(service)
		}
		f.logger.Error("failed forwarding request",
			zap.String("upstream", service),
			zap.String("url", url),
			zap.Error(err))
		return apperrors.NewUpstreamUnavailable(service)
	}

	c.Response().Header.Del(fiber.HeaderServer)
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

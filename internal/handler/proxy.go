package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cran-mirror-proxy/internal/classify"
	"cran-mirror-proxy/internal/metrics"
	"cran-mirror-proxy/internal/model"
	"cran-mirror-proxy/internal/service"
)

// ProxyHandler forwards requests to the upstream CRAN mirror and emits one
// observation record per proxied request.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewProxyHandler creates a ProxyHandler. The metrics parameter is
// optional; pass nil to disable artifact metrics.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger, m *metrics.Metrics) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
		metrics: m,
	}
}

// Handle proxies the request to the upstream mirror and streams the
// response back. The path is classified before the upstream call; the
// observation record is emitted as soon as the upstream response headers
// are known, independent of body completion.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	// The escaped path is the path as received on the wire; the
	// classifier matches it without any decoding.
	path := req.URL.EscapedPath()
	ua := valueOrDash(req.Header.Get("User-Agent"))
	rangeHdr := valueOrDash(req.Header.Get("Range"))
	artifact := classify.Path(path)

	pr := &model.ProxyRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Path:     req.URL.Path,
		RawPath:  req.URL.RawPath,
		RawQuery: req.URL.RawQuery,
		Header:   req.Header,
		Body:     req.Body,
	}

	start := time.Now()
	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err, path, ua)
	}
	defer func() { _ = resp.Body.Close() }()

	if h.metrics != nil {
		h.metrics.ArtifactRequests.WithLabelValues(metrics.NormalizeArtifactType(artifact.Type)).Inc()
	}

	h.emitObservation(path, resp, time.Since(start), ua, rangeHdr, artifact)

	// Copy sanitized response headers and the status verbatim.
	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)

	// Stream the upstream body directly to the client, never buffering
	// it: artifacts can be hundreds of megabytes. If io.Copy fails
	// mid-stream (client disconnect, upstream reset), the status has
	// already been sent, so the client sees a truncated response with
	// the original status. We log the error for observability.
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", path,
		)
	}

	return nil
}

// emitObservation writes the single structured record for a proxied
// request. It must never fail or delay the response: a marshal error
// degrades to an empty descriptor instead of propagating.
func (h *ProxyHandler) emitObservation(path string, resp *model.ProxyResponse, elapsed time.Duration, ua, rangeHdr string, artifact classify.Artifact) {
	derived := "{}"
	if b, err := json.Marshal(artifact); err == nil {
		derived = string(b)
	}

	h.logger.Info("proxied",
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", elapsed.Milliseconds(),
		"ua", ua,
		"range", rangeHdr,
		"etag_out", valueOrDash(resp.Header.Get("Etag")),
		"content_length", valueOrDash(resp.Header.Get("Content-Length")),
		"derived", derived,
	)
}

// mapError translates a forwarding failure into a client-visible status:
// 400 when the inbound body could not be read, 502 for every upstream
// transport failure (timeouts included — they are treated identically).
// The warning emitted here is the only record for a failed request; no
// "proxied" record is written.
func (h *ProxyHandler) mapError(c echo.Context, err error, path, ua string) error {
	h.logger.Warn("upstream_error",
		"err", err.Error(),
		"path", path,
		"ua", ua,
	)

	if errors.Is(err, service.ErrReadBody) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream request timed out",
		})
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "upstream host unreachable",
		})
	}

	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": "upstream error",
	})
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

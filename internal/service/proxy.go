// Package service implements the core proxy forwarding logic.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"cran-mirror-proxy/internal/client"
	"cran-mirror-proxy/internal/config"
	"cran-mirror-proxy/internal/model"
)

// ErrReadBody is returned when the inbound request body cannot be read.
var ErrReadBody = errors.New("read request body")

// ProxyService handles the forwarding logic for proxy requests.
type ProxyService struct {
	client  *client.MirrorClient
	cfg     *config.Config
	logger  *slog.Logger
	baseURL *url.URL
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.MirrorClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}

	return &ProxyService{
		client:  c,
		cfg:     cfg,
		logger:  logger.With("component", "proxy_service"),
		baseURL: u,
	}, nil
}

// Forward sends a ProxyRequest to the upstream mirror and returns the
// response with hop-by-hop headers stripped. The caller is responsible
// for closing the response body.
//
// GET and HEAD requests never read the inbound body. For other methods
// the body is fully buffered before the upstream call; CRAN traffic is
// almost entirely read-only, so the buffering trade-off is deliberate
// (bounded further by the server's body limit). A body read failure
// returns ErrReadBody; any other error is a transport-level upstream
// failure, surfaced as-is with no retry.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	header := sanitizeHeaders(pr.Header)

	var body io.Reader
	if pr.Method != http.MethodGet && pr.Method != http.MethodHead && pr.Body != nil {
		data, err := io.ReadAll(pr.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadBody, err)
		}
		body = bytes.NewReader(data)
	}

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
	)

	resp, err := s.client.DoStream(pr.Ctx, pr.Method, s.buildUpstreamURL(pr), header, body)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	resp.Header = sanitizeHeaders(resp.Header)
	return resp, nil
}

// buildUpstreamURL joins the configured base (scheme/host/port) with the
// inbound path and query. Raw path and query are copied as received so
// percent-encodings survive byte-for-byte.
func (s *ProxyService) buildUpstreamURL(pr *model.ProxyRequest) string {
	u := *s.baseURL
	u.Path = pr.Path
	u.RawPath = pr.RawPath
	u.RawQuery = pr.RawQuery
	return u.String()
}

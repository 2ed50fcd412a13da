package service

import (
	"net/http"
	"strings"
)

// hopByHopHeaders are connection-management headers that must not cross a
// proxy hop. Each hop's transport sets its own values; forwarding stale
// ones corrupts framing. Host is included so the client computes the
// correct Host for the upstream.
var hopByHopHeaders = map[string]bool{
	"connection":        true,
	"proxy-connection":  true,
	"keep-alive":        true,
	"transfer-encoding": true,
	"te":                true,
	"upgrade":           true,
	"trailer":           true,
	"host":              true,
}

// sanitizeHeaders returns a copy of src with hop-by-hop headers removed,
// matched case-insensitively. Every other header is carried over verbatim,
// duplicates included. This is a deny-list: arbitrary upstream headers
// (cache-control, etags, custom names) pass through untouched.
func sanitizeHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if hopByHopHeaders[strings.ToLower(key)] {
			continue
		}
		dst[key] = append([]string(nil), vals...)
	}
	return dst
}

package providers

import (
	"net/http"
	"time"
)

const upstreamTimeout = 15 * time.Second

// NewHTTPClientProvider returns the client shared by the platform API clients.
func NewHTTPClientProvider() *http.Client {
	return &http.Client{Timeout: upstreamTimeout}
}

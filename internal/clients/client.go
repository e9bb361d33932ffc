// Package clients talks to the upstream statistics APIs. Clients hold no account state:
// credentials are passed on every call and every HTTP request goes through a Gate
// so the caller can account for it against the call budget.
package clients

import (
	"context"
	"creatorstats/internal/models"
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

const maxResponseBodySize = 4 << 20 // 4 MB

var (
	// ErrBlocked is returned when the gate refuses a request.
	ErrBlocked = errors.New("call budget does not allow a request")
	// ErrNotFound is returned when the API answers but the account is unknown.
	ErrNotFound = errors.New("account not found")
	// ErrSimulated is returned when real data is requested from a client that only derives it locally.
	ErrSimulated = errors.New("no upstream API configured for this account")
)

// Gate is consulted before every upstream request and told about every request
// that actually reached the network, whatever its outcome.
type Gate interface {
	Allow() bool
	Record(err error)
}

// OpenGate allows everything and records nothing.
type OpenGate struct{}

func (OpenGate) Allow() bool    { return true }
func (OpenGate) Record(_ error) {}

type Client[C models.ServiceConfig] interface {
	Platform() models.Platform
	// Missing lists required credential fields that are empty.
	Missing(cfg C) []string
	// Simulated reports that the client derives data locally instead of calling an API.
	Simulated(cfg C) bool
	FetchStats(ctx context.Context, cfg C, gate Gate) (models.StatsSnapshot, error)
	FetchRecentItems(ctx context.Context, cfg C, limit int, gate Gate) ([]models.ContentItem, error)
	// Probe issues a lightweight request and returns the HTTP status code.
	Probe(ctx context.Context, cfg C) (int, error)
	Synthetic(cfg C) (models.StatsSnapshot, []models.ContentItem)
}

// HTTPStatusError is a non-2xx upstream answer.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an HTTP status error.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// getJSON performs a gated GET and decodes a 2xx body into dst.
func getJSON(ctx context.Context, httpClient *http.Client, url string, gate Gate, dst any) error {
	if !gate.Allow() {
		return ErrBlocked
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		gate.Record(err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		gate.Record(err)
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		gate.Record(err)
		return err
	}
	gate.Record(nil)

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// probe performs an ungated GET and returns the status code.
func probe(ctx context.Context, httpClient *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
	resp.Body.Close()
	return resp.StatusCode, nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Header is a single request header; order is preserved on the wire
type Header struct {
	Name  string
	Value string
}

// HTTPResponse is the raw result of a request. A non-200 status is not an error.
type HTTPResponse struct {
	Status int
	Body   []byte
}

// Transport issues one POST and returns whatever the server answered.
// An error means no response was received (DNS, TLS, connection, timeout).
type Transport interface {
	Post(ctx context.Context, url string, body []byte, headers []Header) (*HTTPResponse, error)
}

// HTTPTransport implements Transport with net/http
type HTTPTransport struct {
	httpClient *http.Client
}

// NewHTTPTransport creates a transport whose requests are bounded by timeout.
// A zero timeout leaves requests unbounded.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post sends body to url with the given headers
func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte, headers []Header) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &HTTPResponse{
		Status: resp.StatusCode,
		Body:   data,
	}, nil
}

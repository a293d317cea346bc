package clients

import (
	"context"
	"io"
	"net/http"
)

// Logger interface for HTTP client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// HTTPClient wraps http.Client with context-aware helpers.
// It automatically extracts metadata from context and adds appropriate headers.
type HTTPClient struct {
	client *http.Client
	logger Logger
}

// NewHTTPClient creates a new HTTP client wrapper
func NewHTTPClient(client *http.Client, logger Logger) *HTTPClient {
	return &HTTPClient{
		client: client,
		logger: logger,
	}
}

// DoRequest creates and executes an HTTP request, extracting metadata from context.
// This is the central method that handles context-to-header conversion.
func (c *HTTPClient) DoRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if address, ok := GetWallet(ctx); ok {
		req.Header.Set("X-Wallet-Address", address)
		c.logger.Debug("added X-Wallet-Address header from context", "wallet_address", address)
	}

	if userID, ok := GetUserID(ctx); ok {
		req.Header.Set("X-User-ID", userID)
	}

	return c.client.Do(req)
}

// DoRequestWithHeaders is DoRequest plus caller-supplied headers
func (c *HTTPClient) DoRequestWithHeaders(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if address, ok := GetWallet(ctx); ok {
		req.Header.Set("X-Wallet-Address", address)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.client.Do(req)
}

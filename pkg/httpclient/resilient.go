package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/menmadev/portfolio-api/pkg/retry"
)

// ResilientClient retries transport failures of an underlying Client with
// exponential backoff. Responses with any status code are returned as-is.
type ResilientClient struct {
	client Client
	config retry.Config
}

// NewResilientClient creates a retrying wrapper around client
func NewResilientClient(client Client, cfg retry.Config) *ResilientClient {
	if cfg.RetryableErrors == nil {
		cfg.RetryableErrors = retry.IsTransportError
	}
	return &ResilientClient{
		client: client,
		config: cfg,
	}
}

// Do sends req, retrying on transport errors. The request body is rebuilt
// from req.GetBody for every attempt.
func (c *ResilientClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	operation := req.Method + " " + req.URL.Host

	return retry.DoWithResult(ctx, c.config, operation, func() (*http.Response, error) {
		attempt := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			attempt.Body = body
		}
		return c.client.Do(attempt)
	})
}

package providers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxResponseBytes bounds how much of an upstream body is read; well-formed
// payloads are a few kilobytes.
const maxResponseBytes = 1 << 20

// errUpstreamFailure marks replies the circuit breaker must count as
// failures while still handing the reply to the caller for classification.
var errUpstreamFailure = errors.New("upstream failure")

// upstreamResponse is a fully read upstream reply.
type upstreamResponse struct {
	status int
	body   []byte
}

// breakerClient is the HTTP transport shared by a provider's operations: a
// timeout-bounded client behind one circuit breaker. Transport failures, 5xx
// and 429 trip the breaker; 4xx answers like "location not found" are
// legitimate replies and do not.
type breakerClient struct {
	provider string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

func newBreakerClient(provider string, timeout time.Duration) *breakerClient {
	return &breakerClient{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        provider,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// get performs one GET through the breaker. A non-nil upstreamResponse means
// the upstream answered and the status is the caller's to classify; a non-nil
// error means the request never produced a usable reply (transport failure or
// open breaker) and is already an *APIError.
func (c *breakerClient) get(ctx context.Context, rawURL string) (*upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &APIError{Provider: c.provider, Kind: KindUnknown, Message: "build request", Cause: err}
	}

	result, execErr := c.breaker.Execute(func() (interface{}, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				slog.Warn("close response body", "provider", c.provider, "error", closeErr)
			}
		}()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if readErr != nil {
			return nil, readErr
		}

		reply := &upstreamResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return reply, errUpstreamFailure
		}
		return reply, nil
	})

	if result != nil {
		return result.(*upstreamResponse), nil
	}

	if errors.Is(execErr, gobreaker.ErrOpenState) || errors.Is(execErr, gobreaker.ErrTooManyRequests) {
		return nil, &APIError{Provider: c.provider, Kind: KindNetwork, Message: "circuit breaker open", Cause: execErr}
	}
	return nil, &APIError{Provider: c.provider, Kind: KindNetwork, Message: "request failed", Cause: execErr}
}

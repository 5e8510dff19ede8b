package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"ressample/pkg/models"
)

const (
	defaultPushRetryMax     = 3
	defaultPushRetryWaitMin = 500 * time.Millisecond
	defaultPushRetryWaitMax = 5 * time.Second
	defaultPushTimeout      = 10 * time.Second
)

// PushPayload is the JSON body posted for every snapshot.
type PushPayload struct {
	RunID    string          `json:"run_id"`
	Host     string          `json:"host"`
	Snapshot models.Snapshot `json:"snapshot"`
}

// HTTPOptions configure the push client. Zero values select defaults.
type HTTPOptions struct {
	RunID        string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// HTTP posts every snapshot as JSON to a collector endpoint.
type HTTP struct {
	url     string
	client  *retryablehttp.Client
	runID   string
	host    string
	timeout time.Duration
}

// NewHTTP creates a push sink for url.
func NewHTTP(url string, opts HTTPOptions) *HTTP {
	if opts.RetryMax <= 0 {
		opts.RetryMax = defaultPushRetryMax
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = defaultPushRetryWaitMin
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = defaultPushRetryWaitMax
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultPushTimeout
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &HTTP{
		url:     url,
		client:  CreateRetryableClient(opts.RetryMax, opts.RetryWaitMin, opts.RetryWaitMax),
		runID:   opts.RunID,
		host:    host,
		timeout: opts.Timeout,
	}
}

// CreateRetryableClient creates a retryable HTTP client for pushing snapshots.
func CreateRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	client.CheckRetry = pushRetryPolicy
	// Hand the final response back instead of a generic "giving up" error
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// pushRetryPolicy retries connection errors and server side failures;
// client errors (4xx) are final.
func pushRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the last error itself
	}

	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError) {
		return true, nil
	}

	return false, nil
}

// Write posts one snapshot and waits for the response.
func (h *HTTP) Write(snap models.Snapshot) error {
	body, err := json.Marshal(PushPayload{
		RunID:    h.runID,
		Host:     h.host,
		Snapshot: snap,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", ErrRemoteStatus, resp.Status)
	}
	return nil
}

// Flush is a no-op; every Write is a complete request.
func (h *HTTP) Flush() error {
	return nil
}

// Close drops idle keep-alive connections.
func (h *HTTP) Close() error {
	h.client.HTTPClient.CloseIdleConnections()
	return nil
}

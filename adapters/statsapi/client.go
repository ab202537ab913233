package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	DefaultTimeout = 10 * time.Second
	// maxBodyBytes caps what is read from a stats API.
	maxBodyBytes = 1 << 20
)

// HTTPClient is the subset of *http.Client the stats client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches raw stats payloads of the JSON platforms.
type Client struct {
	httpClient HTTPClient
	timeout    time.Duration
	logger     logger.Logger
}

// NewClient builds a stats client. A zero timeout disables the per-request deadline;
// a negative one falls back to DefaultTimeout.
func NewClient(httpClient HTTPClient, timeout time.Duration, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout < 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: httpClient, timeout: timeout, logger: log}
}

// FetchStats issues one GET against the platform's stats API.
//
// The body decides the outcome: a JSON object with a truthy success key is a hit, any other
// JSON object means the user does not exist. Transport errors, 5xx responses and bodies that
// are not JSON objects are upstream failures.
func (c *Client) FetchStats(ctx context.Context, p platform.Platform, handle string) (json.RawMessage, error) {
	if p.Kind != platform.KindJSON {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("%s has no stats API", p.Name), platform.ErrUnknownPlatform)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := p.StatsURL(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperror.NewUpstream(p.Name, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.NewUpstream(p.Name, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.NewUpstream(p.Name, "read body", err)
	}

	c.logger.Debug("Stats API responded",
		zap.String("platform", string(p.ID)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperror.NewUpstream(p.Name, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	ok, err := p.Accepts(body)
	if err != nil {
		return nil, apperror.NewUpstream(p.Name, "decode body", err)
	}
	if !ok {
		return nil, apperror.NewNotFound(p.Name+" user", handle)
	}
	return json.RawMessage(body), nil
}


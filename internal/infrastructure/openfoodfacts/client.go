// Package openfoodfacts implements the external catalog lookup collaborator
// against the Open Food Facts search API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cocoamatch/backend/internal/domain"
)

const (
	maxAttempts = 3
	pageSize    = 20
)

// Client handles communication with the Open Food Facts search API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	log         *zap.Logger
}

// NewClient creates a new Open Food Facts client. ratePerSec and burst
// bound outgoing requests so batch reconciliation respects the API's
// fair-use quota.
func NewClient(baseURL, userAgent string, ratePerSec float64, burst int, log *zap.Logger) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if burst <= 0 {
		burst = 10
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		log:         log,
	}
}

// Search looks up candidate products for a set of free-text search terms.
// An empty candidate list with a nil error is a valid outcome; the caller
// decides what an empty result means.
func (c *Client) Search(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
	endpoint := fmt.Sprintf("%s/cgi/search.pl", c.baseURL)
	params := url.Values{}
	params.Add("search_terms", terms)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", fmt.Sprintf("%d", pageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warn("search request failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = err
			if err := sleepWithContext(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, lastErr)
			}
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrLookupFailed, err)
		}

		entries := mapProducts(searchResp.Products)
		c.log.Debug("search completed",
			zap.String("terms", terms),
			zap.Int("products", len(searchResp.Products)),
			zap.Int("mapped", len(entries)))
		return entries, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, lastErr)
}

// doRequest executes one HTTP GET and returns the response body.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return body, nil
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

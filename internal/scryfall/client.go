// Package scryfall is a rate-limited client for the Scryfall card catalog.
// The league uses it to look up paper printings and pick the cheapest priced
// one, so a deck's total stays a budget total.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // throttle against Scryfall's rate limit, do not lower
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// ErrRateLimited is returned when the API keeps responding 429 after all
// retries. Callers surface it so clients can back off.
var ErrRateLimited = errors.New("scryfall: rate limited (HTTP 429)")

// Client is a Scryfall API client. All requests go through a shared rate
// limiter, so a single Client must be reused across lookups.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
	logger      *slog.Logger
}

// NewClient creates a new Scryfall API client.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// 1 request per 100ms = 10 req/sec
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		baseURL:     defaultBaseURL,
		userAgent:   "mtg-commander-league/1.0",
		logger:      logger,
	}
}

// SetBaseURL overrides the API base URL. Useful for proxies and tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SearchPrintings returns every unique paper printing of a card by exact
// name. Digital-only printings are excluded at the query level.
func (c *Client) SearchPrintings(ctx context.Context, cardName string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("!%q game:paper", cardName))
	query.Set("unique", "prints")
	searchURL := fmt.Sprintf("%s/cards/search?%s", c.baseURL, query.Encode())

	var result SearchResult
	if err := c.doRequest(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("failed to search printings of %q: %w", cardName, err)
	}

	return &result, nil
}

// FetchCheapestPrinting looks up a card by exact name and returns the
// printing with the lowest usable price under the given finish preference.
// When no printing carries a usable price, the first printing is returned so
// the caller can still record the card (at price zero). A nil card with nil
// error means the catalog does not know the name at all.
func (c *Client) FetchCheapestPrinting(ctx context.Context, cardName string, preferFoil bool) (*Card, error) {
	result, err := c.SearchPrintings(ctx, cardName)
	if err != nil {
		if IsNotFound(err) {
			c.logger.Warn("card not found in catalog", "card", cardName)
			return nil, nil
		}
		return nil, err
	}

	if len(result.Data) == 0 {
		c.logger.Warn("no printings returned", "card", cardName)
		return nil, nil
	}

	if cheapest := CheapestPrinting(result.Data, preferFoil); cheapest != nil {
		return cheapest, nil
	}

	// No printing has a price; keep the card anyway rather than failing
	// a whole deck calculation over one unpriced entry.
	fallback := &result.Data[0]
	c.logger.Warn("no priced printing found, using first",
		"card", cardName, "printings", len(result.Data), "set", fallback.SetName)
	return fallback, nil
}

// doRequest performs a GET with rate limiting and retry logic, decoding the
// JSON response into result.
func (c *Client) doRequest(ctx context.Context, requestURL string, result interface{}) error {
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return fmt.Errorf("HTTP request failed: %w", err)
		}

		status := resp.StatusCode
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch status {
		case http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests:
			if attempt < maxRetries {
				delay := backoff
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if parsed, parseErr := time.ParseDuration(retryAfter + "s"); parseErr == nil {
						delay = parsed
					}
				}
				time.Sleep(delay)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return ErrRateLimited

		case http.StatusNotFound:
			return &NotFoundError{URL: requestURL}

		default:
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", status, string(body))
		}
	}

	return ErrRateLimited
}

// minDuration returns the minimum of two time.Duration values.
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Google Geocoding JSON endpoint
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Coordinates are rendered with five decimal places
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// FormatCoordinate renders a coordinate with five decimal places
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

// Options configures the Google client
type Options struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	CacheSize         int
	Timeout           time.Duration
	FailureThreshold  int
	ResetTimeout      time.Duration
}

// Client looks up addresses with the Google Geocoding API
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, Coordinates]
	breaker *CircuitBreaker
	log     *zap.Logger
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewClient creates a geocoding client. A client without an API key is
// valid and never finds anything
func NewClient(opts Options, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 10 * time.Minute
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	cache, err := lru.New[string, Coordinates](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		breaker: NewCircuitBreaker(opts.FailureThreshold, opts.ResetTimeout, log),
		log:     log,
	}, nil
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Lookup geocodes address. The boolean is false when nothing was found for
// any reason: no key, a non-OK status, empty results, or a transport error
func (c *Client) Lookup(ctx context.Context, address string) (Coordinates, bool) {
	address = strings.TrimSpace(address)
	if !c.Enabled() || address == "" {
		return Coordinates{}, false
	}

	key := normalizeAddress(address)
	if coords, ok := c.cache.Get(key); ok {
		return coords, true
	}

	if !c.breaker.CanProceed() {
		c.log.Debug("Geocoding skipped, circuit breaker open", zap.String("address", address))
		return Coordinates{}, false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Coordinates{}, false
	}

	coords, status, err := c.fetch(ctx, address)
	if err != nil {
		c.breaker.RecordFailure(status)
		c.log.Warn("Geocoding request failed", zap.String("address", address), zap.Error(err))
		return Coordinates{}, false
	}
	c.breaker.RecordSuccess()
	if coords == nil {
		return Coordinates{}, false
	}

	c.cache.Add(key, *coords)
	return *coords, true
}

// fetch returns nil coordinates without error when Google answered but
// had no match
func (c *Client) fetch(ctx context.Context, address string) (*Coordinates, int, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, resp.StatusCode, nil
	case "OVER_QUERY_LIMIT", "REQUEST_DENIED", "UNKNOWN_ERROR":
		return nil, resp.StatusCode, fmt.Errorf("geocoder status %s: %s", body.Status, body.ErrorMessage)
	default:
		c.log.Info("Geocoder returned no match",
			zap.String("address", address),
			zap.String("status", body.Status),
			zap.String("error_message", body.ErrorMessage))
		return nil, resp.StatusCode, nil
	}
	if len(body.Results) == 0 {
		return nil, resp.StatusCode, nil
	}

	loc := body.Results[0].Geometry.Location
	return &Coordinates{
		Latitude:  FormatCoordinate(loc.Lat),
		Longitude: FormatCoordinate(loc.Lng),
	}, resp.StatusCode, nil
}

func normalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

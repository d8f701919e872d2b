// Package googlebooks looks up bibliographic metadata by ISBN in the Google
// Books catalog and turns a verified result into a library record.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lepinkainen/mylibrary/internal/book"
	"github.com/lepinkainen/mylibrary/internal/cache"
	liberrors "github.com/lepinkainen/mylibrary/internal/errors"
	"github.com/lepinkainen/mylibrary/internal/ratelimit"
)

// DefaultBaseURL is the public Google Books API root
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Client queries the catalog. It holds no per-lookup state, so concurrent
// lookups for different ISBNs are safe.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	cache      *cache.CacheDB
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithAPIKey adds the key query parameter to every request
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the HTTP client. Timeouts are whatever it carries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces requests to requestsPerSecond. Zero disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) { c.limiter = ratelimit.New("GoogleBooks", requestsPerSecond, 1) }
}

// WithCache stores search results in db. A nil db disables caching.
func WithCache(db *cache.CacheDB) Option {
	return func(c *Client) { c.cache = db }
}

// New creates a client with the default base URL, no rate limit and no cache.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		limiter:    ratelimit.New("GoogleBooks", 0, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the book with the given ISBN-13.
//
// The catalog is queried with a keyword search limited to one result, and
// the first result is only trusted if its identifiers contain the requested
// ISBN-13. Failures are classified as ConfigurationError, TransportError,
// NotFoundError or MismatchError.
func (c *Client) Lookup(ctx context.Context, isbn13 string) (*book.Book, error) {
	reqURL, err := c.searchURL(isbn13)
	if err != nil {
		return nil, err
	}

	result, fromCache, err := cache.GetOrFetchWithTTL(c.cache, cache.GoogleBooksTable, isbn13,
		func() (*cachedSearch, error) {
			return c.search(ctx, reqURL)
		},
		cache.SelectNegativeCacheTTL(func(r *cachedSearch) bool { return r.NotFound }))
	if err != nil {
		return nil, err
	}

	if result.NotFound || result.Volume == nil {
		return nil, liberrors.NewNotFoundError(isbn13)
	}

	vol := result.Volume
	verified, ok := vol.MatchISBN13(isbn13)
	if !ok {
		slog.Debug("Google Books returned a different volume", "isbn", isbn13, "volume", vol.ID, "isbn13s", vol.ISBN13s())
		return nil, liberrors.NewMismatchError(isbn13, vol.ID, vol.ISBN13s())
	}

	info := vol.VolumeInfo
	b := book.New(book.Params{
		Title:         *info.Title,
		Subtitle:      info.Subtitle,
		Authors:       info.Authors,
		Description:   info.Description,
		PublishedDate: *info.PublishedDate,
		ImageURL:      vol.Thumbnail(),
		PageCount:     *info.PageCount,
		ISBN13:        verified,
	})

	slog.Debug("Found book in Google Books", "isbn", isbn13, "title", b.Title, "from_cache", fromCache)
	return b, nil
}

// searchURL builds GET {base}/volumes?maxResults=1&q={isbn13}. The q
// parameter is a keyword search; the isbn: qualifier misses too many books.
func (c *Client) searchURL(isbn13 string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", liberrors.NewConfigurationError("invalid Google Books base URL", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", liberrors.NewConfigurationError(fmt.Sprintf("invalid Google Books base URL %q", c.baseURL), nil)
	}

	u := base.JoinPath("volumes")
	q := url.Values{}
	q.Set("maxResults", "1")
	q.Set("q", isbn13)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) search(ctx context.Context, reqURL string) (*cachedSearch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, liberrors.NewConfigurationError("creating Google Books request", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, liberrors.NewTransportError("google books request", err)
	}

	slog.Debug("Querying Google Books", "url", redactKey(reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, liberrors.NewTransportError("google books request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, liberrors.NewTransportError("google books request",
			liberrors.NewRateLimitErrorWithRetry("google books rate limit exceeded", retryAfter(resp.Header.Get("Retry-After"))))
	case resp.StatusCode != http.StatusOK:
		return nil, liberrors.NewTransportError("google books request", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, liberrors.NewTransportError("decoding google books response", err)
	}

	if len(result.Items) == 0 {
		return &cachedSearch{NotFound: true}, nil
	}

	vol := result.Items[0]
	if field := vol.missingField(); field != "" {
		return nil, liberrors.NewTransportError("decoding google books response",
			fmt.Errorf("volume %s is missing required field %s", vol.ID, field))
	}

	return &cachedSearch{Volume: &vol}, nil
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

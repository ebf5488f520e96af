// Package tvmaze wraps the tvmaze catalog API for shows, episodes and people.
package tvmaze

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/handsomefox/showboard/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.tvmaze.com/"
	DefaultTimeout = 10 * time.Second

	// countryParam is the filter key the tvmaze website uses for its country listing.
	countryParam = "Show[country_enum]"
)

// ErrUpstream matches every failure returned by Client.
var ErrUpstream = errors.New("tvmaze unavailable")

// UpstreamError describes a failed call. Status is zero for transport and decode failures.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tvmaze request %s failed: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("tvmaze request %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// NotFound reports whether upstream answered 404.
func (e *UpstreamError) NotFound() bool { return e.Status == http.StatusNotFound }

type Options struct {
	BaseURL string
	// CountryBaseURL is the host used for the country listing. Defaults to BaseURL.
	CountryBaseURL string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

type Client struct {
	baseURL        string
	countryBaseURL string
	http           *http.Client
}

func New(opts Options) *Client {
	baseURL := withTrailingSlash(opts.BaseURL, DefaultBaseURL)
	countryBaseURL := withTrailingSlash(opts.CountryBaseURL, baseURL)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:        baseURL,
		countryBaseURL: countryBaseURL,
		http:           httpClient,
	}
}

func (c *Client) Shows(ctx context.Context) ([]Show, error) {
	var out []Show
	if err := c.get(ctx, "shows", c.baseURL+"shows", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchShows(ctx context.Context, query string) ([]Show, error) {
	values := url.Values{}
	values.Set("q", query)

	var hits []searchHit
	if err := c.get(ctx, "search_shows", c.baseURL+"search/shows?"+values.Encode(), &hits); err != nil {
		return nil, err
	}
	out := make([]Show, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hit.Show)
	}
	return out, nil
}

func (c *Client) Show(ctx context.Context, id int64) (Show, error) {
	var out Show
	err := c.get(ctx, "show", c.baseURL+"shows/"+strconv.FormatInt(id, 10), &out)
	return out, err
}

func (c *Client) Episodes(ctx context.Context, showID int64) ([]json.RawMessage, error) {
	var out []json.RawMessage
	endpoint := fmt.Sprintf("%sshows/%d/episodes", c.baseURL, showID)
	if err := c.get(ctx, "episodes", endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShowsByCountry passes the country code through to upstream untouched;
// whatever upstream makes of it is returned as-is.
func (c *Client) ShowsByCountry(ctx context.Context, code string) ([]Show, error) {
	values := url.Values{}
	values.Set(countryParam, code)

	var out []Show
	if err := c.get(ctx, "shows_by_country", c.countryBaseURL+"shows?"+values.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Person(ctx context.Context, id int64) (Person, error) {
	var out Person
	err := c.get(ctx, "person", c.baseURL+"people/"+strconv.FormatInt(id, 10), &out)
	return out, err
}

func (c *Client) CastCredits(ctx context.Context, personID int64) ([]CastCredit, error) {
	var out []CastCredit
	endpoint := fmt.Sprintf("%speople/%d/castcredits", c.baseURL, personID)
	if err := c.get(ctx, "cast_credits", endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShowByURL fetches a show from an absolute link such as a credit's _links.show.href.
func (c *Client) ShowByURL(ctx context.Context, href string) (Show, error) {
	var out Show
	if strings.TrimSpace(href) == "" {
		return out, &UpstreamError{URL: href, Err: errors.New("empty show link")}
	}
	err := c.get(ctx, "show", href, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, name, endpoint string, dst any) (err error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, status).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return &UpstreamError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{URL: endpoint, Err: err}
	}
	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &UpstreamError{URL: endpoint, Status: resp.StatusCode, Err: errors.New(resp.Status)}
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(statusErr, cerr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		decodeErr := &UpstreamError{URL: endpoint, Err: fmt.Errorf("decode: %w", err)}
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(decodeErr, cerr)
		}
		return decodeErr
	}
	return resp.Body.Close()
}

func withTrailingSlash(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

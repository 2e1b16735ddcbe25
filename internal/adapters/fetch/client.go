// Package fetch downloads stats pages through a rate-limited HTTP client.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/okian/fbradar/internal/domain/model"
	"github.com/okian/fbradar/pkg/metrics"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "fbradar/1.0"
	defaultMaxBody   = 8 << 20
)

// Page is a fetched document.
type Page struct {
	URL    string
	Status int
	Body   []byte
}

// OK reports whether the page was served with 200.
func (p Page) OK() bool { return p.Status == http.StatusOK }

// Client issues unauthenticated GETs, at most one per limiter token.
type Client struct {
	http      *resty.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
	maxBody   int64
}

// NewClient creates a client. Without WithRateLimit one request per five
// seconds is allowed.
func NewClient(opts ...Option) *Client {
	c := &Client{
		limiter:   rate.NewLimiter(rate.Every(5*time.Second), 1),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(c.timeout)
	httpClient.SetHeader("User-Agent", c.userAgent)
	httpClient.SetHeader("Accept", "text/html,application/xhtml+xml")
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})
	c.http = httpClient
	return c
}

// Get fetches url. Transport failures wrap model.ErrFetch; any HTTP status is
// returned as a Page for the caller to judge. The body is read through the
// size cap, so an oversized page is never buffered whole.
func (c *Client) Get(ctx context.Context, url string) (Page, error) {
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		metrics.RecordFetchFailure("transport")
		return Page{}, fmt.Errorf("%w: %s: %w", model.ErrFetch, url, err)
	}
	raw := res.RawBody()
	defer func() { _ = raw.Close() }()

	body, err := c.readBody(raw)
	if errors.Is(err, ErrBodyTooLarge) {
		metrics.RecordFetchFailure("too_large")
		return Page{}, fmt.Errorf("%w: %s: %w (over %d bytes)", model.ErrFetch, url, err, c.maxBody)
	}
	if err != nil {
		metrics.RecordFetchFailure("transport")
		return Page{}, fmt.Errorf("%w: %s: %w", model.ErrFetch, url, err)
	}

	page := Page{URL: url, Status: res.StatusCode(), Body: body}
	if !page.OK() {
		metrics.RecordFetchFailure("http_status")
		return page, nil
	}
	metrics.RecordPageFetched(float64(time.Since(start).Milliseconds()))
	return page, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBody <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

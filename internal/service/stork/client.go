package stork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"StorkPull/internal/domain/models"
	drepo "StorkPull/internal/domain/repository"
	xhttp "StorkPull/pkg/http"
	xutil "StorkPull/pkg/util"
)

const (
	pathMe          = "/me"
	pathPrices      = "/stork_signed_prices"
	pathValidations = "/stork_signed_prices/validations"

	DefaultUserAgent = "Mozilla/5.0 (Node)"
	DefaultOrigin    = "chrome-extension://knnliglhgkmlblppdejchidfihjnockl"
)

// Option configures Client.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithOrigin overrides the Origin header.
func WithOrigin(origin string) Option {
	return func(c *Client) {
		if origin != "" {
			c.origin = origin
		}
	}
}

// WithTimeout sets the per-request timeout of every egress client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client talks to the Stork oracle REST API. It is safe for concurrent use
// and keeps one HTTP client per egress path.
type Client struct {
	baseURL   string
	userAgent string
	origin    string
	timeout   time.Duration

	mu      sync.Mutex
	clients map[string]*xhttp.Client
}

var _ drepo.OracleAPI = (*Client)(nil)

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		origin:    DefaultOrigin,
		timeout:   30 * time.Second,
		clients:   make(map[string]*xhttp.Client),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// httpClient returns the cached client for egress, building it on first use.
func (c *Client) httpClient(egress string) (*xhttp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[egress]; ok {
		return hc, nil
	}

	e, err := xhttp.ParseEgress(egress)
	if err != nil {
		return nil, err
	}
	rt, err := e.Transport()
	if err != nil {
		return nil, err
	}

	hc := xhttp.NewClient(xhttp.WithTimeout(c.timeout), xhttp.WithTransport(rt))
	c.clients[egress] = hc
	return hc, nil
}

func (c *Client) headers(accessToken string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + accessToken,
		"User-Agent":    c.userAgent,
		"Origin":        c.origin,
	}
}

func fetchError(op string, err error) error {
	fe := &models.FetchError{Op: op, Err: err}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		fe.Status = se.StatusCode
	}
	return fe
}

type meResponse struct {
	Data struct {
		Stats map[string]json.RawMessage `json:"stats"`
	} `json:"data"`
}

// UserStats fetches GET /me.
func (c *Client) UserStats(ctx context.Context, accessToken string) (*models.UserStats, error) {
	hc, err := c.httpClient("")
	if err != nil {
		return nil, fetchError("stats", err)
	}

	var resp meResponse
	err = hc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + pathMe,
		Headers: c.headers(accessToken),
	}, &resp)
	if err != nil {
		return nil, fetchError("stats", err)
	}

	stats := &models.UserStats{Raw: resp.Data.Stats}
	stats.ValidCount = rawInt(resp.Data.Stats["stork_signed_prices_valid_count"])
	stats.InvalidCount = rawInt(resp.Data.Stats["stork_signed_prices_invalid_count"])
	return stats, nil
}

type signedPriceEntry struct {
	Price                json.RawMessage `json:"price"`
	TimestampedSignature *struct {
		MsgHash   string          `json:"msg_hash"`
		Timestamp json.RawMessage `json:"timestamp"`
		Signature json.RawMessage `json:"signature"`
	} `json:"timestamped_signature"`
}

type pricesResponse struct {
	Data map[string]signedPriceEntry `json:"data"`
}

// SignedPrices fetches the current batch, sorted by asset key.
func (c *Client) SignedPrices(ctx context.Context, accessToken string) ([]models.SignedPrice, error) {
	hc, err := c.httpClient("")
	if err != nil {
		return nil, fetchError("prices", err)
	}

	var resp pricesResponse
	err = hc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + pathPrices,
		Headers: c.headers(accessToken),
	}, &resp)
	if err != nil {
		return nil, fetchError("prices", err)
	}

	points := make([]models.SignedPrice, 0, len(resp.Data))
	for asset, entry := range resp.Data {
		p := models.SignedPrice{
			Asset: asset,
			Price: parsePrice(entry.Price),
		}
		if ts := entry.TimestampedSignature; ts != nil {
			p.MsgHash = ts.MsgHash
			p.Timestamp = xutil.FromUnixNano(rawInt(ts.Timestamp))
			p.Signature = ts.Signature
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Asset < points[j].Asset })
	return points, nil
}

type validationRequest struct {
	MsgHash string `json:"msg_hash"`
	Valid   bool   `json:"valid"`
}

// SubmitValidation reports one verdict through egress ("" for direct).
func (c *Client) SubmitValidation(ctx context.Context, accessToken, egress, msgHash string, valid bool) error {
	hc, err := c.httpClient(egress)
	if err != nil {
		return fmt.Errorf("submit validation: %w", err)
	}

	err = hc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + pathValidations,
		Headers: c.headers(accessToken),
		Body:    validationRequest{MsgHash: msgHash, Valid: valid},
	}, nil)
	if err != nil {
		return fmt.Errorf("submit validation: %w", err)
	}
	return nil
}

// parsePrice accepts a JSON number or numeric string. Anything else is
// reported as a missing price.
func parsePrice(raw json.RawMessage) decimal.NullDecimal {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// rawInt reads a JSON number or numeric string, truncating fractions.
func rawInt(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.IntPart()
}

// Package store is the HTTP client for the external booking store, a
// spreadsheet/calendar automation endpoint. The store is treated as a
// black box: this package only knows its wire contract.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// Action names accepted by the store's admin POST endpoint.
const (
	ActionCancel     = "cancel"
	ActionBlock      = "block"
	ActionUnblock    = "unblock"
	ActionReschedule = "reschedule"
)

// Booking statuses as the store reports them.
const (
	StatusConfirmed = "CONFIRMED"
	StatusBlocked   = "BLOCKED"
)

// BookingRecord is the store's projection of a booking. BLOCKED records
// are operator placeholders with no client identity.
type BookingRecord struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Details string `json:"details"`
	Status  string `json:"status"`
}

// BookingPayload is the body of a public booking creation.
type BookingPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	CreatedAt   string `json:"created_at"`
}

// MutationDetails reports how many backing records the store touched.
type MutationDetails struct {
	SheetRecords   int `json:"sheet_records"`
	CalendarEvents int `json:"calendar_events"`
}

// MutationResult is the store's success envelope for admin actions.
type MutationResult struct {
	Message string
	Details *MutationDetails
}

// envelope is the store's generic response wrapper.
type envelope struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Details  *MutationDetails `json:"details"`
	Bookings []BookingRecord  `json:"bookings"`
	Booked   []string         `json:"bookedTimes"`
}

// RemoteError is an explicit error status returned by the store.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "booking store reported an error"
	}
	return e.Message
}

// Client calls the booking store over HTTP. Reads can optionally go
// through a Redis cache; all calls pass an outbound rate limiter since
// the automation endpoint has a request quota.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
	limiter    *rate.Limiter

	redis    *redis.Client
	cacheTTL time.Duration

	now func() time.Time
}

// NewClient constructs a store client for the given endpoint.
func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		now:        time.Now,
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// SetRateLimit overrides the default outbound limit.
func (c *Client) SetRateLimit(r rate.Limit, burst int) {
	c.limiter = rate.NewLimiter(r, burst)
}

// BusyTimes fetches the busy slot display-strings for a date. The
// cache-buster query param defeats intermediary caching on the store side.
func (c *Client) BusyTimes(ctx context.Context, date timeslot.DateKey) ([]string, error) {
	cacheKey := fmt.Sprintf("busy:%s", date)
	var env envelope
	if c.readCache(ctx, cacheKey, &env) {
		return env.Booked, nil
	}

	endpoint := fmt.Sprintf("%s?date=%s&_=%d", c.baseURL, url.QueryEscape(date.String()), c.now().UnixMilli())
	if err := c.doGet(ctx, endpoint, &env); err != nil {
		return nil, fmt.Errorf("fetch busy times for %s: %w", date, err)
	}
	if env.Status == "error" {
		return nil, &RemoteError{Message: env.Message}
	}
	c.writeCache(ctx, cacheKey, env)
	if env.Booked == nil {
		return []string{}, nil
	}
	return env.Booked, nil
}

// CreateBooking submits a public booking.
func (c *Client) CreateBooking(ctx context.Context, p BookingPayload) error {
	var env envelope
	if err := c.doPost(ctx, c.baseURL, p, &env); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	if env.Status == "error" {
		return &RemoteError{Message: env.Message}
	}
	c.invalidate(ctx, fmt.Sprintf("busy:%s", p.Date))
	return nil
}

// ListBookings fetches the full admin booking listing.
func (c *Client) ListBookings(ctx context.Context) ([]BookingRecord, error) {
	endpoint := fmt.Sprintf("%s?action=getAll&token=%s", c.baseURL, url.QueryEscape(c.adminToken))
	var env envelope
	if err := c.doGet(ctx, endpoint, &env); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if env.Status == "error" {
		return nil, &RemoteError{Message: env.Message}
	}
	return env.Bookings, nil
}

// Mutate issues an admin action (cancel, block, unblock, reschedule).
// Fields are merged with the action name and admin token.
func (c *Client) Mutate(ctx context.Context, action string, fields map[string]string) (*MutationResult, error) {
	body := make(map[string]string, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["action"] = action
	body["token"] = c.adminToken

	var env envelope
	if err := c.doPost(ctx, c.baseURL, body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if env.Status != "success" {
		return nil, &RemoteError{Message: env.Message}
	}
	if d := fields["date"]; d != "" {
		c.invalidate(ctx, fmt.Sprintf("busy:%s", d))
	}
	return &MutationResult{Message: env.Message, Details: env.Details}, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) invalidate(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// doPost sends the body JSON-encoded with a text/plain content type. The
// automation endpoint rejects application/json preflights, so the store
// contract is plain-text bodies carrying JSON.
func (c *Client) doPost(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

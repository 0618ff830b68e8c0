package seatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrClientNil is returned when a method is called on a nil *Client.
var ErrClientNil = errors.New("client is nil")

// SeatFetcher is the read side of the authority contract.
type SeatFetcher interface {
	FetchSeats(ctx context.Context) ([]Seat, error)
}

// Reserver is the mutating side of the authority contract.
type Reserver interface {
	Hold(ctx context.Context, seatID, userID int64) error
	Confirm(ctx context.Context, seatID, userID int64) error
}

// Ensure Client implements both halves at compile time.
var (
	_ SeatFetcher = (*Client)(nil)
	_ Reserver    = (*Client)(nil)
)

// RejectedError is returned when the authority refuses a hold or confirm.
// Detail carries the authority's reason verbatim.
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	return e.Detail
}

// Client talks to the seat authority HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// UserAgent is sent on every request to the authority.
const UserAgent = "seatlock/0.1"

const (
	defaultAPIBind = "127.0.0.1:8000"
	requestTimeout = 5 * time.Second
	maxErrorBody   = 64 * 1024
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the given host:port or URL.
func NewClient(apiBind string, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the normalized base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// FetchSeats retrieves the full seat inventory.
func (c *Client) FetchSeats(ctx context.Context) ([]Seat, error) {
	if c == nil {
		return nil, ErrClientNil
	}
	var seats []Seat
	if err := c.do(ctx, http.MethodGet, "/seats", nil, &seats); err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("decode response: duplicate seat id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return seats, nil
}

// Hold asks the authority to hold seatID on behalf of userID.
func (c *Client) Hold(ctx context.Context, seatID, userID int64) error {
	return c.action(ctx, "/hold", seatID, userID, "Failed to hold seat")
}

// Confirm asks the authority to finalize a seat previously held by userID.
func (c *Client) Confirm(ctx context.Context, seatID, userID int64) error {
	return c.action(ctx, "/confirm", seatID, userID, "Failed to confirm seat")
}

func (c *Client) action(ctx context.Context, path string, seatID, userID int64, fallback string) error {
	if c == nil {
		return ErrClientNil
	}
	body := ActionRequest{SeatID: seatID, UserID: userID}
	err := c.do(ctx, http.MethodPost, path, body, nil)
	var rejected *RejectedError
	if errors.As(err, &rejected) && strings.TrimSpace(rejected.Detail) == "" {
		rejected.Detail = fallback
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if method == http.MethodGet {
			return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
		}
		return rejection(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func rejection(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload ErrorBody
	_ = json.Unmarshal(data, &payload)
	return &RejectedError{StatusCode: resp.StatusCode, Detail: payload.Detail}
}

// ParseBaseURL normalizes a host:port or URL into a base URL without path,
// query or fragment. An empty value yields the default local authority.
func ParseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiBind, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", apiBind)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Package api is the typed REST client for the internship platform backend.
// Every call attaches a bearer token when one is available and classifies
// failures into the taxonomy in errors.go.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"internpath/internal/logging"
)

// TokenSource supplies the bearer token. An empty token is valid and means
// the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Recorder receives one call per completed request.
type Recorder interface {
	Record(op, outcome string, elapsed time.Duration)
}

// Client talks to the backend.
type Client struct {
	baseURL  string
	client   *http.Client
	tokens   TokenSource
	recorder Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRecorder attaches request accounting.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a client for baseURL (e.g. http://localhost:8000).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one mentor message. A nil req.SessionID starts a new session.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/ai/chat", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns the user's stored chat sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var out []SessionSummary
	if err := c.do(ctx, "list sessions", http.MethodGet, "/ai/session", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionMessages returns the stored transcript of a session.
func (c *Client) SessionMessages(ctx context.Context, id SessionID) ([]StoredMessage, error) {
	var out []StoredMessage
	path := "/ai/session/" + url.PathEscape(id.String()) + "/messages"
	if err := c.do(ctx, "session messages", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession removes a stored session and its messages.
func (c *Client) DeleteSession(ctx context.Context, id SessionID) error {
	return c.do(ctx, "delete session", http.MethodDelete, "/ai/session/"+url.PathEscape(id.String()), nil, nil, nil)
}

// =============================================================================
// INTERNSHIPS
// =============================================================================

// ListInternships returns the unfiltered listing.
func (c *Client) ListInternships(ctx context.Context) ([]Internship, error) {
	return c.list(ctx, "list internships", "/jobs/", nil)
}

// SearchInternships runs a free-text search.
func (c *Client) SearchInternships(ctx context.Context, q string) ([]Internship, error) {
	return c.list(ctx, "search internships", "/jobs/search", url.Values{"q": {q}})
}

// FilterInternships filters by domain key (ai, web, data, mobile).
func (c *Client) FilterInternships(ctx context.Context, domain string) ([]Internship, error) {
	return c.list(ctx, "filter internships", "/jobs/filter", url.Values{"domain": {domain}})
}

// Recommendations returns internships scored against the user's profile,
// in backend order.
func (c *Client) Recommendations(ctx context.Context) ([]RecommendationEntry, error) {
	var out []RecommendationEntry
	if err := c.do(ctx, "recommendations", http.MethodGet, "/jobs/recommendation", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, op, path string, query url.Values) ([]Internship, error) {
	var env listEnvelope
	if err := c.do(ctx, op, http.MethodGet, path, query, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// =============================================================================
// FAKE CHECK
// =============================================================================

// CheckFakeInternship asks the backend to score a listing URL.
func (c *Client) CheckFakeInternship(ctx context.Context, rawURL string) (*FakeReport, error) {
	var out FakeReport
	if err := c.do(ctx, "fake check", http.MethodPost, "/detect-fake-internship", nil, fakeCheckRequest{URL: rawURL}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// AUTH & PROFILE
// =============================================================================

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, "login", http.MethodPost, "/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account and returns its access token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile returns the user's profile. A missing profile is a 404 (see IsNotFound).
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, "get profile", http.MethodGet, "/profile/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProfile creates the profile. The backend rejects duplicates with 400.
func (c *Client) CreateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, "create profile", http.MethodPost, "/profile/", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the profile.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, "update profile", http.MethodPut, "/profile/", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings GET /.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (err error) {
	log := logging.Get(logging.CategoryAPI)
	requestID := uuid.NewString()
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)
		outcome := "ok"
		if err != nil {
			outcome = CategoryOf(err).String()
			log.Warn("%s %s failed after %v: %v (req=%s)", method, path, elapsed, err, requestID)
		} else {
			log.Debug("%s %s ok in %v (req=%s)", method, path, elapsed, requestID)
		}
		if c.recorder != nil {
			c.recorder.Record(op, outcome, elapsed)
		}
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return transportError(op, requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return statusError(op, requestID, resp.StatusCode, bodyBytes)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(op, requestID, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

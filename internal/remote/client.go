// Package remote is a rate-limited client for the participant API that owns
// participants, stats, admin credentials and the scraper bot.
package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5
	limiterKey     = "participant-api"
	maxErrorBody   = 64 << 10
	userAgent      = "StudyJamServer/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond int
	Logger            *slog.Logger
}

// Client talks to the participant API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: ratelimit.New(float64(opts.RequestsPerSecond), opts.RequestsPerSecond*2),
		logger:  opts.Logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

type tokenKey struct{}

// WithAccessToken attaches the admin's remote access token to ctx. Calls made
// with that context send it as a bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// request describes one call.
type request struct {
	method      string
	path        string
	query       url.Values
	apiKey      string
	body        io.Reader
	contentType string
}

// doRequest executes a call with rate limiting and maps failures onto
// ErrNoResponse or *ResponseError.
func (c *Client) doRequest(ctx context.Context, r request) ([]byte, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ResponseError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("parse response: %w", err)
	}
	return v, nil
}

// ListParticipants fetches every participant (GET /api/participants).
func (c *Client) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/api/participants"})
	if err != nil {
		return nil, wrapError("listParticipants", err)
	}
	participants, err := decode[[]domain.Participant](body)
	if err != nil {
		return nil, wrapError("listParticipants", err)
	}
	if participants == nil {
		participants = []domain.Participant{}
	}
	return participants, nil
}

// GetParticipant fetches one participant with badges (GET /api/participants/{id}).
func (c *Client) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/api/participants/" + url.PathEscape(id)})
	if err != nil {
		return nil, wrapError("getParticipant", err)
	}
	p, err := decode[domain.Participant](body)
	if err != nil {
		return nil, wrapError("getParticipant", err)
	}
	return &p, nil
}

// GetStats fetches aggregate stats (GET /api/stats).
func (c *Client) GetStats(ctx context.Context) (domain.Stats, error) {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/api/stats"})
	if err != nil {
		return domain.Stats{}, wrapError("getStats", err)
	}
	stats, err := decode[domain.Stats](body)
	if err != nil {
		return domain.Stats{}, wrapError("getStats", err)
	}
	return stats, nil
}

// Login exchanges admin credentials for an access token (POST /api/auth/login).
func (c *Client) Login(ctx context.Context, firstName, accessCode string) (domain.LoginResult, error) {
	payload, err := json.Marshal(struct {
		FirstName  string `json:"first_name"`
		AccessCode string `json:"access_code"`
	}{firstName, accessCode})
	if err != nil {
		return domain.LoginResult{}, wrapError("login", err)
	}

	body, err := c.doRequest(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if err != nil {
		return domain.LoginResult{}, wrapError("login", err)
	}
	res, err := decode[domain.LoginResult](body)
	if err != nil {
		return domain.LoginResult{}, wrapError("login", err)
	}
	if res.AccessToken == "" {
		return domain.LoginResult{}, wrapError("login", errors.New("response carried no access token"))
	}
	return res, nil
}

// BotStatus reports the scraper state (GET /api/bot/status).
func (c *Client) BotStatus(ctx context.Context, apiKey string) (domain.BotStatus, error) {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/api/bot/status", apiKey: apiKey})
	if err != nil {
		return domain.BotStatus{}, wrapError("botStatus", err)
	}
	status, err := decode[domain.BotStatus](body)
	if err != nil {
		return domain.BotStatus{}, wrapError("botStatus", err)
	}
	return status, nil
}

// TriggerBot starts a scraper run (POST /api/bot/trigger) and returns the server's message.
func (c *Client) TriggerBot(ctx context.Context, apiKey string, scrapeType domain.ScrapeType) (string, error) {
	body, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/api/bot/trigger",
		query:  url.Values{"scrape_type": {string(scrapeType)}},
		apiKey: apiKey,
	})
	if err != nil {
		return "", wrapError("triggerBot", err)
	}
	res, err := decode[struct {
		Message string `json:"message"`
	}](body)
	if err != nil {
		return "", wrapError("triggerBot", err)
	}
	return res.Message, nil
}

// UploadCSV forwards a participant CSV (POST /api/admin/upload-csv, multipart field "file").
func (c *Client) UploadCSV(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.UploadResult{}, wrapError("uploadCSV", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return domain.UploadResult{}, wrapError("uploadCSV", fmt.Errorf("copy file: %w", err))
	}
	if err := mw.Close(); err != nil {
		return domain.UploadResult{}, wrapError("uploadCSV", err)
	}

	body, err := c.doRequest(ctx, request{
		method:      http.MethodPost,
		path:        "/api/admin/upload-csv",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return domain.UploadResult{}, wrapError("uploadCSV", err)
	}
	res, err := decode[domain.UploadResult](body)
	if err != nil {
		return domain.UploadResult{}, wrapError("uploadCSV", err)
	}
	return res, nil
}

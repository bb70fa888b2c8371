// Package client talks to the attendance HTTP API. A Client is both the
// tracker's data source and its submitter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

const fetchPageSize = 200

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api returned %d %s: %s", e.Status, e.Code, e.Message)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a thin JSON client for /api/v1.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// New builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for an access token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var res models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &res, nil); err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	return &res, nil
}

// Load fetches every record for the query, following pagination.
func (c *Client) Load(ctx context.Context, q tracker.Query) ([]models.AttendanceRecord, error) {
	params := queryParams(q)
	params.Set("limit", strconv.Itoa(fetchPageSize))

	var records []models.AttendanceRecord
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))
		var batch []models.AttendanceRecord
		var pagination models.Pagination
		if err := c.do(ctx, http.MethodGet, "/attendance", params, nil, &batch, &pagination); err != nil {
			return nil, err
		}
		records = append(records, batch...)
		if len(batch) == 0 || len(records) >= pagination.TotalCount {
			break
		}
	}
	c.logger.Debug("attendance loaded", zap.String("scope", q.Scope.String()), zap.Int("records", len(records)))
	return records, nil
}

// Submit sends records as one PUT batch. A 409 becomes *tracker.ConflictError.
func (c *Client) Submit(ctx context.Context, records []models.AttendanceRecord) error {
	var result dto.AttendanceUpdateResult
	err := c.do(ctx, http.MethodPut, "/attendance", nil, records, &result, nil)
	if err != nil {
		var conflict *tracker.ConflictError
		if errors.As(err, &conflict) {
			return conflict
		}
		return err
	}
	c.logger.Debug("attendance stored", zap.Int("processed", result.Processed), zap.Int("updated", result.Updated))
	return nil
}

// Summary fetches status totals for the query's scope.
func (c *Client) Summary(ctx context.Context, q tracker.Query) (*models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	if err := c.do(ctx, http.MethodGet, "/attendance/summary", queryParams(q), nil, &summary, nil); err != nil {
		return nil, err
	}
	return &summary, nil
}

func queryParams(q tracker.Query) url.Values {
	params := url.Values{}
	switch q.Scope.Kind {
	case tracker.ScopeDate:
		params.Set("date", q.Scope.Date)
	case tracker.ScopeWindow:
		params.Set("days", strconv.Itoa(q.Scope.Days))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("search", search)
	}
	for _, field := range q.Filters.Active() {
		params.Set(string(field), q.Filters[field])
	}
	return params
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
	Error      *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}, pagination *models.Pagination) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if resp.StatusCode == http.StatusConflict && env.Error != nil {
			var details dto.ConflictDetails
			if json.Unmarshal(env.Error.Details, &details) == nil && len(details.ConflictIDs) > 0 {
				return &tracker.ConflictError{IDs: details.ConflictIDs}
			}
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	if pagination != nil && env.Pagination != nil {
		*pagination = *env.Pagination
	}
	return nil
}

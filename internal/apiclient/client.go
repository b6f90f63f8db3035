package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"waystation/internal/logger"
)

// Config is the explicit transport configuration. There is no package-level
// default base URL.
type Config struct {
	BaseURL        string
	DefaultHeaders map[string]string
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the transport. Its Timeout is left as given: the
	// client itself never times out a request.
	HTTPClient *http.Client
}

// Client issues JSON requests against the backend.
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("apiclient: base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", cfg.BaseURL)
	}

	headers := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	c := &Client{baseURL: base, headers: headers, httpClient: hc}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET; params are encoded into the query string.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, out any) error {
	return c.request(ctx, http.MethodGet, withQuery(path, params), nil, out)
}

// Post issues a POST with data serialized as the JSON body.
func (c *Client) Post(ctx context.Context, path string, data, out any) error {
	return c.request(ctx, http.MethodPost, path, data, out)
}

func (c *Client) Put(ctx context.Context, path string, data, out any) error {
	return c.request(ctx, http.MethodPut, path, data, out)
}

func (c *Client) Patch(ctx context.Context, path string, data, out any) error {
	return c.request(ctx, http.MethodPatch, path, data, out)
}

func (c *Client) Delete(ctx context.Context, path string, data, out any) error {
	return c.request(ctx, http.MethodDelete, path, data, out)
}

func withQuery(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(params[k]))
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pairs, "&")
}

func (c *Client) request(ctx context.Context, method, path string, data, out any) error {
	requestID, _ := ctx.Value(logger.RequestIDKey).(string)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	log := logger.WithContext(ctx)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Path: path, Err: err}
		}
	}

	var body io.Reader
	if data != nil {
		buf, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "method", method, "path", path, "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		log.Warn("request rejected", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeAPIError reads the backend's message from a failed response. Both the
// {"detail": "..."} and {"error": "..."} shapes are understood; validation
// responses carrying a detail list are joined by their "msg" entries.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apiErr
	}

	var detail string
	if len(envelope.Detail) > 0 && json.Unmarshal(envelope.Detail, &detail) == nil && detail != "" {
		apiErr.Message = detail
		return apiErr
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if len(envelope.Detail) > 0 && json.Unmarshal(envelope.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if n := len(it.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprint(it.Loc[n-1])+": "+it.Msg)
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			apiErr.Message = strings.Join(msgs, "; ")
			return apiErr
		}
	}
	if envelope.Error != "" {
		apiErr.Message = envelope.Error
	}
	return apiErr
}

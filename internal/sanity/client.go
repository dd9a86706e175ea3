package sanity

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
)

// maxGETURL is the longest query URL sent as a GET; longer queries are POSTed.
const maxGETURL = 11264

// Config addresses one dataset of a hosted project.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
	Timeout    time.Duration
}

// Client is a minimal read-only client for the hosted query API.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
}

// APIError is a non-2xx answer from the query API.
type APIError struct {
	StatusCode  int
	Type        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity query failed: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("sanity query failed: status=%d %s: %s", e.StatusCode, e.Type, e.Description)
}

// New creates a client. The API host is derived from the project id:
// https://<project>.api.sanity.io, or apicdn when UseCDN is set.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, errors.New("sanity: project id and dataset are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-12-01"
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	host := "api.sanity.io"
	if cfg.UseCDN {
		host = "apicdn.sanity.io"
	}
	return &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("https://%s.%s", cfg.ProjectID, host),
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// WithBaseURL returns a copy of the client talking to baseURL instead.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c2 := *c
	c2.baseURL = strings.TrimRight(baseURL, "/")
	return &c2
}

// ProjectID and Dataset identify where image assets live.
func (c *Client) ProjectID() string { return c.cfg.ProjectID }
func (c *Client) Dataset() string   { return c.cfg.Dataset }

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v%s/data/query/%s", c.baseURL, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset))
}

// Query runs a GROQ query and returns its raw "result" member. Each parameter
// is JSON-encoded and sent as a separate $name argument, never spliced into
// the query text. A query matching nothing returns "null" or "[]" depending on
// its shape.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", groq)
	for name, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(b))
	}

	var req *http.Request
	var err error
	if u := c.endpoint() + "?" + q.Encode(); len(u) <= maxGETURL {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	} else {
		body, merr := json.Marshal(map[string]any{"query": groq, "params": params})
		if merr != nil {
			return nil, merr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity request: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sanity read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb struct {
			Error struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &eb) == nil {
			apiErr.Type = eb.Error.Type
			apiErr.Description = eb.Error.Description
		}
		return nil, apiErr
	}

	var out struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("sanity decode: %w", err)
	}
	if len(out.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return out.Result, nil
}

package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plug-market-bot/internal/common/logger"
)

// Filter is one PostgREST column condition, rendered as column=op.value.
type Filter struct {
	Column string
	Op     string
	Value  string
}

func Eq(column, value string) Filter {
	return Filter{Column: column, Op: "eq", Value: value}
}

// LikePrefix matches rows whose column starts with value.
func LikePrefix(column, value string) Filter {
	return Filter{Column: column, Op: "like", Value: value + "%"}
}

// Client talks to a Supabase PostgREST endpoint. Rows come back as loose
// JSON maps; callers normalize them at their own boundary.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        zerolog.Logger
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     logger.Component("supabase"),
	}
}

// Configured reports whether a backend URL and key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Select reads rows from a table with the given filters, at most limit rows.
func (c *Client) Select(ctx context.Context, table string, filters []Filter, limit int) ([]map[string]interface{}, error) {
	q := url.Values{}
	for _, f := range filters {
		q.Set(f.Column, f.Op+"."+f.Value)
	}
	q.Set("select", "*")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, _, err := c.do(ctx, http.MethodGet, table, q, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return rows, nil
}

// SelectOne reads at most one row; nil means no match.
func (c *Client) SelectOne(ctx context.Context, table string, filters []Filter) (map[string]interface{}, error) {
	rows, err := c.Select(ctx, table, filters, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count returns the exact number of rows matching the filters, using the
// Content-Range header PostgREST emits under Prefer: count=exact.
func (c *Client) Count(ctx context.Context, table string, filters []Filter) (int, error) {
	q := url.Values{}
	for _, f := range filters {
		q.Set(f.Column, f.Op+"."+f.Value)
	}
	q.Set("select", "id")
	q.Set("limit", "1")

	_, header, err := c.do(ctx, http.MethodGet, table, q, nil, "count=exact")
	if err != nil {
		return 0, err
	}

	// Content-Range: 0-0/42
	contentRange := header.Get("Content-Range")
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0, fmt.Errorf("missing count in Content-Range %q", contentRange)
	}
	total, err := strconv.Atoi(contentRange[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("bad count in Content-Range %q", contentRange)
	}
	return total, nil
}

// Patch updates the rows matching the filters with the given column values.
func (c *Client) Patch(ctx context.Context, table string, filters []Filter, values map[string]interface{}) error {
	q := url.Values{}
	for _, f := range filters {
		q.Set(f.Column, f.Op+"."+f.Value)
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}

	_, _, err = c.do(ctx, http.MethodPatch, table, q, payload, "")
	return err
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body []byte, prefer string) ([]byte, http.Header, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("table", table).
			Str("method", method).
			Msg("supabase request failed")
		return nil, nil, fmt.Errorf("supabase error (%d)", resp.StatusCode)
	}

	return respBody, resp.Header, nil
}

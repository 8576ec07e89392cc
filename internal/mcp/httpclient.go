package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the RepLens REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func rangeParams(start, end time.Time, exercise string) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	if exercise != "" {
		v.Set("exercise", exercise)
	}
	return v
}

func (c *HTTPClient) QueryAnalyses(ctx context.Context, start, end time.Time, exercise string, _ int) ([]models.AnalysisRow, error) {
	var rows []models.AnalysisRow
	if err := c.get(ctx, "/api/v1/analyses", rangeParams(start, end, exercise), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, id uuid.UUID, _ int) (*models.AnalysisRow, error) {
	var row models.AnalysisRow
	if err := c.get(ctx, "/api/v1/analyses/"+id.String(), nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *HTTPClient) QuerySetFatigue(ctx context.Context, id uuid.UUID, _ int) ([]models.SetFatigueRow, error) {
	var rows []models.SetFatigueRow
	if err := c.get(ctx, "/api/v1/analyses/"+id.String()+"/sets", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) QueryFatigueTrend(ctx context.Context, start, end time.Time, exercise string, _ int) ([]models.SetFatigueRow, error) {
	var rows []models.SetFatigueRow
	if err := c.get(ctx, "/api/v1/fatigue/trend", rangeParams(start, end, exercise), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	var stats storage.DataStats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

package openquake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/observability"
)

// Client implements domain.CurveFetcher against an OpenQuake engine API.
// Reference messages on the source topic carry only a calculation ID; the
// client fetches the full hazard-curve tensor for that calculation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an engine API client. baseURL points at the engine root,
// e.g. http://oq-engine:8800.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchCurveSet retrieves the hazard-curve set for one calculation.
func (c *Client) FetchCurveSet(ctx context.Context, calcID string) (domain.CurveSet, error) {
	u := fmt.Sprintf("%s/v1/calc/%s/result/hcurves", c.baseURL, url.PathEscape(calcID))

	start := time.Now()
	cs, err := c.doRequest(ctx, u)
	c.metrics.FetchAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.CurveSet{}, err
	case cs.IsReference():
		// The engine answered but returned no curve data.
		c.metrics.FetchRequests.WithLabelValues("empty").Inc()
		return domain.CurveSet{}, fmt.Errorf("engine returned no curves for calculation %s", calcID)
	default:
		c.metrics.FetchRequests.WithLabelValues("success").Inc()
	}

	if cs.CalcID == "" {
		cs.CalcID = calcID
	}
	if _, _, err := cs.Dims(); err != nil {
		return domain.CurveSet{}, fmt.Errorf("engine curve set %s: %w", calcID, err)
	}
	return cs, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.CurveSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.CurveSet{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.CurveSet{}, fmt.Errorf("engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.CurveSet{}, fmt.Errorf("engine API error: status %d: %s", resp.StatusCode, body)
	}

	var cs domain.CurveSet
	if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
		return domain.CurveSet{}, fmt.Errorf("decode engine response: %w", err)
	}
	return cs, nil
}

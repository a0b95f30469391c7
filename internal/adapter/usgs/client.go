package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"github.com/couchcryptid/quake-risk-service/internal/observability"
)

const dateLayout = "2006-01-02"

// Client fetches events from the USGS FDSN event web service.
// It implements pipeline.EventSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for the FDSN query endpoint at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchEvents downloads every event whose origin date falls in [start, end].
// The service works at day granularity, so both bounds are truncated to dates.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	params := url.Values{
		"format":    {"csv"},
		"starttime": {start.UTC().Format(dateLayout)},
		"endtime":   {end.UTC().Add(24 * time.Hour).Format(dateLayout)},
		"orderby":   {"time"},
	}

	began := time.Now()
	events, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.FeedRequestDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.FeedRequests.WithLabelValues("success").Inc()
	c.metrics.EventsFetched.Add(float64(len(events)))
	return events, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	// FDSN answers 204 when the window holds no events.
	if resp.StatusCode == http.StatusNoContent {
		return []domain.Event{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	events, skipped, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		c.metrics.FeedMalformedRows.Add(float64(len(skipped)))
		c.logger.Warn("skipped malformed feed rows", "count", len(skipped), "first", skipped[0])
	}
	return events, nil
}

package detectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chroniclehq/feedgen/internal/models"
)

// DefaultTimeout is the default timeout for detector API calls
const DefaultTimeout = 10 * time.Second

// Client queries the signal detector service over HTTP. One endpoint per
// detector kind:
//
//	GET {base}/v1/detections/{kind}?user_id=...&since=...&until=...
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new detector service client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Detect fetches the detections of one kind for a user and window
func (c *Client) Detect(ctx context.Context, kind models.DetectorKind, userID uuid.UUID, since, until time.Time) ([]models.Detection, error) {
	endpoint := fmt.Sprintf("%s/v1/detections/%s", c.baseURL, kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector request: %w", err)
	}

	q := url.Values{}
	q.Set("user_id", userID.String())
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("until", until.UTC().Format(time.RFC3339))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s detector: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s detector returned status %d", kind, resp.StatusCode)
	}

	var payload struct {
		Detections []models.Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s detector response: %w", kind, err)
	}

	// The detector owns the kind field; stamp it in case the service
	// omits it.
	for i := range payload.Detections {
		if payload.Detections[i].Kind == "" {
			payload.Detections[i].Kind = kind
		}
	}

	return payload.Detections, nil
}

// Collect queries every detector kind concurrently and folds per-kind
// failures into the Degraded list rather than failing the whole fetch.
func (c *Client) Collect(ctx context.Context, userID uuid.UUID, since, until time.Time) *models.DetectorFindings {
	findings := models.NewDetectorFindings()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range models.AllDetectorKinds {
		g.Go(func() error {
			detections, err := c.Detect(gctx, kind, userID, since, until)
			if err != nil {
				mu.Lock()
				findings.Degraded = append(findings.Degraded, kind)
				mu.Unlock()
				c.logger.Warn("detector_query_degraded",
					zap.String("user_id", userID.String()),
					zap.String("detector", string(kind)),
					zap.Error(err))
				return nil
			}
			if len(detections) > 0 {
				mu.Lock()
				findings.Detections[kind] = detections
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return findings
}

// NoopCollector satisfies the collector interface when no detector service
// is configured. Every detector-gated content type then fails its data
// check, which is the intended behavior for deployments without detectors.
type NoopCollector struct{}

// Collect returns an empty findings set
func (NoopCollector) Collect(_ context.Context, _ uuid.UUID, _, _ time.Time) *models.DetectorFindings {
	return models.NewDetectorFindings()
}

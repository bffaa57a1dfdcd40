package workorder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

// httpResolver looks up work orders in the external work-order system over
// its REST API. Timeline rendering treats failures as "unresolved", so the
// resolver never needs retries.
type httpResolver struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewHTTPResolver builds a resolver against the given base URL. An empty
// base URL returns the noop resolver instead.
func NewHTTPResolver(baseURL string, timeout time.Duration, log logger.Logger) outbound.WorkOrderResolver {
	if baseURL == "" {
		return NewNoopResolver(log)
	}
	return &httpResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type workOrderPayload struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title"`
}

func (r *httpResolver) Resolve(ctx context.Context, companyID, workOrderID string) (*outbound.WorkOrderRef, error) {
	if workOrderID == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/api/v1/work-orders/%s?company_id=%s", r.baseURL, workOrderID, companyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build work order request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("work order lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("work order lookup returned %d", resp.StatusCode)
	}

	var payload workOrderPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode work order response: %w", err)
	}

	return &outbound.WorkOrderRef{
		ID:     payload.ID,
		Number: payload.Number,
		Title:  payload.Title,
	}, nil
}

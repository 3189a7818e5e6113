package budgetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
)

// HTTPBudgetStore talks to the external budgeting subsystem over its JSON
// API. The budget store owns item ids; the engine treats them as opaque.
type HTTPBudgetStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBudgetStore creates a budget store client for the given API base URL.
func NewHTTPBudgetStore(baseURL string, timeout time.Duration) *HTTPBudgetStore {
	return &HTTPBudgetStore{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ensure HTTPBudgetStore implements providers.BudgetStore
var _ providers.BudgetStore = (*HTTPBudgetStore)(nil)

func (s *HTTPBudgetStore) AddBudgetItem(ctx context.Context, item domain.BudgetItem) (*domain.BudgetItem, error) {
	var created domain.BudgetItem
	endpoint := s.baseURL + "/api/v1/budget-items"
	if err := s.do(ctx, http.MethodPost, endpoint, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *HTTPBudgetStore) UpdateBudgetItem(ctx context.Context, itemID string, updates domain.BudgetItemUpdates) (*domain.BudgetItem, error) {
	var updated domain.BudgetItem
	endpoint := s.baseURL + "/api/v1/budget-items/" + url.PathEscape(itemID)
	if err := s.do(ctx, http.MethodPatch, endpoint, updates, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *HTTPBudgetStore) DeleteBudgetItem(ctx context.Context, itemID string) error {
	endpoint := s.baseURL + "/api/v1/budget-items/" + url.PathEscape(itemID)
	return s.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (s *HTTPBudgetStore) FetchBudgetItems(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	var items []domain.BudgetItem
	endpoint := s.baseURL + "/api/v1/budget-items?userId=" + url.QueryEscape(userID)
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// do executes one JSON round trip. A nil body sends no payload; a nil out
// discards the response body.
func (s *HTTPBudgetStore) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal budget store request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build budget store request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: budget store: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: budget item", apperrors.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: budget store returned status %d", apperrors.ErrExternalService, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode budget store response: %v", apperrors.ErrExternalService, err)
	}
	return nil
}

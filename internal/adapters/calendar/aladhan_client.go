package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
)

// AladhanClient implements the Islamic calendar provider against an
// AlAdhan-compatible HTTP API. Gregorian-to-hijri conversion goes over the
// wire; hawl window arithmetic is pure date math on the fixed lunar year
// length and stays local.
type AladhanClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewAladhanClient creates a calendar client for the given API base URL.
func NewAladhanClient(baseURL string, timeout time.Duration) *AladhanClient {
	return &AladhanClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Ensure AladhanClient implements providers.IslamicCalendarProvider
var _ providers.IslamicCalendarProvider = (*AladhanClient)(nil)

// gToHResponse is the AlAdhan gregorian-to-hijri conversion payload, reduced
// to the fields the engine reads.
type gToHResponse struct {
	Code int `json:"code"`
	Data struct {
		Hijri struct {
			Day   string `json:"day"`
			Year  string `json:"year"`
			Date  string `json:"date"`
			Month struct {
				Number int    `json:"number"`
				En     string `json:"en"`
			} `json:"month"`
		} `json:"hijri"`
	} `json:"data"`
}

func (c *AladhanClient) CalculateHawlEndDate(_ context.Context, start time.Time) (time.Time, error) {
	return start.AddDate(0, 0, domain.HawlDurationDays), nil
}

func (c *AladhanClient) ToHijri(ctx context.Context, date time.Time) (*domain.HijriDate, error) {
	url := fmt.Sprintf("%s/v1/gToH/%s", c.baseURL, date.Format("02-01-2006"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar api: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: calendar api returned status %d", apperrors.ErrExternalService, resp.StatusCode)
	}

	var payload gToHResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode calendar response: %v", apperrors.ErrExternalService, err)
	}

	day, err := strconv.Atoi(payload.Data.Hijri.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hijri day %q", apperrors.ErrExternalService, payload.Data.Hijri.Day)
	}
	year, err := strconv.Atoi(payload.Data.Hijri.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hijri year %q", apperrors.ErrExternalService, payload.Data.Hijri.Year)
	}

	return &domain.HijriDate{
		Year:  year,
		Month: payload.Data.Hijri.Month.Number,
		Day:   day,
		Label: payload.Data.Hijri.Month.En,
	}, nil
}

func (c *AladhanClient) DaysRemainingInHawl(_ context.Context, start time.Time) (int, error) {
	end := start.AddDate(0, 0, domain.HawlDurationDays)
	remaining := int(end.Sub(c.now()).Hours() / 24)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (c *AladhanClient) HawlProgress(_ context.Context, start time.Time) (float64, error) {
	elapsed := c.now().Sub(start).Hours() / 24
	progress := elapsed / float64(domain.HawlDurationDays)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return progress, nil
}

func (c *AladhanClient) IsHawlCompleted(_ context.Context, start time.Time) (bool, error) {
	end := start.AddDate(0, 0, domain.HawlDurationDays)
	return !c.now().Before(end), nil
}

func (c *AladhanClient) FormatDate(date time.Time) string {
	return date.Format("2 January 2006")
}

func (c *AladhanClient) FormatHijriDate(date domain.HijriDate) string {
	return fmt.Sprintf("%d %s %d AH", date.Day, date.Label, date.Year)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

const dateLayout = "2006-01-02"

func (c *Client) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/admin/dashboard", nil, &raw); err != nil {
		return models.DashboardStats{}, err
	}
	return decodeRecord[models.DashboardStats](raw, "stats")
}

// Activity fetches one page of the recent activity feed.
func (c *Client) Activity(ctx context.Context, page, limit int) (models.Page[models.Activity], error) {
	q := models.NewListQuery(limit).WithPage(page)
	var raw map[string]json.RawMessage
	if err := c.get(ctx, "/admin/activity", q.Values(), &raw); err != nil {
		return models.Page[models.Activity]{}, err
	}
	return decodeList[models.Activity](raw, "activities", q)
}

func (c *Client) Settings(ctx context.Context) ([]models.SettingEntry, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/admin/settings", nil, &raw); err != nil {
		return nil, err
	}
	var wrapped struct {
		Settings []models.SettingEntry `json:"settings"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Settings != nil {
		return wrapped.Settings, nil
	}
	var flat []models.SettingEntry
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, &EnvelopeError{Message: "unexpected settings payload", Err: err}
	}
	return flat, nil
}

// SaveSettings upserts every entry in one request.
func (c *Client) SaveSettings(ctx context.Context, entries []models.SettingEntry) error {
	body := map[string][]models.SettingEntry{"settings": entries}
	return c.send(ctx, http.MethodPut, "/admin/settings/bulk", body, nil)
}

func (c *Client) HelpCategories(ctx context.Context) ([]models.HelpCategory, error) {
	var wrapped struct {
		Categories []models.HelpCategory `json:"categories"`
	}
	if err := c.get(ctx, "/admin/help/categories", nil, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Categories, nil
}

func (c *Client) Report(ctx context.Context, kind models.ReportKind, params models.ReportParams) (models.Report, error) {
	q := url.Values{}
	if !params.StartDate.IsZero() {
		q.Set("startDate", params.StartDate.Format(dateLayout))
	}
	if !params.EndDate.IsZero() {
		q.Set("endDate", params.EndDate.Format(dateLayout))
	}
	if params.GroupBy != "" {
		q.Set("groupBy", params.GroupBy)
	}

	var raw json.RawMessage
	if err := c.get(ctx, "/admin/reports/"+url.PathEscape(string(kind)), q, &raw); err != nil {
		return models.Report{}, err
	}
	report, err := decodeRecord[models.Report](raw, "report")
	if err != nil {
		return models.Report{}, err
	}
	if report.Kind == "" {
		report.Kind = kind
	}
	if report.TotalCount == 0 && report.TotalAmount == 0 {
		for _, row := range report.Rows {
			report.TotalCount += row.Count
			report.TotalAmount += row.Amount
		}
	}
	return report, nil
}

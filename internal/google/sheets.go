package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sm-junior0/ndarehe-sub001/internal/config"
)

// SheetsService writes export tables into one spreadsheet, a tab per entity.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsService authenticates with the service account in cfg.
func NewSheetsService(ctx context.Context, cfg config.GoogleConfig) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	return NewWithOptions(ctx, cfg.SpreadsheetID, option.WithHTTPClient(jwtCfg.Client(ctx)))
}

// NewWithOptions builds the service from raw client options.
func NewWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsService, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &SheetsService{service: srv, spreadsheetID: spreadsheetID}, nil
}

// TestConnection reads the spreadsheet metadata.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the client_email of a credentials file, which is
// the address the spreadsheet has to be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// SheetID returns the id of the tab named title, or ok=false.
func (s *SheetsService) SheetID(ctx context.Context, title string) (int64, bool, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

func (s *SheetsService) ensureSheet(ctx context.Context, title string) error {
	_, ok, err := s.SheetID(ctx, title)
	if err != nil || ok {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", title, err)
	}
	return nil
}

// ReplaceSheet clears tab and writes header plus rows from A1. The tab is
// created when missing.
func (s *SheetsService) ReplaceSheet(ctx context.Context, tab string, header []string, rows [][]string) error {
	if err := s.ensureSheet(ctx, tab); err != nil {
		return err
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, tab, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", tab, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toRow(header))
	for _, r := range rows {
		values = append(values, toRow(r))
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, tab+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet %q: %w", tab, err)
	}
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

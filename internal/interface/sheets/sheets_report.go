package sheets

import (
	"context"
	"fmt"
	"time"

	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/utils"
	"tourstaff-service/templates"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsReportRepository writes pickup reports into one tab per date of a spreadsheet
type SheetsReportRepository struct {
	service       *sheets.Service
	spreadsheetID string
	location      *time.Location
	logger        logger.Logger
}

// NewSheetsReportRepository creates a Sheets-backed report writer
func NewSheetsReportRepository(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	spreadsheetID string,
	location *time.Location,
	logger logger.Logger,
	opts ...option.ClientOption,
) (*SheetsReportRepository, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &SheetsReportRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		location:      location,
		logger:        logger,
	}, nil
}

// WritePickupReport replaces the date's tab contents with the grouped pickup list
func (s *SheetsReportRepository) WritePickupReport(ctx context.Context, date time.Time, groups []entity.TourGroup) (int, error) {
	tab := utils.FormatDate(date, s.location)
	if err := s.ensureTab(ctx, tab); err != nil {
		return 0, err
	}

	rng := fmt.Sprintf("'%s'!A1", tab)
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, fmt.Sprintf("'%s'!A:Z", tab), &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("failed to clear sheet %s: %w", tab, err)
	}

	rows, bookingRows := templates.PickupReportRows(groups, s.location)
	resp, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to write sheet %s: %w", tab, err)
	}

	s.logger.Info("Pickup sheet updated",
		"spreadsheetId", s.spreadsheetID,
		"tab", tab,
		"updatedRows", resp.UpdatedRows,
		"bookings", bookingRows)
	return bookingRows, nil
}

// ensureTab adds the sheet tab when the spreadsheet does not have it yet
func (s *SheetsReportRepository) ensureTab(ctx context.Context, title string) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}}},
		},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", title, err)
	}
	s.logger.Debug("Added sheet tab", "tab", title)
	return nil
}

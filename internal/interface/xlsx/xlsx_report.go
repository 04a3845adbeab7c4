package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/utils"
	"tourstaff-service/templates"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Pickups"

// XLSXReportRepository writes pickup reports as one .xlsx file per date
type XLSXReportRepository struct {
	dir      string
	location *time.Location
	logger   logger.Logger
}

// NewXLSXReportRepository creates a file-backed report writer rooted at dir
func NewXLSXReportRepository(dir string, location *time.Location, logger logger.Logger) *XLSXReportRepository {
	return &XLSXReportRepository{
		dir:      dir,
		location: location,
		logger:   logger,
	}
}

// Path returns the report file for a date
func (x *XLSXReportRepository) Path(date time.Time) string {
	return filepath.Join(x.dir, fmt.Sprintf("pickups-%s.xlsx", utils.FormatDate(date, x.location)))
}

// WritePickupReport overwrites the date's report file
func (x *XLSXReportRepository) WritePickupReport(ctx context.Context, date time.Time, groups []entity.TourGroup) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows, bookingRows := templates.PickupReportRows(groups, x.location)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		x.logger.Debug("Failed to freeze header row", "error", err)
	}

	path := x.Path(date)
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", path, err)
	}

	x.logger.Info("Pickup workbook written", "path", path, "bookings", bookingRows)
	return bookingRows, nil
}

package admin

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
)

var exportColumns = []string{"Date", "Time", "Name", "Email", "Phone", "Company", "Details", "Status"}

// WriteBookingsXLSX renders the bookings listing as an Excel workbook.
func WriteBookingsXLSX(w io.Writer, records []store.BookingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, rec := range records {
		name := rec.Name
		if rec.Status == store.StatusBlocked {
			name = "Blocked Slot"
		}
		values := []interface{}{rec.Date, rec.Time, name, rec.Email, rec.Phone, rec.Company, rec.Details, rec.Status}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	return f.Write(w)
}

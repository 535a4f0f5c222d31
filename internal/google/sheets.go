// Package google reads the booking sheet directly. The automation
// endpoint fronts a Google Sheet; when its responses lag behind a
// mutation, the console can reconcile against the sheet itself.
package google

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
)

// DefaultReadRange covers the booking columns on the first sheet.
const DefaultReadRange = "Bookings!A2:H"

// SheetsService is a read-only view over the booking spreadsheet.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	readRange     string

	mu       sync.Mutex
	rowCache map[string]int // booking key -> sheet row number
}

// NewSheetsService builds a reader from service-account credentials.
func NewSheetsService(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*SheetsService, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		readRange:     DefaultReadRange,
		rowCache:      make(map[string]int),
	}, nil
}

// ListBookings reads all booking rows from the sheet and refreshes the
// row cache.
func (s *SheetsService) ListBookings(ctx context.Context) ([]store.BookingRecord, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read booking sheet: %w", err)
	}

	records := make([]store.BookingRecord, 0, len(resp.Values))
	s.mu.Lock()
	s.rowCache = make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		rec := recordFromRow(row)
		if rec.Date == "" {
			continue
		}
		// Row numbers are 1-based and the range starts below the header.
		s.rowCache[rowKey(rec)] = i + 2
		records = append(records, rec)
	}
	s.mu.Unlock()

	return records, nil
}

// RowIndex returns the cached sheet row for a booking, if known.
func (s *SheetsService) RowIndex(rec store.BookingRecord) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[rowKey(rec)]
	return row, ok
}

// FilterActive drops rows whose status is neither a confirmed booking
// nor an operator block.
func FilterActive(records []store.BookingRecord) []store.BookingRecord {
	active := make([]store.BookingRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == store.StatusConfirmed || rec.Status == store.StatusBlocked {
			active = append(active, rec)
		}
	}
	return active
}

func rowKey(rec store.BookingRecord) string {
	return rec.Date + "|" + rec.Time + "|" + rec.Email
}

// recordFromRow maps a sheet row to a BookingRecord. Column order is
// date, time, name, email, phone, company, details, status.
func recordFromRow(row []interface{}) store.BookingRecord {
	get := func(i int) string {
		if i >= len(row) {
			return ""
		}
		s, _ := row[i].(string)
		return s
	}
	return store.BookingRecord{
		Date:    get(0),
		Time:    get(1),
		Name:    get(2),
		Email:   get(3),
		Phone:   get(4),
		Company: get(5),
		Details: get(6),
		Status:  get(7),
	}
}

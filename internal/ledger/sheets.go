package ledger

import (
	"context"
	"fmt"
	"sort"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"rmarinho/granabot/internal/logging"
)

// SheetsStore implements Store on top of the Google Sheets API. All sheets
// live in a single spreadsheet identified by SpreadsheetID.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	log           logging.Logger

	sheetIDs map[string]int64
}

// NewSheetsStore builds a Sheets-backed store using a service-account
// credentials file.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsFile string, log logging.Logger) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		log:           log,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// ReadTable reads a whole sheet. A failed read degrades to an empty table
// so aggregates simply see no rows; the error is still returned for the
// caller to distinguish state-changing paths.
func (s *SheetsStore) ReadTable(ctx context.Context, name string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, name).Context(ctx).Do()
	if err != nil {
		s.log.WithError(err).WithField("sheet", name).Warn("Failed to read table")
		return [][]string{}, fmt.Errorf("%w: read %s: %v", ErrPersistence, name, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow appends one row after the last data row of the sheet.
func (s *SheetsStore) AppendRow(ctx context.Context, sheet string, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sheet, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append to %s: %v", ErrPersistence, sheet, err)
	}
	return nil
}

// UpdateRange rewrites the cells addressed by an A1-style ref.
func (s *SheetsStore) UpdateRange(ctx context.Context, ref string, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrPersistence, ref, err)
	}
	return nil
}

// DeleteRows removes data rows by 0-based index, highest index first, so a
// deletion never shifts the remaining targets.
func (s *SheetsStore) DeleteRows(ctx context.Context, sheet string, indices []int) error {
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]*sheets.Request, 0, len(sorted))
	for _, idx := range sorted {
		// +1 skips the header row.
		start := int64(idx + 1)
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: start,
					EndIndex:   start + 1,
				},
			},
		})
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: delete rows from %s: %v", ErrPersistence, sheet, err)
	}
	return nil
}

// sheetID resolves a sheet title to its numeric ID, caching the mapping.
func (s *SheetsStore) sheetID(ctx context.Context, sheet string) (int64, error) {
	if id, ok := s.sheetIDs[sheet]; ok {
		return id, nil
	}
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: spreadsheet metadata: %v", ErrPersistence, err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := s.sheetIDs[sheet]
	if !ok {
		return 0, fmt.Errorf("%w: sheet %q not found", ErrPersistence, sheet)
	}
	return id, nil
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

package gsheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

// worksheet is a single tab. Row 1 is the header row, data rows start at row 2 and are
// identified by their row number.
type worksheet struct {
	sheets *Sheets
	title  string

	sync.RWMutex
	headers []string
}

func (ws *worksheet) Title() string {
	return ws.title
}

func (ws *worksheet) Rows(ctx context.Context) ([]recorder.Row, error) {
	google, err := ws.sheets.sheets()
	if err != nil {
		return nil, err
	}

	var response *sheets.ValueRange
	if err := ws.sheets.call(ctx, "get rows", func() (err error) {
		response, err = google.Spreadsheets.Values.Get(ws.sheets.id, quote(ws.title)).Context(ctx).Do()
		return
	}); err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	rows := []recorder.Row{}
	if len(response.Values) == 0 {
		return rows, nil
	}

	headers := []string{}
	for _, v := range response.Values[0] {
		headers = append(headers, recorder.Normalise(fmt.Sprintf("%v", v)))
	}

	ws.Lock()
	ws.headers = headers
	ws.Unlock()

	for i, values := range response.Values[1:] {
		r := row{
			worksheet: ws,
			number:    i + 2,
			headers:   headers,
			fields:    map[string]string{},
			dirty:     map[string]bool{},
		}

		for j, v := range values {
			if j < len(headers) && headers[j] != "" {
				r.fields[headers[j]] = fmt.Sprintf("%v", v)
			}
		}

		rows = append(rows, &r)
	}

	return rows, nil
}

// Cells returns the non-empty cells of the worksheet (the Sheets API equivalent of the list of
// cells in a cell feed).
func (ws *worksheet) Cells(ctx context.Context) ([]recorder.Cell, error) {
	google, err := ws.sheets.sheets()
	if err != nil {
		return nil, err
	}

	var response *sheets.Spreadsheet
	if err := ws.sheets.call(ctx, "get cells", func() (err error) {
		response, err = google.Spreadsheets.Get(ws.sheets.id).
			Ranges(quote(ws.title)).
			IncludeGridData(true).
			Context(ctx).
			Do()
		return
	}); err != nil {
		return nil, fmt.Errorf("unable to retrieve cells from sheet (%w)", err)
	}

	cells := []recorder.Cell{}
	for _, sheet := range response.Sheets {
		for _, data := range sheet.Data {
			for i, rowdata := range data.RowData {
				for j, cell := range rowdata.Values {
					if cell != nil && cell.FormattedValue != "" {
						cells = append(cells, recorder.Cell{
							Row:   int(data.StartRow) + i + 1,
							Col:   int(data.StartColumn) + j + 1,
							Value: cell.FormattedValue,
						})
					}
				}
			}
		}
	}

	return cells, nil
}

// AddRow appends the record below the last row of the worksheet. Fields that don't have a
// matching column are dropped.
func (ws *worksheet) AddRow(ctx context.Context, record recorder.Record) error {
	headers, err := ws.getHeaders(ctx)
	if err != nil {
		return err
	} else if len(headers) == 0 {
		return fmt.Errorf("worksheet %v has no header row", ws.title)
	}

	row := make([]interface{}, len(headers))
	columns := map[string]bool{}
	for i, h := range headers {
		row[i] = ""
		if v, ok := record[h]; ok {
			row[i] = v
			columns[h] = true
		}
	}

	for k := range record {
		if !columns[k] {
			ws.sheets.log.WithField("worksheet", ws.title).Debugf("no column for field '%v'", k)
		}
	}

	google, err := ws.sheets.sheets()
	if err != nil {
		return err
	}

	values := sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	return ws.sheets.call(ctx, "append row", func() error {
		_, err := google.Spreadsheets.Values.Append(ws.sheets.id, quote(ws.title)+"!A1", &values).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
}

// getHeaders returns the header row cached by Rows, fetching it if the worksheet rows have not
// been retrieved.
func (ws *worksheet) getHeaders(ctx context.Context) ([]string, error) {
	ws.RLock()
	headers := ws.headers
	ws.RUnlock()

	if len(headers) > 0 {
		return headers, nil
	}

	google, err := ws.sheets.sheets()
	if err != nil {
		return nil, err
	}

	var response *sheets.ValueRange
	if err := ws.sheets.call(ctx, "get header row", func() (err error) {
		response, err = google.Spreadsheets.Values.Get(ws.sheets.id, quote(ws.title)+"!1:1").Context(ctx).Do()
		return
	}); err != nil {
		return nil, fmt.Errorf("unable to retrieve column headers for worksheet %v (%w)", ws.title, err)
	}

	if len(response.Values) > 0 {
		for _, v := range response.Values[0] {
			headers = append(headers, recorder.Normalise(fmt.Sprintf("%v", v)))
		}
	}

	ws.Lock()
	ws.headers = headers
	ws.Unlock()

	return headers, nil
}

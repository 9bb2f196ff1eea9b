package recorder

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Sheets lowercases column names in list feed markup, so tag names are used as is.
var gsx = regexp.MustCompile(`<gsx:(\w+)>`)

// worksheet is a loaded snapshot: rows[i] is the formatted row and ids[i] the identifier of
// the live row it came from.
type worksheet struct {
	title    string
	headers  []string
	ids      []string
	rowsByID map[string]Row
	rows     []Record
}

// worksheetFor returns the worksheet whose title matches the error type (ignoring case), or
// nil.
func worksheetFor(errType string, spreadsheet *Spreadsheet) Worksheet {
	if spreadsheet == nil || len(spreadsheet.Worksheets) == 0 {
		return nil
	}

	for _, ws := range spreadsheet.Worksheets {
		if strings.EqualFold(strings.TrimSpace(ws.Title()), strings.TrimSpace(errType)) {
			return ws
		}
	}

	return nil
}

// load fetches the worksheet rows, works out the column headers and formats each row as a
// Record keyed by header.
func load(ctx context.Context, ws Worksheet) (*worksheet, error) {
	rows, err := ws.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve rows for worksheet %v (%w)", ws.Title(), err)
	}

	headers, err := getHeaders(ctx, ws, rows)
	if err != nil {
		return nil, err
	}

	sheet := worksheet{
		title:    ws.Title(),
		headers:  headers,
		ids:      make([]string, 0, len(rows)),
		rowsByID: map[string]Row{},
		rows:     make([]Record, 0, len(rows)),
	}

	for _, row := range rows {
		id := row.ID()

		sheet.ids = append(sheet.ids, id)
		sheet.rowsByID[id] = row
		sheet.rows = append(sheet.rows, format(row, headers))
	}

	return &sheet, nil
}

func format(row Row, headers []string) Record {
	record := Record{}

	for _, h := range headers {
		if v, ok := row.Get(h); ok {
			record[h] = v
		}
	}

	return record
}

// getHeaders prefers the markup carried by the first row and only falls back to the (extra)
// cell fetch when there isn't any.
func getHeaders(ctx context.Context, ws Worksheet, rows []Row) ([]string, error) {
	var headers []string
	var err error

	if len(rows) > 0 && rows[0].Markup() != "" {
		headers, err = getHeadersFromMarkup(ws.Title(), rows[0].Markup())
	} else {
		headers, err = getHeadersFromCells(ctx, ws)
	}

	if err != nil {
		return nil, err
	} else if len(headers) == 0 {
		return nil, newError(HeaderParseError, nil, "Unable to parse col headers for worksheet: %v", ws.Title())
	}

	return headers, nil
}

func getHeadersFromMarkup(title string, markup string) ([]string, error) {
	headers := []string{}
	for _, match := range gsx.FindAllStringSubmatch(markup, -1) {
		headers = append(headers, match[1])
	}

	if len(headers) == 0 {
		return nil, newError(HeaderParseError, nil, "Unable to parse col headers for worksheet: %v", title)
	}

	return headers, nil
}

func getHeadersFromCells(ctx context.Context, ws Worksheet) ([]string, error) {
	cells, err := ws.Cells(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve cells for worksheet %v (%w)", ws.Title(), err)
	}

	if len(cells) == 0 {
		return nil, newError(HeaderParseError, nil, "Unable to parse col headers for worksheet: %v. Worksheet is empty", ws.Title())
	}

	headers := []string{}
	for _, cell := range cells {
		if cell.Row == 1 {
			if h := Normalise(cell.Value); h != "" {
				headers = append(headers, h)
			}
		}
	}

	return headers, nil
}

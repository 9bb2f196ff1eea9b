package gsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

var a1 = regexp.MustCompile(`^'(.*)'(?:!([A-Z]+)([0-9]+)(?::.*)?)?$`)

// fakeAPI is just enough of the Sheets v4 REST API for the recorder: spreadsheet metadata,
// grid data, values get/append/batchUpdate.
type fakeAPI struct {
	sync.Mutex
	titles   []string
	sheets   map[string][][]string
	requests []string
	status   []int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sheets: map[string][][]string{},
	}
}

func (f *fakeAPI) add(title string, rows ...[]string) {
	f.titles = append(f.titles, title)
	f.sheets[title] = rows
}

func (f *fakeAPI) rows(title string) [][]string {
	f.Lock()
	defer f.Unlock()

	return f.sheets[title]
}

func (f *fakeAPI) calls(prefix string) int {
	f.Lock()
	defer f.Unlock()

	count := 0
	for _, rq := range f.requests {
		if strings.HasPrefix(rq, prefix) {
			count++
		}
	}

	return count
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+spreadsheetID)

	switch {
	case r.Method == http.MethodGet && path == "" && r.URL.Query().Get("includeGridData") == "true":
		f.requests = append(f.requests, "cells")
	case r.Method == http.MethodGet && path == "":
		f.requests = append(f.requests, "spreadsheet")
	default:
		f.requests = append(f.requests, r.Method+" "+path)
	}

	if len(f.status) > 0 {
		status := f.status[0]
		f.status = f.status[1:]

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"code":%v,"message":"%v"}}`, status, http.StatusText(status))
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "" && r.URL.Query().Get("includeGridData") == "true":
		f.grid(w, r.URL.Query()["ranges"])

	case r.Method == http.MethodGet && path == "":
		f.metadata(w)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/values/"):
		f.values(w, strings.TrimPrefix(path, "/values/"))

	case r.Method == http.MethodPost && strings.HasPrefix(path, "/values/") && strings.HasSuffix(path, ":append"):
		f.append(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "/values/"), ":append"))

	case r.Method == http.MethodPost && path == "/values:batchUpdate":
		f.batchUpdate(w, r)

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (f *fakeAPI) metadata(w http.ResponseWriter) {
	spreadsheet := sheets.Spreadsheet{
		SpreadsheetId: spreadsheetID,
		Properties:    &sheets.SpreadsheetProperties{Title: "Errors"},
	}

	for i, title := range f.titles {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{SheetId: int64(i), Title: title},
		})
	}

	json.NewEncoder(w).Encode(spreadsheet)
}

func (f *fakeAPI) grid(w http.ResponseWriter, ranges []string) {
	spreadsheet := sheets.Spreadsheet{
		SpreadsheetId: spreadsheetID,
	}

	for _, rng := range ranges {
		match := a1.FindStringSubmatch(rng)
		if match == nil {
			continue
		}

		data := sheets.GridData{}
		for _, row := range f.sheets[match[1]] {
			rowdata := sheets.RowData{}
			for _, v := range row {
				rowdata.Values = append(rowdata.Values, &sheets.CellData{FormattedValue: v})
			}
			data.RowData = append(data.RowData, &rowdata)
		}

		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: match[1]},
			Data:       []*sheets.GridData{&data},
		})
	}

	json.NewEncoder(w).Encode(spreadsheet)
}

func (f *fakeAPI) values(w http.ResponseWriter, rng string) {
	title := rng
	firstRowOnly := false

	if strings.HasSuffix(rng, "!1:1") {
		title = strings.TrimSuffix(rng, "!1:1")
		firstRowOnly = true
	}

	match := a1.FindStringSubmatch(title)
	if match == nil {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}

	rows := f.sheets[match[1]]
	if firstRowOnly && len(rows) > 1 {
		rows = rows[:1]
	}

	response := sheets.ValueRange{
		Range:          rng,
		MajorDimension: "ROWS",
	}

	for _, row := range rows {
		values := []interface{}{}
		for _, v := range row {
			values = append(values, v)
		}

		response.Values = append(response.Values, values)
	}

	json.NewEncoder(w).Encode(response)
}

func (f *fakeAPI) append(w http.ResponseWriter, r *http.Request, rng string) {
	if r.URL.Query().Get("valueInputOption") != "RAW" || r.URL.Query().Get("insertDataOption") != "INSERT_ROWS" {
		http.Error(w, "unexpected append options", http.StatusBadRequest)
		return
	}

	match := a1.FindStringSubmatch(rng)
	if match == nil {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}

	var values sheets.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, row := range values.Values {
		record := []string{}
		for _, v := range row {
			record = append(record, fmt.Sprintf("%v", v))
		}

		f.sheets[match[1]] = append(f.sheets[match[1]], record)
	}

	fmt.Fprintf(w, `{"spreadsheetId":%q}`, spreadsheetID)
}

func (f *fakeAPI) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var rq sheets.BatchUpdateValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&rq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if rq.ValueInputOption != "RAW" {
		http.Error(w, "unexpected value input option", http.StatusBadRequest)
		return
	}

	for _, data := range rq.Data {
		match := a1.FindStringSubmatch(data.Range)
		if match == nil || match[2] == "" {
			http.Error(w, "invalid range", http.StatusBadRequest)
			return
		}

		title := match[1]
		col := 0
		for _, c := range match[2] {
			col = col*26 + int(c-'A') + 1
		}
		row, _ := strconv.Atoi(match[3])

		rows := f.sheets[title]
		for len(rows) < row {
			rows = append(rows, []string{})
		}

		for len(rows[row-1]) < col {
			rows[row-1] = append(rows[row-1], "")
		}

		rows[row-1][col-1] = fmt.Sprintf("%v", data.Values[0][0])
		f.sheets[title] = rows
	}

	fmt.Fprintf(w, `{"spreadsheetId":%q}`, spreadsheetID)
}

// newTestSheets returns a Sheets backend wired to a fake API server, already authenticated.
func newTestSheets(t *testing.T, api *fakeAPI, options ...Option) (*Sheets, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	defaults := []Option{
		WithRateLimit(rate.Inf, 1),
		WithRetries(3, time.Millisecond),
		WithClientOptions(option.WithEndpoint(srv.URL + "/")),
	}

	s := NewSheets(spreadsheetID, append(defaults, options...)...)
	s.client = func(ctx context.Context, credentials []byte) (*http.Client, error) {
		return srv.Client(), nil
	}

	return s, srv
}

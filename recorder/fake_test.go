package recorder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type fakeBackend struct {
	authenticated atomic.Int32
	fetched       atomic.Int32
	authErr       error
	worksheets    []*fakeWorksheet
	gated         chan struct{}
}

func (b *fakeBackend) Authenticate(ctx context.Context, credentials Credentials) error {
	b.authenticated.Add(1)

	if b.gated != nil {
		select {
		case <-b.gated:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return b.authErr
}

func (b *fakeBackend) Spreadsheet(ctx context.Context) (*Spreadsheet, error) {
	b.fetched.Add(1)

	s := Spreadsheet{
		ID:    "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		Title: "errors",
	}

	for _, ws := range b.worksheets {
		s.Worksheets = append(s.Worksheets, ws)
	}

	return &s, nil
}

func (b *fakeBackend) calls() int {
	return int(b.authenticated.Load() + b.fetched.Load())
}

type fakeWorksheet struct {
	title   string
	rows    []*fakeRow
	cells   []Cell
	noCells bool

	sync.Mutex
	added      []Record
	saved      []Record
	savedIDs   []string
	cellsCalls int
}

func (ws *fakeWorksheet) Title() string {
	return ws.title
}

func (ws *fakeWorksheet) Rows(ctx context.Context) ([]Row, error) {
	rows := []Row{}
	for _, r := range ws.rows {
		r.ws = ws
		rows = append(rows, r)
	}

	return rows, nil
}

func (ws *fakeWorksheet) Cells(ctx context.Context) ([]Cell, error) {
	ws.Lock()
	ws.cellsCalls++
	ws.Unlock()

	return ws.cells, nil
}

func (ws *fakeWorksheet) AddRow(ctx context.Context, record Record) error {
	ws.Lock()
	defer ws.Unlock()

	ws.added = append(ws.added, record)

	return nil
}

type fakeRow struct {
	id     string
	fields map[string]string
	markup bool
	ws     *fakeWorksheet
}

func (r *fakeRow) ID() string {
	return r.id
}

func (r *fakeRow) Get(field string) (string, bool) {
	v, ok := r.fields[field]

	return v, ok
}

func (r *fakeRow) Set(field, value string) {
	r.fields[field] = value
}

// Markup renders the fields as a list feed entry, with the columns in sorted order.
func (r *fakeRow) Markup() string {
	if !r.markup {
		return ""
	}

	keys := []string{}
	for k := range r.fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<entry>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<gsx:%v>%v</gsx:%v>", k, r.fields[k], k)
	}
	b.WriteString("</entry>")

	return b.String()
}

func (r *fakeRow) Save(ctx context.Context) error {
	record := Record{}
	for k, v := range r.fields {
		record[k] = v
	}

	r.ws.Lock()
	r.ws.saved = append(r.ws.saved, record)
	r.ws.savedIDs = append(r.ws.savedIDs, r.id)
	r.ws.Unlock()

	return nil
}

func mkrow(id string, fields map[string]string) *fakeRow {
	return &fakeRow{
		id:     id,
		fields: fields,
		markup: true,
	}
}

// shiftingWorksheet returns rows whose identifier changes every time it is read, so that
// the formatted rows never line up with the live row index.
type shiftingWorksheet struct {
	*fakeWorksheet
}

func (ws *shiftingWorksheet) Rows(ctx context.Context) ([]Row, error) {
	rows := []Row{}
	for _, r := range ws.fakeWorksheet.rows {
		r.ws = ws.fakeWorksheet
		rows = append(rows, &shiftingRow{fakeRow: r})
	}

	return rows, nil
}

type shiftingRow struct {
	*fakeRow
	reads int
}

func (r *shiftingRow) ID() string {
	r.reads++

	return fmt.Sprintf("%v.%v", r.fakeRow.id, r.reads)
}

// spreadsheetOf serves a fixed set of worksheets on top of a fakeBackend.
type spreadsheetOf struct {
	*fakeBackend
	worksheet Worksheet
}

func (b *spreadsheetOf) Spreadsheet(ctx context.Context) (*Spreadsheet, error) {
	b.fetched.Add(1)

	return &Spreadsheet{Worksheets: []Worksheet{b.worksheet}}, nil
}

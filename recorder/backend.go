package recorder

import (
	"context"
)

// Backend is the spreadsheet service the recorder writes to.
type Backend interface {
	Authenticate(ctx context.Context, credentials Credentials) error
	Spreadsheet(ctx context.Context) (*Spreadsheet, error)
}

// Spreadsheet is the metadata fetched once after authentication.
type Spreadsheet struct {
	ID         string
	Title      string
	Worksheets []Worksheet
}

// Worksheet is one tab of the spreadsheet, holding the errors for a single error type.
type Worksheet interface {
	Title() string
	Rows(ctx context.Context) ([]Row, error)
	Cells(ctx context.Context) ([]Cell, error)
	AddRow(ctx context.Context, record Record) error
}

// Row is a live handle on a worksheet row. Set only changes the local copy, Save writes
// it back.
type Row interface {
	ID() string
	Get(field string) (string, bool)
	Set(field, value string)
	Markup() string
	Save(ctx context.Context) error
}

// Cell is a single worksheet cell. Row and Col are 1-based.
type Cell struct {
	Row   int
	Col   int
	Value string
}

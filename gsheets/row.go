package gsheets

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/sheets/v4"
)

var tag = regexp.MustCompile(`^\w+$`)

type row struct {
	worksheet *worksheet
	number    int
	headers   []string
	fields    map[string]string
	dirty     map[string]bool
}

func (r *row) ID() string {
	return fmt.Sprintf("%v", r.number)
}

func (r *row) Get(field string) (string, bool) {
	v, ok := r.fields[field]

	return v, ok
}

func (r *row) Set(field, value string) {
	r.fields[field] = value
	r.dirty[field] = true
}

// Markup renders the row as a list feed entry, e.g. <entry><gsx:message>timeout</gsx:message></entry>.
// Column names that can't be used as an XML tag have no list feed equivalent, in which case
// the row has no markup at all.
func (r *row) Markup() string {
	if len(r.headers) == 0 {
		return ""
	}

	for _, h := range r.headers {
		if !tag.MatchString(h) {
			return ""
		}
	}

	var b strings.Builder

	b.WriteString("<entry>")
	for _, h := range r.headers {
		fmt.Fprintf(&b, "<gsx:%v>", h)
		xml.EscapeText(&b, []byte(r.fields[h]))
		fmt.Fprintf(&b, "</gsx:%v>", h)
	}
	b.WriteString("</entry>")

	return b.String()
}

// Save writes the fields changed by Set back to the worksheet, one cell per field. A changed
// field without a column is an error and nothing is written.
func (r *row) Save(ctx context.Context) error {
	ws := r.worksheet

	data := []*sheets.ValueRange{}
	for field := range r.dirty {
		ix := -1
		for i, h := range r.headers {
			if h == field {
				ix = i
				break
			}
		}

		if ix < 0 {
			return fmt.Errorf("unable to update row %v in worksheet %v (no '%v' column)", r.number, ws.title, field)
		}

		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%v!%v%v", quote(ws.title), column(ix+1), r.number),
			Values: [][]interface{}{{r.fields[field]}},
		})
	}

	if len(data) == 0 {
		return nil
	}

	google, err := ws.sheets.sheets()
	if err != nil {
		return err
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	if err := ws.sheets.call(ctx, "update row", func() error {
		_, err := google.Spreadsheets.Values.BatchUpdate(ws.sheets.id, &rq).Context(ctx).Do()
		return err
	}); err != nil {
		return fmt.Errorf("error updating row %v in worksheet %v (%w)", r.number, ws.title, err)
	}

	r.dirty = map[string]bool{}

	return nil
}

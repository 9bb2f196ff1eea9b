package recorder

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Outcome describes what Reconcile did with a report.
type Outcome string

const (
	Inserted  Outcome = "inserted"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
	Failed    Outcome = "failed"
)

// Recorder deduplicates error reports into per-type worksheets.
type Recorder struct {
	invalid error
	gate    *gate
	now     func() time.Time
	log     logrus.FieldLogger
	metrics *Metrics
}

type Option func(*Recorder)

// WithClock replaces time.Now, mostly for tests. 'Today' is taken in the location of the
// returned time.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Recorder) {
		r.log = log
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder validates the credentials up front but defers authentication to the first
// Record. Invalid or missing credentials are reported by every call to Record without
// touching the backend.
func NewRecorder(credentials string, backend Backend, options ...Option) *Recorder {
	creds, err := ParseCredentials(credentials)

	r := Recorder{
		invalid: err,
		gate: &gate{
			backend:     backend,
			credentials: creds,
		},
		now: time.Now,
		log: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Record records a single error report, discarding the outcome.
func (r *Recorder) Record(ctx context.Context, report Report) error {
	_, err := r.Reconcile(ctx, report)

	return err
}

// Reconcile records a single error report. A report that matches no existing row is
// inserted, a match last seen before today has its date refreshed and a match already seen
// today is left alone.
func (r *Recorder) Reconcile(ctx context.Context, report Report) (outcome Outcome, err error) {
	defer func() {
		r.metrics.observe(outcome, err)
	}()

	if r.invalid != nil {
		return Failed, r.invalid
	}

	errType := report.Type()
	if errType == "" {
		return Failed, newError(InvalidReport, nil, "Error data must have type specified")
	}

	spreadsheet, err := r.gate.ready(ctx)
	if err != nil {
		return Failed, err
	}

	ws := worksheetFor(errType, spreadsheet)
	if ws == nil {
		return Failed, newError(UnsupportedErrorType, nil, "Unable to find worksheet for error type: %v", errType)
	}

	sheet, err := load(ctx, ws)
	if err != nil {
		return Failed, err
	}

	log := r.log.WithField("worksheet", sheet.title)
	now := r.now()
	today := now.Format(DateFormat)
	ix := findMatchingRow(report, sheet.rows)
	if ix < 0 {
		if err := ws.AddRow(ctx, newRow(report, today)); err != nil {
			return Failed, err
		}

		log.Debugf("added row for %v error", errType)
		return Inserted, nil
	}

	id := sheet.ids[ix]
	match := sheet.rows[ix]

	switch {
	case !isToday(match[FieldDate], now):
		row, ok := sheet.rowsByID[id]
		if !ok || row == nil || row.ID() != id {
			return Failed, newError(RowUpdateTargetMissing, nil, "Could not update row with id: %v for worksheet: %v", id, sheet.title)
		}

		row.Set(FieldDate, today)
		if err := row.Save(ctx); err != nil {
			return Failed, err
		}

		log.WithField("row", id).Debugf("updated last seen date from '%v' to '%v'", match[FieldDate], today)
		return Updated, nil

	default:
		log.WithField("row", id).Debugf("%v error already recorded today", errType)
		return Unchanged, nil
	}
}

// findMatchingRow returns the index of the first non-blank record that has no field (other
// than the date) differing from the report, or -1. Only fields that are non-empty in both are
// compared.
func findMatchingRow(report Report, rows []Record) int {
	for i, row := range rows {
		if row.Blank() {
			continue
		}

		if len(differences(report, row)) == 0 {
			return i
		}
	}

	return -1
}

func differences(report Report, row Record) []string {
	different := []string{}

	for _, key := range report.Fields() {
		field := Normalise(key)
		if field == FieldDate {
			continue
		}

		p := row[field]
		q := report.String(key)
		if p != "" && q != "" && truncate(p, CompareLength) != truncate(q, CompareLength) {
			different = append(different, key)
		}
	}

	return different
}

func newRow(report Report, today string) Record {
	record := Record{}
	for _, key := range report.Fields() {
		record[Normalise(key)] = report.String(key)
	}

	record[FieldDate] = today

	return record
}

// isToday compares the stored date with now at day granularity, in now's location. Blank or
// unparseable dates are never today.
func isToday(date string, now time.Time) bool {
	d, err := time.ParseInLocation("1/2/2006", strings.TrimSpace(date), now.Location())
	if err != nil {
		return false
	}

	y, m, day := now.Date()

	return d.Year() == y && d.Month() == m && d.Day() == day
}

// Rows returns the column headers and the formatted rows of the worksheet for an error type.
func (r *Recorder) Rows(ctx context.Context, errType string) ([]string, []Record, error) {
	if r.invalid != nil {
		return nil, nil, r.invalid
	}

	spreadsheet, err := r.gate.ready(ctx)
	if err != nil {
		return nil, nil, err
	}

	ws := worksheetFor(errType, spreadsheet)
	if ws == nil {
		return nil, nil, newError(UnsupportedErrorType, nil, "Unable to find worksheet for error type: %v", errType)
	}

	sheet, err := load(ctx, ws)
	if err != nil {
		return nil, nil, err
	}

	return sheet.headers, sheet.rows, nil
}

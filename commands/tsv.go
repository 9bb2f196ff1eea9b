package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

var whitespace = regexp.MustCompile(`[\t\r\n]+`)

// worksheetToTSV writes the worksheet rows as TSV, with the column headers as the first row.
// The 'date' column is always written last.
func worksheetToTSV(f io.Writer, headers []string, rows []recorder.Record) error {
	if len(headers) == 0 {
		return fmt.Errorf("Missing/invalid header row")
	}

	// ... header
	header := []string{}
	index := map[string]bool{}
	for _, h := range headers {
		k := recorder.Normalise(h)
		if index[k] {
			return fmt.Errorf("Duplicate column name '%s'", h)
		}

		index[k] = true
		if k != recorder.FieldDate {
			header = append(header, k)
		}
	}

	if index[recorder.FieldDate] {
		header = append(header, recorder.FieldDate)
	}

	// ... records
	records := [][]string{}
	for _, row := range rows {
		if row.Blank() {
			continue
		}

		record := []string{}
		for _, h := range header {
			record = append(record, clean(row[h]))
		}

		records = append(records, record)
	}

	// ... write to file
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return err
	}

	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// tsvToReports reads a TSV file with a header row of field names and returns one error report
// per (non-empty) data row. errType is used for rows without a 'type' column value.
func tsvToReports(f io.Reader, errType string) ([]recorder.Report, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	// ... header
	header := []string{}
	for _, v := range records[0] {
		header = append(header, strings.TrimSpace(v))
	}

	// ... data
	reports := []recorder.Report{}
	for _, record := range records[1:] {
		report := recorder.Report{}

		for i, v := range record {
			if i < len(header) && header[i] != "" {
				if v = strings.TrimSpace(v); v != "" {
					report[header[i]] = v
				}
			}
		}

		if len(report) == 0 {
			continue
		}

		if report.Type() == "" && strings.TrimSpace(errType) != "" {
			report[recorder.FieldType] = strings.TrimSpace(errType)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func clean(v string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(v, " "))
}

package recorder

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// FieldType is the Report key selecting the worksheet.
	FieldType = "type"
	// FieldDate is the 'last seen' column, formatted as DateFormat.
	FieldDate = "date"

	// DateFormat is MM/DD/YYYY.
	DateFormat = "01/02/2006"

	// Only the first 400 characters of a value take part in matching.
	CompareLength = 400
)

// Report is a single error report, keyed by field name. Keys are case-insensitive and values
// are compared by their string form.
type Report map[string]any

// Record is a normalised row: lowercase field name -> string value. The row identifier is
// not part of the record, so a worksheet is free to have an 'id' column.
type Record map[string]string

// Credentials is the validated service account JSON handed to Backend.Authenticate.
type Credentials json.RawMessage

// Normalise folds a header or report key to the field name used for matching and storage.
func Normalise(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

// Type returns the report 'type' field, or "" if it is missing or blank.
func (r Report) Type() string {
	for _, k := range r.Fields() {
		if Normalise(k) == FieldType {
			return strings.TrimSpace(stringify(r[k]))
		}
	}

	return ""
}

// Fields returns the report keys in sorted order so that scans over a report are repeatable.
func (r Report) Fields() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// String returns the string form of the value stored under key.
func (r Report) String(key string) string {
	return stringify(r[key])
}

// Blank is true for rows with no cells at all.
func (r Record) Blank() bool {
	return len(r) == 0
}

// ParseCredentials validates the configured credentials value. An empty value is
// CredentialsMissing, anything that isn't a JSON object (after allowing single quotes in
// place of double quotes) is CredentialsInvalid.
func ParseCredentials(raw string) (Credentials, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, newError(CredentialsMissing, nil, "No Google sheets credentials found")
	}

	if !json.Valid([]byte(s)) {
		s = strings.ReplaceAll(s, "'", `"`)
	}

	var object map[string]any
	if err := json.Unmarshal([]byte(s), &object); err != nil {
		return nil, newError(CredentialsInvalid, err, "Unable to parse Google sheets credentials")
	} else if object == nil {
		return nil, newError(CredentialsInvalid, nil, "Unable to parse Google sheets credentials")
	}

	return Credentials(s), nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""

	case string:
		return x

	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)

	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)

	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", x)

	case fmt.Stringer:
		return x.String()

	case error:
		return x.Error()
	}

	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}

	return fmt.Sprintf("%v", v)
}

// truncate returns at most the first n characters (not bytes) of s.
func truncate(s string, n int) string {
	i := 0
	for ix := range s {
		if i == n {
			return s[:ix]
		}
		i++
	}

	return s
}

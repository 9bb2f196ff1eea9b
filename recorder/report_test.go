package recorder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportType(t *testing.T) {
	tests := []struct {
		report   Report
		expected string
	}{
		{Report{"type": "Network"}, "Network"},
		{Report{"Type": " Network "}, "Network"},
		{Report{"TYPE": 404.0}, "404"},
		{Report{"message": "timeout"}, ""},
		{Report{"type": nil}, ""},
		{nil, ""},
	}

	for _, test := range tests {
		if got := test.report.Type(); got != test.expected {
			t.Errorf("Incorrect type for %v\n   expected: %q\n   got:      %q", test.report, test.expected, got)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, ""},
		{"timeout", "timeout"},
		{3.0, "3"},
		{2.5, "2.5"},
		{float32(0.5), "0.5"},
		{42, "42"},
		{true, "true"},
		{errors.New("refused"), "refused"},
		{map[string]any{"line": 10.0}, `{"line":10}`},
		{[]any{"a", 1.0}, `["a",1]`},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, stringify(test.value), "stringify(%#v)", test.value)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 400))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "日本", truncate("日本語", 2))
}

func TestNormalise(t *testing.T) {
	assert.Equal(t, "message", Normalise(" Message "))
	assert.Equal(t, "error code", Normalise("Error Code"))
}

func TestRecordBlank(t *testing.T) {
	assert.True(t, Record{}.Blank())
	assert.False(t, Record{"id": "2"}.Blank())
	assert.False(t, Record{"message": ""}.Blank())
	assert.False(t, Record{"message": "timeout"}.Blank())
}

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials(` {"type":"service_account"} `)
	assert.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(creds))

	creds, err = ParseCredentials(`{'type':'service_account'}`)
	assert.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(creds))

	_, err = ParseCredentials("")
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = ParseCredentials("{")
	assert.ErrorIs(t, err, ErrCredentialsInvalid)
}

func TestErrorMessage(t *testing.T) {
	err := newError(HeaderParseError, errors.New("EOF"), "Unable to parse col headers for worksheet: %v", "Network")

	assert.Equal(t, "Unable to parse col headers for worksheet: Network (EOF)", err.Error())
	assert.Equal(t, "unsupported", ErrUnsupportedErrorType.Error())
	assert.ErrorIs(t, err, ErrHeaderParse)
	assert.NotErrorIs(t, err, ErrInvalidReport)
}

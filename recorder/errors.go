package recorder

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure returned by Record.
type Kind string

const (
	CredentialsMissing     Kind = "credentials-missing"
	CredentialsInvalid     Kind = "credentials-invalid"
	InvalidReport          Kind = "invalid-report"
	UnsupportedErrorType   Kind = "unsupported"
	HeaderParseError       Kind = "header-parse"
	RowUpdateTargetMissing Kind = "row-update-target-missing"
)

// Error is the typed failure returned to callers of Record. Code is 404 or 401 for the
// classified failures and 0 for everything else.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

var (
	ErrCredentialsMissing     = &Error{Kind: CredentialsMissing, Code: 404}
	ErrCredentialsInvalid     = &Error{Kind: CredentialsInvalid, Code: 401}
	ErrInvalidReport          = &Error{Kind: InvalidReport}
	ErrUnsupportedErrorType   = &Error{Kind: UnsupportedErrorType, Code: 404}
	ErrHeaderParse            = &Error{Kind: HeaderParseError}
	ErrRowUpdateTargetMissing = &Error{Kind: RowUpdateTargetMissing}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}

	if e.Err != nil {
		return fmt.Sprintf("%v (%v)", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so that errors.Is(err, recorder.ErrUnsupportedErrorType) works for any
// message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}

	return false
}

// Code returns the caller-visible code for err, or 0 if err is not a classified *Error.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return 0
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	e := Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}

	switch kind {
	case CredentialsMissing, UnsupportedErrorType:
		e.Code = 404
	case CredentialsInvalid:
		e.Code = 401
	}

	return &e
}

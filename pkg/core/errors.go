package core

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrMalformedDocument reports an unparsable sidecar, extras block or properties payload.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrSchemaVersionUnsupported reports a document written by a newer schema.
	ErrSchemaVersionUnsupported = errors.New("schema version unsupported")
	// ErrFieldCoercionFailed reports a value that does not fit its field type.
	ErrFieldCoercionFailed = errors.New("field coercion failed")
	// ErrMissingRequiredField reports a record that cannot be exported as is.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMetadataAbsent reports an extras container without a metadata block.
	ErrMetadataAbsent = errors.New("metadata absent")
	// ErrNoRecord reports an operation that needs a record while the store is empty.
	ErrNoRecord = errors.New("no metadata record")
)

// Error carries an error kind together with the offending key and value.
type Error struct {
	Kind  error
	Key   string
	Value any
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Key)
	}
	if e.Value != nil {
		msg = fmt.Sprintf("%s (value %v)", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed builds an ErrMalformedDocument error.
func Malformed(key string, err error) error {
	return &Error{Kind: ErrMalformedDocument, Key: key, Err: err}
}

// Warning is a non-fatal finding recorded for display.
type Warning struct {
	Field   string
	Message string
	Value   any
}

func (w Warning) String() string {
	if w.Field == "" {
		return w.Message
	}
	if w.Value != nil {
		return fmt.Sprintf("%s: %s (value %v)", w.Field, w.Message, w.Value)
	}
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

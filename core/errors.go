package core

import "errors"

// Error kinds. Every store failure unwraps to exactly one of these.
var (
	ErrIO              = errors.New("io error")
	ErrSerialization   = errors.New("serialization error")
	ErrDeserialization = errors.New("deserialization error")
	ErrFormat          = errors.New("format error")
	ErrDecode          = errors.New("decode error")
)

// Error carries a human-readable message for the UI along with its kind and cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func IOError(msg string, err error) error {
	return &Error{Kind: ErrIO, Msg: msg, Err: err}
}

func SerializationError(msg string, err error) error {
	return &Error{Kind: ErrSerialization, Msg: msg, Err: err}
}

func DeserializationError(msg string, err error) error {
	return &Error{Kind: ErrDeserialization, Msg: msg, Err: err}
}

func FormatError(msg string) error {
	return &Error{Kind: ErrFormat, Msg: msg}
}

func DecodeError(msg string, err error) error {
	return &Error{Kind: ErrDecode, Msg: msg, Err: err}
}

var errNilDocument = errors.New("document is nil")

package core

import (
	"errors"
	"fmt"
)

// Error kinds. Everything except ErrChannelClosed is local to one entry
// and absorbed by the stage that detects it.
var (
	ErrDiscoveryIO    = errors.New("discovery io")
	ErrFileNotFound   = errors.New("file not found")
	ErrMalformed      = errors.New("malformed descriptor")
	ErrSectionMissing = errors.New("section missing")
	ErrFieldMissing   = errors.New("field missing")
	ErrWrongFileType  = errors.New("wrong file type")
	ErrIconNotFound   = errors.New("icon not found")
	ErrEncoding       = errors.New("path not representable")
	ErrChannelClosed  = errors.New("channel closed")
)

// ParseError describes why a discovered path produced no entry
type ParseError struct {
	Path  string
	Kind  error
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

// Is matches the error against its kind sentinel
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a kind sentinel with the offending path
func NewParseError(path string, kind error, cause error) *ParseError {
	return &ParseError{Path: path, Kind: kind, Err: cause}
}

// FieldMissing builds the error for a descriptor lacking a required key
func FieldMissing(path, field string) *ParseError {
	return &ParseError{Path: path, Kind: ErrFieldMissing, Field: field}
}

// KindOf returns the sentinel kind of a per-entry error, or nil when unknown
func KindOf(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	for _, kind := range []error{
		ErrDiscoveryIO, ErrFileNotFound, ErrMalformed, ErrSectionMissing,
		ErrFieldMissing, ErrWrongFileType, ErrIconNotFound, ErrEncoding, ErrChannelClosed,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

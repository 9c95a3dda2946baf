package provider

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Failure kinds. Match them with errors.Is against any error a Client returns
var (
	ErrMissingBaseURL  = xerrors.New("missing base url")
	ErrNetwork         = xerrors.New("network failure")
	ErrAuth            = xerrors.New("authentication failure")
	ErrParse           = xerrors.New("parse failure")
	ErrUnknownProvider = xerrors.New("unknown provider")
)

// Error is a typed provider failure
type Error struct {
	Provider string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(provider string, kind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// KindName returns a short stable label for the failure kind of err
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingBaseURL):
		return "missing_base_url"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrUnknownProvider):
		return "unknown_provider"
	default:
		return "network"
	}
}

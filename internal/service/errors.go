package service

import (
	"github.com/cockroachdb/errors"

	"github.com/sensioair/sensio-mcp/internal/access"
)

// Error markers. Every error a tool returns carries at most one of them;
// unmarked errors are internal.
var (
	ErrValidation  = errors.New("invalid input")
	ErrOutOfRange  = errors.New("time window out of range")
	ErrUpstream    = errors.New("upstream failure")
	ErrUnknownTool = errors.New("unknown tool")
)

// Kind classifies a failed call for transports and metrics.
type Kind string

const (
	KindOK           Kind = "ok"
	KindValidation   Kind = "validation"
	KindAccessDenied Kind = "access_denied"
	KindOutOfRange   Kind = "out_of_range"
	KindUpstream     Kind = "upstream"
	KindUnknownTool  Kind = "unknown_tool"
	KindInternal     Kind = "internal"
)

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, access.ErrDenied):
		return KindAccessDenied
	case errors.Is(err, ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	default:
		return KindInternal
	}
}

func invalidf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

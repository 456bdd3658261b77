// Package spc implements the statistical control engine: subgrouping,
// control-limit derivation, zone classification, and Western Electric
// rule evaluation for X̄-R, X̄-S, CUSUM and P-attribute control charts.
//
// The engine is pure and synchronous. It consumes an already-normalized
// numeric measurement series (optionally with numeric time offsets) and
// produces structured limits, plotted points and violation flags. Rendering,
// ingestion and transport live outside this package.
package spc

// Error codes returned by the engine
const (
	CodeInsufficientData        = "INSUFFICIENT_DATA"
	CodeUnsupportedSubgroupSize = "UNSUPPORTED_SUBGROUP_SIZE"
	CodeInvalidSubgroupSize     = "INVALID_SUBGROUP_SIZE"
	CodeInvalidTarget           = "INVALID_TARGET"
	CodeUnorderedTimeAxis       = "UNORDERED_TIME_AXIS"
	CodeInapplicableRule        = "INAPPLICABLE_RULE"
	CodeInvalidRequest          = "INVALID_REQUEST"
)

// Error represents a structured engine error identifying the offending input
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches engine errors by code so callers can use errors.Is with the
// sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors for errors.Is checks. Returned errors carry concrete
// messages and details; they compare equal to these by code.
var (
	ErrInsufficientData        = &Error{Code: CodeInsufficientData, Message: "insufficient data"}
	ErrUnsupportedSubgroupSize = &Error{Code: CodeUnsupportedSubgroupSize, Message: "unsupported subgroup size"}
	ErrInvalidSubgroupSize     = &Error{Code: CodeInvalidSubgroupSize, Message: "invalid subgroup size"}
	ErrInvalidTarget           = &Error{Code: CodeInvalidTarget, Message: "invalid target"}
	ErrUnorderedTimeAxis       = &Error{Code: CodeUnorderedTimeAxis, Message: "unordered time axis"}
	ErrInapplicableRule        = &Error{Code: CodeInapplicableRule, Message: "inapplicable rule"}
	ErrInvalidRequest          = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
)

// NewError creates a new engine error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithDetail attaches a detail field and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

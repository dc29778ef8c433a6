package runtime

import "fmt"

// ErrorCode names one terminal failure kind. Codes are shared across the
// runtime and the programs it hosts so that callers can always distinguish a
// malformed request from a world-state precondition failure.
type ErrorCode string

const (
	RUN_ERR_SIGNATURE_MISSING   ErrorCode = "RUN_ERR_SIGNATURE_MISSING"
	RUN_ERR_SIGNATURE_INVALID   ErrorCode = "RUN_ERR_SIGNATURE_INVALID"
	RUN_ERR_ACCOUNT_MISSING     ErrorCode = "RUN_ERR_ACCOUNT_MISSING"
	RUN_ERR_PROGRAM_UNKNOWN     ErrorCode = "RUN_ERR_PROGRAM_UNKNOWN"
	RUN_ERR_ADDRESS_IN_USE      ErrorCode = "RUN_ERR_ADDRESS_IN_USE"
	RUN_ERR_FUNDS_INSUFFICIENT  ErrorCode = "RUN_ERR_FUNDS_INSUFFICIENT"
	RUN_ERR_SEEDS_INVALID       ErrorCode = "RUN_ERR_SEEDS_INVALID"
	RUN_ERR_ADDRESS_ON_CURVE    ErrorCode = "RUN_ERR_ADDRESS_ON_CURVE"
	RUN_ERR_ARITHMETIC_OVERFLOW ErrorCode = "RUN_ERR_ARITHMETIC_OVERFLOW"
	RUN_ERR_MESSAGE_PARSE       ErrorCode = "RUN_ERR_MESSAGE_PARSE"
)

type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// NewError is the constructor programs use for their own code namespaces.
func NewError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

func rterr(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// CodeOf extracts the failure kind, or "" for nil and foreign errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok && e != nil {
		return e.Code
	}
	return ""
}

package errors

import stdErrors "errors"

// NetworkError is a specialized error type for failures at the connection
// and wire-protocol boundary: dial/accept/read/write failures and malformed
// request/response frames. It embeds baseError to inherit the standard
// error functionality, then adds context specific to where on the wire the
// failure occurred.
type NetworkError struct {
	*baseError
	addr string // Remote or local address involved in the failure, if known.
	op   string // Which network operation was being performed ("accept", "read", "write", "decode").
}

// NewNetworkError creates a new network-specific error.
func NewNetworkError(err error, code ErrorCode, msg string) *NetworkError {
	return &NetworkError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the NetworkError type.
func (ne *NetworkError) WithMessage(msg string) *NetworkError {
	ne.baseError.WithMessage(msg)
	return ne
}

// WithCode sets the error code while preserving the NetworkError type.
func (ne *NetworkError) WithCode(code ErrorCode) *NetworkError {
	ne.baseError.WithCode(code)
	return ne
}

// WithDetail adds contextual information while maintaining the NetworkError type.
func (ne *NetworkError) WithDetail(key string, value any) *NetworkError {
	ne.baseError.WithDetail(key, value)
	return ne
}

// WithAddr records which address was involved in the error.
func (ne *NetworkError) WithAddr(addr string) *NetworkError {
	ne.addr = addr
	return ne
}

// WithOp records which network operation was being performed.
func (ne *NetworkError) WithOp(op string) *NetworkError {
	ne.op = op
	return ne
}

// Addr returns the address involved in the error.
func (ne *NetworkError) Addr() string {
	return ne.addr
}

// Op returns the network operation that was being performed.
func (ne *NetworkError) Op() string {
	return ne.op
}

// IsNetworkError checks if the given error is a NetworkError or contains one
// in its error chain.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return stdErrors.As(err, &ne)
}

// AsNetworkError extracts a NetworkError from an error chain.
func AsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if stdErrors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

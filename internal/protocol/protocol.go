// Package protocol defines the wire request/response types exchanged
// between kvs-client and kvs-server (spec.md §4.5) and the Codec interface
// that encodes/decodes them. The concrete framing lives in array_codec.go;
// Codec is an interface so other framings can be substituted without
// touching server or client logic.
package protocol

// Request is one of SetRequest, GetRequest, or RemoveRequest.
type Request interface {
	isRequest()
}

// SetRequest asks the store to write key=value.
type SetRequest struct {
	Key   []byte
	Value []byte
}

func (SetRequest) isRequest() {}

// GetRequest asks the store for the value stored at key.
type GetRequest struct {
	Key []byte
}

func (GetRequest) isRequest() {}

// RemoveRequest asks the store to delete key.
type RemoveRequest struct {
	Key []byte
}

func (RemoveRequest) isRequest() {}

// Response is one of OKResponse, ValueResponse, NotFoundResponse, or
// ErrorResponse.
type Response interface {
	isResponse()
}

// OKResponse reports that a SET or REMOVE succeeded.
type OKResponse struct{}

func (OKResponse) isResponse() {}

// ValueResponse carries the value found for a GET hit.
type ValueResponse struct {
	Value []byte
}

func (ValueResponse) isResponse() {}

// NotFoundResponse reports a GET miss or a REMOVE of a missing key.
type NotFoundResponse struct{}

func (NotFoundResponse) isResponse() {}

// ErrorResponse carries a human-readable message for a malformed request
// or an engine-level failure.
type ErrorResponse struct {
	Message string
}

func (ErrorResponse) isResponse() {}

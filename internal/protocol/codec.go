package protocol

import "io"

// Codec encodes and decodes requests and responses for the wire. It is an
// interface per spec.md §4.5's explicit requirement that the framing be
// substitutable without changing server or client logic.
type Codec interface {
	EncodeRequest(req Request) ([]byte, error)
	DecodeRequest(r io.Reader) (Request, error)

	EncodeResponse(resp Response) ([]byte, error)
	DecodeResponse(r io.Reader) (Response, error)
}

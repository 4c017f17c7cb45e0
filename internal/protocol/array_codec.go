package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

// ArrayCodec implements the length-prefixed array framing from spec.md
// §4.5:
//
//	*<n>\r\n
//	$<len1>\r\n<field1>\r\n
//	…
//	$<lenN>\r\n<fieldN>\r\n
//
// Every decode reads directly off a *bufio.Reader, filling each field body
// with io.ReadFull into a slice of the field's own declared length, never a
// fixed-size scratch buffer — a VALUE field of any size decodes in full. This is the fix for the source's truncating
// 1 KiB client read (original_source/src/client/sync_client.rs).
type ArrayCodec struct{}

var _ Codec = ArrayCodec{}

func (ArrayCodec) EncodeRequest(req Request) ([]byte, error) {
	switch r := req.(type) {
	case SetRequest:
		return encodeArray([][]byte{[]byte("SET"), r.Key, r.Value}), nil
	case GetRequest:
		return encodeArray([][]byte{[]byte("GET"), r.Key}), nil
	case RemoveRequest:
		return encodeArray([][]byte{[]byte("REMOVE"), r.Key}), nil
	default:
		return nil, malformed("unknown request type %T", req)
	}
}

func (ArrayCodec) DecodeRequest(r io.Reader) (Request, error) {
	fields, err := decodeArray(bufReader(r))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, malformed("empty request frame")
	}

	switch string(fields[0]) {
	case "SET":
		if len(fields) != 3 {
			return nil, malformed("SET requires key and value, got %d fields", len(fields)-1)
		}
		return SetRequest{Key: fields[1], Value: fields[2]}, nil
	case "GET":
		if len(fields) != 2 {
			return nil, malformed("GET requires exactly one key, got %d fields", len(fields)-1)
		}
		return GetRequest{Key: fields[1]}, nil
	case "REMOVE":
		if len(fields) != 2 {
			return nil, malformed("REMOVE requires exactly one key, got %d fields", len(fields)-1)
		}
		return RemoveRequest{Key: fields[1]}, nil
	default:
		return nil, malformed("unrecognized command %q", fields[0])
	}
}

func (ArrayCodec) EncodeResponse(resp Response) ([]byte, error) {
	switch r := resp.(type) {
	case OKResponse:
		return encodeArray([][]byte{[]byte("OK")}), nil
	case ValueResponse:
		return encodeArray([][]byte{[]byte("VALUE"), r.Value}), nil
	case NotFoundResponse:
		return encodeArray([][]byte{[]byte("NOT_FOUND")}), nil
	case ErrorResponse:
		return encodeArray([][]byte{[]byte("ERROR"), []byte(r.Message)}), nil
	default:
		return nil, malformed("unknown response type %T", resp)
	}
}

func (ArrayCodec) DecodeResponse(r io.Reader) (Response, error) {
	fields, err := decodeArray(bufReader(r))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, malformed("empty response frame")
	}

	switch string(fields[0]) {
	case "OK":
		return OKResponse{}, nil
	case "VALUE":
		if len(fields) != 2 {
			return nil, malformed("VALUE requires exactly one field, got %d", len(fields)-1)
		}
		return ValueResponse{Value: fields[1]}, nil
	case "NOT_FOUND":
		return NotFoundResponse{}, nil
	case "ERROR":
		if len(fields) != 2 {
			return nil, malformed("ERROR requires exactly one field, got %d", len(fields)-1)
		}
		return ErrorResponse{Message: string(fields[1])}, nil
	default:
		return nil, malformed("unrecognized response tag %q", fields[0])
	}
}

func bufReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func encodeArray(fields [][]byte) []byte {
	buf := []byte(fmt.Sprintf("*%d\r\n", len(fields)))
	for _, f := range fields {
		buf = append(buf, []byte(fmt.Sprintf("$%d\r\n", len(f)))...)
		buf = append(buf, f...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

func decodeArray(r *bufio.Reader) ([][]byte, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '*' {
		return nil, malformed("expected array header, got %q", line)
	}

	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 0 {
		return nil, malformed("invalid array length %q", line[1:])
	}

	fields := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 || line[0] != '$' {
			return nil, malformed("expected field header, got %q", line)
		}

		fieldLen, err := strconv.Atoi(line[1:])
		if err != nil || fieldLen < 0 {
			return nil, malformed("invalid field length %q", line[1:])
		}

		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(r, field); err != nil {
			return nil, kerrors.NewNetworkError(err, kerrors.ErrorCodeMalformedFrame, "short read on field body")
		}

		// Consume the trailing CRLF after the field's bytes.
		if _, err := readLine(r); err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// readLine reads up to and including the next "\r\n", returning the line
// without the terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", kerrors.NewNetworkError(err, kerrors.ErrorCodeMalformedFrame, "failed to read frame line")
	}
	line = line[:len(line)-1] // drop '\n'
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

func malformed(format string, args ...any) error {
	return kerrors.NewNetworkError(nil, kerrors.ErrorCodeMalformedFrame, fmt.Sprintf(format, args...))
}

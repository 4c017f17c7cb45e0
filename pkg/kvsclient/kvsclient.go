// Package kvsclient is the public client library for talking to a
// kvs-server instance (spec.md §4.8): one TCP connection per request,
// matching the server's request/close semantics.
package kvsclient

import (
	"bufio"
	"context"
	"net"

	"github.com/iamnilotpal/ignite-kv/internal/protocol"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

// Client sends requests to a single kvs-server address.
type Client struct {
	addr  string
	codec protocol.Codec
}

// Connect returns a Client targeting addr. No connection is opened until
// Send is called — the wire protocol is one connection per request.
func Connect(addr string) (*Client, error) {
	if addr == "" {
		return nil, kerrors.NewValidationError(nil, kerrors.ErrorCodeInvalidInput, "address must not be empty").
			WithField("addr").WithRule("required")
	}
	return &Client{addr: addr, codec: protocol.ArrayCodec{}}, nil
}

// Send dials addr, writes one encoded request, and reads back one decoded
// response before closing the connection.
func (c *Client) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, kerrors.NewNetworkError(err, kerrors.ErrorCodeConnectionFailed, "failed to connect to server").
			WithAddr(c.addr).WithOp("dial")
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	encoded, err := c.codec.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Write(encoded); err != nil {
		return nil, kerrors.NewNetworkError(err, kerrors.ErrorCodeConnectionFailed, "failed to write request").
			WithAddr(c.addr).WithOp("write")
	}

	resp, err := c.codec.DecodeResponse(bufio.NewReader(conn))
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Get issues a GET request for key.
func (c *Client) Get(ctx context.Context, key []byte) (protocol.Response, error) {
	return c.Send(ctx, protocol.GetRequest{Key: key})
}

// Set issues a SET request for key=value.
func (c *Client) Set(ctx context.Context, key, value []byte) (protocol.Response, error) {
	return c.Send(ctx, protocol.SetRequest{Key: key, Value: value})
}

// Remove issues a REMOVE request for key.
func (c *Client) Remove(ctx context.Context, key []byte) (protocol.Response, error) {
	return c.Send(ctx, protocol.RemoveRequest{Key: key})
}

// Close is a no-op: Client holds no connection between requests. It exists
// so callers can manage a Client with the same open/close lifecycle as
// other resources in this repository.
func (c *Client) Close() error {
	return nil
}

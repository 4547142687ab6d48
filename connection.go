package enet

import (
	"fmt"
	"io"
	"net"

	"github.com/enet-go/enet/proto"
)

// Connection owns one half-duplex TCP stream to the gateway: a framed
// reader and writer pair. It does not correlate requests with
// responses — that is the Command Task's job — and reading/writing
// may proceed concurrently from different goroutines.
type Connection struct {
	conn   net.Conn
	reader *proto.FrameReader
}

// Dial opens a new Connection to addr ("host:port").
func Dial(addr string) (*Connection, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}
	return &Connection{conn: conn, reader: proto.NewFrameReader(conn)}, nil
}

// Send writes one request envelope as a frame.
func (c *Connection) Send(env *proto.Envelope) error {
	frame, err := proto.Encode(env)
	if err != nil {
		return &SendError{Err: err}
	}
	if _, err := c.conn.Write(frame); err != nil {
		return &SendError{Err: err}
	}
	return nil
}

// Recv returns the next decoded response, or ErrConnectionClosed if
// the peer closed cleanly at a frame boundary, or a RecvError for
// anything else.
func (c *Connection) Recv() (proto.Response, error) {
	frame, err := c.reader.ReadFrame()
	if err != nil {
		if err == io.EOF {
			return nil, ErrConnectionClosed
		}
		return nil, &RecvError{Err: err}
	}

	res, err := proto.DecodeResponse(frame)
	if err != nil {
		return nil, &RecvError{Err: err}
	}
	return res, nil
}

// Close releases the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection(%s -> %s)", c.conn.LocalAddr(), c.conn.RemoteAddr())
}

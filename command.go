package enet

import (
	"context"
	"log/slog"
	"time"

	"github.com/enet-go/enet/proto"
)

// idleCloseTimeout is how long the Command Task waits with no send
// and no inbound frame before dropping the socket.
const idleCloseTimeout = 15 * time.Second

// mailboxCapacity bounds the Command Task's mailbox: excess callers
// await space rather than piling up unboundedly.
const mailboxCapacity = 10

type commandRequest struct {
	env      *proto.Envelope
	expected proto.ResponseKind
	reply    chan commandResult
}

type commandResult struct {
	res proto.Response
	err error
}

// CommandTask owns the request/response connection: a single
// cooperative loop with one outstanding request at a time, idle-close
// after 15s of inactivity, and lazy reconnect on the next send.
type CommandTask struct {
	addr    string
	log     *slog.Logger
	stats   *commandStats
	mailbox chan *commandRequest
	done    chan struct{}
}

// NewCommandTask constructs a Command Task dialing addr on demand.
// Callers must start Run in its own goroutine.
func NewCommandTask(addr string, log *slog.Logger) *CommandTask {
	return &CommandTask{
		addr:    addr,
		log:     log,
		stats:   newCommandStats(),
		mailbox: make(chan *commandRequest, mailboxCapacity),
		done:    make(chan struct{}),
	}
}

// Run drives the Command Task until ctx is canceled. It owns the
// socket exclusively; no other goroutine touches it.
func (t *CommandTask) Run(ctx context.Context) {
	var conn *Connection
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	idleTimer := time.NewTimer(idleCloseTimeout)
	defer idleTimer.Stop()
	stopIdleTimer := func() {
		if !idleTimer.Stop() {
			select {
			case <-idleTimer.C:
			default:
			}
		}
	}

	for {
		if conn == nil {
			select {
			case req := <-t.mailbox:
				c, err := Dial(t.addr)
				if err != nil {
					req.reply <- commandResult{err: err}
					continue
				}
				t.log.Debug("command connection opened", "addr", t.addr)
				conn = c
				stopIdleTimer()
				if !t.serve(conn, req) {
					conn.Close()
					conn = nil
					continue
				}
				idleTimer.Reset(idleCloseTimeout)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case req := <-t.mailbox:
			stopIdleTimer()
			if !t.serve(conn, req) {
				conn.Close()
				conn = nil
				continue
			}
			idleTimer.Reset(idleCloseTimeout)

		case <-idleTimer.C:
			t.log.Debug("command connection idle-closed", "timeout", idleCloseTimeout)
			conn.Close()
			conn = nil

		case <-t.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// serve sends one request and waits for its correlated response,
// delivering exactly one commandResult to req.reply. It returns
// whether the connection remains usable.
func (t *CommandTask) serve(conn *Connection, req *commandRequest) bool {
	start := time.Now()

	if err := conn.Send(req.env); err != nil {
		req.reply <- commandResult{err: err}
		return true // send failure keeps the task connected; retry next request
	}

	res, err := conn.Recv()
	if err != nil {
		// Recv failures all surface to the waiter as ConnectionClosed;
		// the underlying cause only matters for the log.
		t.log.Warn("command connection recv failed", "error", err)
		req.reply <- commandResult{err: ErrConnectionClosed}
		return false // recv failure is unrecoverable for this socket
	}

	if res.Kind() != req.expected {
		t.log.Warn("wrong response kind", "expected", req.expected, "got", res.Kind())
		req.reply <- commandResult{err: &WrongResponseError{Expected: req.expected, Got: res}}
		return true
	}

	t.stats.sample(res.Kind(), time.Since(start))
	req.reply <- commandResult{res: res}
	return true
}

// do enqueues a request and waits for its result, respecting ctx.
func (t *CommandTask) do(ctx context.Context, env *proto.Envelope, expected proto.ResponseKind) (proto.Response, error) {
	req := &commandRequest{env: env, expected: expected, reply: make(chan commandResult, 1)}

	select {
	case t.mailbox <- req:
	case <-t.done:
		return nil, commandErr(ErrConnectionClosed)
	case <-ctx.Done():
		return nil, commandErr(ctx.Err())
	}

	select {
	case result := <-req.reply:
		if result.err != nil {
			return nil, commandErr(result.err)
		}
		return result.res, nil
	case <-t.done:
		return nil, commandErr(ErrConnectionClosed)
	case <-ctx.Done():
		return nil, commandErr(ctx.Err())
	}
}

// Close stops the task at its next select point. Queued and in-flight
// requests complete with ErrConnectionClosed.
func (t *CommandTask) Close() {
	close(t.done)
}

// GetVersion asks the gateway to report its firmware/hardware/protocol.
func (t *CommandTask) GetVersion(ctx context.Context) (proto.VersionRes, error) {
	res, err := t.do(ctx, proto.NewEnvelope(proto.VersionReq{}), proto.KindVersionRes)
	if err != nil {
		return proto.VersionRes{}, err
	}
	return res.(proto.VersionRes), nil
}

// GetChannelInfo asks for the device-type vector indexed by channel slot.
func (t *CommandTask) GetChannelInfo(ctx context.Context) (proto.GetChannelInfoAllRes, error) {
	res, err := t.do(ctx, proto.NewEnvelope(proto.GetChannelInfoAllReq{}), proto.KindGetChannelInfoAllRes)
	if err != nil {
		return proto.GetChannelInfoAllRes{}, err
	}
	return res.(proto.GetChannelInfoAllRes), nil
}

// GetProject asks for the project's items and rooms.
func (t *CommandTask) GetProject(ctx context.Context) (*proto.ProjectListRes, error) {
	res, err := t.do(ctx, proto.NewEnvelope(proto.ProjectListReq{}), proto.KindProjectListRes)
	if err != nil {
		return nil, err
	}
	return res.(*proto.ProjectListRes), nil
}

// SetValues commands a batch of item value changes.
func (t *CommandTask) SetValues(ctx context.Context, values []proto.ItemSetValue) error {
	_, err := t.do(ctx, proto.NewEnvelope(proto.ItemValueSetReq{Values: values}), proto.KindItemValueRes)
	return err
}

// Stats reports per-request-kind round-trip latency, for human consumption.
func (t *CommandTask) Stats() string {
	return t.stats.String()
}

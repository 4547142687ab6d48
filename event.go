package enet

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/enet-go/enet/device"
	"github.com/enet-go/enet/proto"
)

// resubscribeInterval is how often the Event Task re-sends
// ITEM_VALUE_SIGN_IN_REQ over an already-open connection, keeping the
// gateway's soft subscription alive.
const resubscribeInterval = 5 * time.Minute

// syntheticState is a locally commanded state transition, posted by
// the client facade so it becomes visible before the gateway's own
// ITEM_UPDATE echo arrives.
type syntheticState struct {
	number uint32
	state  device.State
}

// EventTask runs the reconnecting event-subscription loop: on each
// connection it signs in to every inventory item, then alternates
// between applying inbound ITEM_UPDATE pushes and resubscribing on a
// timer, until the connection errors, at which point it reconnects
// with exponential backoff.
type EventTask struct {
	addr string
	log  *slog.Logger
	ws   *device.WriterSet
	subs []uint32
	bo   *backoff.ExponentialBackOff

	synthetic chan syntheticState
	done      chan struct{}
}

// NewEventTask constructs an Event Task for the given writer set and
// the full set of item numbers to subscribe to.
func NewEventTask(addr string, log *slog.Logger, ws *device.WriterSet, subscribeItems []uint32) *EventTask {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 1.5
	bo.MaxElapsedTime = 5 * time.Minute

	return &EventTask{
		addr:      addr,
		log:       log,
		ws:        ws,
		subs:      subscribeItems,
		bo:        bo,
		synthetic: make(chan syntheticState, 64), // holds up to 64 pending echoes
		done:      make(chan struct{}),
	}
}

// PostSyntheticState applies a locally commanded state transition to
// the matching device's state stream, ahead of the gateway's echo.
// Posts are buffered up to 64 pending transitions; once that many are
// pending, the call blocks until the task drains one or is closed.
// The task drains posts only while it is serving a connection, not
// while dialing or waiting out a backoff interval.
func (t *EventTask) PostSyntheticState(number uint32, state device.State) error {
	select {
	case t.synthetic <- syntheticState{number: number, state: state}:
		return nil
	case <-t.done:
		return ErrConnectionClosed
	}
}

// Close stops the Event Task at its next opportunity.
func (t *EventTask) Close() {
	close(t.done)
}

// Run drives the reconnect loop until ctx is canceled or the backoff
// budget is exhausted, in which case it returns a non-nil error: a
// fatal condition for the client, since recovering silently would
// leave an operator unaware the subscription died.
func (t *EventTask) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.done:
			return nil
		default:
		}

		err := t.runOnce(ctx)
		if err == nil {
			return nil // ctx canceled or Close()d cleanly inside runOnce
		}

		t.log.Warn("event connection lost, reconnecting", "error", err)

		wait := t.bo.NextBackOff()
		if wait == backoff.Stop {
			return err
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil
		case <-t.done:
			return nil
		}
	}
}

// runOnce opens one connection, signs in, and serves it until it
// fails or the task is asked to stop. A nil return means stop
// cleanly; non-nil means reconnect.
func (t *EventTask) runOnce(ctx context.Context) error {
	conn, err := Dial(t.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(proto.NewEnvelope(proto.ItemValueSignInReq{Items: t.subs})); err != nil {
		return err
	}

	resubscribe := time.NewTicker(resubscribeInterval)
	defer resubscribe.Stop()

	stop := make(chan struct{})
	defer close(stop)

	frames := make(chan proto.Response)
	recvErrs := make(chan error, 1)
	go func() {
		for {
			res, err := conn.Recv()
			if err != nil {
				recvErrs <- err
				return
			}
			select {
			case frames <- res:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case res := <-frames:
			switch v := res.(type) {
			case proto.ItemUpdate:
				t.bo.Reset()
				for _, value := range v.Values {
					device.ApplyUpdate(t.ws, t.log, value)
				}
			case proto.ItemValueSignInRes:
				t.bo.Reset()
			default:
				// Any other response kind on this connection forces a
				// reconnect, even though a future protocol revision
				// might add benign pushes.
				return &WrongResponseError{Expected: proto.KindItemUpdate, Got: res}
			}

		case err := <-recvErrs:
			return err

		case synth := <-t.synthetic:
			device.ApplySyntheticState(t.ws, synth.number, synth.state)

		case <-resubscribe.C:
			if err := conn.Send(proto.NewEnvelope(proto.ItemValueSignInReq{Items: t.subs})); err != nil {
				return err
			}

		case <-ctx.Done():
			return nil

		case <-t.done:
			return nil
		}
	}
}

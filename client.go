// Package enet implements the client-side core of the eNet gateway
// control protocol: a command/response connection, a push-event
// connection with reconnect and re-subscription, and a typed device
// inventory reconciling the two.
package enet

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/enet-go/enet/device"
	"github.com/enet-go/enet/proto"
)

// Client is the embedder-facing facade: it bootstraps the device
// inventory once, then dispatches commands and exposes device
// streams for the lifetime of the connection pair.
type Client struct {
	log *slog.Logger

	command *CommandTask
	event   *EventTask

	inventory *device.Inventory

	version proto.VersionRes
	cancel  context.CancelFunc
}

// NewClient performs the full bootstrap sequence against addr
// ("host:port"): open the command connection, fetch
// version/channel-info/project, build the inventory, and start the
// event task signed in to every discovered device. It fails fast on
// any step.
func NewClient(addr string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	command := NewCommandTask(addr, log)
	go command.Run(ctx)

	version, err := command.GetVersion(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("enet: get_version: %w", err)
	}

	channelInfo, err := command.GetChannelInfo(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("enet: get_channel_info: %w", err)
	}

	project, err := command.GetProject(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("enet: get_project: %w", err)
	}

	inventory, writers, err := device.Build(project, channelInfo)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("enet: build inventory: %w", err)
	}

	subs := make([]uint32, 0, len(inventory.Devices()))
	for _, d := range inventory.Devices() {
		subs = append(subs, d.Number())
	}

	// Exhausting the event task's backoff budget is fatal for the
	// whole client: an operator has to intervene, so fail loudly
	// instead of limping on with a dead subscription.
	event := NewEventTask(addr, log, writers, subs)
	go func() {
		if err := event.Run(ctx); err != nil {
			log.Error("event task exhausted reconnect backoff, aborting", "error", err)
			os.Exit(1)
		}
	}()

	c := &Client{
		log:       log,
		command:   command,
		event:     event,
		inventory: inventory,
		version:   version,
		cancel:    cancel,
	}
	return c, nil
}

// Version reports the gateway's firmware/hardware/protocol strings
// recorded at bootstrap.
func (c *Client) Version() proto.VersionRes { return c.version }

// Devices returns every device in the inventory, ordered by channel index.
func (c *Client) Devices() []*device.Device { return c.inventory.Devices() }

// Device looks up a single device by channel index.
func (c *Client) Device(number uint32) (*device.Device, bool) { return c.inventory.Device(number) }

// Rooms returns every visible room.
func (c *Client) Rooms() []device.Room { return c.inventory.Rooms() }

// Stats reports per-request-kind command latency, for human consumption.
func (c *Client) Stats() string { return c.command.Stats() }

// SetValue is sugar for SetValues with a single item.
func (c *Client) SetValue(ctx context.Context, number uint32, value proto.SetValue) error {
	return c.SetValues(ctx, []proto.ItemSetValue{{Number: number, Value: value}})
}

// SetValues issues ITEM_VALUE_SET for the given items, then echoes the
// commanded state transitions to the Event Task ahead of the
// gateway's own ITEM_UPDATE. Blinds items are rejected with
// ErrBlindsUnsupported before anything is sent.
func (c *Client) SetValues(ctx context.Context, values []proto.ItemSetValue) error {
	for _, v := range values {
		if v.Value.IsBlinds() {
			return device.ErrBlindsUnsupported
		}
	}

	c.log.Debug("set_values", "count", len(values))

	if err := c.command.SetValues(ctx, values); err != nil {
		return err
	}

	for _, v := range values {
		_, isOn := v.Value.CommandedState()
		state := device.StateOff
		if isOn {
			state = device.StateOn
		}
		if err := c.event.PostSyntheticState(v.Number, state); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down both tasks. In-flight requests complete with
// ErrConnectionClosed.
func (c *Client) Close() {
	c.cancel()
	c.event.Close()
	c.command.Close()
}

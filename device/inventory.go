package device

import (
	"fmt"

	"github.com/enet-go/enet/proto"
)

// realChannelType is the channel-type code meaning "this slot is a
// real device" in GET_CHANNEL_INFO_ALL_RES's parallel vector.
const realChannelType = 1

// Room is a visible project list: a named grouping of item numbers.
// Lists marked not VISIBLE are dropped during construction; they
// exist on the gateway but have nothing to show an application.
type Room struct {
	Number uint32
	Name   string
	Items  []uint32
}

// Inventory is the device set derived once at bootstrap from a
// project listing and its parallel channel-type vector. It owns every
// device's streams; the Event Task holds the matching Writers.
type Inventory struct {
	devices map[uint32]*Device
	order   []uint32
	rooms   []Room
}

// Devices returns every device, ordered by channel index.
func (inv *Inventory) Devices() []*Device {
	out := make([]*Device, 0, len(inv.order))
	for _, n := range inv.order {
		out = append(out, inv.devices[n])
	}
	return out
}

// Device looks up a single device by channel index.
func (inv *Inventory) Device(number uint32) (*Device, bool) {
	d, ok := inv.devices[number]
	return d, ok
}

// Rooms returns every visible room.
func (inv *Inventory) Rooms() []Room {
	return inv.rooms
}

// WriterSet is the Event Task's private handle into the same streams
// Inventory exposes read-only, keyed identically by channel index.
type WriterSet struct {
	writers map[uint32]*Writer
}

// Writer looks up the writer for a channel index.
func (w *WriterSet) Writer(number uint32) (*Writer, bool) {
	writer, ok := w.writers[number]
	return writer, ok
}

// Build derives the device inventory and its matching writer set from
// a project listing and channel-type vector: only channel
// slots whose type equals 1 and whose project item maps to a device
// descriptor (programmable Binaer, any Dimmer, any Jalousie) are kept;
// everything else — Scene, non-programmable Binaer, None, and any
// slot the channel-type vector doesn't mark as a real device — is
// silently dropped.
func Build(project *proto.ProjectListRes, channelInfo proto.GetChannelInfoAllRes) (*Inventory, *WriterSet, error) {
	if len(channelInfo.Devices) < len(project.Items) {
		return nil, nil, fmt.Errorf("device: channel-type vector shorter than project items (%d < %d)",
			len(channelInfo.Devices), len(project.Items))
	}

	inv := &Inventory{devices: make(map[uint32]*Device)}
	ws := &WriterSet{writers: make(map[uint32]*Writer)}

	for i, item := range project.Items {
		if channelInfo.Devices[i] != realChannelType {
			continue
		}

		kind, ok := kindOf(item)
		if !ok {
			continue
		}

		number := uint32(i)
		dev, writer := newEntry(number, item.Name(), kind)
		inv.devices[number] = dev
		inv.order = append(inv.order, number)
		ws.writers[number] = writer
	}

	for _, list := range project.Lists {
		if !list.Visible {
			continue
		}
		inv.rooms = append(inv.rooms, Room{Number: list.Number, Name: list.Name, Items: list.ItemsOrder})
	}

	return inv, ws, nil
}

func kindOf(item proto.ProjectItem) (Kind, bool) {
	switch v := item.(type) {
	case proto.ProjectBinaer:
		if !v.Programmable {
			return 0, false
		}
		return KindBinary, true
	case proto.ProjectDimmer:
		return KindDimmer, true
	case proto.ProjectJalousie:
		return KindBlinds, true
	default:
		return 0, false
	}
}

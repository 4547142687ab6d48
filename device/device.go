package device

import "errors"

// Kind is a device's coarse capability class.
type Kind int

const (
	KindBinary Kind = iota
	KindDimmer
	KindBlinds
)

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "Binary"
	case KindDimmer:
		return "Dimmer"
	case KindBlinds:
		return "Blinds"
	default:
		return "invalid"
	}
}

// ErrBlindsUnsupported is returned when an application attempts to
// subscribe to or command a Blinds device's value. Blinds are
// retained in the inventory as a kind, but their value semantics are
// not modeled: there is no blind value stream to write or read.
var ErrBlindsUnsupported = errors.New("device: blinds value semantics are not supported")

// Device is the read-only, application-facing half of an inventory
// entry: its identity plus subscribe operations on whichever streams
// its kind supports.
type Device struct {
	number uint32
	name   string
	kind   Kind

	state      *Stream[State]
	brightness *Stream[Brightness] // nil unless kind == KindDimmer
}

// Number is the device's channel index: its 0-based position in the
// gateway's project-items vector, and the identifier ITEM_UPDATE uses
// to address it.
func (d *Device) Number() uint32 { return d.number }

// Name is the display name from the project item.
func (d *Device) Name() string { return d.name }

// Kind reports the device's capability class.
func (d *Device) Kind() Kind { return d.kind }

// State returns the current state value, if the device has reported one.
func (d *Device) State() (State, bool) {
	return d.state.Get()
}

// SubscribeState returns a channel delivering the current state (if
// any) and every subsequent distinct state write, plus a cancel
// function the caller must invoke when done.
func (d *Device) SubscribeState() (ch <-chan State, cancel func()) {
	return d.state.Subscribe()
}

// Brightness returns the current brightness, if the device has
// reported one. Valid only for KindDimmer; for other kinds it returns
// false and an error (ErrBlindsUnsupported for KindBlinds).
func (d *Device) Brightness() (Brightness, bool, error) {
	if d.brightness == nil {
		return 0, false, unsupportedBrightnessErr(d.kind)
	}
	b, ok := d.brightness.Get()
	return b, ok, nil
}

// SubscribeBrightness mirrors SubscribeState for the brightness
// stream. Valid only for KindDimmer.
func (d *Device) SubscribeBrightness() (ch <-chan Brightness, cancel func(), err error) {
	if d.brightness == nil {
		return nil, nil, unsupportedBrightnessErr(d.kind)
	}
	ch, cancel = d.brightness.Subscribe()
	return ch, cancel, nil
}

func unsupportedBrightnessErr(k Kind) error {
	if k == KindBlinds {
		return ErrBlindsUnsupported
	}
	return errors.New("device: brightness not applicable to " + k.String() + " devices")
}

// Writer is the Event Task's half of an inventory entry: the only
// thing allowed to write a device's streams.
type Writer struct {
	kind       Kind
	state      *Stream[State]
	brightness *Stream[Brightness]
}

// WriteState applies a state update. Safe to call on any kind.
func (w *Writer) WriteState(s State) {
	w.state.Set(s)
}

// WriteBrightness applies a brightness update. A no-op if this
// writer's device has no brightness stream (anything but a dimmer).
func (w *Writer) WriteBrightness(b Brightness) {
	if w.brightness != nil {
		w.brightness.Set(b)
	}
}

// newEntry builds the paired (Device, Writer) for one inventory slot.
func newEntry(number uint32, name string, kind Kind) (*Device, *Writer) {
	state := NewStream[State]()
	var brightness *Stream[Brightness]
	if kind == KindDimmer {
		brightness = NewStream[Brightness]()
	}
	return &Device{number: number, name: name, kind: kind, state: state, brightness: brightness},
		&Writer{kind: kind, state: state, brightness: brightness}
}

package device

import (
	"io"
	"log/slog"
	"testing"

	"github.com/enet-go/enet/proto"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplyUpdateUnknownNumberIgnored(t *testing.T) {
	inv, ws := buildSample(t)
	// Number 99 is not in the inventory; must not panic and must not
	// create a phantom entry.
	ApplyUpdate(ws, discardLogger(), proto.ItemUpdateValue{Number: 99, State: "ON"})

	if _, ok := inv.Device(99); ok {
		t.Fatal("unknown number must not create a device")
	}
	if _, ok := ws.Writer(99); ok {
		t.Fatal("unknown number must not create a writer")
	}
}

func TestApplyUpdateBinaryWritesOnlyState(t *testing.T) {
	inv, ws := buildSample(t)
	ApplyUpdate(ws, discardLogger(), proto.ItemUpdateValue{Number: 0, State: "ON", Value: "50"})

	d, _ := inv.Device(0)
	state, ok := d.State()
	if !ok || state != StateOn {
		t.Fatalf("State() = %v, %v", state, ok)
	}
}

func TestApplyUpdateDimmerWritesBothStreams(t *testing.T) {
	inv, ws := buildSample(t)
	ApplyUpdate(ws, discardLogger(), proto.ItemUpdateValue{Number: 2, State: "ON", Value: "42"})

	d, _ := inv.Device(2)
	state, ok := d.State()
	if !ok || state != StateOn {
		t.Fatalf("State() = %v, %v", state, ok)
	}
	brightness, ok, err := d.Brightness()
	if err != nil {
		t.Fatalf("Brightness(): %v", err)
	}
	if !ok || brightness != 42 {
		t.Fatalf("Brightness() = %d, %v", brightness, ok)
	}
}

func TestApplyUpdateDimmerBrightnessSentinel(t *testing.T) {
	inv, ws := buildSample(t)
	ApplyUpdate(ws, discardLogger(), proto.ItemUpdateValue{Number: 2, State: "OFF", Value: "-1"})

	d, _ := inv.Device(2)
	brightness, ok, err := d.Brightness()
	if err != nil || !ok || brightness != 0 {
		t.Fatalf("Brightness() = %d, %v, %v", brightness, ok, err)
	}
}

func TestApplyUpdateBadStateSkipsOnlyState(t *testing.T) {
	inv, ws := buildSample(t)
	ApplyUpdate(ws, discardLogger(), proto.ItemUpdateValue{Number: 2, State: "GARBAGE", Value: "10"})

	d, _ := inv.Device(2)
	if _, ok := d.State(); ok {
		t.Fatal("state stream must not be written on parse failure")
	}
	brightness, ok, err := d.Brightness()
	if err != nil || !ok || brightness != 10 {
		t.Fatalf("Brightness() = %d, %v, %v; brightness write must proceed independently", brightness, ok, err)
	}
}

func TestApplySyntheticStateEcho(t *testing.T) {
	inv, ws := buildSample(t)
	ApplySyntheticState(ws, 0, StateOn)

	d, _ := inv.Device(0)
	state, ok := d.State()
	if !ok || state != StateOn {
		t.Fatalf("State() = %v, %v", state, ok)
	}
}

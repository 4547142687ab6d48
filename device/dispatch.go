package device

import (
	"log/slog"

	"github.com/enet-go/enet/proto"
)

// ApplyUpdate applies one ITEM_UPDATE batch entry to the matching
// writer: unknown numbers are logged and skipped; a binary device
// writes only its state stream (on a state-parse failure, logged and
// skipped); a dimmer writes its state stream and, independently, its
// brightness stream, each skipped on its own parse failure so one bad
// field never blocks the other.
func ApplyUpdate(ws *WriterSet, log *slog.Logger, v proto.ItemUpdateValue) {
	writer, ok := ws.Writer(v.Number)
	if !ok {
		log.Warn("item update for unknown device", "number", v.Number)
		return
	}

	state, err := ParseState(v.State)
	if err != nil {
		log.Warn("item update state parse failed", "number", v.Number, "state", v.State, "error", err)
	} else {
		writer.WriteState(state)
	}

	if writer.kind != KindDimmer {
		return
	}

	brightness, err := ParseBrightness(v.Value)
	if err != nil {
		log.Warn("item update brightness parse failed", "number", v.Number, "value", v.Value, "error", err)
		return
	}
	writer.WriteBrightness(brightness)
}

// ApplySyntheticState applies the client facade's commanded-state
// echo for a successful set command: only the state stream is
// written, never brightness — a dimmer's level stays unknown until
// the gateway reports it.
func ApplySyntheticState(ws *WriterSet, number uint32, state State) {
	if writer, ok := ws.Writer(number); ok {
		writer.WriteState(state)
	}
}

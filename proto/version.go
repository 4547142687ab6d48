package proto

import "encoding/json"

// ProtocolVersion identifies the eNet wire protocol revision carried in
// every envelope's PROTOCOL field. The only version this core speaks is
// 0.03; anything else round-trips as Unknown so callers can still see
// what the gateway sent.
type ProtocolVersion struct {
	raw string
}

// ProtocolV003 is the only protocol version this core actively speaks.
var ProtocolV003 = ProtocolVersion{raw: "0.03"}

// ParseProtocolVersion wraps a raw PROTOCOL string. It never fails:
// unrecognized strings are preserved verbatim (see Response dispatch,
// which falls back to Unknown for them).
func ParseProtocolVersion(s string) ProtocolVersion {
	return ProtocolVersion{raw: s}
}

// String renders the wire form of the version, e.g. "0.03".
func (v ProtocolVersion) String() string {
	return v.raw
}

// IsV003 reports whether this is the recognized 0.03 protocol version.
func (v ProtocolVersion) IsV003() bool {
	return v.raw == ProtocolV003.raw
}

// MarshalJSON renders the version as its wire string.
func (v ProtocolVersion) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts any JSON string as a protocol version.
func (v *ProtocolVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v.raw = s
	return nil
}

package proto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ResponseKind tags a decoded Response with its wire CMD string (or
// "UNKNOWN" for anything this core does not recognize).
type ResponseKind string

const (
	KindVersionRes           ResponseKind = "VERSION_RES"
	KindGetChannelInfoAllRes ResponseKind = "GET_CHANNEL_INFO_ALL_RES"
	KindItemValueSignInRes   ResponseKind = "ITEM_VALUE_SIGN_IN_RES"
	KindItemValueSignOutRes  ResponseKind = "ITEM_VALUE_SIGN_OUT_RES"
	KindItemValueRes         ResponseKind = "ITEM_VALUE_RES"
	KindProjectListRes       ResponseKind = "PROJECT_LIST_RES"
	KindBlockListRes         ResponseKind = "BLOCK_LIST_RES"
	KindItemUpdate           ResponseKind = "ITEM_UPDATE"
	KindUnknown              ResponseKind = "UNKNOWN"
)

// Response is any decoded gateway message: a reply to one of our
// requests, or an unsolicited ITEM_UPDATE push.
type Response interface {
	Kind() ResponseKind
}

// VersionRes reports the gateway's firmware, hardware, and protocol strings.
type VersionRes struct {
	Firmware string `json:"FIRMWARE"`
	Hardware string `json:"HARDWARE"`
	Enet     string `json:"ENET"`
}

func (VersionRes) Kind() ResponseKind { return KindVersionRes }

// GetChannelInfoAllRes carries the device-type vector indexed by channel slot.
type GetChannelInfoAllRes struct {
	Devices []uint32 `json:"DEVICES"`
}

func (GetChannelInfoAllRes) Kind() ResponseKind { return KindGetChannelInfoAllRes }

// ItemValueSignInRes acknowledges ITEM_VALUE_SIGN_IN_REQ.
type ItemValueSignInRes struct{}

func (ItemValueSignInRes) Kind() ResponseKind { return KindItemValueSignInRes }

// ItemValueSignOutRes acknowledges ITEM_VALUE_SIGN_OUT_REQ.
type ItemValueSignOutRes struct{}

func (ItemValueSignOutRes) Kind() ResponseKind { return KindItemValueSignOutRes }

// ItemValueRes acknowledges ITEM_VALUE_SET.
type ItemValueRes struct{}

func (ItemValueRes) Kind() ResponseKind { return KindItemValueRes }

// BlockListRes acknowledges BLOCK_LIST_REQ.
type BlockListRes struct{}

func (BlockListRes) Kind() ResponseKind { return KindBlockListRes }

// ProjectListRes carries the project id, items, and rooms.
type ProjectListRes struct {
	ProjectID string
	Items     []ProjectItem
	Lists     []ProjectList
}

func (ProjectListRes) Kind() ResponseKind { return KindProjectListRes }

func (r *ProjectListRes) UnmarshalJSON(data []byte) error {
	var wire struct {
		ProjectID string            `json:"PROJECT_ID"`
		Items     []json.RawMessage `json:"ITEMS"`
		Lists     []ProjectList     `json:"LISTS"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("proto: decode PROJECT_LIST_RES: %w", err)
	}

	items := make([]ProjectItem, 0, len(wire.Items))
	for i, raw := range wire.Items {
		item, err := parseProjectItem(raw)
		if err != nil {
			return fmt.Errorf("proto: project item %d: %w", i, err)
		}
		items = append(items, item)
	}

	r.ProjectID = wire.ProjectID
	r.Items = items
	r.Lists = wire.Lists
	return nil
}

// ItemUpdateValue is one entry of an ITEM_UPDATE push batch.
type ItemUpdateValue struct {
	Number   uint32
	Value    string
	State    string
	Setpoint string
}

func (v *ItemUpdateValue) UnmarshalJSON(data []byte) error {
	var wire struct {
		Number   json.RawMessage `json:"NUMBER"`
		Value    string          `json:"VALUE"`
		State    string          `json:"STATE"`
		Setpoint string          `json:"SETPOINT"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	number, err := parseFlexibleUint32(wire.Number)
	if err != nil {
		return fmt.Errorf("proto: item update NUMBER: %w", err)
	}

	v.Number = number
	v.Value = wire.Value
	v.State = wire.State
	v.Setpoint = wire.Setpoint
	return nil
}

// parseFlexibleUint32 accepts either a JSON number or a decimal string.
func parseFlexibleUint32(raw json.RawMessage) (uint32, error) {
	var n uint32
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected number or numeric string, got %s", raw)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("expected numeric string, got %q", s)
	}
	return uint32(v), nil
}

// ItemUpdate is the unsolicited push sent over the event connection
// whenever the bus reports new device values.
type ItemUpdate struct {
	Values []ItemUpdateValue `json:"VALUES"`
}

func (ItemUpdate) Kind() ResponseKind { return KindItemUpdate }

// UnknownResponse preserves an unrecognized (CMD, PROTOCOL) pair
// verbatim rather than rejecting it.
type UnknownResponse struct {
	RawKind     string
	RawProtocol string
	Raw         json.RawMessage
}

func (UnknownResponse) Kind() ResponseKind { return KindUnknown }

// DecodeResponse parses one extracted frame (the bytes between two
// delimiters, delimiter excluded) into a Response. Unrecognized
// (CMD, PROTOCOL) pairs decode as UnknownResponse instead of failing.
func DecodeResponse(frame []byte) (Response, error) {
	var peek struct {
		Kind     string `json:"CMD"`
		Protocol string `json:"PROTOCOL"`
	}
	if err := json.Unmarshal(frame, &peek); err != nil {
		return nil, fmt.Errorf("proto: decode frame: %w", err)
	}

	if peek.Protocol != ProtocolV003.String() {
		return decodeUnknown(frame, peek.Kind, peek.Protocol)
	}

	var (
		body Response
		err  error
	)
	switch peek.Kind {
	case string(KindVersionRes):
		var v VersionRes
		err = json.Unmarshal(frame, &v)
		body = v
	case string(KindGetChannelInfoAllRes):
		var v GetChannelInfoAllRes
		err = json.Unmarshal(frame, &v)
		body = v
	case string(KindItemValueSignInRes):
		body = ItemValueSignInRes{}
	case string(KindItemValueSignOutRes):
		body = ItemValueSignOutRes{}
	case string(KindItemValueRes):
		body = ItemValueRes{}
	case string(KindBlockListRes):
		body = BlockListRes{}
	case string(KindProjectListRes):
		var v ProjectListRes
		err = json.Unmarshal(frame, &v)
		body = &v
	case string(KindItemUpdate):
		var v ItemUpdate
		err = json.Unmarshal(frame, &v)
		body = v
	default:
		return decodeUnknown(frame, peek.Kind, peek.Protocol)
	}

	if err != nil {
		return nil, fmt.Errorf("proto: decode %s body: %w", peek.Kind, err)
	}
	return body, nil
}

func decodeUnknown(frame []byte, kind, protocol string) (Response, error) {
	var v any
	if err := json.Unmarshal(frame, &v); err != nil {
		return nil, fmt.Errorf("proto: decode unknown frame: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return UnknownResponse{RawKind: kind, RawProtocol: protocol, Raw: raw}, nil
}

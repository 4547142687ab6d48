package proto

import "testing"

func TestDecodeVersionRes(t *testing.T) {
	frame := []byte(`{"CMD":"VERSION_RES","PROTOCOL":"0.03","FIRMWARE":"1.2.3","HARDWARE":"enet-1","ENET":"eNet Server"}`)
	res, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	v, ok := res.(VersionRes)
	if !ok {
		t.Fatalf("got %T, want VersionRes", res)
	}
	if v.Firmware != "1.2.3" {
		t.Fatalf("Firmware = %q", v.Firmware)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	frame := []byte(`{"CMD":"SOMETHING_NEW","PROTOCOL":"0.03","FOO":"bar"}`)
	res, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	u, ok := res.(UnknownResponse)
	if !ok {
		t.Fatalf("got %T, want UnknownResponse", res)
	}
	if u.RawKind != "SOMETHING_NEW" {
		t.Fatalf("RawKind = %q", u.RawKind)
	}
}

func TestDecodeUnknownProtocolVersion(t *testing.T) {
	frame := []byte(`{"CMD":"VERSION_RES","PROTOCOL":"0.99","FIRMWARE":"x"}`)
	res, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	u, ok := res.(UnknownResponse)
	if !ok {
		t.Fatalf("got %T, want UnknownResponse for unrecognized protocol", res)
	}
	if u.RawProtocol != "0.99" {
		t.Fatalf("RawProtocol = %q", u.RawProtocol)
	}
}

func TestDecodeItemUpdateNumberAsStringOrNumber(t *testing.T) {
	frame := []byte(`{"CMD":"ITEM_UPDATE","PROTOCOL":"0.03","VALUES":[
		{"NUMBER":17,"VALUE":"50","STATE":"ON","SETPOINT":""},
		{"NUMBER":"3","VALUE":"","STATE":"OFF","SETPOINT":""}
	]}`)
	res, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	update, ok := res.(ItemUpdate)
	if !ok {
		t.Fatalf("got %T, want ItemUpdate", res)
	}
	if len(update.Values) != 2 {
		t.Fatalf("len(Values) = %d", len(update.Values))
	}
	if update.Values[0].Number != 17 {
		t.Fatalf("Values[0].Number = %d", update.Values[0].Number)
	}
	if update.Values[1].Number != 3 {
		t.Fatalf("Values[1].Number = %d", update.Values[1].Number)
	}
}

func TestDecodeProjectListRes(t *testing.T) {
	frame := []byte(`{"CMD":"PROJECT_LIST_RES","PROTOCOL":"0.03","PROJECT_ID":"abc",
		"ITEMS":[
			{"TYPE":"Binaer","NUMBER":1,"NAME":"Kitchen Light"},
			{"TYPE":"DIMMER","NUMBER":2,"NAME":"Hall Dimmer"},
			{"TYPE":"SCENE","NUMBER":3,"NAME":"Movie Night","DIMMABLE":false},
			{"TYPE":"NONE","NUMBER":4,"NAME":""}
		],
		"LISTS":[{"NUMBER":1,"NAME":"Kitchen","ITEMS_ORDER":[1],"VISIBLE":true}]
	}`)
	res, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	list, ok := res.(*ProjectListRes)
	if !ok {
		t.Fatalf("got %T, want *ProjectListRes", res)
	}
	if list.ProjectID != "abc" {
		t.Fatalf("ProjectID = %q", list.ProjectID)
	}
	if len(list.Items) != 4 {
		t.Fatalf("len(Items) = %d", len(list.Items))
	}
	binaer, ok := list.Items[0].(ProjectBinaer)
	if !ok {
		t.Fatalf("Items[0] = %T, want ProjectBinaer", list.Items[0])
	}
	if !binaer.Programmable {
		t.Fatal("PROGRAMMABLE absent should default to true")
	}
	if list.Items[1].ItemKind() != ProjectItemDimmerKind {
		t.Fatalf("Items[1].ItemKind() = %v", list.Items[1].ItemKind())
	}
	if len(list.Lists) != 1 || list.Lists[0].Name != "Kitchen" {
		t.Fatalf("Lists = %+v", list.Lists)
	}
}

func TestParseFlexibleBoolVariants(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{``, true, true},
		{`true`, false, true},
		{`false`, true, false},
		{`"true"`, false, true},
		{`"FALSE"`, true, false},
	}
	for _, tc := range cases {
		got, err := parseFlexibleBool([]byte(tc.raw), tc.def)
		if err != nil {
			t.Fatalf("raw=%q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("raw=%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

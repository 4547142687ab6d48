package enet

import (
	"context"
	"testing"
	"time"

	"github.com/enet-go/enet/device"
	"github.com/enet-go/enet/proto"
)

// TestClientBootstrapAndSetValue drives NewClient's bootstrap and a
// subsequent SetValue against a single fake listener, distinguishing
// the command and event connections by arrival order: command
// connects first during bootstrap, event connects second once the
// inventory is built.
func TestClientBootstrapAndSetValue(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- serveFakeClientSession(gw)
	}()

	c, err := NewClient(gw.addr(), discardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	if c.Version().Firmware != "9.9.9" {
		t.Fatalf("Version() = %+v", c.Version())
	}

	devices := c.Devices()
	if len(devices) != 1 {
		t.Fatalf("Devices() = %+v", devices)
	}

	if err := c.SetValue(context.Background(), devices[0].Number(), proto.SetValueOn(proto.ClickShort)); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if state, ok := devices[0].State(); ok && state == device.StateOn {
			break
		}
		select {
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("commanded state was never echoed")
		}
	}
}

// serveFakeClientSession plays the gateway side of one NewClient
// bootstrap: the version/channel-info/project exchange on the first
// (command) connection, then a sign-in ack on the second (event)
// connection, then an ITEM_VALUE_RES for the later SetValue call.
func serveFakeClientSession(gw *fakeGateway) error {
	cmdConn, err := gw.ln.Accept()
	if err != nil {
		return err
	}
	defer cmdConn.Close()
	cmdFrames := proto.NewFrameReader(cmdConn)

	if _, err := cmdFrames.ReadFrame(); err != nil { // VERSION_REQ
		return err
	}
	cmdConn.Write([]byte(`{"CMD":"VERSION_RES","PROTOCOL":"0.03","FIRMWARE":"9.9.9","HARDWARE":"h","ENET":"e"}` + proto.Delimiter))

	if _, err := cmdFrames.ReadFrame(); err != nil { // GET_CHANNEL_INFO_ALL_REQ
		return err
	}
	cmdConn.Write([]byte(`{"CMD":"GET_CHANNEL_INFO_ALL_RES","PROTOCOL":"0.03","DEVICES":[1]}` + proto.Delimiter))

	if _, err := cmdFrames.ReadFrame(); err != nil { // PROJECT_LIST_GET
		return err
	}
	cmdConn.Write([]byte(`{"CMD":"PROJECT_LIST_RES","PROTOCOL":"0.03","PROJECT_ID":"p","ITEMS":[{"TYPE":"BINAER","NUMBER":0,"NAME":"Kitchen Light"}],"LISTS":[]}` + proto.Delimiter))

	eventConn, err := gw.ln.Accept()
	if err != nil {
		return err
	}
	defer eventConn.Close()
	eventFrames := proto.NewFrameReader(eventConn)

	if _, err := eventFrames.ReadFrame(); err != nil { // ITEM_VALUE_SIGN_IN_REQ
		return err
	}
	eventConn.Write([]byte(`{"CMD":"ITEM_VALUE_SIGN_IN_RES","PROTOCOL":"0.03"}` + proto.Delimiter))

	if _, err := cmdFrames.ReadFrame(); err != nil { // ITEM_VALUE_SET
		return err
	}
	cmdConn.Write([]byte(`{"CMD":"ITEM_VALUE_RES","PROTOCOL":"0.03"}` + proto.Delimiter))

	return nil
}

package enet

import (
	"net"
	"testing"
	"time"

	"github.com/enet-go/enet/proto"
)

func TestConnectionSendRecvRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := &Connection{conn: client, reader: proto.NewFrameReader(client)}

	go func() {
		fr := proto.NewFrameReader(server)
		frame, err := fr.ReadFrame()
		if err != nil {
			t.Errorf("server ReadFrame: %v", err)
			return
		}
		if string(frame) == "" {
			t.Error("empty frame")
		}
		res := []byte(`{"CMD":"VERSION_RES","PROTOCOL":"0.03","FIRMWARE":"1.0","HARDWARE":"h","ENET":"e"}` + proto.Delimiter)
		server.Write(res)
	}()

	if err := conn.Send(proto.NewEnvelopeAt(proto.VersionReq{}, time.Unix(0, 0))); err != nil {
		t.Fatalf("Send: %v", err)
	}

	res, err := conn.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	v, ok := res.(proto.VersionRes)
	if !ok || v.Firmware != "1.0" {
		t.Fatalf("res = %+v", res)
	}
}

func TestConnectionRecvClosedAtFrameBoundary(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	conn := &Connection{conn: client, reader: proto.NewFrameReader(client)}
	server.Close()

	if _, err := conn.Recv(); err != ErrConnectionClosed {
		t.Fatalf("Recv err = %v, want ErrConnectionClosed", err)
	}
}

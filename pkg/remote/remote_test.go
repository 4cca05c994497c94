package remote

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastReachesConnectedClient(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + ts.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The handshake registers the client on a separate goroutine; give it a
	// moment to land before broadcasting, same as a real caller would between
	// frames (~16ms apart) rather than immediately after accepting a client.
	time.Sleep(20 * time.Millisecond)

	srv.Broadcast(Snapshot{PC: 0x100, LY: 42})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.PC != 0x100 || got.LY != 42 {
		t.Errorf("Snapshot = %+v, want PC=0x100 LY=42", got)
	}
}

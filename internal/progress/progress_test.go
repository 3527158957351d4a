package progress

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcasterDeliversToConnectedClient(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.Handler))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Give the server a moment to register the connection before publishing.
	time.Sleep(20 * time.Millisecond)
	b.Publish(Event{Index: 1, Total: 10, File: "a.wimpy"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Index != 1 || ev.File != "a.wimpy" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestMarshalEvent(t *testing.T) {
	data, err := MarshalEvent(Event{Index: 2, Done: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"done":true`) {
		t.Fatalf("unexpected JSON: %s", data)
	}
}

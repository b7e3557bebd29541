package eventbus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetcap/core/internal/logger"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	b := New(logger.New(false))

	server := httptest.NewServer(http.HandlerFunc(b.HandleWebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give HandleWebSocket a moment to register the subscriber before
	// publishing, since registration happens in a separate goroutine.
	time.Sleep(20 * time.Millisecond)
	b.Publish("recording_started", map[string]string{"id": "abc"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Type != "recording_started" {
		t.Errorf("expected type recording_started, got %q", got.Type)
	}
}

func TestBus_PublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := New(logger.New(false))
	done := make(chan struct{})
	go func() {
		b.Publish("noop", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

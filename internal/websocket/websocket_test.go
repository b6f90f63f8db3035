package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFor(t *testing.T) {
	assert.Equal(t, "ws://localhost:8000/ws", URLFor("http://localhost:8000/"))
	assert.Equal(t, "wss://api.example.com/ws", URLFor("https://api.example.com"))
}

func TestBroadcastReachesListener(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan Event, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Listen(ctx, URLFor(srv.URL), func(e Event) { events <- e })
	}()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.BroadcastChange("quote", "create", "q1", "r1")

	select {
	case evt := <-events:
		assert.Equal(t, Event{Type: "quote_created", ID: "q1", RFQID: "r1", Action: "create"}, evt)
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestListenDialFailure(t *testing.T) {
	err := Listen(context.Background(), "ws://127.0.0.1:1/ws", func(Event) {})
	require.Error(t, err)
}

func TestListenReturnsWhenServerCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	errc := make(chan error, 1)
	go func() {
		errc <- Listen(context.Background(), URLFor(srv.URL), func(Event) {})
	}()

	select {
	case err := <-errc:
		require.Error(t, err)
		assert.NotErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after the server closed the connection")
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(Event{Type: "rfq_created", ID: "r1", Action: "create"})
	assert.Zero(t, hub.Clients())
}

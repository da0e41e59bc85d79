package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)
	return hub
}

func TestPostToConnection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := startHub(t)
	ctx := context.Background()

	if err := hub.PostToConnection(ctx, "nobody", []byte("x")); !errors.Is(err, ErrConnectionGone) {
		t.Fatalf("unknown connection err = %v, want ErrConnectionGone", err)
	}

	client := NewClient(hub, nil, nil, "c1", "s1")
	if err := hub.Register(client); err != nil {
		t.Fatal(err)
	}
	if hub.ConnectionCount() != 1 {
		t.Fatalf("ConnectionCount = %d", hub.ConnectionCount())
	}

	if err := hub.PostToConnection(ctx, "c1", []byte("hello")); err != nil {
		t.Fatalf("post: %v", err)
	}
	if got := string(<-client.send); got != "hello" {
		t.Errorf("delivered %q", got)
	}

	// buffer dolu: context süresi içinde yer açılmazsa timeout
	for i := 0; i < sendBufferSize; i++ {
		client.send <- []byte("fill")
	}
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := hub.PostToConnection(tctx, "c1", []byte("late")); !errors.Is(err, ErrDeliveryTimeout) {
		t.Errorf("stalled buffer err = %v, want ErrDeliveryTimeout", err)
	}

	hub.Unregister(client)
	if err := hub.PostToConnection(ctx, "c1", []byte("x")); !errors.Is(err, ErrConnectionGone) {
		t.Errorf("unregistered connection err = %v, want ErrConnectionGone", err)
	}

	hub.Shutdown()
}

func TestPostToClosedButRegisteredConnection(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, nil, "c1", "s1")
	if err := hub.Register(client); err != nil {
		t.Fatal(err)
	}
	client.close()

	if err := hub.PostToConnection(context.Background(), "c1", []byte("x")); !errors.Is(err, ErrConnectionGone) {
		t.Errorf("err = %v, want ErrConnectionGone", err)
	}
}

func TestEncodeAssignsIncreasingSeq(t *testing.T) {
	hub := NewHub()

	var last int64
	for i := 0; i < 3; i++ {
		data, err := hub.Encode(Event{Op: OpEmoteCreate, Data: map[string]string{"emote_id": "e"}})
		if err != nil {
			t.Fatal(err)
		}
		var ev struct {
			Op  string         `json:"op"`
			D   map[string]any `json:"d"`
			Seq int64          `json:"seq"`
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Op != OpEmoteCreate || ev.D["emote_id"] != "e" {
			t.Errorf("decoded %+v", ev)
		}
		if ev.Seq <= last {
			t.Errorf("seq %d not greater than %d", ev.Seq, last)
		}
		last = ev.Seq
	}
}

func TestRegisterAfterShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Shutdown()

	if err := hub.Register(NewClient(hub, nil, nil, "c1", "s1")); !errors.Is(err, ErrHubClosed) {
		t.Errorf("err = %v, want ErrHubClosed", err)
	}
}

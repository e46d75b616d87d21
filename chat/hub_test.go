package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "C1_S1",
	}

	hub.register <- client

	msg := outboundPayload{Action: "chat", Text: "hello test"}
	data, _ := json.Marshal(msg)
	hub.Broadcast("C1_S1", data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 10), Room: "C1_S1"}
	b := &Client{Send: make(chan []byte, 10), Room: "C1_S2"}
	hub.register <- a
	hub.register <- b

	hub.Broadcast("C1_S1", []byte("ping"))

	select {
	case <-a.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for room member")
	}

	select {
	case got := <-b.Send:
		t.Fatalf("other room received %s", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeReceivesUntilCancel(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe("C1_S1")
	hub.Broadcast("C1_S1", []byte("first"))

	select {
	case got := <-sub.C:
		if string(got) != "first" {
			t.Fatalf("got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for subscribed message")
	}

	sub.Cancel()

	select {
	case _, open := <-sub.C:
		if open {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Send: make(chan []byte, 10), Room: "C1_S1"}
	hub.register <- client

	hub.Stop()

	select {
	case _, open := <-client.Send:
		if open {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

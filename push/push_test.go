package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendPostsExpoPayload(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, HTTP: srv.Client()}
	err := c.Send(context.Background(), Message{
		To:    "ExponentPushToken[abc]",
		Title: "New message",
		Body:  "hello",
		Data:  map[string]string{"conversationId": "c1_s1"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.To != "ExponentPushToken[abc]" || got.Title != "New message" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Sound != "default" {
		t.Fatalf("sound not defaulted: %q", got.Sound)
	}
	if got.Data["conversationId"] != "c1_s1" {
		t.Fatalf("data not forwarded: %+v", got.Data)
	}
}

func TestSendSkipsMissingToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, HTTP: srv.Client()}
	if err := c.Send(context.Background(), Message{Title: "x", Body: "y"}); err != nil {
		t.Fatalf("Send without token: %v", err)
	}
	if called {
		t.Fatal("gateway called despite missing token")
	}
}

func TestSendReportsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, HTTP: srv.Client()}
	if err := c.Send(context.Background(), Message{To: "tok", Title: "x", Body: "y"}); err == nil {
		t.Fatal("expected error on 400 response")
	}
}

package chat

import (
	"encoding/json"
	"testing"
	"time"

	"tiffin/models"

	"go.mongodb.org/mongo-driver/bson"
)

func fixtureMessages() []models.ChatMessage {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Arrival order deliberately disagrees with the persisted timestamps:
	// the student's message reached the server first but carries the later
	// createdAt of the two rapid sends.
	return []models.ChatMessage{
		{MessageID: "m3", ConversationID: "C1_S1", SenderID: "S1", Text: "and one more", CreatedAt: base.Add(2 * time.Second)},
		{MessageID: "m1", ConversationID: "C1_S1", SenderID: "C1", Text: "hello", CreatedAt: base},
		{MessageID: "m2", ConversationID: "C1_S1", SenderID: "S1", Text: "hi", CreatedAt: base.Add(1 * time.Second)},
	}
}

func TestHistoryBatchOrdersByPersistedTimestamp(t *testing.T) {
	batch := historyBatch(fixtureMessages())
	if len(batch) != 3 {
		t.Fatalf("batch length = %d, want 3", len(batch))
	}

	var got []outboundPayload
	for _, data := range batch {
		var p outboundPayload
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		got = append(got, p)
	}

	wantIDs := []string{"m1", "m2", "m3"}
	for i, p := range got {
		if p.ID != wantIDs[i] {
			t.Fatalf("position %d: id = %s, want %s", i, p.ID, wantIDs[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt < got[i-1].CreatedAt {
			t.Fatalf("timestamps not ascending at position %d", i)
		}
	}
}

func TestHistoryBatchInterleavesSendersByTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Two rapid sends from different senders, listed in client-call order
	// with the second caller holding the earlier persisted timestamp.
	msgs := []models.ChatMessage{
		{MessageID: "late", SenderID: "S1", Text: "second", CreatedAt: base.Add(50 * time.Millisecond)},
		{MessageID: "early", SenderID: "C1", Text: "first", CreatedAt: base},
	}

	batch := historyBatch(msgs)
	var first outboundPayload
	if err := json.Unmarshal(batch[0], &first); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if first.ID != "early" || first.SenderID != "C1" {
		t.Fatalf("first delivered = %s from %s, want early from C1", first.ID, first.SenderID)
	}
}

// History is queued before the client is registered, so the hub alone writes
// to and closes Send. A connect-then-disconnect before the frames drain must
// never panic.
func TestDisconnectBeforeHistoryDrainDoesNotPanic(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	for i := 0; i < 50; i++ {
		client := &Client{Send: make(chan []byte, 256), Room: "C1_S1"}
		for _, data := range historyBatch(fixtureMessages()) {
			client.Send <- data
		}

		hub.register <- client
		hub.unregister <- client

		// a second unregister for the same client is a no-op
		hub.unregister <- client
	}
}

func TestSummaryUpdateCreatesMissingConversation(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	update, opts := conversationSummaryUpdate("C1_S1", "hello", at)

	if opts.Upsert == nil || !*opts.Upsert {
		t.Fatal("summary write does not upsert")
	}

	set, ok := update["$set"].(bson.M)
	if !ok || set["lastMessage"] != "hello" || set["lastMessageAt"] != at {
		t.Fatalf("unexpected $set: %+v", update["$set"])
	}

	insert, ok := update["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatal("missing $setOnInsert for a fresh conversation doc")
	}
	if insert["chefId"] != "C1" || insert["studentId"] != "S1" {
		t.Fatalf("participants not derived from key: %+v", insert)
	}
}

package mq

import (
	"context"
	"encoding/json"
	"log"

	"tiffin/db"
	"tiffin/models"
	"tiffin/push"
	"tiffin/rdx"

	"go.mongodb.org/mongo-driver/bson"
)

const pushChannel = "push-events"

// PushEvent asks the worker to notify one user's registered device.
type PushEvent struct {
	RecipientID string            `json:"recipient_id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// EmitPushEvent publishes the event to Redis; delivery happens off the
// request path so a slow gateway never blocks a handler.
func EmitPushEvent(event PushEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EmitPushEvent] marshal: %v", err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), pushChannel, data).Err(); err != nil {
		log.Printf("[EmitPushEvent] publish: %v", err)
	}
}

// StartPushWorker drains the push channel and forwards each event to the
// Expo gateway using the recipient's registered token.
func StartPushWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, pushChannel)
	ch := sub.Channel()
	client := push.NewClient()

	log.Println("[PushWorker] Listening for push events...")

	for msg := range ch {
		var event PushEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[PushWorker] parse event: %v", err)
			continue
		}

		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"userid": event.RecipientID}).Decode(&user); err != nil {
			log.Printf("[PushWorker] recipient %s lookup: %v", event.RecipientID, err)
			continue
		}

		err := client.Send(ctx, push.Message{
			To:    user.PushToken,
			Title: event.Title,
			Body:  event.Body,
			Data:  event.Data,
		})
		if err != nil {
			log.Printf("[PushWorker] send to %s: %v", event.RecipientID, err)
		}
	}
}

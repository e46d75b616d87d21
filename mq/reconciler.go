package mq

import (
	"context"
	"log"
	"time"

	"tiffin/db"
	"tiffin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StartSummaryReconciler periodically recomputes each conversation's last
// message from the message log. The inline summary write is best effort;
// deleting the newest message leaves a stale preview until this catches up.
func StartSummaryReconciler(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		for range ticker.C {
			if err := reconcileSummaries(context.Background()); err != nil {
				log.Printf("[SummaryReconciler] %v", err)
			}
		}
	}()
}

func reconcileSummaries(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := db.ChatsCollection.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var conv models.Conversation
		if err := cursor.Decode(&conv); err != nil {
			continue
		}

		var last models.ChatMessage
		err := db.MessagesCollection.FindOne(ctx,
			bson.M{"chatid": conv.ID},
			options.FindOne().SetSort(bson.M{"createdAt": -1})).Decode(&last)

		update := bson.M{"lastMessage": "", "lastMessageAt": time.Time{}}
		switch {
		case err == nil:
			preview := last.Text
			if preview == "" && last.ImageURL != "" {
				preview = "[image]"
			}
			update = bson.M{"lastMessage": preview, "lastMessageAt": last.CreatedAt}
		case err != mongo.ErrNoDocuments:
			log.Printf("[SummaryReconciler] last message for %s: %v", conv.ID, err)
			continue
		}

		if _, err := db.ChatsCollection.UpdateOne(ctx,
			bson.M{"_id": conv.ID}, bson.M{"$set": update}); err != nil {
			log.Printf("[SummaryReconciler] update %s: %v", conv.ID, err)
		}
	}
	return cursor.Err()
}

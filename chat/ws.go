package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"tiffin/db"
	"tiffin/middleware"
	"tiffin/models"
	"tiffin/mq"
	"tiffin/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const historyLimit = 30

// inboundPayload is what clients send over the socket.
type inboundPayload struct {
	Action string `json:"action"` // "chat", "delete"
	ID     string `json:"id,omitempty"`
	Text   string `json:"text,omitempty"`
}

// outboundPayload is what every client in the room receives.
type outboundPayload struct {
	Action       string `json:"action"`
	ID           string `json:"id"`
	Room         string `json:"room,omitempty"`
	SenderID     string `json:"senderId,omitempty"`
	SenderName   string `json:"senderName,omitempty"`
	SenderAvatar string `json:"senderAvatar,omitempty"`
	Text         string `json:"text,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

func messagePayload(m models.ChatMessage) outboundPayload {
	return outboundPayload{
		Action:       "chat",
		ID:           m.MessageID,
		Room:         m.ConversationID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Text:         m.Text,
		ImageURL:     m.ImageURL,
		CreatedAt:    m.CreatedAt.Unix(),
	}
}

// WebSocketHandler upgrades the connection and joins the conversation room.
// The upgrade request cannot carry an Authorization header from the mobile
// client, so the token rides in the query string.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room := ps.ByName("room")

		claims, err := middleware.ValidateJWT("Bearer " + r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !IsParticipant(room, claims.UserID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Room:   room,
			UserID: claims.UserID,
		}

		// Queue recent history before the hub learns about the client. Once
		// registered, the hub is the only writer to Send and the only party
		// that closes it, so an early disconnect cannot race a send.
		for _, data := range fetchHistory(room) {
			client.Send <- data
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

// fetchHistory loads the room's most recent messages for replay.
func fetchHistory(room string) [][]byte {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(historyLimit)

	cur, err := db.MessagesCollection.Find(ctx, bson.M{"chatid": room}, opts)
	if err != nil {
		log.Println("history find:", err)
		return nil
	}
	defer cur.Close(ctx)

	var history []models.ChatMessage
	if err := cur.All(ctx, &history); err != nil {
		log.Println("history decode:", err)
		return nil
	}
	return historyBatch(history)
}

// historyBatch orders messages for replay by their persisted timestamp,
// oldest first, and marshals each one. The order messages arrived in at the
// server is irrelevant; the stored createdAt decides.
func historyBatch(msgs []models.ChatMessage) [][]byte {
	sorted := append([]models.ChatMessage(nil), msgs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	out := make([][]byte, 0, len(sorted))
	for _, m := range sorted {
		if data, err := json.Marshal(messagePayload(m)); err == nil {
			out = append(out, data)
		}
	}
	return out
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundPayload
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Println("invalid payload:", err)
			continue
		}

		switch in.Action {
		case "chat":
			if in.Text == "" {
				continue
			}
			msg, err := persistMessage(context.Background(), c.Room, c.UserID, in.Text, "")
			if err != nil {
				log.Println("insert:", err)
				continue
			}
			if data, err := json.Marshal(messagePayload(msg)); err == nil {
				hub.Broadcast(c.Room, data)
			}
			notifyPeer(c.Room, msg)

		case "delete":
			if err := deleteOwnMessage(context.Background(), c.UserID, in.ID); err != nil {
				log.Println("delete failed:", err)
				continue
			}
			out := outboundPayload{Action: "delete", ID: in.ID}
			if data, err := json.Marshal(out); err == nil {
				hub.Broadcast(c.Room, data)
			}

		default:
			log.Println("unknown action:", in.Action)
		}
	}
}

// persistMessage stores the message with a server-side timestamp and then
// refreshes the conversation summary. The summary write is best effort; the
// reconciler repairs any divergence.
func persistMessage(ctx context.Context, room, senderID, text, imageURL string) (models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sender models.User
	_ = db.UserCollection.FindOne(ctx, bson.M{"userid": senderID}).Decode(&sender)
	avatar := sender.Avatar
	if avatar == "" {
		avatar = utils.InitialsAvatar(sender.Name)
	}

	msg := models.ChatMessage{
		MessageID:      utils.GetUUID(),
		ConversationID: room,
		SenderID:       senderID,
		SenderName:     sender.Name,
		SenderAvatar:   avatar,
		Text:           text,
		ImageURL:       imageURL,
		CreatedAt:      time.Now(),
	}
	if _, err := db.MessagesCollection.InsertOne(ctx, msg); err != nil {
		return models.ChatMessage{}, err
	}

	preview := text
	if preview == "" && imageURL != "" {
		preview = "[image]"
	}
	update, opts := conversationSummaryUpdate(room, preview, msg.CreatedAt)
	if _, err := db.ChatsCollection.UpdateOne(ctx, bson.M{"_id": room}, update, opts); err != nil {
		log.Println("summary update:", err)
	}

	return msg, nil
}

// conversationSummaryUpdate builds the summary write for a room. It upserts:
// a room whose summary doc is missing gets one created with the participants
// derived from the key, instead of the write matching nothing and the thread
// never appearing in the conversation list.
func conversationSummaryUpdate(room, preview string, at time.Time) (bson.M, *options.UpdateOptions) {
	update := bson.M{"$set": bson.M{"lastMessage": preview, "lastMessageAt": at}}
	if chefID, studentID, err := ParseConversationKey(room); err == nil {
		update["$setOnInsert"] = bson.M{"chefId": chefID, "studentId": studentID}
	}
	return update, options.Update().SetUpsert(true)
}

// deleteOwnMessage removes a message iff the requester sent it.
func deleteOwnMessage(ctx context.Context, requesterID, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var msg models.ChatMessage
	if err := db.MessagesCollection.FindOne(ctx, bson.M{"messageid": messageID}).Decode(&msg); err != nil {
		return err
	}
	if !canDeleteMessage(requesterID, msg.SenderID) {
		return errNotSender
	}
	_, err := db.MessagesCollection.DeleteOne(ctx, bson.M{"messageid": messageID})
	return err
}

// notifyPeer pushes the new message to the other participant's device.
func notifyPeer(room string, msg models.ChatMessage) {
	chefID, studentID, err := ParseConversationKey(room)
	if err != nil {
		return
	}
	recipient := chefID
	if msg.SenderID == chefID {
		recipient = studentID
	}

	body := msg.Text
	if body == "" {
		body = "Sent an image"
	}
	mq.EmitPushEvent(mq.PushEvent{
		RecipientID: recipient,
		Title:       msg.SenderName,
		Body:        body,
		Data:        map[string]string{"conversationId": room},
	})
}

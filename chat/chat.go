package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"tiffin/db"
	"tiffin/filemgr"
	"tiffin/models"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNotSender = errors.New("only the sender may delete a message")

// StartConversation opens (or returns) the thread between a chef and a
// student. Either side may initiate; the missing participant id is the
// caller's own.
func StartConversation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ChefID    string `json:"chefId"`
		StudentID string `json:"studentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	switch utils.GetRoleFromRequest(r) {
	case "chef":
		body.ChefID = userID
	case "student":
		body.StudentID = userID
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if body.ChefID == "" || body.StudentID == "" {
		http.Error(w, "Both participants are required", http.StatusBadRequest)
		return
	}

	var chef, student models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": body.ChefID, "role": "chef"}).Decode(&chef); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Chef not found")
		return
	}
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": body.StudentID, "role": "student"}).Decode(&student); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Student not found")
		return
	}

	conv := models.Conversation{
		ID:            ConversationKey(body.ChefID, body.StudentID),
		ChefID:        body.ChefID,
		StudentID:     body.StudentID,
		ChefName:      chef.Name,
		StudentName:   student.Name,
		ChefAvatar:    chef.Avatar,
		StudentAvatar: student.Avatar,
	}

	res, err := db.ChatsCollection.UpdateOne(ctx,
		bson.M{"_id": conv.ID},
		bson.M{"$setOnInsert": conv},
		options.Update().SetUpsert(true))
	if err != nil {
		log.Println("StartConversation upsert:", err)
		http.Error(w, "Failed to start conversation", http.StatusInternalServerError)
		return
	}

	if res.UpsertedCount == 0 {
		_ = db.ChatsCollection.FindOne(ctx, bson.M{"_id": conv.ID}).Decode(&conv)
		utils.RespondWithJSON(w, http.StatusOK, conv)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, conv)
}

// ListConversations returns the caller's threads, most recent first.
func ListConversations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := bson.M{"$or": []bson.M{{"chefId": userID}, {"studentId": userID}}}
	opts := options.Find().SetSort(bson.M{"lastMessageAt": -1})

	cursor, err := db.ChatsCollection.Find(ctx, filter, opts)
	if err != nil {
		http.Error(w, "Could not retrieve conversations", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		http.Error(w, "Could not decode conversations", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, convs)
}

// GetMessages pages through a conversation newest first. ?before takes a
// unix timestamp; ?limit caps the page size.
func GetMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	room := ps.ByName("room")
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !IsParticipant(room, userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	limit := int64(50)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	filter := bson.M{"chatid": room}
	if v, err := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64); err == nil && v > 0 {
		filter["createdAt"] = bson.M{"$lt": time.Unix(v, 0)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.MessagesCollection.Find(ctx, filter, opts)
	if err != nil {
		http.Error(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	msgs := []models.ChatMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		http.Error(w, "Could not decode messages", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, msgs)
}

// SendMessage accepts multipart text and/or an image. The image is stored
// before the message is inserted so a failed upload never leaves a message
// pointing at nothing.
func SendMessage(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		userID := utils.GetUserIDFromRequest(r)
		room := ps.ByName("room")
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !IsParticipant(room, userID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if err := r.ParseMultipartForm(12 << 20); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		text := r.FormValue("text")

		imageURL, err := filemgr.SaveFormImage(r.MultipartForm, "image", filemgr.EntityChat)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid image")
			return
		}
		if text == "" && imageURL == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Message is empty")
			return
		}

		msg, err := persistMessage(ctx, room, userID, text, imageURL)
		if err != nil {
			log.Println("SendMessage insert:", err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}

		if data, err := json.Marshal(messagePayload(msg)); err == nil {
			hub.Broadcast(room, data)
		}
		notifyPeer(room, msg)

		utils.RespondWithJSON(w, http.StatusCreated, msg)
	}
}

// DeleteMessage removes one message; only its sender may do so.
func DeleteMessage(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		userID := utils.GetUserIDFromRequest(r)
		room := ps.ByName("room")
		messageID := ps.ByName("messageid")
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !IsParticipant(room, userID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		err := deleteOwnMessage(ctx, userID, messageID)
		switch {
		case errors.Is(err, errNotSender):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		case errors.Is(err, mongo.ErrNoDocuments):
			utils.RespondWithError(w, http.StatusNotFound, "Message not found")
			return
		case err != nil:
			log.Println("DeleteMessage:", err)
			http.Error(w, "Failed to delete message", http.StatusInternalServerError)
			return
		}

		out := outboundPayload{Action: "delete", ID: messageID}
		if data, err := json.Marshal(out); err == nil {
			hub.Broadcast(room, data)
		}

		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

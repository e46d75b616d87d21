package models

import "time"

// Conversation is the denormalized summary of a chef/student thread. Its ID
// is the deterministic conversation key "{chefId}_{studentId}".
type Conversation struct {
	ID            string    `json:"chatid" bson:"_id"`
	ChefID        string    `json:"chefId" bson:"chefId"`
	StudentID     string    `json:"studentId" bson:"studentId"`
	ChefName      string    `json:"chefName" bson:"chefName"`
	StudentName   string    `json:"studentName" bson:"studentName"`
	ChefAvatar    string    `json:"chefAvatar,omitempty" bson:"chefAvatar,omitempty"`
	StudentAvatar string    `json:"studentAvatar,omitempty" bson:"studentAvatar,omitempty"`
	LastMessage   string    `json:"lastMessage" bson:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt" bson:"lastMessageAt"`
}

// ChatMessage carries text or an image; at least one is present.
type ChatMessage struct {
	MessageID      string    `json:"id" bson:"messageid"`
	ConversationID string    `json:"chatid" bson:"chatid"`
	SenderID       string    `json:"senderId" bson:"senderId"`
	SenderName     string    `json:"senderName" bson:"senderName"`
	SenderAvatar   string    `json:"senderAvatar,omitempty" bson:"senderAvatar,omitempty"`
	Text           string    `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL       string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

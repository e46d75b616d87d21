package chat

import (
	"errors"
	"strings"
)

// ConversationKey derives the stable room id for a chef/student pair. The
// chef id always comes first so both participants resolve the same room.
func ConversationKey(chefID, studentID string) string {
	return chefID + "_" + studentID
}

// ParseConversationKey splits a room id back into its participants.
func ParseConversationKey(key string) (chefID, studentID string, err error) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("malformed conversation key")
	}
	return parts[0], parts[1], nil
}

// IsParticipant reports whether userID belongs to the conversation.
func IsParticipant(key, userID string) bool {
	chefID, studentID, err := ParseConversationKey(key)
	if err != nil {
		return false
	}
	return userID == chefID || userID == studentID
}

// canDeleteMessage is the single deletion rule: only the sender may delete,
// regardless of role.
func canDeleteMessage(requesterID, senderID string) bool {
	return requesterID != "" && requesterID == senderID
}

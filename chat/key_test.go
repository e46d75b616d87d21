package chat

import "testing"

func TestConversationKeyChefFirst(t *testing.T) {
	if got := ConversationKey("C1", "S1"); got != "C1_S1" {
		t.Fatalf("ConversationKey = %q, want C1_S1", got)
	}
}

func TestParseConversationKey(t *testing.T) {
	chefID, studentID, err := ParseConversationKey("C1_S1")
	if err != nil {
		t.Fatalf("ParseConversationKey: %v", err)
	}
	if chefID != "C1" || studentID != "S1" {
		t.Fatalf("got (%q, %q)", chefID, studentID)
	}

	for _, bad := range []string{"", "C1", "_S1", "C1_"} {
		if _, _, err := ParseConversationKey(bad); err == nil {
			t.Errorf("ParseConversationKey(%q) accepted", bad)
		}
	}

	// Student ids may themselves contain underscores.
	_, studentID, err = ParseConversationKey("C1_S_1")
	if err != nil || studentID != "S_1" {
		t.Fatalf("underscore student id: %q, %v", studentID, err)
	}
}

func TestIsParticipant(t *testing.T) {
	key := ConversationKey("C1", "S1")
	if !IsParticipant(key, "C1") || !IsParticipant(key, "S1") {
		t.Fatal("participants rejected")
	}
	if IsParticipant(key, "S2") {
		t.Fatal("outsider accepted")
	}
	if IsParticipant("garbage", "C1") {
		t.Fatal("malformed key accepted")
	}
}

func TestCanDeleteMessageSenderOnly(t *testing.T) {
	if !canDeleteMessage("S1", "S1") {
		t.Fatal("sender may not delete own message")
	}
	if canDeleteMessage("C1", "S1") {
		t.Fatal("other participant may delete")
	}
	if canDeleteMessage("", "") {
		t.Fatal("empty requester may delete")
	}
}

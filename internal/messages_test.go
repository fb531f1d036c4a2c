package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const ns = int64(1e9)

func TestGroupConversations(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)
	insertContact(t, ab, "John", "Doe", "+15551234567")

	insertChat(t, msgDB, 1, "+15551234567", "+15551234567")
	insertChat(t, msgDB, 2, "+15559876543", "+15559876543")

	// Interleave timestamps across the two chats; chat 2 has the latest message
	insertMessage(t, msgDB, 1, "hey", 100*ns, false, "+15551234567")
	insertMessage(t, msgDB, 2, "lunch?", 150*ns, false, "+15559876543")
	insertMessage(t, msgDB, 1, "hi back", 200*ns, true, "")
	insertMessage(t, msgDB, 2, "sure", 250*ns, true, "")
	insertMessage(t, msgDB, 1, "ok", 300*ns, false, "+15551234567")
	insertMessage(t, msgDB, 2, "noon", 350*ns, false, "+15559876543")

	cache := NewContactCache(ab)
	conversations, err := GetConversations(msgDB, cache, "")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("Got %d conversations, want 2", len(conversations))
	}

	// Ordered by latest message descending: chat 2 (350) before chat 1 (300)
	if conversations[0].ChatID != 2 || conversations[1].ChatID != 1 {
		t.Errorf("Conversation order = [%d, %d], want [2, 1]", conversations[0].ChatID, conversations[1].ChatID)
	}

	// Messages within each conversation stay in timestamp-ascending order
	for _, conv := range conversations {
		for i := 1; i < len(conv.Messages); i++ {
			if conv.Messages[i].Timestamp.Before(conv.Messages[i-1].Timestamp) {
				t.Errorf("Chat %d messages out of order", conv.ChatID)
			}
		}
	}

	texts := []string{}
	for _, m := range conversations[1].Messages {
		texts = append(texts, m.Text)
	}
	if diff := cmp.Diff([]string{"hey", "hi back", "ok"}, texts); diff != "" {
		t.Errorf("Chat 1 messages mismatch (-want +got):\n%s", diff)
	}

	// Incoming/outgoing partition on is_from_me
	for _, conv := range conversations {
		if conv.IncomingCount != 2 || conv.OutgoingCount != 1 {
			t.Errorf("Chat %d counts = %d in / %d out, want 2/1", conv.ChatID, conv.IncomingCount, conv.OutgoingCount)
		}
	}

	// Conversation label comes from the first participant
	if conversations[1].Label != "John Doe (+15551234567)" {
		t.Errorf("Chat 1 label = %q, want resolved contact label", conversations[1].Label)
	}
	if conversations[0].Label != "+15559876543" {
		t.Errorf("Chat 2 label = %q, want bare number", conversations[0].Label)
	}
}

func TestGroupConversationsMessageLabels(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)
	insertContact(t, ab, "John", "Doe", "+15551234567")

	insertChat(t, msgDB, 1, "+15551234567", "+15551234567")
	insertMessage(t, msgDB, 1, "incoming", 100*ns, false, "+15551234567")
	insertMessage(t, msgDB, 1, "outgoing", 200*ns, true, "")

	conversations, err := GetConversations(msgDB, NewContactCache(ab), "")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 1 || len(conversations[0].Messages) != 2 {
		t.Fatalf("Unexpected shape: %+v", conversations)
	}

	incoming, outgoing := conversations[0].Messages[0], conversations[0].Messages[1]
	if incoming.DisplayLabel != "John Doe (+15551234567)" {
		t.Errorf("Incoming label = %q", incoming.DisplayLabel)
	}
	// Outgoing messages have no sender handle and therefore no label
	if outgoing.Sender != "" || outgoing.DisplayLabel != "" {
		t.Errorf("Outgoing sender/label = %q/%q, want empty", outgoing.Sender, outgoing.DisplayLabel)
	}
	if incoming.SentAt == "" {
		t.Error("Incoming message missing formatted timestamp")
	}
}

func TestSearchFiltersBySubstring(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)

	insertChat(t, msgDB, 1, "+15551234567", "+15551234567")
	insertMessage(t, msgDB, 1, "See you at the Meeting tomorrow", 100*ns, false, "+15551234567")
	insertMessage(t, msgDB, 1, "Running late", 200*ns, true, "")
	insertMessage(t, msgDB, 1, "Battery at 100% now", 300*ns, true, "")

	// Case-insensitive substring match
	conversations, err := GetConversations(msgDB, NewContactCache(ab), "meeting")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 1 || len(conversations[0].Messages) != 1 {
		t.Fatalf("Search 'meeting': got %+v", conversations)
	}

	// LIKE wildcards in the term are literal, not wildcards
	conversations, err = GetConversations(msgDB, NewContactCache(ab), "100%")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 1 || len(conversations[0].Messages) != 1 {
		t.Fatalf("Search '100%%': got %d conversations", len(conversations))
	}
	if conversations[0].Messages[0].Text != "Battery at 100% now" {
		t.Errorf("Matched %q", conversations[0].Messages[0].Text)
	}

	// No matches is an empty view, not an error
	conversations, err = GetConversations(msgDB, NewContactCache(ab), "nothing matches this")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("Got %d conversations, want 0", len(conversations))
	}
}

func TestNullTextRendersEmpty(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)

	insertChat(t, msgDB, 1, "+15551234567", "+15551234567")
	// Messages with no text at all (e.g. attachment-only) still thread
	insertMessage(t, msgDB, 1, "", 100*ns, false, "+15551234567")

	conversations, err := GetConversations(msgDB, NewContactCache(ab), "")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 1 || len(conversations[0].Messages) != 1 {
		t.Fatalf("Unexpected shape: %+v", conversations)
	}
	if conversations[0].Messages[0].Text != "" {
		t.Errorf("Text = %q, want empty", conversations[0].Messages[0].Text)
	}
}

func TestGroupConversationsEmptyStore(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)

	conversations, err := GetConversations(msgDB, NewContactCache(ab), "")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("Got %d conversations from empty store", len(conversations))
	}
}

func TestGroupConversationsParticipants(t *testing.T) {
	msgDB, _ := newMessageStore(t)
	ab, _ := newAddressBook(t)
	insertContact(t, ab, "John", "Doe", "+15551234567")

	// Group chat: labelled by its first participant only
	insertChat(t, msgDB, 1, "chat10001", "+15551234567", "+15559876543")
	insertMessage(t, msgDB, 1, "group hello", 100*ns, false, "+15559876543")

	conversations, err := GetConversations(msgDB, NewContactCache(ab), "")
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("Got %d conversations, want 1", len(conversations))
	}

	conv := conversations[0]
	if diff := cmp.Diff([]string{"+15551234567", "+15559876543"}, conv.Participants); diff != "" {
		t.Errorf("Participants mismatch (-want +got):\n%s", diff)
	}
	if conv.Label != "John Doe (+15551234567)" {
		t.Errorf("Group label = %q, want first participant's label", conv.Label)
	}
	if conv.ChatIdentifier != "chat10001" {
		t.Errorf("ChatIdentifier = %q", conv.ChatIdentifier)
	}
}

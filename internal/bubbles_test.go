package internal

import (
	"errors"
	"testing"

	"github.com/iksnae/session-feed/testutil"
)

func TestGetMessage(t *testing.T) {
	store := openTestStore(t, [][2]string{
		{"bubbleId:conv1:b1", testutil.MessageJSON(t, map[string]interface{}{
			"type": 1, "text": "hello", "createdAt": "2026-08-24T10:00:00Z",
		})},
	})
	resolver := NewBubbleResolver(store)

	msg, err := resolver.GetMessage("conv1", "b1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if msg == nil {
		t.Fatal("GetMessage() returned nil for existing message")
	}
	if msg.Text != "hello" || msg.ConversationID != "conv1" || msg.BubbleID != "b1" {
		t.Errorf("message not decoded: %+v", msg)
	}
}

func TestGetMessage_AbsentIsNilNotError(t *testing.T) {
	store := openTestStore(t, nil)
	resolver := NewBubbleResolver(store)

	msg, err := resolver.GetMessage("conv1", "ghost")
	if err != nil {
		t.Fatalf("GetMessage() error = %v, want nil for absent key", err)
	}
	if msg != nil {
		t.Error("GetMessage() should return nil for absent key")
	}
}

func TestGetMessage_CorruptIsParseError(t *testing.T) {
	store := openTestStore(t, [][2]string{
		{"bubbleId:conv1:bad", "@@@"},
	})
	resolver := NewBubbleResolver(store)

	_, err := resolver.GetMessage("conv1", "bad")
	if err == nil {
		t.Fatal("expected error for undecodable message")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestGetMessage_Cached(t *testing.T) {
	store := openTestStore(t, [][2]string{
		{"bubbleId:conv1:b1", testutil.MessageJSON(t, map[string]interface{}{"type": 1, "text": "hi"})},
	})
	resolver := NewBubbleResolver(store)

	first, err := resolver.GetMessage("conv1", "b1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	second, err := resolver.GetMessage("conv1", "b1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if first != second {
		t.Error("second lookup should be served from cache (same pointer)")
	}

	resolver.ClearCache()
	third, err := resolver.GetMessage("conv1", "b1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if third == first {
		t.Error("lookup after ClearCache should hit the store again")
	}
}

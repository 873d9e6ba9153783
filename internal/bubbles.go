package internal

// BubbleResolver fetches individual message records by composite key.
// Messages are resolved lazily, one header at a time, because pulling
// every message of every conversation is the dominant cost of the
// editor source. Callers must tolerate partial resolution: one failed
// fetch never aborts summarization of the rest of the conversation.
type BubbleResolver struct {
	store    *ConversationStore
	messages *recordCache[*MessageRecord]
}

// NewBubbleResolver creates a resolver sharing the store's database
// handle but owning its own cache.
func NewBubbleResolver(store *ConversationStore) *BubbleResolver {
	return &BubbleResolver{
		store:    store,
		messages: newRecordCache[*MessageRecord](),
	}
}

// GetMessage fetches one message of a conversation. Absent keys return
// (nil, nil); present-but-undecodable records return a *ParseError.
func (r *BubbleResolver) GetMessage(conversationID, messageID string) (*MessageRecord, error) {
	key := MessageKey(conversationID, messageID)
	if rec, ok := r.messages.Get(key); ok {
		return rec, nil
	}

	value, found, err := queryValue(r.store.db, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	rec, err := ParseMessageRecord(conversationID, messageID, value)
	if err != nil {
		return nil, err
	}

	r.messages.Put(key, rec)
	return rec, nil
}

// ClearCache drops every cached message.
func (r *BubbleResolver) ClearCache() {
	r.messages.Clear()
}

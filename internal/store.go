package internal

import (
	"database/sql"
	"strings"
	"sync"
)

// DefaultMinRecordSize filters out near-empty or corrupt composerData
// entries at the listing stage. Records this small never hold a usable
// conversation.
const DefaultMinRecordSize = 500

// ConversationFilter narrows the candidate set ListConversationIDs
// returns.
type ConversationFilter struct {
	// Substring matches against the serialized record value: project
	// path, file name or keyword. Empty means no narrowing.
	Substring string

	// MinRecordSize is the minimum serialized size in bytes. Zero means
	// DefaultMinRecordSize.
	MinRecordSize int
}

// ConversationStore is the read-only adapter over the editor's
// key-value SQLite store. All lookups pass through a per-instance
// cache that is only ever cleared wholesale.
type ConversationStore struct {
	mu            sync.Mutex
	db            *sql.DB
	path          string
	conversations *recordCache[*ConversationRecord]
	closed        bool
}

// OpenConversationStore connects to the store at path. Returns a
// *ConnectionError if the file is missing, unreadable or lacks the
// expected table.
func OpenConversationStore(path string) (*ConversationStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return &ConversationStore{
		db:            db,
		path:          path,
		conversations: newRecordCache[*ConversationRecord](),
	}, nil
}

// Path returns the backing file path.
func (s *ConversationStore) Path() string {
	return s.path
}

// ListConversationIDs returns conversation ids ordered by descending
// insertion order, filtered per f.
func (s *ConversationStore) ListConversationIDs(f ConversationFilter) ([]string, error) {
	minSize := f.MinRecordSize
	if minSize == 0 {
		minSize = DefaultMinRecordSize
	}

	keys, err := queryConversationKeys(s.db, minSize, f.Substring)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, "composerData:")
		if id == "" || id == key {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetConversation fetches and decodes one record. Absent ids return
// (nil, nil). A record that is present but undecodable returns a
// *ParseError: a malformed stored record is a genuine anomaly, not
// something to silently skip here.
func (s *ConversationStore) GetConversation(id string) (*ConversationRecord, error) {
	if rec, ok := s.conversations.Get(id); ok {
		return rec, nil
	}

	value, found, err := queryValue(s.db, ConversationKey(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	rec, err := ParseConversationRecord(id, value)
	if err != nil {
		return nil, err
	}

	s.conversations.Put(id, rec)
	return rec, nil
}

// ClearCache drops every cached conversation. There is no partial
// invalidation; see recordCache.
func (s *ConversationStore) ClearCache() {
	s.conversations.Clear()
}

// Close releases the database handle. Idempotent.
func (s *ConversationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source identifiers carried on every SessionSummary.
const (
	SourceEditor = "editor" // key-value SQLite store (composerData/bubbleId keys)
	SourceAgent  = "agent"  // append-only JSONL session logs
)

// Todo statuses as stored by both sources. The agent source writes
// "in_progress" where the editor writes "active"; both mean the same
// thing and are matched by IsActiveTodo.
const (
	TodoCompleted = "completed"
	TodoActive    = "active"
	TodoPending   = "pending"
)

// ConversationRecord is one composerData:<id> record from the key-value
// store. Immutable once written by the editor; the reader never mutates it.
type ConversationRecord struct {
	ComposerID        string               `json:"composerId"`
	Version           int                  `json:"_v,omitempty"`
	Name              string               `json:"name,omitempty"`
	Headers           []ConversationHeader `json:"fullConversationHeadersOnly,omitempty"`
	CodeBlockData     map[string][]json.RawMessage `json:"codeBlockData,omitempty"`
	TotalLinesAdded   int                  `json:"totalLinesAdded,omitempty"`
	TotalLinesRemoved int                  `json:"totalLinesRemoved,omitempty"`
	Todos             []TodoItem           `json:"todos,omitempty"`
	HasPendingActions bool                 `json:"hasUnresolvedPendingActions,omitempty"`
	CreatedAt         int64                `json:"createdAt,omitempty"`
	LastUpdatedAt     int64                `json:"lastUpdatedAt,omitempty"`
}

// ConversationHeader names one message of a conversation in order.
type ConversationHeader struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"` // 1=user, 2=assistant
}

// TodoItem is one unit of work tracked by the agent itself.
type TodoItem struct {
	Content string `json:"content"`
	Status  string `json:"status"` // completed, active/in_progress, pending
	ID      string `json:"id,omitempty"`
}

// IsActiveTodo reports whether a todo status means "currently being
// worked on" in either source's vocabulary.
func IsActiveTodo(status string) bool {
	return status == TodoActive || status == "in_progress"
}

// MessageRecord is one bubbleId:<conversation>:<message> record.
// Resolved lazily: fetching every message of every conversation is the
// dominant cost, so callers request only what a summary needs.
type MessageRecord struct {
	BubbleID        string               `json:"bubbleId,omitempty"`
	ConversationID  string               `json:"-"`
	Type            int                  `json:"type"` // 1=user, 2=assistant
	Text            string               `json:"text,omitempty"`
	RelevantFiles   []string             `json:"relevantFiles,omitempty"`
	AttachedFolders []string             `json:"attachedFoldersNew,omitempty"`
	CodeBlocks      []SuggestedCodeBlock `json:"suggestedCodeBlocks,omitempty"`
	CreatedAt       string               `json:"createdAt,omitempty"` // ISO-8601, sometimes empty or invalid
}

// SuggestedCodeBlock is a code suggestion attached to a message.
type SuggestedCodeBlock struct {
	Path     string `json:"relativeWorkspacePath,omitempty"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ParseConversationRecord decodes a composerData value. The id comes
// from the key, not the payload, so a blob that omits composerId still
// resolves.
func ParseConversationRecord(id, value string) (*ConversationRecord, error) {
	var rec ConversationRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: ConversationKey(id), Err: err}
	}
	rec.ComposerID = id
	return &rec, nil
}

// ParseMessageRecord decodes a bubble value for the given composite key.
func ParseMessageRecord(conversationID, messageID, value string) (*MessageRecord, error) {
	var rec MessageRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: MessageKey(conversationID, messageID), Err: err}
	}
	rec.ConversationID = conversationID
	rec.BubbleID = messageID
	return &rec, nil
}

// ConversationKey builds the store key for a conversation id.
func ConversationKey(id string) string {
	return "composerData:" + id
}

// MessageKey builds the store key for one message of a conversation.
func MessageKey(conversationID, messageID string) string {
	return fmt.Sprintf("bubbleId:%s:%s", conversationID, messageID)
}

// Timestamp returns the message creation time, or false when the field
// is empty or unparseable. Callers must not substitute wall-clock time:
// a fabricated timestamp would falsely mark stale sessions as fresh.
func (m *MessageRecord) Timestamp() (time.Time, bool) {
	if m.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SessionStatus is the derived UI status of a session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusPending   SessionStatus = "pending"
	StatusCompleted SessionStatus = "completed"
)

// activeWindowMs is the recency window within which a session counts as
// active regardless of its todo state.
const activeWindowMs = 60_000

// TodoProgress summarizes the todo list of a session.
type TodoProgress struct {
	Completed       int    `json:"completed"`
	Total           int    `json:"total"`
	FirstInProgress string `json:"firstInProgress,omitempty"` // content of the first active item
}

// SessionSummary is the normalized, source-agnostic unit both readers
// produce and Merge & Rank consumes.
type SessionSummary struct {
	ID          string `json:"id"`     // stable within its source
	Source      string `json:"source"` // SourceEditor or SourceAgent
	ProjectName string `json:"projectName"`
	Title       string `json:"title"`

	// Excerpts are nil when resolution was not requested, to
	// distinguish "not requested" from "empty".
	FirstMessage *string `json:"firstMessage,omitempty"`
	LastMessage  *string `json:"lastMessage,omitempty"`

	MessageCount   int      `json:"messageCount"`
	CodeBlockCount int      `json:"codeBlockCount"`
	HasCodeChanges bool     `json:"hasCodeChanges"`
	RelevantFiles  []string `json:"relevantFiles,omitempty"`
	LinesAdded     int      `json:"linesAdded"`
	LinesRemoved   int      `json:"linesRemoved"`

	Todos TodoProgress `json:"todos"`

	// LastActivity is a human-relative string ("5m ago"), "unknown"
	// when the source has no usable timestamp. LastActivityMsAgo is 0
	// in that case and LastActivityKnown is false; an unknown time
	// never ranks ahead of any known time.
	LastActivity      string `json:"lastActivity"`
	LastActivityMsAgo int64  `json:"lastActivityMsAgo"`
	LastActivityKnown bool   `json:"-"`

	HasPendingActions bool          `json:"hasPendingActions"`
	Status            SessionStatus `json:"status"`
}

// DeriveStatus computes the UI status from recency, the pending-action
// flag and todo progress. An unknown activity time does not count as
// inside the active window.
func (s *SessionSummary) DeriveStatus() SessionStatus {
	if (s.LastActivityKnown && s.LastActivityMsAgo < activeWindowMs) || s.HasPendingActions {
		return StatusActive
	}
	if s.Todos.Completed < s.Todos.Total {
		return StatusPending
	}
	return StatusCompleted
}

// recencyKey is the sort key for the merged feed: milliseconds ago,
// ascending, with unknown times pinned to the end.
func (s *SessionSummary) recencyKey() int64 {
	if !s.LastActivityKnown {
		return int64(^uint64(0) >> 1) // max int64
	}
	return s.LastActivityMsAgo
}

// SetLastActivity fills the three activity fields from an absolute time.
func (s *SessionSummary) SetLastActivity(t time.Time, now time.Time) {
	ms := now.Sub(t).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	s.LastActivityMsAgo = ms
	s.LastActivityKnown = true
	s.LastActivity = FormatRelativeTime(ms)
}

// SetLastActivityUnknown marks the activity time as unknown.
func (s *SessionSummary) SetLastActivityUnknown() {
	s.LastActivityMsAgo = 0
	s.LastActivityKnown = false
	s.LastActivity = "unknown"
}

// FormatRelativeTime renders milliseconds-ago as a short human string.
func FormatRelativeTime(msAgo int64) string {
	d := time.Duration(msAgo) * time.Millisecond
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/(24*7)))
	}
}

// TruncateText cuts s to at most maxBytes bytes without splitting a
// rune, appending an ellipsis when anything was dropped.
func TruncateText(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], " \t\n") + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

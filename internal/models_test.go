package internal

import (
	"strings"
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		summary SessionSummary
		want    SessionStatus
	}{
		{
			name: "recent activity is active",
			summary: SessionSummary{
				LastActivityMsAgo: 5000,
				LastActivityKnown: true,
			},
			want: StatusActive,
		},
		{
			name: "stale with incomplete todos is pending",
			summary: SessionSummary{
				LastActivityMsAgo: 90000000,
				LastActivityKnown: true,
				Todos:             TodoProgress{Completed: 1, Total: 3},
			},
			want: StatusPending,
		},
		{
			name: "stale with all todos done is completed",
			summary: SessionSummary{
				LastActivityMsAgo: 90000000,
				LastActivityKnown: true,
				Todos:             TodoProgress{Completed: 3, Total: 3},
			},
			want: StatusCompleted,
		},
		{
			name: "pending action forces active regardless of staleness",
			summary: SessionSummary{
				LastActivityMsAgo: 90000000,
				LastActivityKnown: true,
				HasPendingActions: true,
			},
			want: StatusActive,
		},
		{
			name: "unknown time does not count as recent",
			summary: SessionSummary{
				LastActivityMsAgo: 0,
				LastActivityKnown: false,
			},
			want: StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.DeriveStatus(); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetLastActivity(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	var s SessionSummary
	s.SetLastActivity(now.Add(-5*time.Second), now)

	if !s.LastActivityKnown {
		t.Error("LastActivityKnown should be true")
	}
	if s.LastActivityMsAgo != 5000 {
		t.Errorf("LastActivityMsAgo = %d, want 5000", s.LastActivityMsAgo)
	}
	if s.LastActivity != "just now" {
		t.Errorf("LastActivity = %q, want %q", s.LastActivity, "just now")
	}
}

func TestSetLastActivity_FutureClampsToZero(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	var s SessionSummary
	s.SetLastActivity(now.Add(10*time.Second), now)

	if s.LastActivityMsAgo != 0 {
		t.Errorf("LastActivityMsAgo = %d, want 0 (clamped)", s.LastActivityMsAgo)
	}
}

func TestSetLastActivityUnknown(t *testing.T) {
	var s SessionSummary
	s.SetLastActivityUnknown()

	if s.LastActivityKnown {
		t.Error("LastActivityKnown should be false")
	}
	if s.LastActivity != "unknown" {
		t.Errorf("LastActivity = %q, want %q", s.LastActivity, "unknown")
	}
	if s.LastActivityMsAgo != 0 {
		t.Errorf("LastActivityMsAgo = %d, want 0", s.LastActivityMsAgo)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		msAgo int64
		want  string
	}{
		{0, "just now"},
		{59_000, "just now"},
		{5 * 60 * 1000, "5m ago"},
		{3 * 60 * 60 * 1000, "3h ago"},
		{2 * 24 * 60 * 60 * 1000, "2d ago"},
		{21 * 24 * 60 * 60 * 1000, "3w ago"},
	}

	for _, tt := range tests {
		if got := FormatRelativeTime(tt.msAgo); got != tt.want {
			t.Errorf("FormatRelativeTime(%d) = %q, want %q", tt.msAgo, got, tt.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 250); got != "short" {
		t.Errorf("TruncateText should not modify short strings, got %q", got)
	}

	long := strings.Repeat("a", 300)
	got := TruncateText(long, 250)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated string should end with ellipsis, got %q", got[len(got)-10:])
	}
	if len(got) > 250+len("…") {
		t.Errorf("truncated string too long: %d bytes", len(got))
	}
}

func TestTruncateText_DoesNotSplitRunes(t *testing.T) {
	s := strings.Repeat("é", 100) // 2 bytes each
	got := TruncateText(s, 5)
	trimmed := strings.TrimSuffix(got, "…")
	for _, r := range trimmed {
		if r == 0xFFFD {
			t.Fatal("truncation split a multi-byte rune")
		}
	}
	if len(trimmed) > 5 {
		t.Errorf("kept %d bytes, want at most 5", len(trimmed))
	}
}

func TestParseConversationRecord(t *testing.T) {
	value := `{"name":"Fix the tests","fullConversationHeadersOnly":[{"bubbleId":"b1","type":1},{"bubbleId":"b2","type":2}],"totalLinesAdded":10,"totalLinesRemoved":2,"todos":[{"content":"write tests","status":"completed","id":"t1"}],"hasUnresolvedPendingActions":true}`

	rec, err := ParseConversationRecord("conv1", value)
	if err != nil {
		t.Fatalf("ParseConversationRecord() error = %v", err)
	}
	if rec.ComposerID != "conv1" {
		t.Errorf("ComposerID = %q, want conv1 (taken from key)", rec.ComposerID)
	}
	if len(rec.Headers) != 2 {
		t.Errorf("Headers = %d, want 2", len(rec.Headers))
	}
	if rec.Headers[0].Type != 1 || rec.Headers[1].Type != 2 {
		t.Error("header roles not preserved")
	}
	if !rec.HasPendingActions {
		t.Error("HasPendingActions should be true")
	}
	if rec.TotalLinesAdded != 10 || rec.TotalLinesRemoved != 2 {
		t.Error("line counters not preserved")
	}
}

func TestParseConversationRecord_Invalid(t *testing.T) {
	_, err := ParseConversationRecord("conv1", "not json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestParseMessageRecord(t *testing.T) {
	value := `{"type":2,"text":"done","relevantFiles":["/p/a.go"],"attachedFoldersNew":["/p"],"createdAt":"2026-08-24T10:00:00Z"}`

	rec, err := ParseMessageRecord("conv1", "b1", value)
	if err != nil {
		t.Fatalf("ParseMessageRecord() error = %v", err)
	}
	if rec.ConversationID != "conv1" || rec.BubbleID != "b1" {
		t.Error("ids from key not set")
	}
	if _, ok := rec.Timestamp(); !ok {
		t.Error("valid timestamp should parse")
	}
}

func TestMessageRecord_Timestamp_Invalid(t *testing.T) {
	for _, createdAt := range []string{"", "yesterday", "2026-13-45"} {
		rec := &MessageRecord{CreatedAt: createdAt}
		if _, ok := rec.Timestamp(); ok {
			t.Errorf("Timestamp() should fail for %q", createdAt)
		}
	}
}

func TestIsActiveTodo(t *testing.T) {
	if !IsActiveTodo("active") || !IsActiveTodo("in_progress") {
		t.Error("both vocabularies should count as active")
	}
	if IsActiveTodo("completed") || IsActiveTodo("pending") {
		t.Error("completed/pending are not active")
	}
}

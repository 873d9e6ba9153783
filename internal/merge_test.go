package internal

import "testing"

func mkSummary(id string, msAgo int64, known bool) *SessionSummary {
	s := &SessionSummary{ID: id}
	if known {
		s.LastActivityMsAgo = msAgo
		s.LastActivityKnown = true
	} else {
		s.SetLastActivityUnknown()
	}
	return s
}

func TestPerSourceLimit(t *testing.T) {
	tests := []struct {
		limit, want int
	}{
		{20, 10},
		{21, 11},
		{1, 1},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := perSourceLimit(tt.limit); got != tt.want {
			t.Errorf("perSourceLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestMergeAndRank_MostRecentFirst(t *testing.T) {
	editor := []*SessionSummary{
		mkSummary("e1", 5000, true),
		mkSummary("e2", 300000, true),
	}
	agent := []*SessionSummary{
		mkSummary("a1", 1000, true),
		mkSummary("a2", 60000, true),
	}

	merged := mergeAndRank(10, editor, agent)
	got := make([]string, len(merged))
	for i, s := range merged {
		got[i] = s.ID
	}
	want := []string{"a1", "e1", "a2", "e2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMergeAndRank_UnknownTimeSortsLast(t *testing.T) {
	merged := mergeAndRank(10,
		[]*SessionSummary{mkSummary("unknown", 0, false)},
		[]*SessionSummary{mkSummary("ancient", 1<<40, true)},
	)

	if merged[0].ID != "ancient" || merged[1].ID != "unknown" {
		t.Errorf("unknown time must rank after every known time, got [%s %s]",
			merged[0].ID, merged[1].ID)
	}
}

func TestMergeAndRank_TruncatesToLimit(t *testing.T) {
	var group []*SessionSummary
	for i := int64(0); i < 8; i++ {
		group = append(group, mkSummary("s", i*1000, true))
	}

	merged := mergeAndRank(3, group)
	if len(merged) != 3 {
		t.Errorf("len = %d, want 3", len(merged))
	}
}

func TestMergeAndRank_StableWithinEqualRecency(t *testing.T) {
	merged := mergeAndRank(10,
		[]*SessionSummary{mkSummary("first", 5000, true)},
		[]*SessionSummary{mkSummary("second", 5000, true)},
	)
	if merged[0].ID != "first" || merged[1].ID != "second" {
		t.Errorf("equal keys must keep input order, got [%s %s]", merged[0].ID, merged[1].ID)
	}
}

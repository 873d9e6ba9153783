package internal

import "sort"

// perSourceLimit implements the even split: each source may contribute
// at most half of the requested feed, so one source cannot starve the
// other. The policy is deliberate and preserved as-is.
func perSourceLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	return (limit + 1) / 2
}

// mergeAndRank concatenates already-tagged summaries, stable-sorts them
// ascending by milliseconds-ago (most recent first) with unknown
// activity times pinned to the end, and truncates to limit.
func mergeAndRank(limit int, groups ...[]*SessionSummary) []*SessionSummary {
	var merged []*SessionSummary
	for _, group := range groups {
		merged = append(merged, group...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].recencyKey() < merged[j].recencyKey()
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

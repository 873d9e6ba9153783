package internal

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExcerptLength is the truncation length in bytes for message
// excerpts when the caller does not specify one.
const DefaultExcerptLength = 250

// SummaryOptions selects which expensive resolution work runs while
// summarizing. Each field independently gates the fetches it needs;
// leaving everything false produces a summary from the conversation
// record alone with no message lookups at all.
type SummaryOptions struct {
	IncludeFirstMessage bool
	IncludeLastMessage  bool
	IncludeFiles        bool
	IncludeCodeBlocks   bool
	IncludeProjectName  bool
	IncludeTodos        bool
	IncludeTiming       bool

	// ExcerptLength is the truncation length in bytes for message
	// excerpts. Zero means DefaultExcerptLength.
	ExcerptLength int
}

// DefaultSummaryOptions enables everything with the default excerpt
// length.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		IncludeFirstMessage: true,
		IncludeLastMessage:  true,
		IncludeFiles:        true,
		IncludeCodeBlocks:   true,
		IncludeProjectName:  true,
		IncludeTodos:        true,
		IncludeTiming:       true,
		ExcerptLength:       DefaultExcerptLength,
	}
}

func (o SummaryOptions) excerptLength() int {
	if o.ExcerptLength <= 0 {
		return DefaultExcerptLength
	}
	return o.ExcerptLength
}

// Summarizer turns raw conversation records into normalized
// SessionSummary values, resolving messages through the bubble
// resolver only where the options ask for them.
type Summarizer struct {
	resolver *BubbleResolver
	now      func() time.Time
}

// NewSummarizer creates a Summarizer over the given resolver.
func NewSummarizer(resolver *BubbleResolver) *Summarizer {
	return &Summarizer{resolver: resolver, now: time.Now}
}

// Summarize produces a SessionSummary for one conversation record.
func (sm *Summarizer) Summarize(rec *ConversationRecord, opts SummaryOptions) (*SessionSummary, error) {
	summary := &SessionSummary{
		ID:                rec.ComposerID,
		Source:            SourceEditor,
		ProjectName:       "unknown",
		Title:             rec.Name,
		MessageCount:      len(rec.Headers),
		LinesAdded:        rec.TotalLinesAdded,
		LinesRemoved:      rec.TotalLinesRemoved,
		HasPendingActions: rec.HasPendingActions,
	}
	summary.SetLastActivityUnknown()

	if opts.IncludeTodos {
		summary.Todos = todoProgress(rec.Todos)
	}

	if opts.IncludeCodeBlocks {
		count := 0
		for _, blocks := range rec.CodeBlockData {
			count += len(blocks)
		}
		summary.CodeBlockCount = count
	}

	if opts.IncludeFirstMessage {
		summary.FirstMessage = sm.resolveExcerpt(rec, opts, false)
	}
	if opts.IncludeLastMessage {
		summary.LastMessage = sm.resolveExcerpt(rec, opts, true)
	}

	if opts.IncludeFiles || opts.IncludeProjectName {
		files, codeBlocks := sm.collectFiles(rec)
		if opts.IncludeFiles {
			summary.RelevantFiles = files
		}
		if opts.IncludeCodeBlocks {
			summary.CodeBlockCount += codeBlocks
		}
		if opts.IncludeProjectName {
			if name := InferProjectName(files); name != "" {
				summary.ProjectName = name
			}
		}
	}

	if opts.IncludeTiming {
		sm.resolveLastActivity(rec, summary)
	}

	// Title falls back to the first user message excerpt when the
	// record carries no explicit name.
	if summary.Title == "" && summary.FirstMessage != nil && *summary.FirstMessage != "" {
		summary.Title = TruncateText(*summary.FirstMessage, 60)
	}

	summary.HasCodeChanges = summary.CodeBlockCount > 0 ||
		summary.LinesAdded > 0 || summary.LinesRemoved > 0
	summary.Status = summary.DeriveStatus()

	return summary, nil
}

// SummarizeAll summarizes a batch, logging and skipping per-conversation
// failures so one bad record never interrupts the rest.
func (sm *Summarizer) SummarizeAll(records []*ConversationRecord, opts SummaryOptions) []*SessionSummary {
	summaries := make([]*SessionSummary, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		summary, err := sm.Summarize(rec, opts)
		if err != nil {
			LogWarn("Failed to summarize conversation %s: %v", rec.ComposerID, err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// resolveExcerpt walks the headers (from the end when last is true)
// and returns the text of the first message that resolves with content.
// Resolution failures are skipped, never fatal. A non-nil empty string
// is possible and distinct from nil ("not requested" / nothing found).
func (sm *Summarizer) resolveExcerpt(rec *ConversationRecord, opts SummaryOptions, last bool) *string {
	n := len(rec.Headers)
	for i := 0; i < n; i++ {
		idx := i
		if last {
			idx = n - 1 - i
		}
		header := rec.Headers[idx]

		msg, err := sm.resolver.GetMessage(rec.ComposerID, header.BubbleID)
		if err != nil {
			LogDebug("Failed to resolve message %s of %s: %v", header.BubbleID, rec.ComposerID, err)
			continue
		}
		if msg == nil || msg.Text == "" {
			continue
		}

		excerpt := TruncateText(msg.Text, opts.excerptLength())
		return &excerpt
	}
	return nil
}

// collectFiles resolves every header and gathers the file paths and
// suggested-code-block count referenced across the conversation.
// Individual fetch failures are skipped.
func (sm *Summarizer) collectFiles(rec *ConversationRecord) ([]string, int) {
	seen := make(map[string]bool)
	var files []string
	codeBlocks := 0

	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		files = append(files, p)
	}

	for _, header := range rec.Headers {
		msg, err := sm.resolver.GetMessage(rec.ComposerID, header.BubbleID)
		if err != nil {
			LogDebug("Failed to resolve message %s of %s: %v", header.BubbleID, rec.ComposerID, err)
			continue
		}
		if msg == nil {
			continue
		}
		for _, f := range msg.RelevantFiles {
			add(f)
		}
		for _, f := range msg.AttachedFolders {
			add(f)
		}
		for _, cb := range msg.CodeBlocks {
			add(cb.Path)
		}
		codeBlocks += len(msg.CodeBlocks)
	}

	return files, codeBlocks
}

// resolveLastActivity resolves the message named by the final header and
// takes its timestamp. Missing or unparseable timestamps leave the
// activity time unknown; wall-clock "now" is never substituted.
func (sm *Summarizer) resolveLastActivity(rec *ConversationRecord, summary *SessionSummary) {
	if len(rec.Headers) == 0 {
		return
	}
	final := rec.Headers[len(rec.Headers)-1]

	msg, err := sm.resolver.GetMessage(rec.ComposerID, final.BubbleID)
	if err != nil || msg == nil {
		if err != nil {
			LogDebug("Failed to resolve final message of %s: %v", rec.ComposerID, err)
		}
		return
	}

	if t, ok := msg.Timestamp(); ok {
		summary.SetLastActivity(t, sm.now())
	}
}

func todoProgress(todos []TodoItem) TodoProgress {
	progress := TodoProgress{Total: len(todos)}
	for _, todo := range todos {
		if todo.Status == TodoCompleted {
			progress.Completed++
		}
		if progress.FirstInProgress == "" && IsActiveTodo(todo.Status) {
			progress.FirstInProgress = todo.Content
		}
	}
	return progress
}

// genericSegments are path segments that never make a good project
// name: build artifacts, dependency dirs, generic source roots.
var genericSegments = map[string]bool{
	"src":          true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"test":         true,
	"tests":        true,
	"node_modules": true,
	"lib":          true,
	"bin":          true,
	"vendor":       true,
	"pkg":          true,
	"target":       true,
}

// InferProjectName derives a project name from the set of file paths a
// conversation references: take the longest common path prefix, then
// walk it from its deepest segment upward, skipping generic segments
// and anything containing a dot (a dot means a filename, not a folder).
// Returns "" when nothing qualifies.
//
// The heuristic is deliberately preserved as-is; downstream grouping
// depends on its exact output.
func InferProjectName(paths []string) string {
	prefix := commonPathPrefix(paths)
	if prefix == "" {
		return ""
	}

	segments := strings.Split(strings.Trim(prefix, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || seg == "." {
			continue
		}
		if genericSegments[strings.ToLower(seg)] {
			continue
		}
		if strings.Contains(seg, ".") {
			continue
		}
		return seg
	}
	return ""
}

// commonPathPrefix computes the longest common segment-wise prefix of
// the given paths. A single path is its own prefix.
func commonPathPrefix(paths []string) string {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		cleaned = append(cleaned, filepath.ToSlash(p))
	}
	if len(cleaned) == 0 {
		return ""
	}
	sort.Strings(cleaned)

	// After sorting, the common prefix of all paths is the common
	// prefix of the first and last.
	first := strings.Split(cleaned[0], "/")
	last := strings.Split(cleaned[len(cleaned)-1], "/")
	var common []string
	for i := 0; i < len(first) && i < len(last); i++ {
		if first[i] != last[i] {
			break
		}
		common = append(common, first[i])
	}
	return strings.Join(common, "/")
}

package internal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fallbackTitle is used when a session log has neither a summary record
// nor a usable first user message.
const fallbackTitle = "Untitled session"

// maxLogLine bounds a single JSONL line; tool results with large file
// contents can get big.
const maxLogLine = 10 * 1024 * 1024

// logEntry is one line of an append-only session log. Records form a
// parent-linked tree but are consumed linearly in file order.
type logEntry struct {
	Type       string      `json:"type"` // "user", "assistant", "summary"
	UUID       string      `json:"uuid"`
	ParentUUID string      `json:"parentUuid"`
	SessionID  string      `json:"sessionId"`
	Timestamp  string      `json:"timestamp"`
	CWD        string      `json:"cwd"`
	Summary    string      `json:"summary,omitempty"` // summary records only
	Message    *logMessage `json:"message,omitempty"`
}

// logMessage is the role-specific payload of a user/assistant record.
type logMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // free text or []contentBlock
}

// contentBlock is one typed block of an array-valued message content.
type contentBlock struct {
	Type      string          `json:"type"` // "text", "tool_use", "tool_result"
	Text      string          `json:"text,omitempty"`
	Name      string          `json:"name,omitempty"` // tool name on tool_use
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
}

// toolInput is the subset of tool_use input the feed cares about.
type toolInput struct {
	FilePath string     `json:"file_path,omitempty"`
	Todos    []TodoItem `json:"todos,omitempty"`
}

// codeTools are the tool names whose use means the session touched code.
var codeTools = map[string]bool{
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
}

// SessionFile is one discovered session log.
type SessionFile struct {
	Path      string
	SessionID string
	ModTime   time.Time
}

// SessionLogReader reads the directory tree of append-only JSONL
// session logs: one subdirectory per project, one .jsonl file per
// session. Files are re-parsed in full on every poll; they are bounded
// in size and there is no reliable change notification for a directory
// of many files.
type SessionLogReader struct {
	root string
}

// NewSessionLogReader creates a reader rooted at the sessions directory.
func NewSessionLogReader(root string) *SessionLogReader {
	return &SessionLogReader{root: root}
}

// Root returns the sessions root directory.
func (r *SessionLogReader) Root() string {
	return r.root
}

// ListProjects enumerates project subdirectories under the root.
func (r *SessionLogReader) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("read sessions root: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	return projects, nil
}

// ListSessionFiles enumerates the .jsonl files of one project, sorted
// by file modification time, newest first.
func (r *SessionLogReader) ListSessionFiles(project string) ([]SessionFile, error) {
	dir := filepath.Join(r.root, project)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}

	var files []SessionFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			LogDebug("Failed to stat %s: %v", entry.Name(), err)
			continue
		}
		files = append(files, SessionFile{
			Path:      filepath.Join(dir, entry.Name()),
			SessionID: strings.TrimSuffix(entry.Name(), ".jsonl"),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// RecentSummaries parses session files across all projects, newest
// first, until limit usable summaries are collected.
func (r *SessionLogReader) RecentSummaries(limit int, opts SummaryOptions) ([]*SessionSummary, error) {
	projects, err := r.ListProjects()
	if err != nil {
		return nil, err
	}

	var all []SessionFile
	for _, project := range projects {
		files, err := r.ListSessionFiles(project)
		if err != nil {
			LogWarn("Failed to list sessions of %s: %v", project, err)
			continue
		}
		all = append(all, files...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ModTime.After(all[j].ModTime)
	})

	var summaries []*SessionSummary
	for _, file := range all {
		if limit > 0 && len(summaries) >= limit {
			break
		}
		summary := r.ParseSessionFile(file.Path, opts)
		if summary == nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ParseSessionFile reads one session log and normalizes it into a
// SessionSummary. Returns nil when the file is unreadable or holds no
// usable message records; it never raises past its caller.
func (r *SessionLogReader) ParseSessionFile(path string, opts SummaryOptions) *SessionSummary {
	f, err := os.Open(path)
	if err != nil {
		LogWarn("Failed to open session log %s: %v", path, err)
		return nil
	}
	defer f.Close()

	var summaryText string
	var messages []logEntry

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// Tolerates a partial write at the tail of an
			// actively-appended file.
			continue
		}

		switch entry.Type {
		case "summary":
			if summaryText == "" {
				summaryText = entry.Summary
			}
		case "user", "assistant":
			messages = append(messages, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		LogWarn("Failed to read session log %s: %v", path, err)
		return nil
	}

	if len(messages) == 0 {
		return nil
	}

	summary := &SessionSummary{
		Source:       SourceAgent,
		ProjectName:  "unknown",
		MessageCount: len(messages),
	}
	summary.SetLastActivityUnknown()

	summary.ID = messages[0].SessionID
	if summary.ID == "" {
		summary.ID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}

	if cwd := messages[0].CWD; cwd != "" {
		summary.ProjectName = filepath.Base(filepath.ToSlash(cwd))
	}

	summary.Title = sessionTitle(summaryText, messages)

	if opts.IncludeFirstMessage {
		if text := firstText(messages[0]); text != "" {
			excerpt := TruncateText(text, opts.excerptLength())
			summary.FirstMessage = &excerpt
		}
	}
	if opts.IncludeLastMessage {
		if text := firstText(messages[len(messages)-1]); text != "" {
			excerpt := TruncateText(text, opts.excerptLength())
			summary.LastMessage = &excerpt
		}
	}

	if opts.IncludeTodos {
		summary.Todos = todoProgress(latestTodos(messages))
	}

	files, codeBlocks := extractFileActivity(messages)
	if opts.IncludeFiles {
		summary.RelevantFiles = files
	}
	if opts.IncludeCodeBlocks {
		summary.CodeBlockCount = codeBlocks
	}
	summary.HasCodeChanges = codeBlocks > 0

	if opts.IncludeTiming {
		last := messages[len(messages)-1]
		if last.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339, last.Timestamp); err == nil {
				summary.SetLastActivity(t, time.Now())
			}
		}
	}

	summary.HasPendingActions = inferPendingAction(messages[len(messages)-1])
	summary.Status = summary.DeriveStatus()

	return summary
}

// sessionTitle picks a title: the first summary record's text, else the
// first user message's first text block truncated to 60 chars, else a
// literal fallback.
func sessionTitle(summaryText string, messages []logEntry) string {
	if summaryText != "" {
		return summaryText
	}
	for _, entry := range messages {
		if entry.Type != "user" {
			continue
		}
		if text := firstText(entry); text != "" {
			return TruncateText(text, 60)
		}
		break
	}
	return fallbackTitle
}

// latestTodos scans messages from the end backward and returns the todo
// list of the first TodoWrite tool_use found. The most recent write is
// authoritative; earlier writes are stale and ignored.
func latestTodos(messages []logEntry) []TodoItem {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, block := range contentBlocks(messages[i]) {
			if block.Type != "tool_use" || block.Name != "TodoWrite" {
				continue
			}
			var input toolInput
			if err := json.Unmarshal(block.Input, &input); err != nil {
				continue
			}
			return input.Todos
		}
	}
	return nil
}

// extractFileActivity counts code-touching tool_use blocks
// (Write/Edit/MultiEdit) and collects the deduplicated file_path set of
// those plus Read.
func extractFileActivity(messages []logEntry) ([]string, int) {
	seen := make(map[string]bool)
	var files []string
	codeBlocks := 0

	for _, entry := range messages {
		for _, block := range contentBlocks(entry) {
			if block.Type != "tool_use" {
				continue
			}
			if codeTools[block.Name] {
				codeBlocks++
			}
			if !codeTools[block.Name] && block.Name != "Read" {
				continue
			}
			var input toolInput
			if err := json.Unmarshal(block.Input, &input); err != nil {
				continue
			}
			if input.FilePath != "" && !seen[input.FilePath] {
				seen[input.FilePath] = true
				files = append(files, input.FilePath)
			}
		}
	}
	return files, codeBlocks
}

// inferPendingAction decides whether the session is waiting on a tool
// round-trip or a human, from the single last message:
//
//   - assistant with a tool_use block: awaiting a tool result
//   - assistant text-only: finished with a reply, not pending
//   - user containing a tool_result: the assistant should respond next
//   - user without one (fresh human input): the assistant should respond
//   - anything else: not pending
func inferPendingAction(last logEntry) bool {
	if last.Message == nil {
		return false
	}

	blocks := contentBlocks(last)
	switch last.Message.Role {
	case "assistant":
		for _, block := range blocks {
			if block.Type == "tool_use" {
				return true
			}
		}
		return false
	case "user":
		return true
	}
	return false
}

// contentBlocks extracts typed blocks from a message payload, handling
// both free-text and array-of-blocks content shapes.
func contentBlocks(entry logEntry) []contentBlock {
	if entry.Message == nil {
		return nil
	}

	switch c := entry.Message.Content.(type) {
	case string:
		return []contentBlock{{Type: "text", Text: c}}
	case []interface{}:
		var blocks []contentBlock
		for _, item := range c {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			raw, err := json.Marshal(m)
			if err != nil {
				continue
			}
			var block contentBlock
			if err := json.Unmarshal(raw, &block); err != nil {
				continue
			}
			blocks = append(blocks, block)
		}
		return blocks
	}
	return nil
}

// firstText returns the first text-typed block of a message.
func firstText(entry logEntry) string {
	for _, block := range contentBlocks(entry) {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

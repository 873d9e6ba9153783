package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ConversationJSON builds a composerData value with n alternating
// user/assistant headers (bubble ids "b1".."bN") and the given extra
// top-level fields merged in.
func ConversationJSON(t *testing.T, n int, extra map[string]interface{}) string {
	t.Helper()
	headers := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		msgType := 1
		if i%2 == 0 {
			msgType = 2
		}
		headers = append(headers, map[string]interface{}{
			"bubbleId": fmt.Sprintf("b%d", i),
			"type":     msgType,
		})
	}

	data := map[string]interface{}{
		"_v":                          3,
		"fullConversationHeadersOnly": headers,
	}
	for k, v := range extra {
		data[k] = v
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal conversation fixture: %v", err)
	}
	return string(raw)
}

// MessageJSON builds a bubble value.
func MessageJSON(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Failed to marshal message fixture: %v", err)
	}
	return string(raw)
}

// WriteSessionLog writes a JSONL session log under root/project and
// returns its path. Each line is marshaled independently; string lines
// are written verbatim so tests can inject corrupt lines.
func WriteSessionLog(t *testing.T, root, project, name string, lines []interface{}) string {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}

	var b strings.Builder
	for _, line := range lines {
		switch v := line.(type) {
		case string:
			b.WriteString(v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Failed to marshal log line: %v", err)
			}
			b.Write(raw)
		}
		b.WriteString("\n")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to write session log: %v", err)
	}
	return path
}

// UserLine builds a user message record for a session log.
func UserLine(sessionID, cwd, text string, ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"type":      "user",
		"uuid":      fmt.Sprintf("u-%d", ts.UnixNano()),
		"sessionId": sessionID,
		"timestamp": ts.UTC().Format(time.RFC3339),
		"cwd":       cwd,
		"message": map[string]interface{}{
			"role":    "user",
			"content": []interface{}{map[string]interface{}{"type": "text", "text": text}},
		},
	}
}

// AssistantLine builds an assistant message record with the given
// content blocks.
func AssistantLine(sessionID, cwd string, ts time.Time, blocks ...map[string]interface{}) map[string]interface{} {
	content := make([]interface{}, 0, len(blocks))
	for _, b := range blocks {
		content = append(content, b)
	}
	return map[string]interface{}{
		"type":      "assistant",
		"uuid":      fmt.Sprintf("a-%d", ts.UnixNano()),
		"sessionId": sessionID,
		"timestamp": ts.UTC().Format(time.RFC3339),
		"cwd":       cwd,
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": content,
		},
	}
}

// TextBlock builds a text content block.
func TextBlock(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

// ToolUseBlock builds a tool_use content block.
func ToolUseBlock(name string, input map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "tool_use", "name": name, "input": input}
}

// ToolResultBlock builds a tool_result content block.
func ToolResultBlock(toolUseID, content string) map[string]interface{} {
	return map[string]interface{}{"type": "tool_result", "tool_use_id": toolUseID, "content": content}
}

// SummaryLine builds a summary record.
func SummaryLine(text string) map[string]interface{} {
	return map[string]interface{}{"type": "summary", "summary": text}
}

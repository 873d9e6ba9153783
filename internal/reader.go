package internal

import (
	"fmt"
	"sync"
)

// Config carries everything NewReader needs. Paths come from the
// caller; DetectStoragePaths supplies platform defaults.
type Config struct {
	// DatabasePath is the key-value SQLite store of editor
	// conversations.
	DatabasePath string

	// SessionsRoot is the directory tree of agent JSONL session logs.
	SessionsRoot string

	// ExcerptLength overrides the excerpt truncation length in bytes.
	// Zero means DefaultExcerptLength.
	ExcerptLength int

	// MinRecordSize overrides the minimum serialized conversation size.
	// Zero means DefaultMinRecordSize.
	MinRecordSize int

	// Substring optionally narrows editor conversations by project
	// path, file name or keyword.
	Substring string

	// DisableWatcher turns off the file change watcher (used by
	// one-shot commands that exit immediately).
	DisableWatcher bool
}

// FeedResult is what GetRecentSessions always returns: whatever could
// be obtained, plus a warning string per unreachable source. There is
// no error condition that aborts the call.
type FeedResult struct {
	Sessions []*SessionSummary
	Warnings []string
}

// Reader is the boundary the ingestion core exposes to the
// presentation shell. It owns both source adapters, their caches and
// the change watcher.
type Reader struct {
	cfg Config

	store      *ConversationStore
	resolver   *BubbleResolver
	summarizer *Summarizer
	storeErr   error // why the editor source is unavailable

	logs *SessionLogReader

	watcher     *FileWatcher
	unwatch     func()
	mu          sync.Mutex
	callbacks   map[int]func()
	nextCBID    int
	closed      bool
}

// NewReader connects both sources. A single unavailable source is
// remembered and reported as a per-query warning; only when the editor
// store fails AND no sessions root is configured does initialization
// itself fail.
func NewReader(cfg Config) (*Reader, error) {
	r := &Reader{
		cfg:       cfg,
		callbacks: make(map[int]func()),
	}

	if cfg.DatabasePath != "" {
		store, err := OpenConversationStore(cfg.DatabasePath)
		if err != nil {
			r.storeErr = err
			LogWarn("Editor store unavailable: %v", err)
		} else {
			r.store = store
			r.resolver = NewBubbleResolver(store)
			r.summarizer = NewSummarizer(r.resolver)
		}
	} else {
		r.storeErr = fmt.Errorf("no database path configured")
	}

	if cfg.SessionsRoot != "" {
		r.logs = NewSessionLogReader(cfg.SessionsRoot)
	}

	if r.store == nil && r.logs == nil {
		return nil, &ConnectionError{Path: cfg.DatabasePath, Err: fmt.Errorf("no usable source: %w", r.storeErr)}
	}

	// The JSONL source needs no watcher: it is re-parsed on every poll.
	if !cfg.DisableWatcher && cfg.DatabasePath != "" {
		r.watcher = NewFileWatcher(cfg.DatabasePath)
		r.unwatch = r.watcher.Subscribe(r.handleChange)
	}

	return r, nil
}

// GetRecentSessions collects up to limit/2 summaries from each source
// concurrently, merges them by recency and truncates to limit.
func (r *Reader) GetRecentSessions(limit int) FeedResult {
	half := perSourceLimit(limit)
	opts := DefaultSummaryOptions()
	opts.ExcerptLength = r.cfg.ExcerptLength

	var wg sync.WaitGroup
	var editor, agent []*SessionSummary
	var editorErr, agentErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		editor, editorErr = r.collectEditorSessions(half, opts)
	}()
	go func() {
		defer wg.Done()
		agent, agentErr = r.collectAgentSessions(half, opts)
	}()
	wg.Wait()

	result := FeedResult{
		Sessions: mergeAndRank(limit, editor, agent),
	}
	if editorErr != nil {
		result.Warnings = append(result.Warnings, (&SourceUnavailableError{Source: SourceEditor, Err: editorErr}).Error())
	}
	if agentErr != nil {
		result.Warnings = append(result.Warnings, (&SourceUnavailableError{Source: SourceAgent, Err: agentErr}).Error())
	}
	return result
}

func (r *Reader) collectEditorSessions(limit int, opts SummaryOptions) ([]*SessionSummary, error) {
	if r.store == nil {
		return nil, r.storeErr
	}

	ids, err := r.store.ListConversationIDs(ConversationFilter{
		Substring:     r.cfg.Substring,
		MinRecordSize: r.cfg.MinRecordSize,
	})
	if err != nil {
		return nil, err
	}

	var summaries []*SessionSummary
	for _, id := range ids {
		if limit > 0 && len(summaries) >= limit {
			break
		}
		rec, err := r.store.GetConversation(id)
		if err != nil {
			// A malformed record is skipped, not fatal for the batch.
			LogWarn("Skipping conversation %s: %v", id, err)
			continue
		}
		if rec == nil {
			continue
		}
		summary, err := r.summarizer.Summarize(rec, opts)
		if err != nil {
			LogWarn("Failed to summarize conversation %s: %v", id, err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *Reader) collectAgentSessions(limit int, opts SummaryOptions) ([]*SessionSummary, error) {
	if r.logs == nil {
		return nil, fmt.Errorf("no sessions root configured")
	}
	return r.logs.RecentSummaries(limit, opts)
}

// OnDataChanged registers a zero-argument callback fired at most once
// per detected key-value-store change event, after caches have been
// cleared. Returns an unregister function.
func (r *Reader) OnDataChanged(cb func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextCBID
	r.nextCBID++
	r.callbacks[id] = cb

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.callbacks, id)
	}
}

// handleChange runs once per debounced watcher event: caches are
// cleared wholesale first, then consumers are notified so their
// re-query sees fresh data.
func (r *Reader) handleChange() {
	r.ClearCache()

	r.mu.Lock()
	callbacks := make([]func(), 0, len(r.callbacks))
	for _, cb := range r.callbacks {
		callbacks = append(callbacks, cb)
	}
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// ClearCache drops every cached conversation and message.
func (r *Reader) ClearCache() {
	if r.store != nil {
		r.store.ClearCache()
	}
	if r.resolver != nil {
		r.resolver.ClearCache()
	}
}

// Close releases the store handle and stops the watcher. Idempotent.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if r.unwatch != nil {
		r.unwatch()
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

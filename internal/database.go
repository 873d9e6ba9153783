package internal

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// kvTable is the single key-value table the editor keeps its
// conversation blobs in.
const kvTable = "cursorDiskKV"

// OpenDatabase opens the key-value SQLite store in read-only mode and
// verifies it actually is one. Any failure here is a ConnectionError:
// the source stays down until the caller retries.
func OpenDatabase(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ConnectionError{Path: path, Err: err}
	}

	var tableExists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT name FROM sqlite_master
			WHERE type='table' AND name=?
		)
	`, kvTable).Scan(&tableExists)
	if err != nil {
		db.Close()
		return nil, &ConnectionError{Path: path, Err: err}
	}
	if !tableExists {
		db.Close()
		return nil, &ConnectionError{Path: path, Err: fmt.Errorf("missing %s table", kvTable)}
	}

	return db, nil
}

// queryValue fetches one value by exact key. The second return is false
// when the key is absent, which is not an error.
func queryValue(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow(
		"SELECT value FROM "+kvTable+" WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", key, err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// queryConversationKeys lists composerData keys newest-inserted first.
// rowid is a monotonic insertion counter, not a timestamp; the store has
// no reliable per-row creation time, so insertion order is the best
// available recency proxy at the listing stage.
//
// The substring filter is SQL pattern matching over the serialized
// value. It is cheap but imprecise and may both over- and under-match;
// it only narrows the candidate set.
func queryConversationKeys(db *sql.DB, minValueSize int, substring string) ([]string, error) {
	query := "SELECT key FROM " + kvTable +
		" WHERE key LIKE 'composerData:%' AND value IS NOT NULL AND length(value) >= ?"
	args := []interface{}{minValueSize}
	if substring != "" {
		query += " AND value LIKE '%' || ? || '%'"
		args = append(args, substring)
	}
	query += " ORDER BY rowid DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversation keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}

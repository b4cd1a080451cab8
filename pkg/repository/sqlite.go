package repository

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
)

// client implements Repository on SQLite.
type client struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the SQLite database at dbPath, applies the schema
// and seeds static data (voices, capabilities, default persona, agent
// templates).
func New(dbPath string) (Repository, error) {
	if dbPath == "" {
		return nil, goerr.Wrap(ErrEmptyPath, "failed to open database")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	c := &client{db: db, path: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := c.seed(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// ErrEmptyPath is returned when New is called without a database path.
var ErrEmptyPath = goerr.New("database path is empty")

func (c *client) Close() error {
	if err := c.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	return nil
}

func (c *client) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_conversation_memory (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		message_type TEXT NOT NULL,
		message_content TEXT NOT NULL,
		metadata TEXT,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memory_user_conv
		ON user_conversation_memory (user_id, conversation_id, timestamp);

	CREATE TABLE IF NOT EXISTS conversation_context (
		user_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		context_summary TEXT,
		key_topics TEXT,
		user_preferences TEXT,
		last_updated TEXT NOT NULL,
		PRIMARY KEY (user_id, conversation_id)
	);

	CREATE TABLE IF NOT EXISTS available_voices (
		voice_id TEXT PRIMARY KEY,
		voice_name TEXT NOT NULL,
		provider TEXT NOT NULL,
		language TEXT,
		gender TEXT,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS user_voice_preferences (
		user_id TEXT PRIMARY KEY,
		voice_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		speed REAL NOT NULL DEFAULT 1.0,
		auto_play INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ai_persona_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT,
		system_prompt TEXT NOT NULL,
		capabilities TEXT NOT NULL,
		personality_traits TEXT NOT NULL,
		communication_style TEXT NOT NULL,
		expertise_focus TEXT NOT NULL,
		learning_rate REAL NOT NULL DEFAULT 0.1,
		memory_retention_days INTEGER NOT NULL DEFAULT 30,
		custom_prompt TEXT,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ai_capabilities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT,
		category TEXT NOT NULL,
		is_enabled INTEGER NOT NULL DEFAULT 1,
		configuration TEXT
	);

	CREATE TABLE IF NOT EXISTS ai_action_log (
		action_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		parameters TEXT,
		status TEXT NOT NULL,
		result TEXT,
		error TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT,
		email TEXT,
		phone TEXT,
		company_id INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		usdot_number TEXT,
		phone TEXT,
		state TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		value REAL NOT NULL DEFAULT 0,
		stage TEXT NOT NULL,
		company_id INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_templates (
		type TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		capabilities TEXT NOT NULL,
		config TEXT
	);

	CREATE TABLE IF NOT EXISTS deployed_agents (
		agent_id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		config TEXT,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_execution_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id TEXT NOT NULL,
		task TEXT NOT NULL,
		result TEXT,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		executed_at TEXT NOT NULL
	);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return goerr.Wrap(err, "failed to initialize schema")
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text. RFC3339Nano trims trailing
// fractional zeros, so lexicographic comparison would not be chronological
// within a second; the padded layout keeps ORDER BY and range filters correct.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse timestamp", goerr.V("value", s))
	}
	return t, nil
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal JSON column")
	}
	return string(raw), nil
}

func decodeJSON(s sql.NullString, dst any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s.String), dst); err != nil {
		return goerr.Wrap(err, "failed to unmarshal JSON column")
	}
	return nil
}

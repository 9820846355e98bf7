package db

// migrationsSQL is the full schema, applied statement by statement by InitDB.
// Statements are idempotent so InitDB can run on every start.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS persons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	middle_name TEXT,
	last_name TEXT NOT NULL,
	suffix TEXT,
	aliases TEXT
);

CREATE INDEX IF NOT EXISTS idx_persons_last_name ON persons(last_name);

CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT,
	type TEXT,
	ordinal INTEGER,
	term_id INTEGER,
	source TEXT NOT NULL DEFAULT 'manual',
	needs_review INTEGER NOT NULL DEFAULT 0,
	review_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);

CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	number TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	session_id INTEGER REFERENCES sessions(id),
	status TEXT NOT NULL DEFAULT 'active',
	source_type TEXT NOT NULL DEFAULT 'manual',
	moved_by TEXT,
	seconded_by TEXT,
	processed INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS document_authors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	person_id INTEGER NOT NULL REFERENCES persons(id),
	author_type TEXT NOT NULL DEFAULT 'author',
	UNIQUE(document_id, person_id)
);

CREATE INDEX IF NOT EXISTS idx_document_authors_document ON document_authors(document_id);

CREATE TABLE IF NOT EXISTS document_sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	source_type TEXT NOT NULL,
	title TEXT,
	moved_by TEXT,
	seconded_by TEXT,
	captured_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(document_id, source_type)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	actor TEXT NOT NULL,
	action TEXT NOT NULL,
	document_id INTEGER,
	detail TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

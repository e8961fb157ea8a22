package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	read       INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	critical   INTEGER NOT NULL DEFAULT 0 CHECK(critical IN (0, 1)),
	created_at DATETIME NOT NULL,
	read_at    DATETIME,
	rdq_id     INTEGER,
	rdq_number TEXT,
	rdq_title  TEXT,
	rdq_status TEXT
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notification_preferences (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL,
	notification_type TEXT NOT NULL,
	enabled           INTEGER NOT NULL DEFAULT 1 CHECK(enabled IN (0, 1)),
	email_enabled     INTEGER NOT NULL DEFAULT 0 CHECK(email_enabled IN (0, 1)),
	UNIQUE(user_id, notification_type)
);

CREATE INDEX IF NOT EXISTS idx_notifications_rdq ON notifications(rdq_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

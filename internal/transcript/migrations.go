package transcript

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create turns",
		SQL: `
			CREATE TABLE turns (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				conversation_id  TEXT NOT NULL,
				sender_id        TEXT NOT NULL,
				sender_name      TEXT NOT NULL DEFAULT '',
				message          TEXT NOT NULL,
				reply            TEXT NOT NULL,
				duration_ms      INTEGER NOT NULL DEFAULT 0,
				created_at       TEXT NOT NULL
			);

			CREATE INDEX idx_turns_conversation ON turns (conversation_id, id);
			CREATE INDEX idx_turns_sender ON turns (sender_id, id);
		`,
	},
}

package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    total INTEGER NOT NULL,
    equal_share TEXT NOT NULL,
    locale TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS contributions (
    settlement_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount INTEGER NOT NULL,
    PRIMARY KEY (settlement_id, position),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transfers (
    settlement_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    from_name TEXT NOT NULL,
    to_name TEXT NOT NULL,
    amount INTEGER NOT NULL,
    PRIMARY KEY (settlement_id, position),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contributions_settlement_id ON contributions(settlement_id);
CREATE INDEX IF NOT EXISTS idx_transfers_settlement_id ON transfers(settlement_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer' CHECK (role IN ('admin', 'staff', 'viewer')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory (
    id         TEXT PRIMARY KEY,
    item_name  TEXT NOT NULL,
    requested  INTEGER NOT NULL CHECK (requested >= 0),
    on_hand    INTEGER NOT NULL DEFAULT 0 CHECK (on_hand >= 0),
    received   INTEGER NOT NULL DEFAULT 0 CHECK (received >= 0),
    missing    INTEGER NOT NULL DEFAULT 0 CHECK (missing >= 0),
    verified   INTEGER NOT NULL DEFAULT 0,
    returned   INTEGER NOT NULL DEFAULT 0,
    custodian  TEXT NOT NULL DEFAULT '',
    location   TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    expendable INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inventory_created ON inventory(created_at);

CREATE TABLE IF NOT EXISTS requests (
    id         TEXT PRIMARY KEY,
    item_name  TEXT NOT NULL,
    requested  INTEGER NOT NULL CHECK (requested > 0),
    custodian  TEXT NOT NULL,
    location   TEXT NOT NULL,
    email      TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    expendable INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS surveys (
    id                TEXT PRIMARY KEY,
    user_type         TEXT NOT NULL CHECK (user_type IN ('event-senior-staff', 'event-participant', 'requestor-only')),
    would_use_again   TEXT NOT NULL CHECK (would_use_again IN ('yes', 'no', 'maybe')),
    prefer_over_excel TEXT NOT NULL CHECK (prefer_over_excel IN ('yes', 'no', 'depends')),
    feedback          TEXT NOT NULL DEFAULT '',
    created_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

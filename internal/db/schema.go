package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Donation and claim references (donations.donor_id, claims.donation_id,
// claims.receiver_id) are not foreign keys: a dangling
// reference is read back as a missing document.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY,
    subject    TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    role       TEXT NOT NULL CHECK (role IN ('donor', 'receiver')),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS donors (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    latitude   REAL,
    longitude  REAL,
    verified   INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS donor_members (
    donor_id INTEGER NOT NULL REFERENCES donors(id),
    user_id  INTEGER NOT NULL REFERENCES users(id),
    is_owner INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (donor_id, user_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_donor_members_owner
    ON donor_members(donor_id) WHERE is_owner = 1;
CREATE INDEX IF NOT EXISTS idx_donor_members_user ON donor_members(user_id);

CREATE TABLE IF NOT EXISTS charities (
    id                  INTEGER PRIMARY KEY,
    name                TEXT NOT NULL,
    email               TEXT NOT NULL DEFAULT '',
    phone               TEXT NOT NULL DEFAULT '',
    address             TEXT NOT NULL DEFAULT '',
    registration_number TEXT NOT NULL DEFAULT '',
    created_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS charity_members (
    charity_id INTEGER NOT NULL REFERENCES charities(id),
    user_id    INTEGER NOT NULL REFERENCES users(id),
    is_owner   INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (charity_id, user_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_charity_members_owner
    ON charity_members(charity_id) WHERE is_owner = 1;

CREATE TABLE IF NOT EXISTS receivers (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL UNIQUE REFERENCES users(id),
    kind       TEXT NOT NULL CHECK (kind IN ('individual', 'charity')),
    charity_id INTEGER REFERENCES charities(id),
    allergies  TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS donations (
    id                  INTEGER PRIMARY KEY,
    title               TEXT NOT NULL,
    description         TEXT NOT NULL DEFAULT '',
    category            TEXT NOT NULL DEFAULT '',
    quantity            INTEGER NOT NULL CHECK (quantity >= 0),
    pickup_window_start TEXT,
    pickup_window_end   TEXT,
    donor_id            INTEGER NOT NULL,
    status              TEXT NOT NULL CHECK (status IN ('AVAILABLE', 'CLAIMED', 'PICKEDUP', 'EXPIRED')),
    created_at          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id);
CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);

CREATE TABLE IF NOT EXISTS donation_images (
    donation_id INTEGER NOT NULL,
    position    INTEGER NOT NULL,
    blob_key    TEXT NOT NULL,
    PRIMARY KEY (donation_id, position)
);

CREATE TABLE IF NOT EXISTS claims (
    id          INTEGER PRIMARY KEY,
    donation_id INTEGER NOT NULL,
    receiver_id INTEGER NOT NULL,
    amount      INTEGER NOT NULL CHECK (amount > 0),
    status      TEXT NOT NULL CHECK (status IN ('PENDING', 'PICKEDUP', 'TIMESUP')),
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claims_donation ON claims(donation_id);
CREATE INDEX IF NOT EXISTS idx_claims_receiver ON claims(receiver_id);

CREATE TABLE IF NOT EXISTS operators (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS blobs (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
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

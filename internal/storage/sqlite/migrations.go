package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// family_members has no foreign key to families: joining an unknown family is accepted.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    family_id TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS families (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS family_members (
    family_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (family_id, user_id)
);

CREATE TABLE IF NOT EXISTS user_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    category TEXT NOT NULL,
    product_name TEXT NOT NULL,
    product_key TEXT NOT NULL,
    package_size TEXT NOT NULL,
    store TEXT NOT NULL,
    price REAL NOT NULL,
    date TEXT NOT NULL,
    note TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    global_entry_id TEXT
);

CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    category TEXT NOT NULL,
    product_name TEXT NOT NULL,
    product_key TEXT NOT NULL,
    package_size TEXT NOT NULL,
    store TEXT NOT NULL,
    price REAL NOT NULL,
    date TEXT NOT NULL,
    note TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    user_entry_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_entries_user_date ON user_entries(user_id, date);
CREATE INDEX IF NOT EXISTS idx_user_entries_user_category ON user_entries(user_id, category);
CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category);
CREATE INDEX IF NOT EXISTS idx_entries_product_key ON entries(product_key);
CREATE INDEX IF NOT EXISTS idx_family_members_family_id ON family_members(family_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

package database

import (
	"context"
	"fmt"
	"strings"
)

// Identifiers are VARCHAR so the same DDL works on MySQL, which cannot
// index unbounded TEXT keys.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(64) PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	name VARCHAR(255),
	password_hash VARCHAR(255) NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS password_resets (
	id VARCHAR(64) PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	email VARCHAR(255) NOT NULL,
	token_hash VARCHAR(255) NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	consumed_at TIMESTAMP NULL,
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS email_logs (
	id VARCHAR(64) PRIMARY KEY,
	user_id VARCHAR(64),
	recipient VARCHAR(255) NOT NULL,
	email_type VARCHAR(32) NOT NULL,
	provider VARCHAR(32) NOT NULL,
	provider_message_id VARCHAR(255),
	status VARCHAR(16) NOT NULL,
	error TEXT,
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS history (
	id VARCHAR(64) PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL,
	calculator VARCHAR(16) NOT NULL,
	label VARCHAR(255),
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS clients (
	id VARCHAR(64) PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(64),
	created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS tasks (
	id VARCHAR(64) PRIMARY KEY,
	client_id VARCHAR(64) NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	created_at TIMESTAMP NOT NULL
)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are only created on
// the other dialects.
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_password_resets_user ON password_resets(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_password_resets_token ON password_resets(token_hash)",
	"CREATE INDEX IF NOT EXISTS idx_email_logs_created ON email_logs(created_at)",
	"CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id, calculator, created_at)",
	"CREATE INDEX IF NOT EXISTS idx_clients_user ON clients(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_client ON tasks(client_id)",
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := tables
	if d.driver != MySQL {
		stmts = append(stmts[:len(stmts):len(stmts)], indexes...)
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema (%s): %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], " (")
	}
	return s
}

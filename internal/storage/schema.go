// Package storage handles all database operations for the DataCanvas console API.
package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		// projects table: top-level tenancy scope
		`CREATE TABLE IF NOT EXISTS projects (
			project_id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// devices table: registered devices per project
		`CREATE TABLE IF NOT EXISTS devices (
			device_id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			device_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_devices_project ON devices(project_id)`,

		// sessions table: console bearer sessions, token stored as SHA-256 hash.
		// A NULL project_id grants access to every project.
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id INTEGER PRIMARY KEY AUTOINCREMENT,
			token_hash TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			project_id INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_hash ON sessions(token_hash)`,

		// access_keys table: scoped API credentials per project
		`CREATE TABLE IF NOT EXISTS access_keys (
			access_key_id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			access_key_name TEXT NOT NULL,
			client_key TEXT NOT NULL UNIQUE,
			secret_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expiration_date TIMESTAMP,
			last_use_time TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_access_keys_project ON access_keys(project_id)`,

		// access_key_devices table: many-to-many device bindings
		`CREATE TABLE IF NOT EXISTS access_key_devices (
			access_key_id INTEGER NOT NULL,
			device_id INTEGER NOT NULL,
			PRIMARY KEY (access_key_id, device_id),
			FOREIGN KEY (access_key_id) REFERENCES access_keys(access_key_id) ON DELETE CASCADE,
			FOREIGN KEY (device_id) REFERENCES devices(device_id) ON DELETE CASCADE
		)`,

		// access_key_domains table: allowed domain origins per key
		`CREATE TABLE IF NOT EXISTS access_key_domains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			access_key_id INTEGER NOT NULL,
			domain_name TEXT NOT NULL,
			UNIQUE (access_key_id, domain_name),
			FOREIGN KEY (access_key_id) REFERENCES access_keys(access_key_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_access_key_domains_key ON access_key_domains(access_key_id)`,

		// shares table: public dashboard links
		`CREATE TABLE IF NOT EXISTS shares (
			share_id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			share_token TEXT NOT NULL UNIQUE,
			share_name TEXT NOT NULL,
			allowed_widget_ids TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_shares_token ON shares(share_token)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

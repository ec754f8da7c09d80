package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Timestamps are unix milliseconds.
const (
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);`

	createPrompts = `CREATE TABLE IF NOT EXISTS prompts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    requirements TEXT NOT NULL DEFAULT '',
    success_criteria TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);`

	createTemplates = `CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    content TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('requirements', 'success-criteria')),
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);`
)

// Index DDL.
const (
	idxPromptsProjectID = `CREATE INDEX IF NOT EXISTS idx_prompts_project_id ON prompts(project_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProjects,
	createPrompts,
	createTemplates,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPromptsProjectID,
}

// initSchema creates any missing tables and indexes. It is safe to run
// against an existing database.
func initSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// defaultTemplate describes a template seeded on attach.
type defaultTemplate struct {
	id      string
	name    string
	content string
	typ     types.TemplateType
}

// defaultTemplates are inserted on every attach with INSERT OR IGNORE keyed
// by id, so seeding never duplicates a row or overwrites a user's edits.
var defaultTemplates = []defaultTemplate{
	{
		id:      types.DefaultTemplateReq1,
		name:    "Next.js/Tailwind Stack",
		content: "Use nextJS/tailwind with permanent local storage",
		typ:     types.TemplateRequirements,
	},
	{
		id:      types.DefaultTemplateReq2,
		name:    "SQLite Database",
		content: "Store all data in a SQLite database using better-sqlite3",
		typ:     types.TemplateRequirements,
	},
	{
		id:      types.DefaultTemplateReq3,
		name:    "Export to JSON",
		content: "Include an export to JSON button for data portability",
		typ:     types.TemplateRequirements,
	},
	{
		id:      types.DefaultTemplateSuccess,
		name:    "Standard Completion",
		content: "All requirements implemented, no linter errors, documentation updated, Output <promise> COMPLETE </promise> When done.",
		typ:     types.TemplateSuccessCriteria,
	},
}

// seedDefaultTemplates inserts any missing default templates.
func seedDefaultTemplates(db *sql.DB, now types.Timestamp) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, dt := range defaultTemplates {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO templates (id, name, content, type, is_default, created_at)
             VALUES (?, ?, ?, ?, 1, ?)`,
			dt.id, dt.name, dt.content, string(dt.typ), now.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", dt.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// GetState returns all projects and all templates.
func (b *Backend) GetState(ctx context.Context) (*types.State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	projects, err := b.loadProjects(ctx, b.db)
	if err != nil {
		return nil, err
	}
	templates, err := queryMany(ctx, b.db, selectTemplates, nil, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	return &types.State{Projects: projects, Templates: templates}, nil
}

// ExportAllData snapshots projects, prompts, and user templates. Default
// templates are left out.
func (b *Backend) ExportAllData(ctx context.Context) (*types.Export, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	projects, err := b.loadProjects(ctx, b.db)
	if err != nil {
		return nil, err
	}
	templates, err := queryMany(ctx, b.db,
		`SELECT id, name, content, type, is_default, created_at FROM templates
WHERE is_default = 0 ORDER BY created_at DESC, rowid DESC`,
		nil, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	return &types.Export{
		ExportedAt: types.FormatExportTime(b.clock()),
		Projects:   projects,
		Templates:  templates,
	}, nil
}

// ImportData adds the payload under fresh IDs in one transaction. The whole
// payload is validated before anything is written, so a bad entry leaves
// the store unchanged.
//
// Projects and templates are inserted in reverse payload order with a
// shared timestamp; the rowid tie-break then lists them in payload order,
// so an export re-imported into an empty store exports identically.
func (b *Backend) ImportData(ctx context.Context, data types.ImportData) (*types.ImportResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	now := b.now().UnixMilli()
	result, err := withTx(ctx, b.db, func(tx *sql.Tx) (*types.ImportResult, error) {
		res := &types.ImportResult{}

		for i := len(data.Projects) - 1; i >= 0; i-- {
			p := data.Projects[i]
			projectID := newUUID()
			_, err := tx.ExecContext(ctx,
				`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
				projectID, strings.TrimSpace(p.Name), now, now,
			)
			if err != nil {
				return nil, fmt.Errorf("insert project: %w", err)
			}
			res.Projects++

			for j := len(p.Prompts) - 1; j >= 0; j-- {
				pr := p.Prompts[j]
				_, err := tx.ExecContext(ctx,
					`INSERT INTO prompts (id, project_id, name, requirements, success_criteria, created_at, updated_at)
                     VALUES (?, ?, ?, ?, ?, ?, ?)`,
					newUUID(), projectID, strings.TrimSpace(pr.Name), pr.Requirements, pr.SuccessCriteria, now, now,
				)
				if err != nil {
					return nil, fmt.Errorf("insert prompt: %w", err)
				}
				res.Prompts++
			}
		}

		for i := len(data.Templates) - 1; i >= 0; i-- {
			t := data.Templates[i]
			_, err := tx.ExecContext(ctx, insertTemplate,
				newUUID(), strings.TrimSpace(t.Name), t.Content, string(t.Type), now,
			)
			if err != nil {
				return nil, fmt.Errorf("insert template: %w", err)
			}
			res.Templates++
		}
		return res, nil
	})
	if err != nil {
		return nil, fmt.Errorf("import data: %w", err)
	}
	return result, nil
}

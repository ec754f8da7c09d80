package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// Defaults first, then newest first.
const selectTemplates = `SELECT id, name, content, type, is_default, created_at FROM templates
ORDER BY is_default DESC, created_at DESC, rowid DESC`

const insertTemplate = `INSERT INTO templates (id, name, content, type, is_default, created_at)
VALUES (?, ?, ?, ?, 0, ?)`

// GetAllTemplates returns every template, default ones first.
func (b *Backend) GetAllTemplates(ctx context.Context) ([]types.Template, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	templates, err := queryMany(ctx, b.db, selectTemplates, nil, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	return templates, nil
}

// CreateTemplate inserts a user template. User templates are never default.
func (b *Backend) CreateTemplate(ctx context.Context, name, content string, typ types.TemplateType) (*types.Template, error) {
	req := types.CreateTemplateRequest{Name: name, Content: content, Type: typ}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	now := b.now()
	t := &types.Template{
		ID:        newUUID(),
		Name:      strings.TrimSpace(name),
		Content:   content,
		Type:      typ,
		CreatedAt: now,
	}
	_, err := b.db.ExecContext(ctx, insertTemplate, t.ID, t.Name, t.Content, string(t.Type), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

// UpdateTemplate replaces a template's name and content. Type and the
// default flag do not change.
func (b *Backend) UpdateTemplate(ctx context.Context, id, name, content string) error {
	if err := (types.UpdateTemplateRequest{ID: id, Name: name, Content: content}).Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	err := execExpectOne(ctx, b.db,
		`UPDATE templates SET name = ?, content = ? WHERE id = ?`,
		strings.TrimSpace(name), content, id,
	)
	if err != nil {
		return fmt.Errorf("update template %s: %w", id, err)
	}
	return nil
}

// DeleteTemplate deletes a user template. For a default template it returns
// false and changes nothing.
func (b *Backend) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	if err := (types.DeleteTemplateRequest{ID: id}).Validate(); err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return false, err
	}

	deleted, err := withTx(ctx, b.db, func(tx *sql.Tx) (bool, error) {
		var isDefault bool
		err := tx.QueryRowContext(ctx, `SELECT is_default FROM templates WHERE id = ?`, id).Scan(&isDefault)
		if err != nil {
			return false, mapNotFound(err)
		}
		if isDefault {
			return false, nil
		}
		if err := execExpectOne(ctx, tx, `DELETE FROM templates WHERE id = ? AND is_default = 0`, id); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	return deleted, nil
}

func scanTemplate(s scanner) (types.Template, error) {
	var (
		t         types.Template
		typ       string
		createdAt int64
	)
	if err := s.Scan(&t.ID, &t.Name, &t.Content, &typ, &t.IsDefault, &createdAt); err != nil {
		return t, err
	}
	t.Type = types.TemplateType(typ)
	t.CreatedAt = types.TimestampFromMillis(createdAt)
	return t, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

const selectPromptByID = `SELECT id, project_id, name, requirements, success_criteria, created_at, updated_at
FROM prompts WHERE id = ?`

// GetPrompt returns a single prompt by ID.
func (b *Backend) GetPrompt(ctx context.Context, id string) (*types.Prompt, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	p, err := queryOne(ctx, b.db, selectPromptByID, []any{id}, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("get prompt %s: %w", id, err)
	}
	return &p, nil
}

// CreatePrompt inserts an empty prompt under projectID and touches the
// project.
func (b *Backend) CreatePrompt(ctx context.Context, projectID, name string) (*types.Prompt, error) {
	if err := (types.CreatePromptRequest{ProjectID: projectID, Name: name}).Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	now := b.now()
	p := &types.Prompt{
		ID:        newUUID(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := withTx(ctx, b.db, func(tx *sql.Tx) (struct{}, error) {
		if err := execExpectOne(ctx, tx, touchProject, now.UnixMilli(), projectID); err != nil {
			return struct{}{}, err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prompts (id, project_id, name, requirements, success_criteria, created_at, updated_at)
             VALUES (?, ?, ?, '', '', ?, ?)`,
			p.ID, p.ProjectID, p.Name, now.UnixMilli(), now.UnixMilli(),
		)
		return struct{}{}, err
	})
	if err != nil {
		return nil, fmt.Errorf("create prompt in project %s: %w", projectID, err)
	}
	return p, nil
}

// UpdatePrompt writes one field of a prompt and touches the prompt and its
// project. The column is derived from field, never from caller text.
func (b *Backend) UpdatePrompt(ctx context.Context, id, projectID string, field types.PromptField, value string) error {
	req := types.UpdatePromptRequest{ID: id, ProjectID: projectID, Field: field, Value: value}
	if err := req.Validate(); err != nil {
		return err
	}
	column, err := field.Column()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if field == types.FieldName {
		value = strings.TrimSpace(value)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	now := b.now().UnixMilli()
	_, err = withTx(ctx, b.db, func(tx *sql.Tx) (struct{}, error) {
		err := execExpectOne(ctx, tx,
			`UPDATE prompts SET `+column+` = ?, updated_at = ? WHERE id = ? AND project_id = ?`,
			value, now, id, projectID,
		)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, execExpectOne(ctx, tx, touchProject, now, projectID)
	})
	if err != nil {
		return fmt.Errorf("update prompt %s: %w", id, err)
	}
	return nil
}

// DeletePrompt removes a prompt from its project and touches the project.
func (b *Backend) DeletePrompt(ctx context.Context, id, projectID string) error {
	if err := (types.DeletePromptRequest{ID: id, ProjectID: projectID}).Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	now := b.now().UnixMilli()
	_, err := withTx(ctx, b.db, func(tx *sql.Tx) (struct{}, error) {
		err := execExpectOne(ctx, tx, `DELETE FROM prompts WHERE id = ? AND project_id = ?`, id, projectID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, execExpectOne(ctx, tx, touchProject, now, projectID)
	})
	if err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	return nil
}

func scanPrompt(s scanner) (types.Prompt, error) {
	var (
		p                    types.Prompt
		createdAt, updatedAt int64
	)
	err := s.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Requirements, &p.SuccessCriteria, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = types.TimestampFromMillis(createdAt)
	p.UpdatedAt = types.TimestampFromMillis(updatedAt)
	return p, nil
}

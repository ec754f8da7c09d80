package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// Ties on updated_at fall back to insertion order, newest first.
const (
	selectProjects = `SELECT id, name, created_at, updated_at FROM projects
ORDER BY updated_at DESC, rowid DESC`

	selectAllPrompts = `SELECT id, project_id, name, requirements, success_criteria, created_at, updated_at
FROM prompts ORDER BY updated_at DESC, rowid DESC`

	touchProject = `UPDATE projects SET updated_at = ? WHERE id = ?`
)

// CreateProject inserts a project with no prompts.
func (b *Backend) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	if err := (types.CreateProjectRequest{Name: name}).Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	now := b.now()
	p := &types.Project{
		ID:        newUUID(),
		Name:      strings.TrimSpace(name),
		Prompts:   []types.Prompt{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// UpdateProject renames a project and touches its updated_at.
func (b *Backend) UpdateProject(ctx context.Context, id, name string) error {
	if err := (types.UpdateProjectRequest{ID: id, Name: name}).Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	err := execExpectOne(ctx, b.db,
		`UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(name), b.now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

// DeleteProject removes a project and its prompts in one transaction.
func (b *Backend) DeleteProject(ctx context.Context, id string) error {
	if err := (types.DeleteProjectRequest{ID: id}).Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	_, err := withTx(ctx, b.db, func(tx *sql.Tx) (struct{}, error) {
		// The cascade would cover this; the explicit delete keeps the
		// behavior independent of the foreign_keys pragma.
		if _, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE project_id = ?`, id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, execExpectOne(ctx, tx, `DELETE FROM projects WHERE id = ?`, id)
	})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// GetAllProjects returns every project with its prompts.
func (b *Backend) GetAllProjects(ctx context.Context) ([]types.Project, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.loadProjects(ctx, b.db)
}

// loadProjects reads projects and prompts with two queries. The first
// result set is fully drained before the second query runs, which matters
// when the pool holds a single connection.
func (b *Backend) loadProjects(ctx context.Context, q querier) ([]types.Project, error) {
	projects, err := queryMany(ctx, q, selectProjects, nil, scanProject)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	prompts, err := queryMany(ctx, q, selectAllPrompts, nil, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	index := make(map[string]int, len(projects))
	for i := range projects {
		index[projects[i].ID] = i
	}
	for _, pr := range prompts {
		if i, ok := index[pr.ProjectID]; ok {
			projects[i].Prompts = append(projects[i].Prompts, pr)
		}
	}
	return projects, nil
}

func scanProject(s scanner) (types.Project, error) {
	var (
		p                    types.Project
		createdAt, updatedAt int64
	)
	if err := s.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
		return p, err
	}
	p.CreatedAt = types.TimestampFromMillis(createdAt)
	p.UpdatedAt = types.TimestampFromMillis(updatedAt)
	p.Prompts = []types.Prompt{}
	return p, nil
}

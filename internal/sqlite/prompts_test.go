package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func TestCreatePrompt(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)

	pr, err := b.CreatePrompt(ctx, p.ID, "Login page")
	require.NoError(t, err)
	assert.Equal(t, p.ID, pr.ProjectID)
	assert.Equal(t, "Login page", pr.Name)
	assert.Empty(t, pr.Requirements)
	assert.Empty(t, pr.SuccessCriteria)

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, pr.UpdatedAt, projects[0].UpdatedAt, "creating a prompt touches its project")
	require.Len(t, projects[0].Prompts, 1)
	assert.Equal(t, *pr, projects[0].Prompts[0])

	_, err = b.CreatePrompt(ctx, "missing", "orphan")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.CreatePrompt(ctx, p.ID, " ")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestUpdatePrompt_Fields(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)
	pr, err := b.CreatePrompt(ctx, p.ID, "Prompt")
	require.NoError(t, err)

	tests := []struct {
		field types.PromptField
		value string
		check func(t *testing.T, got *types.Prompt)
	}{
		{types.FieldRequirements, "Do X", func(t *testing.T, got *types.Prompt) {
			assert.Equal(t, "Do X", got.Requirements)
		}},
		{types.FieldSuccessCriteria, "X works", func(t *testing.T, got *types.Prompt) {
			assert.Equal(t, "X works", got.SuccessCriteria)
		}},
		{types.FieldName, "Renamed", func(t *testing.T, got *types.Prompt) {
			assert.Equal(t, "Renamed", got.Name)
		}},
		{types.FieldRequirements, "", func(t *testing.T, got *types.Prompt) {
			assert.Empty(t, got.Requirements)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			before, err := b.GetPrompt(ctx, pr.ID)
			require.NoError(t, err)

			require.NoError(t, b.UpdatePrompt(ctx, pr.ID, p.ID, tt.field, tt.value))

			got, err := b.GetPrompt(ctx, pr.ID)
			require.NoError(t, err)
			tt.check(t, got)
			assert.True(t, got.UpdatedAt.After(before.UpdatedAt.Time))

			projects, err := b.GetAllProjects(ctx)
			require.NoError(t, err)
			assert.Equal(t, got.UpdatedAt, projects[0].UpdatedAt, "project touched with the prompt")
		})
	}
}

func TestUpdatePrompt_Errors(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)
	other, err := b.CreateProject(ctx, "Other")
	require.NoError(t, err)
	pr, err := b.CreatePrompt(ctx, p.ID, "Prompt")
	require.NoError(t, err)

	tests := []struct {
		name      string
		id        string
		projectID string
		field     types.PromptField
		value     string
		want      error
	}{
		{"unknown prompt", "missing", p.ID, types.FieldRequirements, "x", types.ErrNotFound},
		{"wrong project", pr.ID, other.ID, types.FieldRequirements, "x", types.ErrNotFound},
		{"column injection", pr.ID, p.ID, types.PromptField("name = 'x', id"), "x", types.ErrValidation},
		{"blank name", pr.ID, p.ID, types.FieldName, "  ", types.ErrValidation},
		{"missing project id", pr.ID, "", types.FieldRequirements, "x", types.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.UpdatePrompt(ctx, tt.id, tt.projectID, tt.field, tt.value)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := b.GetPrompt(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, *pr, *got, "failed updates leave the prompt unchanged")
}

func TestDeletePrompt(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)
	other, err := b.CreateProject(ctx, "Other")
	require.NoError(t, err)
	pr, err := b.CreatePrompt(ctx, p.ID, "Prompt")
	require.NoError(t, err)

	assert.ErrorIs(t, b.DeletePrompt(ctx, pr.ID, other.ID), types.ErrNotFound)

	require.NoError(t, b.DeletePrompt(ctx, pr.ID, p.ID))
	_, err = b.GetPrompt(ctx, pr.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, p.ID, projects[0].ID, "deleting a prompt touches its project")
	assert.Empty(t, projects[0].Prompts)

	assert.ErrorIs(t, b.DeletePrompt(ctx, pr.ID, p.ID), types.ErrNotFound)
}

func TestPrompts_OrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)
	a, err := b.CreatePrompt(ctx, p.ID, "a")
	require.NoError(t, err)
	c, err := b.CreatePrompt(ctx, p.ID, "c")
	require.NoError(t, err)

	require.NoError(t, b.UpdatePrompt(ctx, a.ID, p.ID, types.FieldRequirements, "edited"))

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects[0].Prompts, 2)
	assert.Equal(t, a.ID, projects[0].Prompts[0].ID)
	assert.Equal(t, c.ID, projects[0].Prompts[1].ID)
}

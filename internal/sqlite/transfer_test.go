package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func TestGetState(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	p, err := b.CreateProject(ctx, "Project")
	require.NoError(t, err)
	_, err = b.CreatePrompt(ctx, p.ID, "Prompt")
	require.NoError(t, err)

	state, err := b.GetState(ctx)
	require.NoError(t, err)
	require.Len(t, state.Projects, 1)
	assert.Len(t, state.Projects[0].Prompts, 1)
	assert.Len(t, state.Templates, len(defaultTemplates))
}

func TestExportAllData_ExcludesDefaults(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	mine, err := b.CreateTemplate(ctx, "Mine", "content", types.TemplateSuccessCriteria)
	require.NoError(t, err)

	export, err := b.ExportAllData(ctx)
	require.NoError(t, err)
	require.Len(t, export.Templates, 1)
	assert.Equal(t, mine.ID, export.Templates[0].ID)
	assert.NotNil(t, export.Projects)

	_, err = time.Parse(types.ExportTimeLayout, export.ExportedAt)
	assert.NoError(t, err)
}

func TestImportData(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	existing, err := b.CreateProject(ctx, "Existing")
	require.NoError(t, err)

	data := types.ImportData{
		Projects: []types.ImportProject{
			{Name: "Existing", Prompts: []types.ImportPrompt{
				{Name: "One", Requirements: "r1", SuccessCriteria: "s1"},
				{Name: "Two"},
			}},
			{Name: "Empty"},
		},
		Templates: []types.ImportTemplate{
			{Name: "T", Content: "c", Type: types.TemplateRequirements},
		},
	}

	res, err := b.ImportData(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, &types.ImportResult{Projects: 2, Prompts: 2, Templates: 1}, res)

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3, "import is additive, no de-duplication by name")
	for _, p := range projects {
		if p.Name == "Existing" && p.ID != existing.ID {
			require.Len(t, p.Prompts, 2)
			assert.Equal(t, "One", p.Prompts[0].Name)
			assert.Equal(t, "r1", p.Prompts[0].Requirements)
			assert.Equal(t, "s1", p.Prompts[0].SuccessCriteria)
			assert.Equal(t, "Two", p.Prompts[1].Name)
		}
	}
}

func TestImportData_InvalidLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	data := types.ImportData{
		Projects: []types.ImportProject{
			{Name: "Good"},
			{Name: "Bad", Prompts: []types.ImportPrompt{{Name: ""}}},
		},
	}
	_, err := b.ImportData(ctx, data)
	assert.ErrorIs(t, err, types.ErrValidation)

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestBackend(t)

	for _, name := range []string{"alpha", "beta"} {
		p, err := src.CreateProject(ctx, name)
		require.NoError(t, err)
		for _, prName := range []string{name + "-1", name + "-2"} {
			pr, err := src.CreatePrompt(ctx, p.ID, prName)
			require.NoError(t, err)
			require.NoError(t, src.UpdatePrompt(ctx, pr.ID, p.ID, types.FieldRequirements, "req "+prName))
			require.NoError(t, src.UpdatePrompt(ctx, pr.ID, p.ID, types.FieldSuccessCriteria, "done "+prName))
		}
	}
	_, err := src.CreateTemplate(ctx, "first", "one", types.TemplateRequirements)
	require.NoError(t, err)
	_, err = src.CreateTemplate(ctx, "second", "two", types.TemplateSuccessCriteria)
	require.NoError(t, err)

	exported, err := src.ExportAllData(ctx)
	require.NoError(t, err)

	dst := newTestBackend(t)
	_, err = dst.ImportData(ctx, types.ImportDataFromExport(exported))
	require.NoError(t, err)

	reexported, err := dst.ExportAllData(ctx)
	require.NoError(t, err)

	assert.Equal(t, content(exported), content(reexported))
}

// content strips identities and timestamps, which import reassigns.
func content(e *types.Export) types.ImportData {
	return types.ImportDataFromExport(e)
}

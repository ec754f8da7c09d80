package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func TestSeed_DefaultTemplates(t *testing.T) {
	b := newTestBackend(t)

	templates, err := b.GetAllTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, len(defaultTemplates))

	byID := make(map[string]types.Template)
	for _, tmpl := range templates {
		assert.True(t, tmpl.IsDefault, "%s should be default", tmpl.ID)
		byID[tmpl.ID] = tmpl
	}

	tests := []struct {
		id   string
		name string
		typ  types.TemplateType
	}{
		{types.DefaultTemplateReq1, "Next.js/Tailwind Stack", types.TemplateRequirements},
		{types.DefaultTemplateReq2, "SQLite Database", types.TemplateRequirements},
		{types.DefaultTemplateReq3, "Export to JSON", types.TemplateRequirements},
		{types.DefaultTemplateSuccess, "Standard Completion", types.TemplateSuccessCriteria},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tmpl, ok := byID[tt.id]
			require.True(t, ok)
			assert.Equal(t, tt.name, tmpl.Name)
			assert.Equal(t, tt.typ, tmpl.Type)
			assert.NotEmpty(t, tmpl.Content)
		})
	}
}

func TestSeed_IdempotentAcrossReattach(t *testing.T) {
	ctx := context.Background()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	require.NoError(t, b.UpdateTemplate(ctx, types.DefaultTemplateReq1, "My Stack", "Use Go"))
	require.NoError(t, b.Detach())

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Attach(config))
		require.NoError(t, b.Detach())
	}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	templates, err := b.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, len(defaultTemplates), "re-seeding must not duplicate")

	for _, tmpl := range templates {
		if tmpl.ID == types.DefaultTemplateReq1 {
			assert.Equal(t, "My Stack", tmpl.Name, "re-seeding must not overwrite edits")
			assert.Equal(t, "Use Go", tmpl.Content)
		}
	}
}

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// stepClock returns a clock that advances by one second on every call, so
// successive writes get strictly increasing timestamps.
func stepClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

// newTestBackend attaches an in-memory backend and detaches it on cleanup.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(WithClock(stepClock()))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, InMemory: true}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "prompts.db should be created")
	assert.Equal(t, filepath.Join(tmpDir, DatabaseFile), b.Path())

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "postgres", DataDir: t.TempDir()}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			assert.ErrorIs(t, b.Attach(tt.config), tt.want)
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, InMemory: true}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should be a no-op")

	_, err := b.GetAllProjects(ctx)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.CreateProject(ctx, "p")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.DeleteTemplate(ctx, "x")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_IndependentInstances(t *testing.T) {
	ctx := context.Background()
	a := newTestBackend(t)
	b := newTestBackend(t)

	_, err := a.CreateProject(ctx, "only in a")
	require.NoError(t, err)

	projects, err := b.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	ctx := context.Background()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	p, err := b.CreateProject(ctx, "Persistent")
	require.NoError(t, err)
	_, err = b.CreatePrompt(ctx, p.ID, "First")
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	projects, err := b2.GetAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Persistent", projects[0].Name)
	require.Len(t, projects[0].Prompts, 1)
	assert.Equal(t, "First", projects[0].Prompts[0].Name)
}

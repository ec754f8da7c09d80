package appstate

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/promptkit/internal/httpapi"
	"github.com/mesh-intelligence/promptkit/internal/sqlite"
	"github.com/mesh-intelligence/promptkit/pkg/client"
	"github.com/mesh-intelligence/promptkit/pkg/types"
)

type harness struct {
	store      *Store
	api        *client.Client
	backend    types.Store
	logger     *slog.Logger
	promptPuts atomic.Int32
}

// newHarness wires a Store to the real handlers over an in-memory backend
// and counts PUT /api/prompts requests.
func newHarness(t *testing.T, window time.Duration) *harness {
	t.Helper()
	h := &harness{backend: sqlite.NewBackend()}
	require.NoError(t, h.backend.Attach(types.Config{Backend: types.BackendSQLite, InMemory: true}))
	t.Cleanup(func() { h.backend.Detach() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(h.backend, logger, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/api/prompts" {
			h.promptPuts.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	h.api = client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	h.logger = logger
	h.store = New(h.api, logger, WithDebounceWindow(window))
	t.Cleanup(h.store.Close)
	return h
}

func TestStore_Load(t *testing.T) {
	h := newHarness(t, time.Hour)
	assert.True(t, h.store.Snapshot().Loading)

	require.NoError(t, h.store.Load(context.Background()))
	st := h.store.Snapshot()
	assert.False(t, st.Loading)
	assert.Len(t, st.Templates, 4)
	assert.Empty(t, st.Projects)
}

func TestStore_FormattedPromptScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)
	require.NoError(t, h.store.Load(ctx))

	project, err := h.store.AddProject(ctx, "P1")
	require.NoError(t, err)
	prompt, err := h.store.AddPrompt(ctx, project.ID, "Task A")
	require.NoError(t, err)

	require.NoError(t, h.store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "Do X"))
	require.NoError(t, h.store.UpdatePrompt(project.ID, prompt.ID, types.FieldSuccessCriteria, "X works"))

	selected := h.store.SelectedPrompt()
	require.NotNil(t, selected)
	assert.Equal(t, "## Requirements\nDo X\n\n## Success Criteria\nX works", types.FormatPrompt(selected))

	h.store.Flush()
	stored, err := h.backend.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "## Requirements\nDo X\n\n## Success Criteria\nX works", types.FormatPrompt(stored))
}

func TestStore_RapidEditsPersistOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 50*time.Millisecond)

	project, err := h.store.AddProject(ctx, "P")
	require.NoError(t, err)
	prompt, err := h.store.AddPrompt(ctx, project.ID, "Q")
	require.NoError(t, err)

	require.NoError(t, h.store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "first"))
	require.NoError(t, h.store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "second"))

	// Optimistic: visible before any write.
	assert.Equal(t, "second", h.store.SelectedPrompt().Requirements)

	require.Eventually(t, func() bool { return h.promptPuts.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	h.store.Flush()

	// Give a stale timer the chance to misfire.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), h.promptPuts.Load())

	stored, err := h.backend.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Requirements)
}

func TestStore_SelectionScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)

	a, err := h.store.AddProject(ctx, "A")
	require.NoError(t, err)
	b, err := h.store.AddProject(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, b.ID, h.store.SelectedProject().ID)

	h.store.SelectProject(a.ID)
	pr, err := h.store.AddPrompt(ctx, a.ID, "in A")
	require.NoError(t, err)
	assert.Equal(t, pr.ID, h.store.SelectedPrompt().ID)

	h.store.SelectProject(b.ID)
	assert.Nil(t, h.store.SelectedPrompt())
	assert.Empty(t, h.store.Snapshot().SelectedPromptID)

	require.NoError(t, h.store.DeleteProject(ctx, b.ID))
	assert.Nil(t, h.store.SelectedProject())
}

func TestStore_DeletePromptDropsPendingEdits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)

	project, err := h.store.AddProject(ctx, "P")
	require.NoError(t, err)
	prompt, err := h.store.AddPrompt(ctx, project.ID, "Q")
	require.NoError(t, err)
	require.NoError(t, h.store.UpdatePrompt(project.ID, prompt.ID, types.FieldName, "Renamed"))

	require.NoError(t, h.store.DeletePrompt(ctx, project.ID, prompt.ID))
	h.store.Flush()

	assert.Equal(t, int32(0), h.promptPuts.Load())
	assert.Nil(t, h.store.SelectedPrompt())
	assert.Empty(t, h.store.SelectedProject().Prompts)
}

func TestStore_RequestFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)
	require.NoError(t, h.store.Load(ctx))
	before := h.store.Snapshot()

	_, err := h.store.AddPrompt(ctx, "no-such-project", "Q")
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = h.store.DeleteTemplate(ctx, types.DefaultTemplateReq2)
	assert.ErrorIs(t, err, types.ErrDefaultTemplate)

	assert.Equal(t, before, h.store.Snapshot())
}

func TestStore_Templates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)
	require.NoError(t, h.store.Load(ctx))

	tmpl, err := h.store.AddTemplate(ctx, "Mine", "Use Go", types.TemplateRequirements)
	require.NoError(t, err)
	st := h.store.Snapshot()
	assert.Equal(t, tmpl.ID, st.Templates[len(st.Templates)-1].ID)

	require.NoError(t, h.store.UpdateTemplate(ctx, tmpl.ID, "Mine", "Use Go 1.25"))
	st = h.store.Snapshot()
	assert.Equal(t, "Use Go 1.25", st.Templates[len(st.Templates)-1].Content)

	require.NoError(t, h.store.DeleteTemplate(ctx, tmpl.ID))
	assert.Len(t, h.store.Snapshot().Templates, 4)

	_, err = h.backend.CreateTemplate(ctx, "Server side", "x", types.TemplateSuccessCriteria)
	require.NoError(t, err)
	require.NoError(t, h.store.RefreshTemplates(ctx))
	assert.Len(t, h.store.Snapshot().Templates, 5)
}

func TestStore_InsertTemplate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)
	require.NoError(t, h.store.Load(ctx))

	_, err := h.store.InsertTemplate(types.DefaultTemplateReq1)
	assert.ErrorIs(t, err, ErrNoPromptSelected)

	project, err := h.store.AddProject(ctx, "P")
	require.NoError(t, err)
	_, err = h.store.AddPrompt(ctx, project.ID, "Q")
	require.NoError(t, err)

	inserted, err := h.store.InsertTemplate(types.DefaultTemplateSuccess)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = h.store.InsertTemplate(types.DefaultTemplateSuccess)
	require.NoError(t, err)
	assert.False(t, inserted, "content already present")

	pr := h.store.SelectedPrompt()
	assert.Empty(t, pr.Requirements)
	assert.Contains(t, pr.SuccessCriteria, "<promise> COMPLETE </promise>")

	_, err = h.store.InsertTemplate("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStore_AddAllTemplates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)
	require.NoError(t, h.store.Load(ctx))

	project, err := h.store.AddProject(ctx, "P")
	require.NoError(t, err)
	prompt, err := h.store.AddPrompt(ctx, project.ID, "Q")
	require.NoError(t, err)
	_, err = h.store.InsertTemplate(types.DefaultTemplateReq2)
	require.NoError(t, err)

	added, err := h.store.AddAllTemplates(types.TemplateRequirements)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = h.store.AddAllTemplates(types.TemplateRequirements)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	h.store.Flush()
	stored, err := h.backend.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	for _, tmpl := range h.store.Snapshot().Templates {
		if tmpl.Type == types.TemplateRequirements {
			assert.Contains(t, stored.Requirements, tmpl.Content)
		}
	}
	assert.Empty(t, stored.SuccessCriteria)
}

func TestStore_ExportData(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)

	_, err := h.store.AddProject(ctx, "P")
	require.NoError(t, err)

	out, err := h.store.ExportData(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"exportedAt\"")

	var export types.Export
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	require.Len(t, export.Projects, 1)
	assert.Equal(t, "P", export.Projects[0].Name)
}

// slowFirstWrite delays the first prompt write so a later edit's write
// would overtake it if writes for a field could overlap.
type slowFirstWrite struct {
	API
	delay time.Duration

	mu       sync.Mutex
	calls    int
	inFlight int
	overlap  bool
}

func (s *slowFirstWrite) UpdatePrompt(ctx context.Context, id, projectID string, field types.PromptField, value string) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.inFlight++
	if s.inFlight > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if first {
		time.Sleep(s.delay)
	}
	return s.API.UpdatePrompt(ctx, id, projectID, field, value)
}

func TestStore_SlowWriteDoesNotOverwriteLaterEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)

	project, err := h.backend.CreateProject(ctx, "P")
	require.NoError(t, err)
	prompt, err := h.backend.CreatePrompt(ctx, project.ID, "Q")
	require.NoError(t, err)

	api := &slowFirstWrite{API: h.api, delay: 150 * time.Millisecond}
	store := New(api, h.logger, WithDebounceWindow(20*time.Millisecond))
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "old"))
	time.Sleep(60 * time.Millisecond) // first write is now in flight
	require.NoError(t, store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "new"))
	time.Sleep(300 * time.Millisecond)
	store.Close()

	stored, err := h.backend.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Requirements)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 2, api.calls)
	assert.False(t, api.overlap)
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStore_EditAfterCloseIsLogged(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, time.Hour)

	var logs syncBuffer
	store := New(h.api, slog.New(slog.NewTextHandler(&logs, nil)))

	project, err := store.AddProject(ctx, "P")
	require.NoError(t, err)
	prompt, err := store.AddPrompt(ctx, project.ID, "Q")
	require.NoError(t, err)

	store.Close()
	require.NoError(t, store.UpdatePrompt(project.ID, prompt.ID, types.FieldRequirements, "late"))

	assert.Equal(t, "late", store.SelectedPrompt().Requirements)
	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "edit not persisted: store closed")
	assert.Contains(t, out, "prompt_id="+prompt.ID)

	stored, err := h.backend.GetPrompt(ctx, prompt.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Requirements)
}

package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// ErrNoPromptSelected is returned by template insertion when no prompt is
// selected.
var ErrNoPromptSelected = errors.New("no prompt selected")

// API is the subset of the HTTP client the store calls. *client.Client
// implements it.
type API interface {
	State(ctx context.Context) (*types.State, error)
	Templates(ctx context.Context) ([]types.Template, error)
	Export(ctx context.Context) (*types.Export, error)
	CreateProject(ctx context.Context, name string) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreatePrompt(ctx context.Context, projectID, name string) (*types.Prompt, error)
	UpdatePrompt(ctx context.Context, id, projectID string, field types.PromptField, value string) error
	DeletePrompt(ctx context.Context, id, projectID string) error
	CreateTemplate(ctx context.Context, name, content string, typ types.TemplateType) (*types.Template, error)
	UpdateTemplate(ctx context.Context, id, name, content string) error
	DeleteTemplate(ctx context.Context, id string) error
}

// Store owns the client State. Every transition goes through Reduce under
// mu; network calls are made without holding it.
//
// Creates, deletes, and template updates are request-then-apply: the state
// changes only after the server accepts the request. Prompt field edits are
// optimistic: the state changes at once and the write is debounced.
type Store struct {
	api      API
	logger   *slog.Logger
	debounce *Debouncer
	clock    func() time.Time

	// persistTimeout bounds each debounced write.
	persistTimeout time.Duration

	mu    sync.Mutex
	state State
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	window time.Duration
	clock  func() time.Time
}

// WithDebounceWindow sets the prompt edit quiescence window.
func WithDebounceWindow(d time.Duration) Option {
	return func(o *storeOptions) { o.window = d }
}

// WithClock overrides the time source for optimistic timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *storeOptions) { o.clock = clock }
}

// New creates a Store. The initial state has Loading set; call Load.
func New(api API, logger *slog.Logger, opts ...Option) *Store {
	o := storeOptions{window: DefaultDebounceWindow, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		api:            api,
		logger:         logger.With("component", "appstate"),
		debounce:       NewDebouncer(o.window),
		clock:          o.clock,
		persistTimeout: 30 * time.Second,
		state:          State{Projects: []types.Project{}, Templates: []types.Template{}, Loading: true},
	}
}

// dispatch applies e and returns the resulting state.
func (s *Store) dispatch(e Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, e)
	return s.state
}

func (s *Store) now() types.Timestamp {
	return types.NewTimestamp(s.clock())
}

// Snapshot returns the current state. Slices are shared with the store but
// never mutated by it, so the snapshot is safe to read.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches the full state from the server.
func (s *Store) Load(ctx context.Context) error {
	s.dispatch(SetLoading{Loading: true})

	state, err := s.api.State(ctx)
	if err != nil {
		s.logger.Error("failed to load state", "error", err)
		s.dispatch(SetLoading{Loading: false})
		return fmt.Errorf("load state: %w", err)
	}

	s.dispatch(SetState{Projects: state.Projects, Templates: state.Templates})
	return nil
}

// AddProject creates a project and selects it.
func (s *Store) AddProject(ctx context.Context, name string) (*types.Project, error) {
	project, err := s.api.CreateProject(ctx, name)
	if err != nil {
		s.logger.Error("failed to add project", "error", err)
		return nil, fmt.Errorf("add project: %w", err)
	}
	s.dispatch(AddProject{Project: *project})
	return project, nil
}

// DeleteProject deletes a project. Pending edits to its prompts are
// dropped.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	if err := s.api.DeleteProject(ctx, projectID); err != nil {
		s.logger.Error("failed to delete project", "project_id", projectID, "error", err)
		return fmt.Errorf("delete project: %w", err)
	}

	if p := findProject(s.Snapshot().Projects, projectID); p != nil {
		for _, pr := range p.Prompts {
			s.cancelPromptEdits(pr.ID)
		}
	}
	s.dispatch(DeleteProject{ProjectID: projectID})
	return nil
}

// SelectProject selects a project, or clears the selection for "".
func (s *Store) SelectProject(projectID string) {
	s.dispatch(SelectProject{ProjectID: projectID})
}

// AddPrompt creates a prompt and selects it.
func (s *Store) AddPrompt(ctx context.Context, projectID, name string) (*types.Prompt, error) {
	prompt, err := s.api.CreatePrompt(ctx, projectID, name)
	if err != nil {
		s.logger.Error("failed to add prompt", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("add prompt: %w", err)
	}
	s.dispatch(AddPrompt{ProjectID: projectID, Prompt: *prompt, At: s.now()})
	return prompt, nil
}

// DeletePrompt deletes a prompt. Pending edits to it are dropped.
func (s *Store) DeletePrompt(ctx context.Context, projectID, promptID string) error {
	if err := s.api.DeletePrompt(ctx, promptID, projectID); err != nil {
		s.logger.Error("failed to delete prompt", "prompt_id", promptID, "error", err)
		return fmt.Errorf("delete prompt: %w", err)
	}
	s.cancelPromptEdits(promptID)
	s.dispatch(DeletePrompt{ProjectID: projectID, PromptID: promptID, At: s.now()})
	return nil
}

// SelectPrompt selects a prompt, or clears the selection for "".
func (s *Store) SelectPrompt(promptID string) {
	s.dispatch(SelectPrompt{PromptID: promptID})
}

// UpdatePrompt applies the edit locally and schedules its persistence. Only
// the last value written to a prompt field within the debounce window is
// sent, and writes for one field never overlap, so the server ends up with
// the latest value. Persist failures are logged; the local state keeps the
// edit.
func (s *Store) UpdatePrompt(projectID, promptID string, field types.PromptField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("update prompt: %w: %q", types.ErrInvalidField, field)
	}

	s.dispatch(UpdatePrompt{
		ProjectID: projectID,
		PromptID:  promptID,
		Field:     field,
		Value:     value,
		At:        s.now(),
	})

	scheduled := s.debounce.Schedule(editKey(promptID, field), func() {
		s.persistPrompt(projectID, promptID, field, value)
	})
	if !scheduled {
		s.logger.Warn("edit not persisted: store closed", "prompt_id", promptID, "field", field)
	}
	return nil
}

func (s *Store) persistPrompt(projectID, promptID string, field types.PromptField, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	if err := s.api.UpdatePrompt(ctx, promptID, projectID, field, value); err != nil {
		s.logger.Error("failed to persist prompt edit",
			"prompt_id", promptID,
			"field", field,
			"error", err,
		)
		return
	}
	s.logger.Debug("prompt edit persisted", "prompt_id", promptID, "field", field)
}

func (s *Store) cancelPromptEdits(promptID string) {
	for _, f := range []types.PromptField{types.FieldName, types.FieldRequirements, types.FieldSuccessCriteria} {
		s.debounce.Cancel(editKey(promptID, f))
	}
}

func editKey(promptID string, field types.PromptField) string {
	return promptID + "/" + string(field)
}

// AddTemplate creates a user template.
func (s *Store) AddTemplate(ctx context.Context, name, content string, typ types.TemplateType) (*types.Template, error) {
	tmpl, err := s.api.CreateTemplate(ctx, name, content, typ)
	if err != nil {
		s.logger.Error("failed to add template", "error", err)
		return nil, fmt.Errorf("add template: %w", err)
	}
	s.dispatch(AddTemplate{Template: *tmpl})
	return tmpl, nil
}

// UpdateTemplate replaces a template's name and content.
func (s *Store) UpdateTemplate(ctx context.Context, id, name, content string) error {
	if err := s.api.UpdateTemplate(ctx, id, name, content); err != nil {
		s.logger.Error("failed to update template", "template_id", id, "error", err)
		return fmt.Errorf("update template: %w", err)
	}
	s.dispatch(UpdateTemplate{ID: id, Name: name, Content: content})
	return nil
}

// DeleteTemplate deletes a user template. A refused default-template
// delete returns an error matching types.ErrDefaultTemplate and leaves the
// state unchanged.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.api.DeleteTemplate(ctx, id); err != nil {
		s.logger.Error("failed to delete template", "template_id", id, "error", err)
		return fmt.Errorf("delete template: %w", err)
	}
	s.dispatch(DeleteTemplate{TemplateID: id})
	return nil
}

// RefreshTemplates reloads the template list.
func (s *Store) RefreshTemplates(ctx context.Context) error {
	templates, err := s.api.Templates(ctx)
	if err != nil {
		s.logger.Error("failed to refresh templates", "error", err)
		return fmt.Errorf("refresh templates: %w", err)
	}
	s.dispatch(SetTemplates{Templates: templates})
	return nil
}

// SelectedProject returns a copy of the selected project, or nil.
func (s *Store) SelectedProject() *types.Project {
	st := s.Snapshot()
	if st.SelectedProjectID == "" {
		return nil
	}
	p := findProject(st.Projects, st.SelectedProjectID)
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// SelectedPrompt returns a copy of the selected prompt within the selected
// project, or nil.
func (s *Store) SelectedPrompt() *types.Prompt {
	st := s.Snapshot()
	return selectedPrompt(st)
}

func selectedPrompt(st State) *types.Prompt {
	if st.SelectedProjectID == "" || st.SelectedPromptID == "" {
		return nil
	}
	p := findProject(st.Projects, st.SelectedProjectID)
	if p == nil {
		return nil
	}
	pr := p.FindPrompt(st.SelectedPromptID)
	if pr == nil {
		return nil
	}
	cp := *pr
	return &cp
}

// ExportData fetches an export and renders it as indented JSON.
func (s *Store) ExportData(ctx context.Context) (string, error) {
	export, err := s.api.Export(ctx)
	if err != nil {
		s.logger.Error("failed to export data", "error", err)
		return "", fmt.Errorf("export data: %w", err)
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(data), nil
}

// InsertTemplate appends a template's content to the matching field of the
// selected prompt. It reports false when the content is already present.
func (s *Store) InsertTemplate(templateID string) (bool, error) {
	st := s.Snapshot()
	prompt := selectedPrompt(st)
	if prompt == nil {
		return false, ErrNoPromptSelected
	}
	var tmpl *types.Template
	for i := range st.Templates {
		if st.Templates[i].ID == templateID {
			tmpl = &st.Templates[i]
			break
		}
	}
	if tmpl == nil {
		return false, fmt.Errorf("insert template %s: %w", templateID, types.ErrNotFound)
	}

	field := tmpl.Type.Field()
	value, changed := types.InsertTemplate(prompt.Get(field), tmpl.Content)
	if !changed {
		return false, nil
	}
	return true, s.UpdatePrompt(st.SelectedProjectID, prompt.ID, field, value)
}

// AddAllTemplates inserts every template of typ whose content is not yet in
// the selected prompt, in template list order. It returns how many were
// inserted.
func (s *Store) AddAllTemplates(typ types.TemplateType) (int, error) {
	st := s.Snapshot()
	prompt := selectedPrompt(st)
	if prompt == nil {
		return 0, ErrNoPromptSelected
	}

	field := typ.Field()
	value := prompt.Get(field)
	added := 0
	for _, t := range st.Templates {
		if t.Type != typ {
			continue
		}
		next, changed := types.InsertTemplate(value, t.Content)
		if changed {
			value = next
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.UpdatePrompt(st.SelectedProjectID, prompt.ID, field, value)
}

// Flush persists every pending prompt edit now.
func (s *Store) Flush() {
	s.debounce.Flush()
}

// Close flushes pending edits and stops scheduling new ones. Edits made
// after Close are applied locally but not persisted.
func (s *Store) Close() {
	s.debounce.Stop()
}

func findProject(projects []types.Project, id string) *types.Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

package types

import "context"

// Store is the data access API over projects, prompts, and templates.
// Implementations serialize writes; readers may run concurrently.
//
// Update and delete operations on an unknown ID return ErrNotFound. Prompt
// operations also return ErrNotFound when the prompt does not belong to the
// given project. Malformed input returns an error wrapping ErrValidation
// before the store is touched.
type Store interface {
	// Attach opens the backend described by config, creating the schema and
	// seeding the default templates if they are absent. Returns
	// ErrAlreadyAttached when called twice.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	CreateProject(ctx context.Context, name string) (*Project, error)
	UpdateProject(ctx context.Context, id, name string) error
	// DeleteProject removes the project and every prompt it owns.
	DeleteProject(ctx context.Context, id string) error
	// GetAllProjects returns projects by UpdatedAt descending, each with its
	// prompts by UpdatedAt descending.
	GetAllProjects(ctx context.Context) ([]Project, error)

	GetPrompt(ctx context.Context, id string) (*Prompt, error)
	// CreatePrompt, UpdatePrompt, and DeletePrompt also touch the parent
	// project's UpdatedAt.
	CreatePrompt(ctx context.Context, projectID, name string) (*Prompt, error)
	UpdatePrompt(ctx context.Context, id, projectID string, field PromptField, value string) error
	DeletePrompt(ctx context.Context, id, projectID string) error

	// GetAllTemplates returns default templates first, then newest first.
	GetAllTemplates(ctx context.Context) ([]Template, error)
	CreateTemplate(ctx context.Context, name, content string, typ TemplateType) (*Template, error)
	UpdateTemplate(ctx context.Context, id, name, content string) error
	// DeleteTemplate returns false, and leaves the store unchanged, when the
	// template is a default one.
	DeleteTemplate(ctx context.Context, id string) (bool, error)

	GetState(ctx context.Context) (*State, error)
	ExportAllData(ctx context.Context) (*Export, error)
	// ImportData adds the payload's projects, prompts, and templates under
	// new identities. It never updates or deletes existing rows.
	ImportData(ctx context.Context, data ImportData) (*ImportResult, error)
}

package appstate

import "github.com/mesh-intelligence/promptkit/pkg/types"

// Event is a state transition input. The set of variants is closed: only
// types in this package implement it, and Reduce handles every one.
type Event interface {
	event()
}

// SetState replaces projects and templates after a load and clears Loading.
type SetState struct {
	Projects  []types.Project
	Templates []types.Template
}

// SetLoading sets the Loading flag.
type SetLoading struct {
	Loading bool
}

// AddProject prepends a new project and selects it.
type AddProject struct {
	Project types.Project
}

// DeleteProject removes a project.
type DeleteProject struct {
	ProjectID string
}

// SelectProject selects a project ("" for none) and clears the prompt
// selection.
type SelectProject struct {
	ProjectID string
}

// AddPrompt prepends a prompt to its project and selects it. At is the
// project's new UpdatedAt.
type AddPrompt struct {
	ProjectID string
	Prompt    types.Prompt
	At        types.Timestamp
}

// DeletePrompt removes a prompt from its project.
type DeletePrompt struct {
	ProjectID string
	PromptID  string
	At        types.Timestamp
}

// SelectPrompt selects a prompt ("" for none). Membership in the selected
// project is not checked.
type SelectPrompt struct {
	PromptID string
}

// UpdatePrompt sets one prompt field and touches the prompt and project.
type UpdatePrompt struct {
	ProjectID string
	PromptID  string
	Field     types.PromptField
	Value     string
	At        types.Timestamp
}

// AddTemplate appends a template.
type AddTemplate struct {
	Template types.Template
}

// UpdateTemplate replaces a template's name and content.
type UpdateTemplate struct {
	ID      string
	Name    string
	Content string
}

// DeleteTemplate removes a template.
type DeleteTemplate struct {
	TemplateID string
}

// SetTemplates replaces the template list.
type SetTemplates struct {
	Templates []types.Template
}

func (SetState) event()       {}
func (SetLoading) event()     {}
func (AddProject) event()     {}
func (DeleteProject) event()  {}
func (SelectProject) event()  {}
func (AddPrompt) event()      {}
func (DeletePrompt) event()   {}
func (SelectPrompt) event()   {}
func (UpdatePrompt) event()   {}
func (AddTemplate) event()    {}
func (UpdateTemplate) event() {}
func (DeleteTemplate) event() {}
func (SetTemplates) event()   {}

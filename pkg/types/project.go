package types

// Project groups prompts. Prompts are ordered most-recently-updated first.
// UpdatedAt is refreshed whenever a child prompt is created, updated, or
// deleted.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompts   []Prompt  `json:"prompts"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// FindPrompt returns the prompt with the given ID, or nil.
func (p *Project) FindPrompt(id string) *Prompt {
	for i := range p.Prompts {
		if p.Prompts[i].ID == id {
			return &p.Prompts[i]
		}
	}
	return nil
}

// Prompt is a named pair of free-text fields that is assembled into a single
// block of text for an agent.
type Prompt struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId,omitempty"`
	Name            string    `json:"name"`
	Requirements    string    `json:"requirements"`
	SuccessCriteria string    `json:"successCriteria"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// Get returns the value of the given field.
func (p *Prompt) Get(field PromptField) string {
	switch field {
	case FieldRequirements:
		return p.Requirements
	case FieldSuccessCriteria:
		return p.SuccessCriteria
	case FieldName:
		return p.Name
	}
	return ""
}

// Set assigns value to the given field. Unknown fields return ErrInvalidField.
func (p *Prompt) Set(field PromptField, value string) error {
	switch field {
	case FieldRequirements:
		p.Requirements = value
	case FieldSuccessCriteria:
		p.SuccessCriteria = value
	case FieldName:
		p.Name = value
	default:
		return ErrInvalidField
	}
	return nil
}

// PromptField names one editable field of a Prompt.
type PromptField string

// Prompt fields, spelled as they appear on the wire.
const (
	FieldRequirements    PromptField = "requirements"
	FieldSuccessCriteria PromptField = "successCriteria"
	FieldName            PromptField = "name"
)

// Valid reports whether f is one of the editable prompt fields.
func (f PromptField) Valid() bool {
	switch f {
	case FieldRequirements, FieldSuccessCriteria, FieldName:
		return true
	}
	return false
}

// Column returns the prompts table column backing the field. The column is
// chosen from this fixed set, never taken from caller input.
func (f PromptField) Column() (string, error) {
	switch f {
	case FieldRequirements:
		return "requirements", nil
	case FieldSuccessCriteria:
		return "success_criteria", nil
	case FieldName:
		return "name", nil
	}
	return "", ErrInvalidField
}

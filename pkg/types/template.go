package types

// TemplateType is the closed set of template categories.
type TemplateType string

// Template types.
const (
	TemplateRequirements    TemplateType = "requirements"
	TemplateSuccessCriteria TemplateType = "success-criteria"
)

// TemplateTypes lists every template type in display order.
var TemplateTypes = []TemplateType{TemplateRequirements, TemplateSuccessCriteria}

// Valid reports whether t is a known template type.
func (t TemplateType) Valid() bool {
	return t == TemplateRequirements || t == TemplateSuccessCriteria
}

// Field returns the prompt field that templates of this type are inserted
// into.
func (t TemplateType) Field() PromptField {
	if t == TemplateSuccessCriteria {
		return FieldSuccessCriteria
	}
	return FieldRequirements
}

// Template is a reusable snippet of requirements or success-criteria text.
// Templates are global, not owned by a project. Default templates are seeded
// by the store and can never be deleted.
type Template struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Content   string       `json:"content"`
	Type      TemplateType `json:"type"`
	IsDefault bool         `json:"isDefault"`
	CreatedAt Timestamp    `json:"createdAt"`
}

// Fixed IDs of the seeded default templates.
const (
	DefaultTemplateReq1    = "default-req-1"
	DefaultTemplateReq2    = "default-req-2"
	DefaultTemplateReq3    = "default-req-3"
	DefaultTemplateSuccess = "default-success-1"
)

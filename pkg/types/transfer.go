package types

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ExportTimeLayout matches JavaScript's Date.toISOString.
const ExportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// State is the full snapshot a client loads on start (GET /api/state).
type State struct {
	Projects  []Project  `json:"projects"`
	Templates []Template `json:"templates"`
}

// Export is a snapshot of all user content. Default templates are left out
// because the store re-seeds them.
type Export struct {
	ExportedAt string     `json:"exportedAt"`
	Projects   []Project  `json:"projects"`
	Templates  []Template `json:"templates"`
}

// FormatExportTime renders t the way Export.ExportedAt expects.
func FormatExportTime(t time.Time) string {
	return t.UTC().Format(ExportTimeLayout)
}

// ExportFileName is the suggested file name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("prompt-builder-export-%s.json", t.UTC().Format("2006-01-02"))
}

// ImportData is the payload accepted by import. It is a subset of Export:
// identities and timestamps in the payload are ignored and fresh ones are
// assigned.
type ImportData struct {
	Projects  []ImportProject  `json:"projects,omitempty"`
	Templates []ImportTemplate `json:"templates,omitempty"`
}

// Validate checks every nested project, prompt, and template. The returned
// error wraps ErrValidation.
func (d ImportData) Validate() error {
	return wrapValidation(validation.ValidateStruct(&d,
		validation.Field(&d.Projects),
		validation.Field(&d.Templates),
	))
}

// ImportProject is one project in an import payload.
type ImportProject struct {
	Name    string         `json:"name"`
	Prompts []ImportPrompt `json:"prompts,omitempty"`
}

// Validate implements validation.Validatable. Called through
// ImportData.Validate, which does the ErrValidation wrapping.
func (p ImportProject) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, nameRules()...),
		validation.Field(&p.Prompts),
	)
}

// ImportPrompt is one prompt in an import payload.
type ImportPrompt struct {
	Name            string `json:"name"`
	Requirements    string `json:"requirements"`
	SuccessCriteria string `json:"successCriteria"`
}

// Validate implements validation.Validatable.
func (p ImportPrompt) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, nameRules()...),
	)
}

// ImportTemplate is one template in an import payload.
type ImportTemplate struct {
	Name    string       `json:"name"`
	Content string       `json:"content"`
	Type    TemplateType `json:"type"`
}

// Validate implements validation.Validatable.
func (t ImportTemplate) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, nameRules()...),
		validation.Field(&t.Type, typeRules()...),
	)
}

// ImportResult counts the rows an import created.
type ImportResult struct {
	Projects  int `json:"projects"`
	Prompts   int `json:"prompts"`
	Templates int `json:"templates"`
}

// ImportDataFromExport converts an export back into an import payload.
func ImportDataFromExport(e *Export) ImportData {
	var d ImportData
	for _, p := range e.Projects {
		ip := ImportProject{Name: p.Name}
		for _, pr := range p.Prompts {
			ip.Prompts = append(ip.Prompts, ImportPrompt{
				Name:            pr.Name,
				Requirements:    pr.Requirements,
				SuccessCriteria: pr.SuccessCriteria,
			})
		}
		d.Projects = append(d.Projects, ip)
	}
	for _, t := range e.Templates {
		d.Templates = append(d.Templates, ImportTemplate{Name: t.Name, Content: t.Content, Type: t.Type})
	}
	return d
}

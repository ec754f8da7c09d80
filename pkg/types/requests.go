package types

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxNameLength bounds project, prompt, and template names.
const MaxNameLength = 200

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// Validate implements validation.Validatable.
func (r CreateProjectRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules()...),
	))
}

// UpdateProjectRequest is the body of PUT /api/projects.
type UpdateProjectRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate implements validation.Validatable.
func (r UpdateProjectRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, nameRules()...),
	))
}

// DeleteProjectRequest is the body of DELETE /api/projects.
type DeleteProjectRequest struct {
	ID string `json:"id"`
}

// Validate implements validation.Validatable.
func (r DeleteProjectRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	))
}

// CreatePromptRequest is the body of POST /api/prompts.
type CreatePromptRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// Validate implements validation.Validatable.
func (r CreatePromptRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.Name, nameRules()...),
	))
}

// UpdatePromptRequest is the body of PUT /api/prompts. Value may be empty
// for the text fields; a prompt name may not be blank.
type UpdatePromptRequest struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectId"`
	Field     PromptField `json:"field"`
	Value     string      `json:"value"`
}

// Validate implements validation.Validatable.
func (r UpdatePromptRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.Field,
			validation.Required,
			validation.In(FieldRequirements, FieldSuccessCriteria, FieldName),
		),
		validation.Field(&r.Value,
			validation.When(r.Field == FieldName, nameRules()...),
		),
	))
}

// DeletePromptRequest is the body of DELETE /api/prompts.
type DeletePromptRequest struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
}

// Validate implements validation.Validatable.
func (r DeletePromptRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.ProjectID, validation.Required),
	))
}

// CreateTemplateRequest is the body of POST /api/templates.
type CreateTemplateRequest struct {
	Name    string       `json:"name"`
	Content string       `json:"content"`
	Type    TemplateType `json:"type"`
}

// Validate implements validation.Validatable.
func (r CreateTemplateRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules()...),
		validation.Field(&r.Content, validation.Required, validation.By(notBlank)),
		validation.Field(&r.Type, typeRules()...),
	))
}

// UpdateTemplateRequest is the body of PUT /api/templates. Type and the
// default flag are fixed at creation and cannot be changed.
type UpdateTemplateRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Validate implements validation.Validatable.
func (r UpdateTemplateRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Name, nameRules()...),
		validation.Field(&r.Content, validation.Required, validation.By(notBlank)),
	))
}

// DeleteTemplateRequest is the body of DELETE /api/templates.
type DeleteTemplateRequest struct {
	ID string `json:"id"`
}

// Validate implements validation.Validatable.
func (r DeleteTemplateRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	))
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.By(notBlank),
		validation.RuneLength(1, MaxNameLength),
	}
}

func typeRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.In(TemplateRequirements, TemplateSuccessCriteria),
	}
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// wrapValidation marks a non-nil ozzo error as an ErrValidation while
// keeping the per-field messages.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// Package appstate is the client-side state store for a promptkit session:
// the loaded projects and templates, the current selection, and the
// debounced persistence of prompt edits.
package appstate

import (
	"fmt"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// State is the client view. Selection IDs are "" when nothing is selected.
type State struct {
	Projects          []types.Project
	Templates         []types.Template
	SelectedProjectID string
	SelectedPromptID  string
	Loading           bool
}

// Reduce applies e to s and returns the new state. It never mutates s: every
// changed slice is copied, so a State returned earlier stays valid.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case SetState:
		s.Projects = e.Projects
		s.Templates = e.Templates
		s.Loading = false

	case SetLoading:
		s.Loading = e.Loading

	case AddProject:
		p := e.Project
		if p.Prompts == nil {
			p.Prompts = []types.Prompt{}
		}
		s.Projects = append([]types.Project{p}, s.Projects...)
		s.SelectedProjectID = p.ID
		s.SelectedPromptID = ""

	case DeleteProject:
		s.Projects = filter(s.Projects, func(p types.Project) bool { return p.ID != e.ProjectID })
		if s.SelectedProjectID == e.ProjectID {
			s.SelectedProjectID = ""
			s.SelectedPromptID = ""
		}

	case SelectProject:
		s.SelectedProjectID = e.ProjectID
		s.SelectedPromptID = ""

	case AddPrompt:
		s.Projects = mapProject(s.Projects, e.ProjectID, func(p types.Project) types.Project {
			p.Prompts = append([]types.Prompt{e.Prompt}, p.Prompts...)
			p.UpdatedAt = e.At
			return p
		})
		s.SelectedPromptID = e.Prompt.ID

	case DeletePrompt:
		s.Projects = mapProject(s.Projects, e.ProjectID, func(p types.Project) types.Project {
			p.Prompts = filter(p.Prompts, func(pr types.Prompt) bool { return pr.ID != e.PromptID })
			p.UpdatedAt = e.At
			return p
		})
		if s.SelectedPromptID == e.PromptID {
			s.SelectedPromptID = ""
		}

	case SelectPrompt:
		s.SelectedPromptID = e.PromptID

	case UpdatePrompt:
		s.Projects = mapProject(s.Projects, e.ProjectID, func(p types.Project) types.Project {
			prompts := make([]types.Prompt, len(p.Prompts))
			for i, pr := range p.Prompts {
				if pr.ID == e.PromptID {
					// Reducers only see validated fields.
					_ = pr.Set(e.Field, e.Value)
					pr.UpdatedAt = e.At
				}
				prompts[i] = pr
			}
			p.Prompts = prompts
			p.UpdatedAt = e.At
			return p
		})

	case AddTemplate:
		templates := make([]types.Template, 0, len(s.Templates)+1)
		s.Templates = append(append(templates, s.Templates...), e.Template)

	case UpdateTemplate:
		templates := make([]types.Template, len(s.Templates))
		for i, t := range s.Templates {
			if t.ID == e.ID {
				t.Name = e.Name
				t.Content = e.Content
			}
			templates[i] = t
		}
		s.Templates = templates

	case DeleteTemplate:
		s.Templates = filter(s.Templates, func(t types.Template) bool { return t.ID != e.TemplateID })

	case SetTemplates:
		s.Templates = e.Templates

	default:
		panic(fmt.Sprintf("appstate: unhandled event %T", e))
	}
	return s
}

// mapProject returns a copy of projects with fn applied to the project
// whose ID matches.
func mapProject(projects []types.Project, id string, fn func(types.Project) types.Project) []types.Project {
	out := make([]types.Project, len(projects))
	for i, p := range projects {
		if p.ID == id {
			p = fn(p)
		}
		out[i] = p
	}
	return out
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

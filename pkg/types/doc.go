// Package types defines the promptkit entities (Project, Prompt, Template),
// the request types accepted by the data access layer, the Store interface
// implemented by storage backends, and the standard error values.
//
// It also holds the pure text helpers used when assembling a prompt for an
// agent: FormatPrompt, RalphReady, and InsertTemplate.
package types

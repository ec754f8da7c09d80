package types

import "strings"

// Section headings used by FormatPrompt.
const (
	RequirementsHeading    = "## Requirements"
	SuccessCriteriaHeading = "## Success Criteria"
)

// loopControl is appended by RalphReady. It bounds an agent loop and tells
// the agent how to signal completion.
const loopControl = `
## Loop Control
- Maximum iterations: 25 (safety limit only - stop early when done)
- Stop immediately when all requirements are met
- Do NOT restart or repeat completed work
- If blocked or uncertain, ask for clarification instead of looping

## Completion Signal
When ALL requirements are fully implemented and verified:
1. Run any necessary tests or builds
2. Confirm no errors
3. Output: <promise>COMPLETE</promise>
4. STOP - do not continue after outputting COMPLETE`

// FormatPrompt assembles a prompt into the text handed to an agent. Each
// section is included only when its trimmed text is non-empty; sections are
// separated by a blank line.
func FormatPrompt(p *Prompt) string {
	var parts []string
	if req := strings.TrimSpace(p.Requirements); req != "" {
		parts = append(parts, RequirementsHeading+"\n"+req)
	}
	if sc := strings.TrimSpace(p.SuccessCriteria); sc != "" {
		parts = append(parts, SuccessCriteriaHeading+"\n"+sc)
	}
	return strings.Join(parts, "\n\n")
}

// ralphEscaper escapes backslashes, double quotes, and newlines in a single
// pass, which is equivalent to escaping backslashes first.
var ralphEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// RalphReady turns a formatted prompt into a single double-quoted line for
// use as a CLI argument to an agent loop, with the loop-control block
// appended. An empty prompt yields "".
func RalphReady(formatted string) string {
	if formatted == "" {
		return ""
	}
	full := formatted + "\n" + loopControl
	return `"` + ralphEscaper.Replace(full) + `"`
}

// InsertTemplate appends template content to a prompt field value. When the
// trimmed content is already present the value is returned unchanged and
// the second result is false.
func InsertTemplate(current, content string) (string, bool) {
	if strings.Contains(current, strings.TrimSpace(content)) {
		return current, false
	}
	if current == "" {
		return content, true
	}
	return current + "\n\n" + content, true
}

// Package docs validates documentation files against the document
// protocol: a markdown document must carry a machine-actionable YAML
// metadata block and a changelog section.
package docs

// ValidationIssue represents a single validation issue
type ValidationIssue struct {
	Type    string `json:"type"` // "ok", "warn", "error"
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result represents the validation result for one document
type Result struct {
	File   string            `json:"file"`
	Passed bool              `json:"passed"`
	Issues []ValidationIssue `json:"issues"`
}

// Message renders the pass/fail summary expected at the collaborator
// boundary: pass/fail plus a single human-readable line.
func (r *Result) Message() string {
	if r.Passed {
		return "document is valid"
	}
	msg := "validation errors: "
	first := true
	for _, issue := range r.Issues {
		if issue.Type != "error" {
			continue
		}
		if !first {
			msg += "; "
		}
		if issue.Field != "" {
			msg += issue.Field + ": "
		}
		msg += issue.Message
		first = false
	}
	return msg
}

// FieldSchema describes the constraints on one metadata field.
type FieldSchema struct {
	Type    string   `yaml:"type"`
	Format  string   `yaml:"format"`
	Pattern string   `yaml:"pattern"`
	Enum    []string `yaml:"enum"`
}

// DocumentSchema is the YAML-declared contract of the metadata block.
type DocumentSchema struct {
	Required   []string                `yaml:"required"`
	Properties map[string]*FieldSchema `yaml:"properties"`
	Sections   []string                `yaml:"sections"` // required markdown headings
}

package docs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// defaultSchema is the built-in document protocol contract, overridable
// with a schema file in the same YAML shape.
const defaultSchema = `
required:
  - schema
  - version
  - status
properties:
  schema:
    type: string
    format: uri
  version:
    type: string
    pattern: '^\d+\.\d+\.\d+$'
  status:
    type: string
    enum: [Active, Draft, Deprecated]
  owner:
    type: string
    pattern: '^[a-zA-Z0-9_-]+$'
sections:
  - "## Changelog"
`

// metadataBlock matches the machine-actionable metadata section of a
// document.
var metadataBlock = regexp.MustCompile("(?s)## Machine-Actionable Metadata\n```(?:yaml)?\n(.*?)\n```")

// Validator checks markdown documents against a DocumentSchema.
type Validator struct {
	fs     afero.Fs
	schema *DocumentSchema
}

// NewValidator creates a validator with the built-in schema.
func NewValidator(fs afero.Fs) *Validator {
	schema := &DocumentSchema{}
	// The embedded schema is constant; a parse failure is a programming error.
	if err := yaml.Unmarshal([]byte(defaultSchema), schema); err != nil {
		panic(fmt.Sprintf("docs: invalid embedded schema: %v", err))
	}
	return &Validator{fs: fs, schema: schema}
}

// NewValidatorWithSchema loads the document schema from a YAML file.
func NewValidatorWithSchema(fs afero.Fs, schemaPath string) (*Validator, error) {
	data, err := afero.ReadFile(fs, schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", schemaPath, err)
	}
	schema := &DocumentSchema{}
	if err := yaml.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schemaPath, err)
	}
	return &Validator{fs: fs, schema: schema}, nil
}

// ValidateFile validates one document, collecting every issue.
func (v *Validator) ValidateFile(path string) (*Result, error) {
	data, err := afero.ReadFile(v.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	result := v.Validate(path, string(data))
	return result, nil
}

// Validate checks document content against the schema. The document
// fails when any issue of type "error" is recorded.
func (v *Validator) Validate(path, content string) *Result {
	result := &Result{File: path, Issues: []ValidationIssue{}}
	fail := func(field, format string, args ...any) {
		result.Issues = append(result.Issues, ValidationIssue{
			Type: "error", Field: field, Message: fmt.Sprintf(format, args...),
		})
	}

	m := metadataBlock.FindStringSubmatch(content)
	if m == nil {
		fail("", "missing machine-actionable metadata section")
		return result
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(m[1]), &metadata); err != nil {
		fail("", "invalid YAML in metadata: %v", err)
		return result
	}

	for _, required := range v.schema.Required {
		if _, ok := metadata[required]; !ok {
			fail(required, "missing required field")
		}
	}

	for field, value := range metadata {
		fs, ok := v.schema.Properties[field]
		if !ok {
			continue
		}
		for _, issue := range checkField(value, fs) {
			fail(field, "%s", issue)
		}
	}

	for _, section := range v.schema.Sections {
		if !strings.Contains(content, section) {
			fail("", "missing required section: %s", strings.TrimLeft(section, "# "))
		}
	}

	result.Passed = true
	for _, issue := range result.Issues {
		if issue.Type == "error" {
			result.Passed = false
			break
		}
	}
	return result
}

// checkField applies type, format, pattern and enum constraints to a
// single metadata value.
func checkField(value any, schema *FieldSchema) []string {
	var issues []string

	if schema.Type == "string" {
		if _, ok := value.(string); !ok {
			return []string{"must be a string"}
		}
	}
	s, isString := value.(string)

	if schema.Format == "uri" && isString {
		if !strings.HasPrefix(s, "https://") {
			issues = append(issues, "must be an https URI")
		}
	}
	if schema.Pattern != "" && isString {
		re, err := regexp.Compile(schema.Pattern)
		if err == nil && !re.MatchString(s) {
			issues = append(issues, fmt.Sprintf("does not match pattern %s", schema.Pattern))
		}
	}
	if len(schema.Enum) > 0 && isString {
		found := false
		for _, allowed := range schema.Enum {
			if s == allowed {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, fmt.Sprintf("must be one of: %s", strings.Join(schema.Enum, ", ")))
		}
	}
	return issues
}

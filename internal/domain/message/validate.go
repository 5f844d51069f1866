package message

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var pathPattern = regexp.MustCompile(`^[a-zA-Z0-9/._-]+$`)

// sourceExtensions are the recognized test file extensions.
var sourceExtensions = []string{".py", ".js", ".ts", ".java", ".go"}

func hasSourceExtension(path string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// decodeContent is the total mapping from message type to content
// decoder. Every entry of Types must be handled here; the default
// branch only fires for a Type value that bypassed ParseType.
func decodeContent(t Type, raw map[string]any) (Content, []FieldError) {
	if raw == nil {
		return nil, []FieldError{{Message: "content must be an object"}}
	}
	d := newDecoder(raw, "")
	var c Content
	switch t {
	case TypeTestRequest:
		c = decodeTestRequest(d)
	case TypeTestResult:
		c = decodeTestResult(d)
	case TypeStatusUpdate:
		c = decodeStatusUpdate(d)
	case TypeContextUpdate:
		c = decodeContextUpdate(d)
	case TypeWorkflowRequest:
		c = decodeWorkflowRequest(d)
	case TypeValidationRequest:
		c = decodeValidationRequest(d)
	case TypeDocumentationUpdate:
		c = decodeDocumentationUpdate(d)
	default:
		return nil, []FieldError{{Field: "type", Message: fmt.Sprintf("invalid message type %q", t)}}
	}
	d.rejectUnknown()
	if len(d.errs) > 0 {
		return nil, d.errs
	}
	return c, nil
}

// decoder walks a raw JSON object collecting every violation instead
// of failing fast. Consumed keys are tracked so leftovers can be
// rejected; the schema has no forward-compatible extension field.
type decoder struct {
	raw  map[string]any
	path string
	seen map[string]bool
	errs []FieldError
}

func newDecoder(raw map[string]any, path string) *decoder {
	return &decoder{raw: raw, path: path, seen: map[string]bool{}}
}

func (d *decoder) key(name string) string {
	if d.path == "" {
		return name
	}
	return d.path + "." + name
}

func (d *decoder) fail(name, format string, args ...any) {
	d.errs = append(d.errs, FieldError{Field: d.key(name), Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) take(name string) (any, bool) {
	d.seen[name] = true
	v, ok := d.raw[name]
	return v, ok
}

// rejectUnknown records a violation for every key the decoder never
// consumed.
func (d *decoder) rejectUnknown() {
	for k := range d.raw {
		if !d.seen[k] {
			d.fail(k, "unknown field")
		}
	}
}

func (d *decoder) requireString(name string) (string, bool) {
	v, ok := d.take(name)
	if !ok {
		d.fail(name, "missing required field")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.fail(name, "must be a string")
		return "", false
	}
	return s, true
}

func (d *decoder) optionalString(name string) (string, bool) {
	v, ok := d.take(name)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.fail(name, "must be a string")
		return "", false
	}
	return s, true
}

func (d *decoder) requireNumber(name string) (float64, bool) {
	v, ok := d.take(name)
	if !ok {
		d.fail(name, "missing required field")
		return 0, false
	}
	return d.numberOf(name, v)
}

func (d *decoder) optionalNumber(name string) (float64, bool) {
	v, ok := d.take(name)
	if !ok || v == nil {
		return 0, false
	}
	return d.numberOf(name, v)
}

func (d *decoder) numberOf(name string, v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		d.fail(name, "must be a number")
		return 0, false
	}
}

// intOf additionally rejects fractional values.
func (d *decoder) intOf(name string, v float64) (int, bool) {
	if v != math.Trunc(v) {
		d.fail(name, "must be an integer")
		return 0, false
	}
	return int(v), true
}

func (d *decoder) boolOr(name string, def bool) bool {
	v, ok := d.take(name)
	if !ok || v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(name, "must be a boolean")
		return def
	}
	return b
}

func (d *decoder) requireObject(name string) (map[string]any, bool) {
	v, ok := d.take(name)
	if !ok {
		d.fail(name, "missing required field")
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		d.fail(name, "must be an object")
		return nil, false
	}
	return obj, true
}

func (d *decoder) optionalObject(name string) (map[string]any, bool) {
	v, ok := d.take(name)
	if !ok || v == nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		d.fail(name, "must be an object")
		return nil, false
	}
	return obj, true
}

func (d *decoder) requireArray(name string) ([]any, bool) {
	v, ok := d.take(name)
	if !ok {
		d.fail(name, "missing required field")
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		d.fail(name, "must be an array")
		return nil, false
	}
	return arr, true
}

func (d *decoder) optionalArray(name string) ([]any, bool) {
	v, ok := d.take(name)
	if !ok || v == nil {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		d.fail(name, "must be an array")
		return nil, false
	}
	return arr, true
}

// stringSlice converts an array value into []string, flagging every
// non-string element individually.
func (d *decoder) stringSlice(name string, arr []any) []string {
	out := make([]string, 0, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			d.fail(fmt.Sprintf("%s[%d]", name, i), "must be a string")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) rangeCheck(name string, v, min, max float64) bool {
	if v < min || v > max {
		d.fail(name, "must be between %v and %v", min, max)
		return false
	}
	return true
}

func (d *decoder) requireUUID(name string) (uuid.UUID, bool) {
	s, ok := d.requireString(name)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.fail(name, "must be a UUID")
		return uuid.UUID{}, false
	}
	return id, true
}

func (d *decoder) optionalTimestamp(name string) *time.Time {
	s, ok := d.optionalString(name)
	if !ok {
		return nil
	}
	ts, err := parseTimestamp(s)
	if err != nil {
		d.fail(name, "must be an ISO-8601 UTC timestamp")
		return nil
	}
	return &ts
}

func decodeTestRequest(d *decoder) *TestRequestContent {
	c := &TestRequestContent{}
	if s, ok := d.requireString("test_type"); ok {
		tt, err := ParseTestType(s)
		if err != nil {
			d.fail("test_type", "%s", err)
		}
		c.TestType = tt
	}
	if s, ok := d.requireString("test_file"); ok {
		if !pathPattern.MatchString(s) {
			d.fail("test_file", "must match [a-zA-Z0-9/._-]+")
		} else if !hasSourceExtension(s) {
			d.fail("test_file", "must end in a recognized source extension (%s)", strings.Join(sourceExtensions, ", "))
		}
		c.TestFile = s
	}
	if obj, ok := d.requireObject("parameters"); ok {
		p := newDecoder(obj, d.key("parameters"))
		if s, ok := p.requireString("environment"); ok {
			env, err := ParseEnvironment(s)
			if err != nil {
				p.fail("environment", "%s", err)
			}
			c.Parameters.Environment = env
		}
		c.Parameters.Verbose = p.boolOr("verbose", false)
		c.Parameters.Parallel = p.boolOr("parallel", false)
		c.Parameters.Coverage = p.boolOr("coverage", false)
		if n, ok := p.optionalNumber("timeout_seconds"); ok {
			if i, ok := p.intOf("timeout_seconds", n); ok && p.rangeCheck("timeout_seconds", n, 1, 3600) {
				c.Parameters.TimeoutSeconds = &i
			}
		}
		p.rejectUnknown()
		d.errs = append(d.errs, p.errs...)
	}
	return c
}

func decodeTestResult(d *decoder) *TestResultContent {
	c := &TestResultContent{Logs: []string{}, Artifacts: []TestArtifact{}}
	if id, ok := d.requireUUID("test_id"); ok {
		c.TestID = id
	}
	if s, ok := d.requireString("status"); ok {
		outcome, err := ParseTestOutcome(s)
		if err != nil {
			d.fail("status", "%s", err)
		}
		c.Status = outcome
	}
	if arr, ok := d.optionalArray("logs"); ok {
		c.Logs = d.stringSlice("logs", arr)
	}
	if arr, ok := d.optionalArray("artifacts"); ok {
		for i, v := range arr {
			name := fmt.Sprintf("artifacts[%d]", i)
			obj, isObj := v.(map[string]any)
			if !isObj {
				d.fail(name, "must be an object")
				continue
			}
			a := newDecoder(obj, d.key(name))
			artifact := TestArtifact{}
			if s, ok := a.requireString("path"); ok {
				if !pathPattern.MatchString(s) {
					a.fail("path", "must match [a-zA-Z0-9/._-]+")
				}
				artifact.Path = s
			}
			if s, ok := a.requireString("type"); ok {
				at, err := ParseArtifactType(s)
				if err != nil {
					a.fail("type", "%s", err)
				}
				artifact.Type = at
			}
			if n, ok := a.optionalNumber("size_bytes"); ok {
				if size, ok := a.intOf("size_bytes", n); ok {
					if size < 0 {
						a.fail("size_bytes", "must be >= 0")
					} else {
						artifact.SizeBytes = &size
					}
				}
			}
			artifact.CreatedAt = a.optionalTimestamp("created_at")
			a.rejectUnknown()
			d.errs = append(d.errs, a.errs...)
			c.Artifacts = append(c.Artifacts, artifact)
		}
	}
	if n, ok := d.optionalNumber("execution_time_seconds"); ok {
		if n < 0 {
			d.fail("execution_time_seconds", "must be >= 0")
		} else {
			c.ExecutionTimeSeconds = &n
		}
	}
	if n, ok := d.optionalNumber("coverage_percentage"); ok {
		if d.rangeCheck("coverage_percentage", n, 0, 100) {
			c.CoveragePercentage = &n
		}
	}
	return c
}

func decodeStatusUpdate(d *decoder) *StatusUpdateContent {
	c := &StatusUpdateContent{}
	if s, ok := d.requireString("agent_id"); ok {
		if !agentIDPattern.MatchString(s) {
			d.fail("agent_id", "must match [a-zA-Z0-9_-]+")
		}
		c.AgentID = s
	}
	if s, ok := d.requireString("state"); ok {
		st, err := ParseAgentState(s)
		if err != nil {
			d.fail("state", "%s", err)
		}
		c.State = st
	}
	if n, ok := d.requireNumber("progress"); ok {
		d.rangeCheck("progress", n, 0, 100)
		c.Progress = n
	}
	if s, ok := d.optionalString("current_task"); ok {
		c.CurrentTask = s
	}
	c.EstimatedCompletion = d.optionalTimestamp("estimated_completion")
	return c
}

func decodeContextUpdate(d *decoder) *ContextUpdateContent {
	c := &ContextUpdateContent{}
	if id, ok := d.requireUUID("context_id"); ok {
		c.ContextID = id
	}
	if s, ok := d.requireString("type"); ok {
		op, err := ParseContextOp(s)
		if err != nil {
			d.fail("type", "%s", err)
		}
		c.Op = op
	}
	if obj, ok := d.requireObject("data"); ok {
		c.Data = obj
	}
	if obj, ok := d.optionalObject("metadata"); ok {
		c.Metadata = obj
	}
	return c
}

func decodeWorkflowRequest(d *decoder) *WorkflowRequestContent {
	c := &WorkflowRequestContent{
		Parameters:      map[string]any{},
		FailureStrategy: FailAbort,
	}
	if s, ok := d.requireString("workflow_name"); ok {
		if !agentIDPattern.MatchString(s) {
			d.fail("workflow_name", "must match [a-zA-Z0-9_-]+")
		}
		c.WorkflowName = s
	}
	if arr, ok := d.requireArray("steps"); ok {
		c.Steps = make([]WorkflowStep, 0, len(arr))
		for i, v := range arr {
			name := fmt.Sprintf("steps[%d]", i)
			obj, isObj := v.(map[string]any)
			if !isObj {
				d.fail(name, "must be an object")
				continue
			}
			s := newDecoder(obj, d.key(name))
			step := WorkflowStep{
				Parameters:     map[string]any{},
				TimeoutSeconds: 300,
				RetryCount:     0,
				DependsOn:      []string{},
			}
			step.Name, _ = s.requireString("name")
			step.Action, _ = s.requireString("action")
			if obj, ok := s.optionalObject("parameters"); ok {
				step.Parameters = obj
			}
			if n, ok := s.optionalNumber("timeout_seconds"); ok {
				if i, ok := s.intOf("timeout_seconds", n); ok && s.rangeCheck("timeout_seconds", n, 1, 3600) {
					step.TimeoutSeconds = i
				}
			}
			if n, ok := s.optionalNumber("retry_count"); ok {
				if i, ok := s.intOf("retry_count", n); ok && s.rangeCheck("retry_count", n, 0, 5) {
					step.RetryCount = i
				}
			}
			if arr, ok := s.optionalArray("depends_on"); ok {
				step.DependsOn = s.stringSlice("depends_on", arr)
			}
			s.rejectUnknown()
			d.errs = append(d.errs, s.errs...)
			c.Steps = append(c.Steps, step)
		}
	}
	if obj, ok := d.optionalObject("parameters"); ok {
		c.Parameters = obj
	}
	c.ParallelExecution = d.boolOr("parallel_execution", false)
	if s, ok := d.optionalString("failure_strategy"); ok {
		fs, err := ParseFailureStrategy(s)
		if err != nil {
			d.fail("failure_strategy", "%s", err)
		} else {
			c.FailureStrategy = fs
		}
	}
	return c
}

var validationTypes = map[string]bool{
	"schema": true, "documentation": true, "messages": true, "project": true,
}

func decodeValidationRequest(d *decoder) *ValidationRequestContent {
	c := &ValidationRequestContent{
		ValidationLevel: LevelEnhanced,
		GenerateReport:  true,
	}
	if s, ok := d.requireString("validation_type"); ok {
		if !validationTypes[s] {
			d.fail("validation_type", "must be one of schema, documentation, messages, project")
		}
		c.ValidationType = s
	}
	if arr, ok := d.requireArray("target_files"); ok {
		if len(arr) == 0 {
			d.fail("target_files", "must not be empty")
		}
		c.TargetFiles = d.stringSlice("target_files", arr)
	}
	if s, ok := d.optionalString("validation_level"); ok {
		lvl, err := ParseValidationLevel(s)
		if err != nil {
			d.fail("validation_level", "%s", err)
		} else {
			c.ValidationLevel = lvl
		}
	}
	c.AutoFix = d.boolOr("auto_fix", false)
	c.GenerateReport = d.boolOr("generate_report", true)
	return c
}

var documentationUpdateTypes = map[string]bool{
	"create": true, "update": true, "delete": true, "sync": true,
}

func decodeDocumentationUpdate(d *decoder) *DocumentationUpdateContent {
	c := &DocumentationUpdateContent{}
	if s, ok := d.requireString("update_type"); ok {
		if !documentationUpdateTypes[s] {
			d.fail("update_type", "must be one of create, update, delete, sync")
		}
		c.UpdateType = s
	}
	if arr, ok := d.requireArray("target_documents"); ok {
		if len(arr) == 0 {
			d.fail("target_documents", "must not be empty")
		}
		c.TargetDocuments = d.stringSlice("target_documents", arr)
	}
	if s, ok := d.optionalString("template_name"); ok {
		c.TemplateName = s
	}
	if obj, ok := d.optionalObject("metadata_updates"); ok {
		c.MetadataUpdates = obj
	}
	c.AutoGenerate = d.boolOr("auto_generate", false)
	return c
}

package workflow

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a workflow definition. Unknown YAML fields are
// rejected so an authoring typo fails here rather than surfacing later
// as a message validation error on a half-built request.
func Load(fs afero.Fs, path string) (*Definition, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("workflow: parse %s: %w", path, err)
	}

	if err := validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// validate performs the structural checks that have no message-level
// equivalent: the message schema can't tell a dependency on a step that
// doesn't exist from a valid one.
func validate(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("workflow: name is required")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("workflow: at least one step is required")
	}

	names := make(map[string]bool, len(def.Steps))
	for i, step := range def.Steps {
		if step.Name == "" {
			return fmt.Errorf("workflow: step %d has no name", i)
		}
		if names[step.Name] {
			return fmt.Errorf("workflow: duplicate step name %q", step.Name)
		}
		names[step.Name] = true
	}
	for _, step := range def.Steps {
		for _, dep := range step.DependsOn {
			if !names[dep] {
				return fmt.Errorf("workflow: step %q depends on unknown step %q", step.Name, dep)
			}
		}
	}
	return nil
}

// Content converts the definition into the raw content map of a
// workflow request message. Zero values are omitted so the message
// decoder applies its own defaults.
func (def *Definition) Content() map[string]any {
	steps := make([]any, 0, len(def.Steps))
	for _, s := range def.Steps {
		step := map[string]any{
			"name":   s.Name,
			"action": s.Action,
		}
		if s.Parameters != nil {
			step["parameters"] = s.Parameters
		}
		if s.TimeoutSeconds != 0 {
			step["timeout_seconds"] = float64(s.TimeoutSeconds)
		}
		if s.RetryCount != 0 {
			step["retry_count"] = float64(s.RetryCount)
		}
		if len(s.DependsOn) > 0 {
			deps := make([]any, len(s.DependsOn))
			for i, d := range s.DependsOn {
				deps[i] = d
			}
			step["depends_on"] = deps
		}
		steps = append(steps, step)
	}

	content := map[string]any{
		"workflow_name": def.Name,
		"steps":         steps,
	}
	if def.Parameters != nil {
		content["parameters"] = def.Parameters
	}
	if def.ParallelExecution {
		content["parallel_execution"] = true
	}
	if def.FailureStrategy != "" {
		content["failure_strategy"] = def.FailureStrategy
	}
	return content
}

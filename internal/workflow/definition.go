// Package workflow loads workflow definitions from YAML files and
// converts them into workflow request content. Definitions are the
// authoring format; the message schema remains the wire contract, so a
// loaded definition is still validated like any hand-written content.
package workflow

// StepDefinition is one step of an authored workflow.
type StepDefinition struct {
	Name           string         `yaml:"name"`
	Action         string         `yaml:"action"`
	Parameters     map[string]any `yaml:"parameters,omitempty"`
	TimeoutSeconds int            `yaml:"timeout_seconds,omitempty"`
	RetryCount     int            `yaml:"retry_count,omitempty"`
	DependsOn      []string       `yaml:"depends_on,omitempty"`
}

// Definition is a complete authored workflow.
type Definition struct {
	Name              string           `yaml:"name"`
	Steps             []StepDefinition `yaml:"steps"`
	Parameters        map[string]any   `yaml:"parameters,omitempty"`
	ParallelExecution bool             `yaml:"parallel_execution,omitempty"`
	FailureStrategy   string           `yaml:"failure_strategy,omitempty"`
}

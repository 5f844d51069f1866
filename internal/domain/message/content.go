package message

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Content is the closed set of type-specific payloads. Exactly one
// concrete content type exists per message Type; decodeContent is the
// total mapping between them.
type Content interface {
	// Kind returns the message type this content belongs to.
	Kind() Type
}

// TestType is the execution category of a test request.
type TestType string

const (
	TestUnit        TestType = "unit"
	TestIntegration TestType = "integration"
	TestE2E         TestType = "e2e"
	TestPerformance TestType = "performance"
)

func ParseTestType(s string) (TestType, error) {
	switch TestType(s) {
	case TestUnit, TestIntegration, TestE2E, TestPerformance:
		return TestType(s), nil
	}
	return "", fmt.Errorf("invalid test type %q", s)
}

// Environment selects the channel a message file belongs to.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return Environment(s), nil
	}
	return "", fmt.Errorf("invalid environment %q", s)
}

// TestOutcome is the result of a finished test run.
type TestOutcome string

const (
	OutcomePassed TestOutcome = "passed"
	OutcomeFailed TestOutcome = "failed"
	OutcomeError  TestOutcome = "error"
)

func ParseTestOutcome(s string) (TestOutcome, error) {
	switch TestOutcome(s) {
	case OutcomePassed, OutcomeFailed, OutcomeError:
		return TestOutcome(s), nil
	}
	return "", fmt.Errorf("invalid test outcome %q", s)
}

// AgentState is the operational state reported in a status update.
type AgentState string

const (
	StateIdle    AgentState = "idle"
	StateBusy    AgentState = "busy"
	StateError   AgentState = "error"
	StateOffline AgentState = "offline"
)

func ParseAgentState(s string) (AgentState, error) {
	switch AgentState(s) {
	case StateIdle, StateBusy, StateError, StateOffline:
		return AgentState(s), nil
	}
	return "", fmt.Errorf("invalid agent state %q", s)
}

// ContextOp is the kind of context modification requested.
type ContextOp string

const (
	ContextAdd    ContextOp = "add"
	ContextUpdate ContextOp = "update"
	ContextRemove ContextOp = "remove"
)

func ParseContextOp(s string) (ContextOp, error) {
	switch ContextOp(s) {
	case ContextAdd, ContextUpdate, ContextRemove:
		return ContextOp(s), nil
	}
	return "", fmt.Errorf("invalid context update type %q", s)
}

// ValidationLevel is the strictness of a validation request.
type ValidationLevel string

const (
	LevelBasic    ValidationLevel = "basic"
	LevelEnhanced ValidationLevel = "enhanced"
	LevelStrict   ValidationLevel = "strict"
)

func ParseValidationLevel(s string) (ValidationLevel, error) {
	switch ValidationLevel(s) {
	case LevelBasic, LevelEnhanced, LevelStrict:
		return ValidationLevel(s), nil
	}
	return "", fmt.Errorf("invalid validation level %q", s)
}

// ArtifactType classifies a test artifact.
type ArtifactType string

const (
	ArtifactLog        ArtifactType = "log"
	ArtifactReport     ArtifactType = "report"
	ArtifactCoverage   ArtifactType = "coverage"
	ArtifactScreenshot ArtifactType = "screenshot"
)

func ParseArtifactType(s string) (ArtifactType, error) {
	switch ArtifactType(s) {
	case ArtifactLog, ArtifactReport, ArtifactCoverage, ArtifactScreenshot:
		return ArtifactType(s), nil
	}
	return "", fmt.Errorf("invalid artifact type %q", s)
}

// FailureStrategy controls how a workflow reacts to a failing step.
type FailureStrategy string

const (
	FailAbort    FailureStrategy = "abort"
	FailContinue FailureStrategy = "continue"
	FailRetry    FailureStrategy = "retry"
)

func ParseFailureStrategy(s string) (FailureStrategy, error) {
	switch FailureStrategy(s) {
	case FailAbort, FailContinue, FailRetry:
		return FailureStrategy(s), nil
	}
	return "", fmt.Errorf("invalid failure strategy %q", s)
}

// TestParameters configures a test execution.
type TestParameters struct {
	Environment    Environment `json:"environment"`
	Verbose        bool        `json:"verbose"`
	TimeoutSeconds *int        `json:"timeout_seconds,omitempty"`
	Parallel       bool        `json:"parallel"`
	Coverage       bool        `json:"coverage"`
}

// TestRequestContent asks another agent to run a test file.
type TestRequestContent struct {
	TestType   TestType       `json:"test_type"`
	TestFile   string         `json:"test_file"`
	Parameters TestParameters `json:"parameters"`
}

func (*TestRequestContent) Kind() Type { return TypeTestRequest }

// TestArtifact is a file produced by a test run.
type TestArtifact struct {
	Path      string       `json:"path"`
	Type      ArtifactType `json:"type"`
	SizeBytes *int         `json:"size_bytes,omitempty"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// TestResultContent reports the outcome of a previously requested run.
type TestResultContent struct {
	TestID               uuid.UUID      `json:"test_id"`
	Status               TestOutcome    `json:"status"`
	Logs                 []string       `json:"logs"`
	Artifacts            []TestArtifact `json:"artifacts"`
	ExecutionTimeSeconds *float64       `json:"execution_time_seconds,omitempty"`
	CoveragePercentage   *float64       `json:"coverage_percentage,omitempty"`
}

func (*TestResultContent) Kind() Type { return TypeTestResult }

// StatusUpdateContent reports an agent's operational state.
type StatusUpdateContent struct {
	AgentID             string     `json:"agent_id"`
	State               AgentState `json:"state"`
	Progress            float64    `json:"progress"`
	CurrentTask         string     `json:"current_task,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

func (*StatusUpdateContent) Kind() Type { return TypeStatusUpdate }

// ContextUpdateContent modifies shared context.
type ContextUpdateContent struct {
	ContextID uuid.UUID      `json:"context_id"`
	Op        ContextOp      `json:"type"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (*ContextUpdateContent) Kind() Type { return TypeContextUpdate }

// WorkflowStep is one step of a requested workflow.
type WorkflowStep struct {
	Name           string         `json:"name"`
	Action         string         `json:"action"`
	Parameters     map[string]any `json:"parameters"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	RetryCount     int            `json:"retry_count"`
	DependsOn      []string       `json:"depends_on"`
}

// WorkflowRequestContent asks for a multi-step workflow execution.
type WorkflowRequestContent struct {
	WorkflowName      string          `json:"workflow_name"`
	Steps             []WorkflowStep  `json:"steps"`
	Parameters        map[string]any  `json:"parameters"`
	ParallelExecution bool            `json:"parallel_execution"`
	FailureStrategy   FailureStrategy `json:"failure_strategy"`
}

func (*WorkflowRequestContent) Kind() Type { return TypeWorkflowRequest }

// ValidationRequestContent asks for files to be validated.
type ValidationRequestContent struct {
	ValidationType  string          `json:"validation_type"`
	TargetFiles     []string        `json:"target_files"`
	ValidationLevel ValidationLevel `json:"validation_level"`
	AutoFix         bool            `json:"auto_fix"`
	GenerateReport  bool            `json:"generate_report"`
}

func (*ValidationRequestContent) Kind() Type { return TypeValidationRequest }

// DocumentationUpdateContent asks for documentation changes.
type DocumentationUpdateContent struct {
	UpdateType      string         `json:"update_type"`
	TargetDocuments []string       `json:"target_documents"`
	TemplateName    string         `json:"template_name,omitempty"`
	MetadataUpdates map[string]any `json:"metadata_updates,omitempty"`
	AutoGenerate    bool           `json:"auto_generate"`
}

func (*DocumentationUpdateContent) Kind() Type { return TypeDocumentationUpdate }

package engine

// Severity classifies how serious a single finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// SourceTool identifies which checker produced a finding.
type SourceTool string

const (
	SourceSchema          SourceTool = "schema"
	SourceLint            SourceTool = "lint"
	SourceSecurity        SourceTool = "security"
	SourceTerraformSyntax SourceTool = "terraform-syntax"
)

// Finding is one normalized diagnostic from one checker.
type Finding struct {
	RawMessage string     `json:"raw_message"`
	Severity   Severity   `json:"severity"`
	SourceTool SourceTool `json:"source_tool"`
	// RuleID is a stable check identifier (e.g. a kube-linter check name
	// or a tfsec rule id). Empty for free-text schema errors.
	RuleID string `json:"rule_id,omitempty"`
}

// CheckResult is the outcome of one checker applied to one file.
// Valid is false whenever Findings is non-empty or ToolError is set.
type CheckResult struct {
	File     string    `json:"file"`
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings,omitempty"`
	// ToolError records a process-level failure of the checker itself
	// (timeout, crash, missing binary, malformed output). It is distinct
	// from a content finding.
	ToolError string `json:"tool_error,omitempty"`
}

// NewCheckResult builds a CheckResult and derives Valid from its contents.
func NewCheckResult(file string, findings []Finding) CheckResult {
	return CheckResult{
		File:     file,
		Valid:    len(findings) == 0,
		Findings: findings,
	}
}

// NewToolErrorResult builds a CheckResult for a checker that failed to run.
func NewToolErrorResult(file, toolErr string) CheckResult {
	return CheckResult{
		File:      file,
		Valid:     false,
		ToolError: toolErr,
	}
}

// Fix is a structured remediation suggestion derived from a single finding.
type Fix struct {
	File    string `json:"file"`
	Type    string `json:"type"`
	Issue   string `json:"issue"`
	FixText string `json:"fix"`
	Example string `json:"example,omitempty"`
}

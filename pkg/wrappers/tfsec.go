package wrappers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/kubevalid/pkg/engine"
)

// TfsecChecker scans Terraform files for security misconfigurations using
// tfsec. Finding severity follows the tool's own rating.
type TfsecChecker struct {
	Runner CommandRunner
}

func (t *TfsecChecker) Name() string {
	return "tfsec"
}

func (t *TfsecChecker) Tool() engine.SourceTool {
	return engine.SourceSecurity
}

func (t *TfsecChecker) runner() CommandRunner {
	if t.Runner != nil {
		return t.Runner
	}
	return ExecRunner{}
}

// tfsecResult mirrors one entry of tfsec's --format json results array.
type tfsecResult struct {
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Resolution  string `json:"resolution"`
	Status      int    `json:"status"`
	Location    struct {
		Filename  string `json:"filename"`
		StartLine int    `json:"start_line"`
	} `json:"location"`
}

type tfsecOutput struct {
	Results []tfsecResult `json:"results"`
}

// mapTfsecSeverity folds tfsec's severity scale into the finding taxonomy.
func mapTfsecSeverity(s string) engine.Severity {
	switch strings.ToUpper(s) {
	case "CRITICAL":
		return engine.SeverityCritical
	case "HIGH":
		return engine.SeverityError
	case "MEDIUM":
		return engine.SeverityWarning
	case "LOW", "INFO":
		return engine.SeverityInfo
	default:
		return engine.SeverityError
	}
}

func (t *TfsecChecker) Check(ctx context.Context, filePath string) engine.CheckResult {
	runner := t.runner()
	if _, err := runner.LookPath("tfsec"); err != nil {
		return engine.NewToolErrorResult(filePath, "tfsec binary not found in PATH")
	}

	// --soft-fail keeps the exit code at zero even when issues are found,
	// so any runner error here is a genuine tool failure.
	stdout, stderr, exitCode, err := runner.Run(ctx, "", "tfsec", "--format", "json", "--soft-fail", filePath)
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("tfsec failed: %v", err))
	}

	var out tfsecOutput
	if parseErr := json.Unmarshal(stdout, &out); parseErr != nil {
		return engine.NewToolErrorResult(filePath,
			fmt.Sprintf("tfsec produced unparseable output (exit %d): %s", exitCode, snippet(stderr)))
	}

	var findings []engine.Finding
	for _, res := range out.Results {
		msg := res.Description
		if res.Resolution != "" {
			msg = fmt.Sprintf("%s (resolution: %s)", res.Description, res.Resolution)
		}
		findings = append(findings, engine.Finding{
			RawMessage: msg,
			Severity:   mapTfsecSeverity(res.Severity),
			SourceTool: engine.SourceSecurity,
			RuleID:     res.RuleID,
		})
	}
	return engine.NewCheckResult(filePath, findings)
}

var _ engine.Checker = (*TfsecChecker)(nil)

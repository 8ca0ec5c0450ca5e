package wrappers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/kubevalid/pkg/engine"
)

// TerraformChecker runs terraform validate against a single file. The file
// is copied into a scratch directory and initialized there so validation of
// one file never touches the repository's own .terraform state.
type TerraformChecker struct {
	Runner CommandRunner
}

func (t *TerraformChecker) Name() string {
	return "terraform"
}

func (t *TerraformChecker) Tool() engine.SourceTool {
	return engine.SourceTerraformSyntax
}

func (t *TerraformChecker) runner() CommandRunner {
	if t.Runner != nil {
		return t.Runner
	}
	return ExecRunner{}
}

// terraformDiagnostic mirrors one entry of terraform validate -json.
type terraformDiagnostic struct {
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Detail   string `json:"detail"`
}

type terraformValidateOutput struct {
	Valid       bool                  `json:"valid"`
	Diagnostics []terraformDiagnostic `json:"diagnostics"`
}

func (t *TerraformChecker) Check(ctx context.Context, filePath string) engine.CheckResult {
	runner := t.runner()
	if _, err := runner.LookPath("terraform"); err != nil {
		return engine.NewToolErrorResult(filePath, "terraform binary not found in PATH")
	}

	workDir, err := os.MkdirTemp("", "kubevalid-tf-")
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("creating scratch dir: %v", err))
	}
	defer os.RemoveAll(workDir)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("reading file: %v", err))
	}
	if err := os.WriteFile(filepath.Join(workDir, filepath.Base(filePath)), data, 0o644); err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("staging file: %v", err))
	}

	// init may fail for files that reference providers we cannot fetch;
	// validate still reports syntax-level diagnostics in that case.
	_, _, _, _ = runner.Run(ctx, workDir, "terraform", "init", "-backend=false", "-input=false")

	stdout, stderr, exitCode, err := runner.Run(ctx, workDir, "terraform", "validate", "-json")
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("terraform validate failed: %v", err))
	}

	var out terraformValidateOutput
	if parseErr := json.Unmarshal(stdout, &out); parseErr != nil {
		return engine.NewToolErrorResult(filePath,
			fmt.Sprintf("terraform validate produced unparseable output (exit %d): %s", exitCode, snippet(stderr)))
	}

	var findings []engine.Finding
	for _, diag := range out.Diagnostics {
		severity := engine.SeverityError
		if diag.Severity == "warning" {
			severity = engine.SeverityWarning
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg = fmt.Sprintf("%s: %s", diag.Summary, diag.Detail)
		}
		findings = append(findings, engine.Finding{
			RawMessage: msg,
			Severity:   severity,
			SourceTool: engine.SourceTerraformSyntax,
		})
	}
	return engine.NewCheckResult(filePath, findings)
}

var _ engine.Checker = (*TerraformChecker)(nil)

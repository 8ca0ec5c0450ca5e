package wrappers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/kubevalid/pkg/engine"
)

// KubeLinterChecker runs kube-linter best-practice analysis over Kubernetes
// manifests. Lint reports carry warning severity and keep the check name as
// the finding's rule id so fixes can be looked up.
type KubeLinterChecker struct {
	// ConfigFile is an optional kube-linter config passed through to the tool.
	ConfigFile string
	Runner     CommandRunner
}

func (k *KubeLinterChecker) Name() string {
	return "kube-linter"
}

func (k *KubeLinterChecker) Tool() engine.SourceTool {
	return engine.SourceLint
}

func (k *KubeLinterChecker) runner() CommandRunner {
	if k.Runner != nil {
		return k.Runner
	}
	return ExecRunner{}
}

// kubeLinterReport mirrors one entry of kube-linter's --format json Reports.
type kubeLinterReport struct {
	Check      string `json:"Check"`
	Diagnostic struct {
		Message string `json:"Message"`
	} `json:"Diagnostic"`
	Remediation string `json:"Remediation"`
}

type kubeLinterOutput struct {
	Reports []kubeLinterReport `json:"Reports"`
}

func (k *KubeLinterChecker) Check(ctx context.Context, filePath string) engine.CheckResult {
	runner := k.runner()
	if _, err := runner.LookPath("kube-linter"); err != nil {
		return engine.NewToolErrorResult(filePath, "kube-linter binary not found in PATH")
	}

	args := []string{"lint", "--format", "json"}
	if k.ConfigFile != "" {
		args = append(args, "--config", k.ConfigFile)
	}
	args = append(args, filePath)

	stdout, stderr, exitCode, err := runner.Run(ctx, "", "kube-linter", args...)
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("kube-linter failed: %v", err))
	}

	// kube-linter exits 0 when clean and 1 when it reports issues; other
	// codes mean the lint run itself broke.
	var out kubeLinterOutput
	if parseErr := json.Unmarshal(stdout, &out); parseErr != nil {
		if exitCode > 1 || exitCode < 0 {
			return engine.NewToolErrorResult(filePath,
				fmt.Sprintf("kube-linter exited %d: %s", exitCode, snippet(stderr)))
		}
		return engine.NewToolErrorResult(filePath,
			fmt.Sprintf("kube-linter produced unparseable output: %v", parseErr))
	}

	var findings []engine.Finding
	for _, report := range out.Reports {
		findings = append(findings, engine.Finding{
			RawMessage: report.Diagnostic.Message,
			Severity:   engine.SeverityWarning,
			SourceTool: engine.SourceLint,
			RuleID:     report.Check,
		})
	}
	return engine.NewCheckResult(filePath, findings)
}

var _ engine.Checker = (*KubeLinterChecker)(nil)

// ListChecks returns the names of every check the installed kube-linter
// supports, for the checks subcommand.
func (k *KubeLinterChecker) ListChecks(ctx context.Context) ([]string, error) {
	runner := k.runner()
	if _, err := runner.LookPath("kube-linter"); err != nil {
		return nil, fmt.Errorf("kube-linter binary not found in PATH")
	}

	stdout, stderr, exitCode, err := runner.Run(ctx, "", "kube-linter", "checks", "list", "--format", "json")
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("kube-linter checks list exited %d: %s", exitCode, snippet(stderr))
	}

	var out struct {
		Checks []struct {
			Name        string `json:"Name"`
			Description string `json:"Description"`
		} `json:"Checks"`
	}
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("parsing checks list: %w", err)
	}

	names := make([]string, 0, len(out.Checks))
	for _, c := range out.Checks {
		names = append(names, c.Name)
	}
	return names, nil
}

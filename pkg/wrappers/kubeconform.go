package wrappers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/kubevalid/pkg/engine"
)

// KubeconformChecker validates Kubernetes manifests against their schemas
// using kubeconform.
type KubeconformChecker struct {
	// SchemaLocation overrides the default schema registry when set.
	SchemaLocation string
	Runner         CommandRunner
}

func (k *KubeconformChecker) Name() string {
	return "kubeconform"
}

func (k *KubeconformChecker) Tool() engine.SourceTool {
	return engine.SourceSchema
}

func (k *KubeconformChecker) runner() CommandRunner {
	if k.Runner != nil {
		return k.Runner
	}
	return ExecRunner{}
}

// kubeconformResource mirrors one entry of kubeconform's -output json.
type kubeconformResource struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Version  string `json:"version"`
	Status   string `json:"status"`
	Msg      string `json:"msg"`
}

type kubeconformOutput struct {
	Resources []kubeconformResource `json:"resources"`
}

func (k *KubeconformChecker) Check(ctx context.Context, filePath string) engine.CheckResult {
	runner := k.runner()
	if _, err := runner.LookPath("kubeconform"); err != nil {
		return engine.NewToolErrorResult(filePath, "kubeconform binary not found in PATH")
	}

	args := []string{"-output", "json"}
	if k.SchemaLocation != "" {
		args = append(args, "-schema-location", k.SchemaLocation)
	}
	args = append(args, filePath)

	stdout, stderr, exitCode, err := runner.Run(ctx, "", "kubeconform", args...)
	if err != nil {
		return engine.NewToolErrorResult(filePath, fmt.Sprintf("kubeconform failed: %v", err))
	}

	var out kubeconformOutput
	if parseErr := json.Unmarshal(stdout, &out); parseErr != nil {
		// kubeconform exits 1 on invalid manifests with JSON on stdout;
		// unparseable output means the run itself went wrong.
		return engine.NewToolErrorResult(filePath,
			fmt.Sprintf("kubeconform produced unparseable output (exit %d): %s", exitCode, snippet(stderr)))
	}

	var findings []engine.Finding
	for _, res := range out.Resources {
		switch res.Status {
		case "statusInvalid", "statusError":
			msg := res.Msg
			if res.Kind != "" {
				msg = fmt.Sprintf("%s/%s: %s", res.Kind, res.Version, res.Msg)
			}
			findings = append(findings, engine.Finding{
				RawMessage: msg,
				Severity:   engine.SeverityError,
				SourceTool: engine.SourceSchema,
			})
		}
	}
	return engine.NewCheckResult(filePath, findings)
}

var _ engine.Checker = (*KubeconformChecker)(nil)

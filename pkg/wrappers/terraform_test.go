package wrappers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/kubevalid/pkg/engine"
)

func writeTempTF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.tf")
	require.NoError(t, os.WriteFile(path, []byte(`resource "null_resource" "x" {}`), 0o644))
	return path
}

// terraformRunner answers init with success and validate with the given JSON.
func terraformRunner(validateJSON string) *fakeRunner {
	return &fakeRunner{run: func(name string, args ...string) ([]byte, []byte, int, error) {
		if len(args) > 0 && args[0] == "validate" {
			return []byte(validateJSON), nil, 0, nil
		}
		return nil, nil, 0, nil
	}}
}

func TestTerraformValidFile(t *testing.T) {
	runner := terraformRunner(`{"valid":true,"diagnostics":[]}`)
	checker := &TerraformChecker{Runner: runner}

	res := checker.Check(context.Background(), writeTempTF(t))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Findings)
}

func TestTerraformDiagnosticsBecomeFindings(t *testing.T) {
	runner := terraformRunner(`{"valid":false,"diagnostics":[
		{"severity":"error","summary":"Unclosed configuration block","detail":"A block must be closed with }"},
		{"severity":"warning","summary":"Deprecated argument","detail":""}
	]}`)
	checker := &TerraformChecker{Runner: runner}

	res := checker.Check(context.Background(), writeTempTF(t))
	assert.False(t, res.Valid)
	require.Len(t, res.Findings, 2)

	assert.Equal(t, engine.SeverityError, res.Findings[0].Severity)
	assert.Equal(t, engine.SourceTerraformSyntax, res.Findings[0].SourceTool)
	assert.Contains(t, res.Findings[0].RawMessage, "Unclosed configuration block")
	assert.Contains(t, res.Findings[0].RawMessage, "A block must be closed")
	assert.Equal(t, engine.SeverityWarning, res.Findings[1].Severity)
}

func TestTerraformRunsInitBeforeValidate(t *testing.T) {
	runner := terraformRunner(`{"valid":true,"diagnostics":[]}`)
	checker := &TerraformChecker{Runner: runner}

	checker.Check(context.Background(), writeTempTF(t))
	require.Len(t, runner.calls, 2)
	assert.Equal(t, "init", runner.calls[0][1])
	assert.Equal(t, "validate", runner.calls[1][1])
}

func TestTerraformMissingBinaryIsToolError(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"terraform": true}}
	checker := &TerraformChecker{Runner: runner}

	res := checker.Check(context.Background(), "main.tf")
	assert.Contains(t, res.ToolError, "not found")
}

func TestTerraformMissingFileIsToolError(t *testing.T) {
	runner := terraformRunner(`{"valid":true,"diagnostics":[]}`)
	checker := &TerraformChecker{Runner: runner}

	res := checker.Check(context.Background(), filepath.Join(t.TempDir(), "absent.tf"))
	assert.Contains(t, res.ToolError, "reading file")
}

func TestTerraformUnparseableOutputIsToolError(t *testing.T) {
	runner := terraformRunner("Terraform has crashed!")
	checker := &TerraformChecker{Runner: runner}

	res := checker.Check(context.Background(), writeTempTF(t))
	assert.Contains(t, res.ToolError, "unparseable")
}

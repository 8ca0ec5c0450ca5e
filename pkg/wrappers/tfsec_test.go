package wrappers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/kubevalid/pkg/engine"
)

func TestTfsecSeverityMapping(t *testing.T) {
	cases := []struct {
		tool string
		want engine.Severity
	}{
		{"CRITICAL", engine.SeverityCritical},
		{"HIGH", engine.SeverityError},
		{"MEDIUM", engine.SeverityWarning},
		{"LOW", engine.SeverityInfo},
		{"INFO", engine.SeverityInfo},
		{"high", engine.SeverityError},
		{"", engine.SeverityError},
		{"UNKNOWN", engine.SeverityError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapTfsecSeverity(tc.tool), "severity %q", tc.tool)
	}
}

func TestTfsecFindings(t *testing.T) {
	runner := &fakeRunner{run: staticOutput(`{"results":[
		{"rule_id":"aws-s3-enable-bucket-encryption","severity":"HIGH","description":"Bucket does not have encryption enabled","resolution":"Configure bucket encryption","location":{"filename":"main.tf","start_line":3}},
		{"rule_id":"aws-s3-enable-versioning","severity":"MEDIUM","description":"Bucket does not have versioning enabled","resolution":"","location":{"filename":"main.tf","start_line":3}}
	]}`, 0)}
	checker := &TfsecChecker{Runner: runner}

	res := checker.Check(context.Background(), "main.tf")
	assert.False(t, res.Valid)
	require.Len(t, res.Findings, 2)

	assert.Equal(t, engine.SeverityError, res.Findings[0].Severity)
	assert.Equal(t, engine.SourceSecurity, res.Findings[0].SourceTool)
	assert.Equal(t, "aws-s3-enable-bucket-encryption", res.Findings[0].RuleID)
	assert.Contains(t, res.Findings[0].RawMessage, "resolution: Configure bucket encryption")

	assert.Equal(t, engine.SeverityWarning, res.Findings[1].Severity)
	assert.NotContains(t, res.Findings[1].RawMessage, "resolution:")
}

func TestTfsecCleanFile(t *testing.T) {
	runner := &fakeRunner{run: staticOutput(`{"results":[]}`, 0)}
	checker := &TfsecChecker{Runner: runner}

	res := checker.Check(context.Background(), "main.tf")
	assert.True(t, res.Valid)
}

func TestTfsecUsesSoftFail(t *testing.T) {
	runner := &fakeRunner{run: staticOutput(`{"results":[]}`, 0)}
	checker := &TfsecChecker{Runner: runner}

	checker.Check(context.Background(), "main.tf")
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--soft-fail")
}

func TestTfsecMissingBinaryIsToolError(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"tfsec": true}}
	checker := &TfsecChecker{Runner: runner}

	res := checker.Check(context.Background(), "main.tf")
	assert.Contains(t, res.ToolError, "not found")
}

func TestTfsecUnparseableOutputIsToolError(t *testing.T) {
	runner := &fakeRunner{run: staticOutput("not json", 1)}
	checker := &TfsecChecker{Runner: runner}

	res := checker.Check(context.Background(), "main.tf")
	assert.Contains(t, res.ToolError, "unparseable")
}

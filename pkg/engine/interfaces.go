package engine

import "context"

// Checker inspects a single artifact file and reports findings. Implementations
// wrap external tools (kubeconform, kube-linter, tfsec, terraform validate) and
// must normalize their output into a CheckResult at this boundary. A checker
// never returns an error: process-level failures are reported through the
// CheckResult's ToolError field.
type Checker interface {
	// Name is a short human-readable checker name used in logs and reports.
	Name() string
	// Tool identifies which SourceTool this checker's findings carry.
	Tool() SourceTool
	// Check runs the checker on one file. The context carries the
	// per-invocation timeout; on expiry the underlying process is killed
	// and the result records a tool error.
	Check(ctx context.Context, filePath string) CheckResult
}

// ProgressSink is an append-only durable destination for partial report
// output. Writes must be flushed before Append returns so a crash mid-run
// leaves a readable prefix of the report.
type ProgressSink interface {
	Append(text string) error
	Exists() bool
}

// SummaryContext carries run metadata handed to the Summarizer alongside the
// aggregate, so the narrative can reference the repository and the worst files.
type SummaryContext struct {
	Repository      string
	Branch          string
	FilesAnalyzed   int
	TopProblemFiles []string
	SampleFindings  []Finding
}

// Summarizer produces narrative analysis text from a ValidationSummary.
// Implementations must degrade their own failures into inline text rather
// than aborting the run.
type Summarizer interface {
	Summarize(ctx context.Context, summary ValidationSummary, sctx SummaryContext) string
}

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the terminal state of an orchestrated run.
type Status string

const (
	// StatusSuccessClean means every file was checked and nothing was found.
	StatusSuccessClean Status = "success-clean"
	// StatusSuccessWithFindings means the run completed and reported findings.
	StatusSuccessWithFindings Status = "success-with-findings"
	// StatusNoFiles means there was nothing to validate.
	StatusNoFiles Status = "no-files-found"
	// StatusPartialFailure means some batches or files were skipped but at
	// least one batch succeeded.
	StatusPartialFailure Status = "partial-failure"
	// StatusTotalFailure means zero batches succeeded.
	StatusTotalFailure Status = "total-failure"
)

// SkippedBatch records a batch that failed structurally, with its reason.
type SkippedBatch struct {
	Number int      `json:"batch_number"`
	Files  []string `json:"files"`
	Reason string   `json:"reason"`
}

// Report is the final run outcome handed back to the CLI layer.
type Report struct {
	Status           Status            `json:"status"`
	RunID            string            `json:"run_id,omitempty"`
	Repository       string            `json:"repository,omitempty"`
	Branch           string            `json:"branch,omitempty"`
	TotalFiles       int               `json:"total_files"`
	ProcessedFiles   int               `json:"processed_files"`
	SkippedFiles     []string          `json:"skipped_files,omitempty"`
	BatchesProcessed int               `json:"batches_processed"`
	BatchesSkipped   int               `json:"batches_skipped"`
	SkippedBatches   []SkippedBatch    `json:"skipped_batches,omitempty"`
	Summary          ValidationSummary `json:"summary"`
	ReportText       string            `json:"report"`
}

// OrchestratorConfig carries the run-level settings the orchestrator needs.
type OrchestratorConfig struct {
	BatchSize   int
	SingleBatch bool
	Repository  string
	Branch      string
	RunID       string
}

// Orchestrator drives the full pipeline: partition the file set, run each
// batch, fold results incrementally, append per-batch fragments to the
// progress sink, then produce the cumulative summary and narrative report.
// A failed batch never aborts the run; only an all-batches failure does.
type Orchestrator struct {
	cfg        OrchestratorConfig
	runner     *BatchRunner
	sink       ProgressSink
	summarizer Summarizer

	// Logf receives progress lines; nil disables progress output.
	Logf func(format string, args ...interface{})
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(cfg OrchestratorConfig, runner *BatchRunner, sink ProgressSink, summarizer Summarizer) *Orchestrator {
	return &Orchestrator{cfg: cfg, runner: runner, sink: sink, summarizer: summarizer}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Run validates the given files and assembles the final report. The error
// return is reserved for precondition failures before batching is possible;
// batch-level and file-level failures are reported inside the Report.
func (o *Orchestrator) Run(ctx context.Context, files []string) (*Report, error) {
	report := &Report{
		RunID:      o.cfg.RunID,
		Repository: o.cfg.Repository,
		Branch:     o.cfg.Branch,
		TotalFiles: len(files),
	}

	if len(files) == 0 {
		report.Status = StatusNoFiles
		report.Summary = Summarize(nil)
		report.ReportText = "No Kubernetes or Terraform files were found to validate."
		return report, nil
	}

	batches, err := Partition(files, o.cfg.BatchSize)
	if err != nil {
		report.Status = StatusTotalFailure
		return report, fmt.Errorf("partitioning file set: %w", err)
	}
	if o.cfg.SingleBatch {
		batches = batches[:1]
		report.TotalFiles = len(batches[0].Files)
	}

	// Header goes out before the first batch so even a crash during batch
	// one leaves an identifiable report prefix. A failing sink here will
	// fail again per batch and be recorded there.
	if err := o.sink.Append(o.header(len(batches))); err != nil {
		o.logf("warning: could not write report header: %v", err)
	}

	agg := NewAggregator()
	var fragments []string
	skippedFiles := make(map[string]bool)

	total := len(batches)
	for _, batch := range batches {
		if ctx.Err() != nil {
			report.SkippedBatches = append(report.SkippedBatches, SkippedBatch{
				Number: batch.Number,
				Files:  batch.Files,
				Reason: fmt.Sprintf("run cancelled: %v", ctx.Err()),
			})
			continue
		}

		o.logf("Processing batch %d/%d (%d files)...", batch.Number, total, len(batch.Files))
		outcome := o.runner.Run(ctx, batch)
		fragment := formatBatchFragment(batch, total, outcome)

		// The fragment must be durable before the next batch starts; a
		// sink failure is a batch-level failure and the batch's results
		// are not folded.
		if err := o.sink.Append(fragment); err != nil {
			o.logf("batch %d failed: %v", batch.Number, err)
			report.SkippedBatches = append(report.SkippedBatches, SkippedBatch{
				Number: batch.Number,
				Files:  batch.Files,
				Reason: fmt.Sprintf("writing batch report: %v", err),
			})
			continue
		}

		agg.Add(outcome.Results...)
		fragments = append(fragments, fragment)
		for _, f := range outcome.Skipped {
			skippedFiles[f] = true
		}
		report.BatchesProcessed++
	}

	report.BatchesSkipped = len(report.SkippedBatches)
	for _, f := range files {
		if skippedFiles[f] {
			report.SkippedFiles = append(report.SkippedFiles, f)
		}
	}
	report.ProcessedFiles = report.TotalFiles - len(report.SkippedFiles)

	if report.BatchesProcessed == 0 {
		report.Status = StatusTotalFailure
		report.Summary = Summarize(nil)
		report.ReportText = formatTotalFailure(report.SkippedBatches)
		return report, nil
	}

	summary := agg.Summary()
	report.Summary = summary

	narrative := o.summarizer.Summarize(ctx, summary, SummaryContext{
		Repository:      o.cfg.Repository,
		Branch:          o.cfg.Branch,
		FilesAnalyzed:   report.ProcessedFiles,
		TopProblemFiles: problemFileNames(summary),
		SampleFindings:  sampleFindings(agg.Results(), 10),
	})

	var sb strings.Builder
	sb.WriteString(narrative)
	if len(fragments) > 0 {
		sb.WriteString("\n\n" + strings.Repeat("=", 100) + "\n")
		sb.WriteString("BATCH-BY-BATCH ANALYSIS\n")
		sb.WriteString(strings.Repeat("=", 100) + "\n\n")
		for _, frag := range fragments {
			sb.WriteString(frag)
		}
	}
	notes := formatProcessingNotes(report, len(files))
	sb.WriteString(notes)
	report.ReportText = sb.String()

	if notes != "" {
		if err := o.sink.Append(notes); err != nil {
			o.logf("warning: could not write processing notes: %v", err)
		}
	}

	switch {
	case report.BatchesSkipped > 0 || len(report.SkippedFiles) > 0:
		report.Status = StatusPartialFailure
	case summary.TotalErrors == 0 && summary.TotalWarnings == 0 && summary.InvalidFiles == 0:
		report.Status = StatusSuccessClean
	default:
		report.Status = StatusSuccessWithFindings
	}
	return report, nil
}

func (o *Orchestrator) header(totalBatches int) string {
	var sb strings.Builder
	line := strings.Repeat("=", 100)
	sb.WriteString(line + "\n")
	sb.WriteString("INFRASTRUCTURE VALIDATION REPORT\n")
	sb.WriteString(line + "\n")
	if o.cfg.Repository != "" {
		sb.WriteString(fmt.Sprintf("Repository: %s\n", o.cfg.Repository))
	}
	if o.cfg.Branch != "" {
		sb.WriteString(fmt.Sprintf("Branch: %s\n", o.cfg.Branch))
	}
	sb.WriteString(fmt.Sprintf("Batch size: %d\n", o.cfg.BatchSize))
	sb.WriteString(fmt.Sprintf("Batches: %d\n", totalBatches))
	if o.cfg.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run ID: %s\n", o.cfg.RunID))
	}
	sb.WriteString(fmt.Sprintf("Started: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(line + "\n\n")
	return sb.String()
}

// fragmentExampleLimit bounds how many example messages a batch fragment
// shows per file.
const fragmentExampleLimit = 3

func formatBatchFragment(batch Batch, total int, outcome BatchOutcome) string {
	errorsByFile := make(map[string][]string)
	warningsByFile := make(map[string][]string)
	errCount, warnCount := 0, 0
	for _, res := range outcome.Results {
		for _, f := range res.Findings {
			switch f.Severity {
			case SeverityError, SeverityCritical:
				errCount++
				errorsByFile[res.File] = append(errorsByFile[res.File], f.RawMessage)
			case SeverityWarning:
				warnCount++
				line := f.RawMessage
				if f.RuleID != "" {
					line = f.RuleID + ": " + line
				}
				warningsByFile[res.File] = append(warningsByFile[res.File], line)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("BATCH %d/%d\n", batch.Number, total))
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	sb.WriteString(fmt.Sprintf("Files: %s\n", strings.Join(batch.Files, ", ")))
	sb.WriteString(fmt.Sprintf("Errors: %d  Warnings: %d\n", errCount, warnCount))
	if len(outcome.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("Skipped files: %s\n", strings.Join(outcome.Skipped, ", ")))
	}

	writeExamples := func(title string, byFile map[string][]string) {
		if len(byFile) == 0 {
			return
		}
		sb.WriteString("\n" + title + "\n")
		for _, file := range batch.Files {
			msgs := byFile[file]
			if len(msgs) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s:\n", file))
			for i, msg := range msgs {
				if i == fragmentExampleLimit {
					sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(msgs)-fragmentExampleLimit))
					break
				}
				sb.WriteString(fmt.Sprintf("    - %s\n", msg))
			}
		}
	}
	writeExamples("Schema and syntax errors:", errorsByFile)
	writeExamples("Best practice warnings:", warningsByFile)

	if errCount == 0 && warnCount == 0 && len(outcome.Skipped) == 0 {
		sb.WriteString("No issues found in this batch.\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// skippedSampleLimit bounds how many skipped files the processing notes list.
const skippedSampleLimit = 10

func formatProcessingNotes(report *Report, totalFiles int) string {
	if report.BatchesSkipped == 0 && len(report.SkippedFiles) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nPROCESSING NOTES\n")
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	if report.BatchesSkipped > 0 {
		sb.WriteString(fmt.Sprintf("- %d batches were skipped due to processing errors\n", report.BatchesSkipped))
		for _, skip := range report.SkippedBatches {
			sb.WriteString(fmt.Sprintf("  batch %d: %s\n", skip.Number, skip.Reason))
		}
	}
	if len(report.SkippedFiles) > 0 {
		sb.WriteString(fmt.Sprintf("- %d files were skipped due to tool-level errors\n", len(report.SkippedFiles)))
	}
	sb.WriteString(fmt.Sprintf("- %d of %d files were successfully analyzed\n", report.ProcessedFiles, totalFiles))
	sb.WriteString("- The report was generated from successfully processed files only\n")

	if len(report.SkippedFiles) > 0 {
		sb.WriteString("\nSkipped files (sample):\n")
		for i, f := range report.SkippedFiles {
			if i == skippedSampleLimit {
				sb.WriteString(fmt.Sprintf("  ... and %d more files\n", len(report.SkippedFiles)-skippedSampleLimit))
				break
			}
			sb.WriteString(fmt.Sprintf("  - %s\n", f))
		}
	}
	return sb.String()
}

func formatTotalFailure(skipped []SkippedBatch) string {
	var sb strings.Builder
	sb.WriteString("All batches failed during validation processing.\n\n")
	for _, skip := range skipped {
		sb.WriteString(fmt.Sprintf("Batch %d (%d files): %s\n", skip.Number, len(skip.Files), skip.Reason))
	}
	return sb.String()
}

func problemFileNames(summary ValidationSummary) []string {
	names := make([]string, 0, len(summary.TopProblemFiles))
	for _, p := range summary.TopProblemFiles {
		names = append(names, p.File)
	}
	return names
}

func sampleFindings(results []CheckResult, limit int) []Finding {
	var sample []Finding
	for _, res := range results {
		for _, f := range res.Findings {
			if len(sample) == limit {
				return sample
			}
			sample = append(sample, f)
		}
	}
	return sample
}

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/user/kubevalid/pkg/engine"
)

// ValidationAgent produces the narrative analysis section of the final
// report. It implements engine.Summarizer.
type ValidationAgent struct {
	provider LLMProvider

	// now is replaceable in tests so report headers are stable.
	now func() time.Time
}

// NewValidationAgent creates an agent on top of an LLM provider. A nil
// provider is allowed: the narrative then carries the degraded analysis
// notice instead of AI text.
func NewValidationAgent(provider LLMProvider) *ValidationAgent {
	return &ValidationAgent{provider: provider, now: time.Now}
}

// Summarize renders the formatted analysis report for a validation summary.
// A provider failure is reported inline as degraded text; this method never
// aborts the run.
func (a *ValidationAgent) Summarize(ctx context.Context, summary engine.ValidationSummary, sctx engine.SummaryContext) string {
	aiText := a.aiAnalysis(ctx, summary, sctx)
	return a.formatReport(summary, sctx, aiText)
}

func (a *ValidationAgent) aiAnalysis(ctx context.Context, summary engine.ValidationSummary, sctx engine.SummaryContext) string {
	if a.provider == nil {
		return "AI analysis unavailable: no provider configured"
	}

	prompt := buildAnalysisPrompt(summary, sctx)
	Debugf("analysis prompt:\n%s", prompt)

	text, err := a.provider.Complete(ctx, GetSystemPrompt(), prompt)
	if err != nil {
		return fmt.Sprintf("AI analysis unavailable: %v", err)
	}
	return text
}

// promptSampleLimit bounds how many raw findings are included in the prompt.
const promptSampleLimit = 10

func buildAnalysisPrompt(summary engine.ValidationSummary, sctx engine.SummaryContext) string {
	var sb strings.Builder

	sb.WriteString("Please analyze these infrastructure validation results:\n\n")
	if sctx.Repository != "" {
		sb.WriteString(fmt.Sprintf("Repository: %s", sctx.Repository))
		if sctx.Branch != "" {
			sb.WriteString(fmt.Sprintf(" (branch %s)", sctx.Branch))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nVALIDATION SUMMARY:\n")
	sb.WriteString(fmt.Sprintf("- Files analyzed: %d\n", summary.TotalFiles))
	sb.WriteString(fmt.Sprintf("- Valid files: %d\n", summary.ValidFiles))
	sb.WriteString(fmt.Sprintf("- Invalid files: %d\n", summary.InvalidFiles))
	sb.WriteString(fmt.Sprintf("- Errors: %d\n", summary.TotalErrors))
	sb.WriteString(fmt.Sprintf("- Warnings: %d\n", summary.TotalWarnings))

	if len(summary.ErrorsByCategory) > 0 {
		sb.WriteString("\nERRORS BY CATEGORY:\n")
		writeCategoryCounts(&sb, summary.ErrorsByCategory)
	}
	if len(summary.WarningsByCategory) > 0 {
		sb.WriteString("\nWARNINGS BY CATEGORY:\n")
		writeCategoryCounts(&sb, summary.WarningsByCategory)
	}

	if len(sctx.TopProblemFiles) > 0 {
		sb.WriteString("\nFILES WITH MOST ISSUES:\n")
		for _, f := range sctx.TopProblemFiles {
			sb.WriteString(fmt.Sprintf("- %s\n", f))
		}
	}

	if len(sctx.SampleFindings) > 0 {
		sb.WriteString("\nSAMPLE FINDINGS:\n")
		for i, f := range sctx.SampleFindings {
			if i == promptSampleLimit {
				break
			}
			if f.RuleID != "" {
				sb.WriteString(fmt.Sprintf("- [%s/%s] %s: %s\n", f.SourceTool, f.Severity, f.RuleID, f.RawMessage))
			} else {
				sb.WriteString(fmt.Sprintf("- [%s/%s] %s\n", f.SourceTool, f.Severity, f.RawMessage))
			}
		}
	}
	return sb.String()
}

func writeCategoryCounts(sb *strings.Builder, counts map[engine.Category]int) {
	type entry struct {
		cat engine.Category
		n   int
	}
	entries := make([]entry, 0, len(counts))
	for cat, n := range counts {
		entries = append(entries, entry{cat, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].cat < entries[j].cat
	})
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", e.cat, e.n))
	}
}

// fixListLimit bounds the suggested-fix section of the report.
const fixListLimit = 10

func (a *ValidationAgent) formatReport(summary engine.ValidationSummary, sctx engine.SummaryContext, aiText string) string {
	var sb strings.Builder
	line := strings.Repeat("=", 60)

	sb.WriteString(line + "\n")
	sb.WriteString("INFRASTRUCTURE VALIDATION ANALYSIS\n")
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", a.now().Format("2006-01-02 15:04:05")))
	if sctx.Repository != "" {
		sb.WriteString(fmt.Sprintf("Repository: %s\n", sctx.Repository))
	}
	sb.WriteString("\n")

	sb.WriteString("VALIDATION SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	sb.WriteString(fmt.Sprintf("Total Files:   %d\n", summary.TotalFiles))
	sb.WriteString(fmt.Sprintf("Valid Files:   %d\n", summary.ValidFiles))
	sb.WriteString(fmt.Sprintf("Invalid Files: %d\n", summary.InvalidFiles))
	sb.WriteString(fmt.Sprintf("Errors:        %d\n", summary.TotalErrors))
	sb.WriteString(fmt.Sprintf("Warnings:      %d\n", summary.TotalWarnings))
	if summary.TotalFiles > 0 {
		rate := float64(summary.ValidFiles) / float64(summary.TotalFiles) * 100
		sb.WriteString(fmt.Sprintf("Success Rate:  %.1f%%\n", rate))
	}
	sb.WriteString(fmt.Sprintf("Risk Level:    %s\n", riskLevel(summary)))
	sb.WriteString("\n")

	if len(summary.ErrorsByCategory) > 0 {
		sb.WriteString("ERROR BREAKDOWN\n")
		sb.WriteString(strings.Repeat("-", 30) + "\n")
		writeCategoryCounts(&sb, summary.ErrorsByCategory)
		sb.WriteString("\n")
	}
	if len(summary.WarningsByCategory) > 0 {
		sb.WriteString("WARNING BREAKDOWN\n")
		sb.WriteString(strings.Repeat("-", 30) + "\n")
		writeCategoryCounts(&sb, summary.WarningsByCategory)
		sb.WriteString("\n")
	}

	if len(summary.Recommendations) > 0 {
		sb.WriteString("IMMEDIATE RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 30) + "\n")
		for _, rec := range summary.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	if len(summary.Fixes) > 0 {
		sb.WriteString("SUGGESTED FIXES\n")
		sb.WriteString(strings.Repeat("-", 30) + "\n")
		for i, fix := range summary.Fixes {
			if i == fixListLimit {
				sb.WriteString(fmt.Sprintf("... and %d more\n", len(summary.Fixes)-fixListLimit))
				break
			}
			sb.WriteString(fmt.Sprintf("%s [%s]\n", fix.File, fix.Type))
			sb.WriteString(fmt.Sprintf("  Issue: %s\n", fix.Issue))
			sb.WriteString(fmt.Sprintf("  Fix:   %s\n", fix.FixText))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("DETAILED ANALYSIS\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	sb.WriteString(aiText + "\n")
	sb.WriteString(line + "\n")
	return sb.String()
}

func riskLevel(summary engine.ValidationSummary) string {
	total := summary.TotalErrors + summary.TotalWarnings
	switch {
	case total > 20:
		return "HIGH"
	case total > 5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

var _ engine.Summarizer = (*ValidationAgent)(nil)

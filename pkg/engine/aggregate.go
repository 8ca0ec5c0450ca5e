package engine

import (
	"sort"
	"sync"
)

// FileIssueCount ranks one file by how many findings it accumulated.
type FileIssueCount struct {
	File   string `json:"file"`
	Issues int    `json:"issues"`
}

// ValidationSummary is the aggregate view over a set of CheckResults. It is
// fully derivable from the result set: recomputing it from the same results
// always yields an identical value.
type ValidationSummary struct {
	TotalFiles    int `json:"total_files"`
	ValidFiles    int `json:"valid_files"`
	InvalidFiles  int `json:"invalid_files"`
	TotalErrors   int `json:"total_errors"`
	TotalWarnings int `json:"total_warnings"`
	// ErrorsByCategory counts error and critical severity findings;
	// WarningsByCategory counts warning severity findings. Info findings
	// appear in neither map but still mark their file invalid.
	ErrorsByCategory   map[Category]int `json:"errors_by_category"`
	WarningsByCategory map[Category]int `json:"warnings_by_category"`
	TopProblemFiles    []FileIssueCount `json:"top_problem_files,omitempty"`
	Recommendations    []string         `json:"recommendations,omitempty"`
	Fixes              []Fix            `json:"fixes,omitempty"`
}

// topProblemLimit caps the ranked problem-file list.
const topProblemLimit = 5

// Summarize folds a CheckResult set into a ValidationSummary. It is a pure
// function of its input: counts, category maps, the problem-file ranking,
// recommendations, and fixes are all recomputed fresh, so summarizing one
// batch at a time and summarizing the union produce identical totals.
func Summarize(results []CheckResult) ValidationSummary {
	summary := ValidationSummary{
		ErrorsByCategory:   make(map[Category]int),
		WarningsByCategory: make(map[Category]int),
	}

	// Distinct files in first-seen order; a file is valid only if every
	// checker that saw it reported valid.
	fileOrder := make([]string, 0, len(results))
	fileValid := make(map[string]bool)
	fileIssues := make(map[string]int)
	for _, res := range results {
		if _, seen := fileValid[res.File]; !seen {
			fileOrder = append(fileOrder, res.File)
			fileValid[res.File] = true
		}
		if !res.Valid {
			fileValid[res.File] = false
		}

		for _, f := range res.Findings {
			fileIssues[res.File]++
			cat := Classify(f)
			switch f.Severity {
			case SeverityError, SeverityCritical:
				summary.ErrorsByCategory[cat]++
				summary.TotalErrors++
			case SeverityWarning:
				summary.WarningsByCategory[cat]++
				summary.TotalWarnings++
			}
			summary.Fixes = append(summary.Fixes, Suggest(res.File, f))
		}
	}

	summary.TotalFiles = len(fileOrder)
	for _, file := range fileOrder {
		if fileValid[file] {
			summary.ValidFiles++
		}
	}
	summary.InvalidFiles = summary.TotalFiles - summary.ValidFiles

	for file, n := range fileIssues {
		summary.TopProblemFiles = append(summary.TopProblemFiles, FileIssueCount{File: file, Issues: n})
	}
	sort.Slice(summary.TopProblemFiles, func(i, j int) bool {
		a, b := summary.TopProblemFiles[i], summary.TopProblemFiles[j]
		if a.Issues != b.Issues {
			return a.Issues > b.Issues
		}
		return a.File < b.File
	})
	if len(summary.TopProblemFiles) > topProblemLimit {
		summary.TopProblemFiles = summary.TopProblemFiles[:topProblemLimit]
	}

	summary.Recommendations = Recommend(summary.ErrorsByCategory, summary.WarningsByCategory)
	return summary
}

// Aggregator accumulates CheckResults across batches and recomputes the
// summary on demand. Results are never mutated after they are added, so
// folding batch by batch and folding everything at the end agree.
type Aggregator struct {
	mu      sync.RWMutex
	results []CheckResult
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add ingests the results of one batch.
func (a *Aggregator) Add(results ...CheckResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, results...)
}

// Results returns a copy of every result seen so far.
func (a *Aggregator) Results() []CheckResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]CheckResult, len(a.results))
	copy(out, a.results)
	return out
}

// Summary recomputes the cumulative ValidationSummary from the union of all
// results added so far.
func (a *Aggregator) Summary() ValidationSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Summarize(a.results)
}

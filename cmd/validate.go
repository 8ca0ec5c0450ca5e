package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/user/kubevalid/pkg/agent"
	"github.com/user/kubevalid/pkg/config"
	"github.com/user/kubevalid/pkg/engine"
	"github.com/user/kubevalid/pkg/repo"
	"github.com/user/kubevalid/pkg/report"
	"github.com/user/kubevalid/pkg/wrappers"
)

// Exit codes, stable for pipeline use.
const (
	exitClean        = 0
	exitRunError     = 1
	exitNoFiles      = 2
	exitWithFindings = 3
)

var (
	validateRepoURL     string
	validateBranch      string
	validateFiles       []string
	validateOutput      string
	validateFormat      string
	validateBatchSize   int
	validateFileTypes   string
	validateSingleBatch bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate Kubernetes and Terraform files in a repository or local paths",
	Run: func(cmd *cobra.Command, args []string) {
		agent.DebugEnabled = DebugMode
		os.Exit(runValidate(cmd.Context()))
	},
}

func runValidate(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitRunError
	}
	if ks, ksErr := config.LoadKeyStore(); ksErr == nil {
		config.ApplyKeyStore(cfg, ks)
	}

	// Flags take precedence over environment configuration.
	if validateRepoURL != "" {
		cfg.RepoURL = validateRepoURL
	}
	if validateBranch != "" {
		cfg.Branch = validateBranch
	}
	if validateBatchSize > 0 {
		cfg.BatchSize = validateBatchSize
	}
	if validateFormat != "" {
		cfg.OutputFormat = validateFormat
	}
	if cfg.OutputFormat != "text" && cfg.OutputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", cfg.OutputFormat)
		return exitRunError
	}

	types, err := parseFileTypes(validateFileTypes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitRunError
	}

	files, cleanup, err := collectFiles(ctx, cfg, types)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitRunError
	}

	if cfg.FixTemplatesDir != "" {
		if n, tplErr := engine.LoadFixTemplates(cfg.FixTemplatesDir); tplErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load fix templates: %v\n", tplErr)
		} else {
			agent.Debugf("loaded %d fix templates from %s", n, cfg.FixTemplatesDir)
		}
	}

	summarizer, closeProvider := buildSummarizer(ctx, cfg)
	defer closeProvider()

	var sink engine.ProgressSink
	var fileSink *report.FileSink
	if validateOutput == "-" {
		sink = report.NewMemorySink()
	} else {
		fileSink = report.NewFileSink(validateOutput)
		sink = fileSink
	}

	runner := engine.NewBatchRunner(buildCheckers(cfg, types), cfg.CheckTimeout, cfg.Workers)
	orch := engine.NewOrchestrator(engine.OrchestratorConfig{
		BatchSize:   cfg.BatchSize,
		SingleBatch: validateSingleBatch,
		Repository:  cfg.RepoURL,
		Branch:      cfg.Branch,
		RunID:       uuid.NewString(),
	}, runner, sink, summarizer)
	orch.Logf = func(format string, args ...interface{}) {
		color.Cyan(format, args...)
	}

	rep, err := orch.Run(ctx, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitRunError
	}

	if cfg.OutputFormat == "json" {
		data, jsonErr := json.MarshalIndent(rep, "", "  ")
		if jsonErr != nil {
			fmt.Fprintf(os.Stderr, "Error: encoding report: %v\n", jsonErr)
			return exitRunError
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(rep.ReportText)
		if fileSink != nil && fileSink.Exists() {
			color.Green("Report saved to %s", validateOutput)
		}
	}

	return exitCode(rep, cfg.SeverityLevel)
}

// collectFiles returns the validation file set: an expansion of the --files
// paths when given, otherwise a discovery walk over a fresh clone of the
// configured repository. The cleanup function removes any clone.
func collectFiles(ctx context.Context, cfg *config.Config, types []repo.FileType) ([]string, func(), error) {
	noop := func() {}

	if len(validateFiles) > 0 {
		var files []string
		for _, path := range validateFiles {
			info, err := os.Stat(path)
			if err != nil {
				return nil, noop, fmt.Errorf("cannot access %s: %w", path, err)
			}
			if info.IsDir() {
				found, err := repo.DiscoverFiles(path, types)
				if err != nil {
					return nil, noop, err
				}
				files = append(files, found...)
			} else {
				files = append(files, path)
			}
		}
		return files, noop, nil
	}

	if cfg.RepoURL == "" {
		return nil, noop, fmt.Errorf("no repository URL configured; use --repo or pass local paths with --files")
	}

	fetcher := repo.NewFetcher(cfg.RepoURL)
	cloneCtx, cancel := context.WithTimeout(ctx, cfg.CloneTimeout)
	defer cancel()

	color.Cyan("Cloning %s (branch %s)...", cfg.RepoURL, cfg.Branch)
	if _, err := fetcher.Clone(cloneCtx, cfg.Branch); err != nil {
		return nil, noop, err
	}

	files, err := fetcher.FindFiles(types)
	if err != nil {
		fetcher.Cleanup()
		return nil, noop, err
	}
	return files, fetcher.Cleanup, nil
}

func parseFileTypes(spec string) ([]repo.FileType, error) {
	if spec == "" {
		return []repo.FileType{repo.FileTypeYAML, repo.FileTypeTerraform}, nil
	}
	var types []repo.FileType
	for _, part := range strings.Split(spec, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "yaml", "yml", "kubernetes":
			types = append(types, repo.FileTypeYAML)
		case "terraform", "tf":
			types = append(types, repo.FileTypeTerraform)
		default:
			return nil, fmt.Errorf("unknown file type %q (expected yaml or terraform)", part)
		}
	}
	return types, nil
}

func buildCheckers(cfg *config.Config, types []repo.FileType) []engine.Checker {
	var checkers []engine.Checker
	for _, t := range types {
		switch t {
		case repo.FileTypeYAML:
			checkers = append(checkers,
				&wrappers.KubeconformChecker{SchemaLocation: cfg.SchemaLocation},
				&wrappers.KubeLinterChecker{},
			)
		case repo.FileTypeTerraform:
			checkers = append(checkers,
				&wrappers.TfsecChecker{},
				&wrappers.TerraformChecker{},
			)
		}
	}
	return checkers
}

// buildSummarizer creates the AI-backed summarizer. A provider that cannot
// be initialized is not fatal: the report then carries the degraded analysis
// notice instead of AI text.
func buildSummarizer(ctx context.Context, cfg *config.Config) (engine.Summarizer, func()) {
	noop := func() {}

	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured, AI analysis will be skipped")
		return agent.NewValidationAgent(nil), noop
	}

	provider, err := agent.NewProvider(ctx, cfg.Provider, cfg.APIKey, cfg.APIURL, cfg.ModelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize AI provider: %v\n", err)
		return agent.NewValidationAgent(nil), noop
	}

	closeFn := noop
	if closer, ok := provider.(interface{ Close() }); ok {
		closeFn = closer.Close
	}
	return agent.NewValidationAgent(provider), closeFn
}

func exitCode(rep *engine.Report, severityLevel string) int {
	switch rep.Status {
	case engine.StatusNoFiles:
		return exitNoFiles
	case engine.StatusTotalFailure:
		return exitRunError
	case engine.StatusSuccessClean:
		return exitClean
	}

	// Findings below the configured severity gate do not fail the run.
	switch severityLevel {
	case "error", "critical":
		if rep.Summary.TotalErrors > 0 || rep.Summary.InvalidFiles > 0 {
			return exitWithFindings
		}
	default:
		if rep.Summary.TotalErrors > 0 || rep.Summary.TotalWarnings > 0 || rep.Summary.InvalidFiles > 0 {
			return exitWithFindings
		}
	}
	if rep.Status == engine.StatusPartialFailure {
		return exitWithFindings
	}
	return exitClean
}

func init() {
	validateCmd.Flags().StringVar(&validateRepoURL, "repo", "", "Git repository URL to validate")
	validateCmd.Flags().StringVar(&validateBranch, "branch", "", "Branch to check out (default from config)")
	validateCmd.Flags().StringSliceVar(&validateFiles, "files", nil, "Local files or directories to validate instead of cloning")
	validateCmd.Flags().StringVar(&validateOutput, "output", "validation_report.txt", "Report file path ('-' keeps the report in memory)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "Output format: text or json")
	validateCmd.Flags().IntVar(&validateBatchSize, "batch-size", 0, "Files per batch (default from config)")
	validateCmd.Flags().StringVar(&validateFileTypes, "file-types", "", "Comma-separated file types: yaml, terraform (default both)")
	validateCmd.Flags().BoolVar(&validateSingleBatch, "single-batch", false, "Process only the first batch")

	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/fetch"
	"github.com/jonathan/ats-simulator/internal/ingestion"
	"github.com/jonathan/ats-simulator/internal/observability"
	"github.com/jonathan/ats-simulator/internal/parsing"
	"github.com/jonathan/ats-simulator/internal/pipeline"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

type simulateOptions struct {
	jobFile    string
	jobURL     string
	useBrowser bool
	resumeFile string
	resumeURL  string
	priorFile  string
	targetComp string
	jsonOutput bool
	verbose    bool
	failOn     string
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Score a resume against a job posting",
		Long: `Run one simulation and print the parser view and the five-layer scorecard.

The posting comes from --job (a text file) or --job-url (a job board page).
The resume comes from --resume (a text file) or --resume-url (a PDF, HTML or
text document; file:// URLs are allowed).`,
		Example: `  ats_sim simulate --job posting.txt --resume resume.txt
  ats_sim simulate --job-url https://boards.greenhouse.io/acme/jobs/1 --resume-url file:///tmp/cv.pdf --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.jobFile, "job", "j", "", "Path to a job posting text file")
	f.StringVar(&opts.jobURL, "job-url", "", "URL of a job posting page")
	f.BoolVar(&opts.useBrowser, "browser", false, "Render --job-url in headless Chrome when the static page is too thin")
	f.StringVarP(&opts.resumeFile, "resume", "r", "", "Path to a resume text file")
	f.StringVar(&opts.resumeURL, "resume-url", "", "URL of a resume document")
	f.StringVar(&opts.priorFile, "prior", "", "Path to the previously submitted resume text")
	f.StringVar(&opts.targetComp, "target-comp", "", "Candidate's stated salary expectation")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print stage progress and the parsed posting")
	f.StringVar(&opts.failOn, "fail-on", "", "Exit non-zero when the overall status is at or below this level (warning, critical)")

	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	cmd.MarkFlagsMutuallyExclusive("resume", "resume-url")
	return cmd
}

func (a *app) runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	failLevel, err := parseFailOn(opts.failOn)
	if err != nil {
		return err
	}

	posting, err := a.loadPosting(ctx, opts)
	if err != nil {
		return err
	}
	req, err := buildRequest(posting, opts)
	if err != nil {
		return err
	}

	var onProgress pipeline.ProgressCallback
	if opts.verbose {
		onProgress = func(ev pipeline.ProgressEvent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", ev.Stage, ev.Message)
		}
	}
	tax, err := taxonomy.Load(a.cfg.Engine.TaxonomyPath)
	if err != nil {
		return err
	}
	engine, cleanup, err := buildEngine(ctx, a.cfg, tax, a.logger, onProgress, true)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := engine.Simulate(ctx, req)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printer := observability.NewPrinter(out)
		if opts.verbose {
			printer.PrintTargetProfile(parsing.NewBuilder(tax).Build(ingestion.CleanText(posting)))
		}
		printer.PrintResult(result)
	}

	if failLevel != "" && failsAt(result.Scorecard.Status, failLevel) {
		return fmt.Errorf("overall status %s (score %d)", result.Scorecard.Status, result.Scorecard.OverallScore)
	}
	return nil
}

// loadPosting reads the job posting. No posting at all is allowed and scores
// as an empty profile.
func (a *app) loadPosting(ctx context.Context, opts *simulateOptions) (string, error) {
	switch {
	case opts.jobFile != "":
		text, meta, err := ingestion.IngestFromFile(opts.jobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
		a.logger.Debug("loaded job posting",
			zap.String("source", meta.Source), zap.String("hash", meta.Hash), zap.Int("lines", meta.Lines))
		return text, nil
	case opts.jobURL != "":
		text, platform, err := fetch.Posting(ctx, opts.jobURL, fetch.PostingOptions{
			Fetch:          fetchOptions(a.cfg, true),
			UseBrowser:     opts.useBrowser,
			BrowserTimeout: a.cfg.Engine.RequestTimeout,
			Logger:         a.logger,
		})
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		a.logger.Debug("fetched job posting",
			zap.String("platform", string(platform)), zap.Int("chars", len(text)))
		return text, nil
	}
	a.logger.Warn("no job posting given; scoring against an empty profile")
	return "", nil
}

func buildRequest(posting string, opts *simulateOptions) (types.SimulationRequest, error) {
	req := types.SimulationRequest{TargetRoleRaw: posting}

	switch {
	case opts.resumeFile != "":
		data, err := os.ReadFile(opts.resumeFile)
		if err != nil {
			return req, fmt.Errorf("failed to read resume: %w", err)
		}
		req.Resume = types.TextSource{Text: string(data)}
	case opts.resumeURL != "":
		req.Resume = types.URLSource{URL: opts.resumeURL}
	default:
		return req, fmt.Errorf("either --resume or --resume-url must be provided")
	}

	if opts.priorFile != "" {
		data, err := os.ReadFile(opts.priorFile)
		if err != nil {
			return req, fmt.Errorf("failed to read prior resume: %w", err)
		}
		prior := string(data)
		req.PriorResumeText = &prior
	}
	if comp := strings.TrimSpace(opts.targetComp); comp != "" {
		req.TargetComp = &comp
	}
	return req, nil
}

func parseFailOn(level string) (types.Status, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return "", nil
	case "warning":
		return types.StatusWarning, nil
	case "critical":
		return types.StatusCriticalFail, nil
	}
	return "", fmt.Errorf("invalid --fail-on %q: use warning or critical", level)
}

// failsAt reports whether status is at or below level.
func failsAt(status, level types.Status) bool {
	rank := map[types.Status]int{
		types.StatusPass:         2,
		types.StatusWarning:      1,
		types.StatusCriticalFail: 0,
	}
	return rank[status] <= rank[level]
}

// Package cmd — optimize command.
// This is the main command that orchestrates the pipeline:
// fetch → audit → normalize → locate → merge → rewrite → patch → write.
//
// It handles flag validation, collaborator wiring, and the single-page /
// --all modes.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/seopatch/core"
	"github.com/gaurav-prasanna/seopatch/core/audit"
	"github.com/gaurav-prasanna/seopatch/core/caption"
	"github.com/gaurav-prasanna/seopatch/core/fetch"
	"github.com/gaurav-prasanna/seopatch/core/locate"
	"github.com/gaurav-prasanna/seopatch/core/merge"
	"github.com/gaurav-prasanna/seopatch/core/output"
	"github.com/gaurav-prasanna/seopatch/core/patch"
	"github.com/gaurav-prasanna/seopatch/core/report"
	"github.com/gaurav-prasanna/seopatch/core/rewrite"
	"github.com/gaurav-prasanna/seopatch/crawl"
)

// Flag variables.
var (
	flagAll       bool
	flagAuditURL  string
	flagOutputDir string
	flagReport    bool
	flagDryRun    bool
)

const defaultAuditURL = "http://localhost:3400"

var optimizeCmd = &cobra.Command{
	Use:   "optimize <url>",
	Short: "Audit a page and write an optimized copy",
	Long: `Optimize fetches a page, audits it, locates every failing audit in the
original source, rewrites the offending HTML through the configured model,
and writes the patched document plus a JSON report.

Examples:
  seopatch optimize https://example.com
  seopatch optimize https://example.com --output_dir ./out --report
  seopatch optimize https://example.com --all
  seopatch optimize https://example.com --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().BoolVar(&flagAll, "all", false, "Optimize all discovered sub-pages")
	optimizeCmd.Flags().StringVar(&flagAuditURL, "audit_url", "", "Audit service base URL (default $AUDIT_URL or "+defaultAuditURL+")")
	optimizeCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	optimizeCmd.Flags().BoolVar(&flagReport, "report", false, "Also write a PDF report next to the JSON one")
	optimizeCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Stop after merging; print the planned edits as JSON")
}

// pipeline bundles the collaborators one optimization run needs.
type pipeline struct {
	fetcher  core.Fetcher
	auditor  core.Auditor
	rewriter core.Rewriter
	applier  *patch.Applier
	writer   *output.Writer
	logger   hclog.Logger
}

func runOptimize(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}

	logger := newLogger()

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	p := &pipeline{
		fetcher: fetch.New(),
		auditor: audit.NewClient(auditURL(), logger),
		writer:  writer,
		logger:  logger,
	}

	if !flagDryRun {
		rewriter, err := rewrite.NewModelRewriter(logger)
		if err != nil {
			return fmt.Errorf("initializing rewriter: %w", err)
		}
		p.rewriter = rewriter

		// The captioner is optional: without credentials every marked
		// image takes the filename fallback.
		captioner, err := caption.Shared(logger)
		if err != nil {
			logger.Warn("captioner unavailable, using filename fallback", "error", err)
		}
		p.applier = patch.New(captionerOrNil(captioner, err), logger)
	}

	ctx := context.Background()

	if flagAll {
		return runAllPages(ctx, rawURL, p)
	}
	return optimizePage(ctx, rawURL, p, false)
}

// captionerOrNil keeps a typed-nil *ModelCaptioner out of the interface.
func captionerOrNil(c *caption.ModelCaptioner, err error) core.Captioner {
	if err != nil || c == nil {
		return nil
	}
	return c
}

func auditURL() string {
	if flagAuditURL != "" {
		return flagAuditURL
	}
	if env := os.Getenv("AUDIT_URL"); env != "" {
		return env
	}
	return defaultAuditURL
}

// runAllPages discovers internal pages and optimizes each one. Per-page
// failures are reported and skipped; the run continues.
func runAllPages(ctx context.Context, rawURL string, p *pipeline) error {
	fmt.Fprintf(os.Stdout, "Discovering pages from %s...\n", rawURL)

	urls, err := crawl.DiscoverAll(ctx, rawURL, p.fetcher)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Found %d pages to optimize\n", len(urls))

	var errCount int
	for i, pageURL := range urls {
		fmt.Fprintf(os.Stdout, "[%d/%d] Optimizing %s\n", i+1, len(urls), pageURL)
		if err := optimizePage(ctx, pageURL, p, true); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Error: %v\n", err)
			errCount++
		}
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d pages failed\n", errCount, len(urls))
	}
	return nil
}

// optimizePage runs the full pipeline for one URL.
func optimizePage(ctx context.Context, rawURL string, p *pipeline, mirrored bool) error {
	analysis, units, raw, err := analyzePage(ctx, rawURL, p.fetcher, p.auditor, p.logger)
	if err != nil {
		return err
	}

	if flagDryRun {
		return printAnalysis(analysis, units)
	}

	pageContext, err := rewrite.ExtractContext(raw)
	if err != nil {
		p.logger.Warn("context extraction failed, rewriting without page context", "error", err)
	}

	units, err = p.rewriter.Rewrite(ctx, units, pageContext)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	patched := p.applier.Apply(ctx, raw, units)

	var path string
	if mirrored {
		path, err = p.writer.WritePageMirrored(rawURL, patched)
	} else {
		path, err = p.writer.WritePage(rawURL, patched)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)

	return writeReports(p.writer, rawURL, analysis, units)
}

// writeReports always emits the JSON report; the PDF one only with --report.
func writeReports(writer *output.Writer, rawURL string, analysis *core.Analysis, units []core.EditUnit) error {
	summary := report.Build(rawURL, analysis, units)

	data, err := report.NewJSONRenderer().Render(summary)
	if err != nil {
		return err
	}
	path, err := writer.WriteReport(rawURL, data, report.NewJSONRenderer().Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Report: %s\n", path)

	if !flagReport {
		return nil
	}
	pdfRenderer := report.NewPDFRenderer()
	pdfData, err := pdfRenderer.Render(summary)
	if err != nil {
		return err
	}
	path, err = writer.WriteReport(rawURL, pdfData, pdfRenderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Report: %s\n", path)
	return nil
}

// analyzePage runs fetch → audit → normalize → locate → merge and returns
// the analysis, the merged edit units and the raw document.
func analyzePage(ctx context.Context, rawURL string, fetcher core.Fetcher, auditor core.Auditor, logger hclog.Logger) (*core.Analysis, []core.EditUnit, string, error) {
	result, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, "", &core.StepError{Step: "fetch", Err: err}
	}

	auditReport, err := auditor.Audit(ctx, result.HTML)
	if err != nil {
		return nil, nil, "", err
	}

	analysis := audit.Normalize(auditReport)
	logger.Info("audit normalized", "issues", len(analysis.Issues), "errors", len(analysis.Errors))

	locator, err := locate.New(result.HTML, logger)
	if err != nil {
		return nil, nil, "", &core.StepError{Step: "locate", Err: err}
	}
	locator.Run(analysis)

	units := merge.Merge(analysis.Issues)
	logger.Info("edit units merged", "defects", len(analysis.Issues), "units", len(units))

	return analysis, units, result.HTML, nil
}

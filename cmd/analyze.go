// Package cmd — analyze command.
// Runs the pipeline through the merge stage only and prints the analysis
// as JSON: the failing audits, where each one landed in the source, and
// the edit units a full optimize run would rewrite.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/seopatch/core"
	"github.com/gaurav-prasanna/seopatch/core/audit"
	"github.com/gaurav-prasanna/seopatch/core/fetch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Audit a page and print the located issues as JSON",
	Long: `Analyze fetches a page, audits it and locates every failing audit in the
original source, but applies no edits. The result is printed as JSON.

Examples:
  seopatch analyze https://example.com
  seopatch analyze https://example.com --audit_url http://localhost:3400`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&flagAuditURL, "audit_url", "", "Audit service base URL (default $AUDIT_URL or "+defaultAuditURL+")")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}

	logger := newLogger()
	auditor := audit.NewClient(auditURL(), logger)

	analysis, units, _, err := analyzePage(context.Background(), rawURL, fetch.New(), auditor, logger)
	if err != nil {
		return err
	}
	return printAnalysis(analysis, units)
}

// analysisOutput is the JSON shape shared by analyze and --dry-run.
type analysisOutput struct {
	SEOScore float64         `json:"seo_score"`
	Issues   []*core.Defect  `json:"issues"`
	Errors   []string        `json:"errors,omitempty"`
	Edits    []core.EditUnit `json:"edits"`
}

func printAnalysis(analysis *core.Analysis, units []core.EditUnit) error {
	out := analysisOutput{Edits: units}
	if analysis != nil {
		out.SEOScore = analysis.SEOScore
		out.Issues = analysis.Issues
		out.Errors = analysis.Errors
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

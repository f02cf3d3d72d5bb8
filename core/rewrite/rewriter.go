// Package rewrite — model-backed rewriter.
// Sends the batch of edit units plus page context to a chat model and
// parses the optimized HTML back onto the units. Units the model leaves
// out or returns empty keep an empty Replacement and are skipped during
// patching; that is a per-unit condition, never a batch failure.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gaurav-prasanna/seopatch/core"
)

const systemPrompt = `You are an SEO remediation assistant. For each issue you receive the
problem title and the exact HTML that must change. Return a JSON array of
objects {"title", "optimized_html"} in the same order. Rules:
- Fix only what the title describes; preserve all other markup verbatim.
- For content that must be inserted rather than replaced, prefix the HTML
  with <!--AI-ACTION: MODE: INSERT; WHERE: <anchor>--> using anchors
  head_start, head_end, after_title, after_meta_charset.
- When an image needs alt text you cannot infer, use alt="__AI_CAPTION__".
- Return nothing but the JSON array.`

// ModelRewriter implements core.Rewriter over a chat model.
type ModelRewriter struct {
	client *openai.Client
	model  string
	logger hclog.Logger
}

// NewModelRewriter creates a rewriter from OPENAI_API_KEY / REWRITE_MODEL.
func NewModelRewriter(logger hclog.Logger) (*ModelRewriter, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	model := os.Getenv("REWRITE_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &ModelRewriter{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// batchEntry is the wire shape exchanged with the model.
type batchEntry struct {
	Title         string           `json:"title"`
	RawHTML       string           `json:"raw_html"`
	Ranges        []core.LineRange `json:"ranges"`
	OptimizedHTML string           `json:"optimized_html,omitempty"`
}

// Rewrite sends the units as one batch and fills their Replacement fields.
func (r *ModelRewriter) Rewrite(ctx context.Context, units []core.EditUnit, pageContext string) ([]core.EditUnit, error) {
	if len(units) == 0 {
		return units, nil
	}

	batch := make([]batchEntry, len(units))
	for i, u := range units {
		batch[i] = batchEntry{Title: u.Title, RawHTML: u.ContextHTML, Ranges: u.Ranges}
	}
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encoding rewrite batch: %w", err)
	}

	prompt := fmt.Sprintf("PAGE CONTEXT:\n%s\n\nISSUES:\n%s", pageContext, payload)
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("rewrite model returned no choices")
	}

	var results []batchEntry
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &results); err != nil {
		return nil, fmt.Errorf("decoding rewrite response: %w", err)
	}

	out := append([]core.EditUnit(nil), units...)
	byTitle := map[string]string{}
	for _, res := range results {
		if res.OptimizedHTML != "" {
			byTitle[res.Title] = res.OptimizedHTML
		}
	}
	for i := range out {
		if i < len(results) && results[i].OptimizedHTML != "" {
			out[i].Replacement = results[i].OptimizedHTML
		} else if html, ok := byTitle[out[i].Title]; ok {
			out[i].Replacement = html
		}
	}

	r.logger.Info("rewrite batch complete", "units", len(units), "filled", len(byTitle))
	return out, nil
}

// stripFences removes a Markdown code fence the model may wrap the JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

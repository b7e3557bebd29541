package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	chunkOverlapTokens = 100
	overheadTokens     = 300
)

// Params is the full set of inputs C9's pure summarization function takes.
type Params struct {
	Provider        Provider
	Model           string
	APIKey          string
	Text            string
	CustomPrompt    string
	TemplateID      string
	TokenThreshold  int
	EndpointOverride string
}

// promptTemplates maps a template ID to its prompt body. Only "default" is
// built in; custom prompts bypass this entirely via Params.CustomPrompt.
var promptTemplates = map[string]string{
	"default": "Summarize the following meeting transcript into a concise markdown document with a single '# ' title line followed by key points and action items.",
}

func resolvePrompt(p Params) string {
	if p.CustomPrompt != "" {
		return p.CustomPrompt
	}
	if tmpl, ok := promptTemplates[p.TemplateID]; ok {
		return tmpl
	}
	return promptTemplates["default"]
}

// Result is the outcome of a summarization run.
type Result struct {
	Markdown        string
	Title           string
	ChunkCount      int
	ProcessingTimeS float64
}

// selectSinglePass decides between summarizing the whole transcript in one
// call versus the chunked multi-level strategy. Cloud providers are always
// single-pass regardless of length; local providers fall back to chunking
// once the transcript no longer fits the model's context window.
func selectSinglePass(provider Provider, totalTokens, threshold int) bool {
	return provider.IsCloud() || totalTokens < threshold
}

// Summarize runs the full strategy-selection -> generate -> post-process
// pipeline described by spec §4.9.
func Summarize(ctx context.Context, p Params) (Result, error) {
	start := time.Now()

	client, err := NewClient(Request{
		Provider:         p.Provider,
		Model:            p.Model,
		APIKey:           p.APIKey,
		EndpointOverride: p.EndpointOverride,
	})
	if err != nil {
		return Result{}, err
	}

	threshold := p.TokenThreshold
	if p.Provider == ProviderOllama && threshold == 0 {
		endpoint := p.EndpointOverride
		if endpoint == "" {
			endpoint = "http://localhost:11434"
		}
		threshold = OllamaTokenThreshold(ctx, endpoint, p.Model)
	}

	totalTokens := roughTokenCount(p.Text)
	singlePass := selectSinglePass(p.Provider, totalTokens, threshold)

	var markdown string
	var chunkCount int

	if singlePass {
		prompt := resolvePrompt(p)
		raw, err := client.Complete(ctx, prompt, p.Text)
		if err != nil {
			return Result{}, err
		}
		markdown = CleanLLMMarkdownOutput(raw)
		chunkCount = 1
	} else {
		markdown, chunkCount, err = multiLevelSummarize(ctx, client, p, threshold)
		if err != nil {
			return Result{}, err
		}
	}

	title, body := ExtractMeetingName(markdown)

	return Result{
		Markdown:        body,
		Title:           title,
		ChunkCount:      chunkCount,
		ProcessingTimeS: time.Since(start).Seconds(),
	}, nil
}

// multiLevelSummarize chunks text, summarizes each chunk independently,
// combines the per-chunk summaries, and runs one final pass through the
// template to produce a coherent whole. Used when the provider has a small
// local context window and the transcript doesn't fit it in one call.
func multiLevelSummarize(ctx context.Context, client ChatClient, p Params, threshold int) (string, int, error) {
	chunkSizeTokens := threshold - overheadTokens
	if chunkSizeTokens <= 0 {
		chunkSizeTokens = threshold
	}
	chunks := ChunkText(p.Text, chunkSizeTokens, chunkOverlapTokens)

	var partials []string
	for _, chunk := range chunks {
		raw, err := client.Complete(ctx, "Summarize this excerpt of a meeting transcript concisely.", chunk)
		if err != nil {
			continue // a single chunk failure doesn't abort the whole run
		}
		partials = append(partials, CleanLLMMarkdownOutput(raw))
	}

	if len(partials) == 0 {
		return "", 0, fmt.Errorf("multi-level summarization failed: no chunks were summarized successfully")
	}

	combined := strings.Join(partials, "\n\n")
	finalPrompt := resolvePrompt(p)
	raw, err := client.Complete(ctx, finalPrompt, combined)
	if err != nil {
		return "", len(partials), err
	}
	return CleanLLMMarkdownOutput(raw), len(partials), nil
}

// Command meetcap-summarize runs C9 standalone against a transcript file,
// using the same config.yaml provider settings the main recorder loads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/meetcap/core/internal/config"
	"github.com/meetcap/core/internal/summarize"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	transcriptPath := flag.String("transcript", "", "Path to the transcript text file to summarize")
	customPrompt := flag.String("prompt", "", "Override the configured prompt template with custom text")
	flag.Parse()

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "meetcap-summarize: -transcript is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			fmt.Fprintf(os.Stderr, "meetcap-summarize: %v\n", err)
			os.Exit(1)
		}
	}

	text, err := os.ReadFile(*transcriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "meetcap-summarize: %v\n", err)
		os.Exit(1)
	}

	result, err := summarize.Summarize(context.Background(), summarize.Params{
		Provider:         summarize.ParseProvider(cfg.Summarize.Provider),
		Model:            cfg.Summarize.Model,
		APIKey:           cfg.Summarize.APIKey,
		Text:             string(text),
		CustomPrompt:     *customPrompt,
		TemplateID:       cfg.Summarize.TemplateID,
		TokenThreshold:   cfg.Summarize.TokenThreshold,
		EndpointOverride: cfg.Summarize.OllamaEndpoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "meetcap-summarize: summarization failed: %v\n", err)
		os.Exit(1)
	}

	if result.Title != "" {
		fmt.Printf("# %s\n\n", result.Title)
	}
	fmt.Println(result.Markdown)
	fmt.Fprintf(os.Stderr, "processed %d chunk(s) in %.2fs\n", result.ChunkCount, result.ProcessingTimeS)
}

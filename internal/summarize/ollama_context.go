package summarize

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	ollamaapi "github.com/ollama/ollama/api"
)

const (
	ollamaContextCacheTTL  = 5 * time.Minute
	ollamaContextOverhead  = 300
	ollamaContextFallback  = 4000
)

// ollamaContextCache memoizes a model's declared context window, since
// spec §4.9 requires a 5-minute TTL cache in front of the lookup. Keyed by
// endpoint+model so multiple Ollama instances/models don't collide.
type ollamaContextCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	tokens   int
	cachedAt time.Time
}

var globalOllamaCache = &ollamaContextCache{entries: make(map[string]cacheEntry)}

// OllamaTokenThreshold returns the usable token threshold for model at
// endpoint: the model's declared context size minus a fixed prompt
// overhead, falling back to a conservative default on any failure. Uses
// the real Ollama API client (github.com/ollama/ollama/api), not the
// OpenAI-compatible chat endpoint, since only the native API exposes
// model metadata.
func OllamaTokenThreshold(ctx context.Context, endpoint, model string) int {
	key := endpoint + "|" + model

	globalOllamaCache.mu.Lock()
	if entry, ok := globalOllamaCache.entries[key]; ok && time.Since(entry.cachedAt) < ollamaContextCacheTTL {
		globalOllamaCache.mu.Unlock()
		return entry.tokens
	}
	globalOllamaCache.mu.Unlock()

	tokens := fetchOllamaContextSize(ctx, endpoint, model)

	globalOllamaCache.mu.Lock()
	globalOllamaCache.entries[key] = cacheEntry{tokens: tokens, cachedAt: time.Now()}
	globalOllamaCache.mu.Unlock()

	return tokens
}

func fetchOllamaContextSize(ctx context.Context, endpoint, model string) int {
	base, err := url.Parse(endpoint)
	if err != nil {
		return ollamaContextFallback
	}
	client := ollamaapi.NewClient(base, http.DefaultClient)

	resp, err := client.Show(ctx, &ollamaapi.ShowRequest{Model: model})
	if err != nil {
		return ollamaContextFallback
	}

	contextSize := contextSizeFromModelInfo(resp.ModelInfo)
	if contextSize <= 0 {
		return ollamaContextFallback
	}

	threshold := contextSize - ollamaContextOverhead
	if threshold <= 0 {
		return ollamaContextFallback
	}
	return threshold
}

// contextSizeFromModelInfo pulls the context-length field out of Ollama's
// loosely-typed model info map; the key is architecture-prefixed (e.g.
// "llama.context_length"), so this scans for any key ending in
// "context_length".
func contextSizeFromModelInfo(info map[string]any) int {
	for k, v := range info {
		if len(k) < len("context_length") {
			continue
		}
		if k[len(k)-len("context_length"):] != "context_length" {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return 0
}

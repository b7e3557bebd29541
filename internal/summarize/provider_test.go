package summarize

import "testing"

func TestParseProvider(t *testing.T) {
	cases := map[string]Provider{
		"openai":     ProviderOpenAI,
		"claude":     ProviderClaude,
		"anthropic":  ProviderClaude,
		"groq":       ProviderGroq,
		"ollama":     ProviderOllama,
		"openrouter": ProviderOpenRouter,
		"unknown":    ProviderOpenAI,
	}
	for in, want := range cases {
		if got := ParseProvider(in); got != want {
			t.Errorf("ParseProvider(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProvider_IsCloud(t *testing.T) {
	cloud := []Provider{ProviderOpenAI, ProviderClaude, ProviderGroq, ProviderOpenRouter}
	for _, p := range cloud {
		if !p.IsCloud() {
			t.Errorf("%v expected to be cloud", p)
		}
	}
	if ProviderOllama.IsCloud() {
		t.Error("Ollama should not be considered cloud")
	}
}

// Package summarize implements the provider-agnostic LLM summarizer (C9):
// strategy selection, chunking, provider wire formats, and output
// post-processing. Ported from original_source's
// frontend/src-tauri/src/summary/{llm_client,processor}.rs.
package summarize

import "strings"

// roughTokenCount approximates token count as chars/4, matching the
// original's heuristic (no tokenizer dependency in the retrieved pack
// fits this use case better than a rough estimate does).
func roughTokenCount(text string) int {
	return len(text) / 4
}

// ChunkText splits text into a sliding window of chunks sized
// chunkSizeTokens*4 characters, stepping by (chunkSize - overlap) chars,
// and snapping each window's end backward to the nearest whitespace within
// 200 characters so the end does not split a word. Window starts advance by
// the fixed step and are not aligned to word boundaries.
func ChunkText(text string, chunkSizeTokens, overlapTokens int) []string {
	chunkSizeChars := chunkSizeTokens * 4
	overlapChars := overlapTokens * 4

	if len(text) <= chunkSizeChars {
		return []string{text}
	}

	step := chunkSizeChars - overlapChars
	if step <= 0 {
		step = chunkSizeChars
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSizeChars
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		end = snapToWhitespace(text, end)
		if end <= start {
			end = start + chunkSizeChars
			if end > len(text) {
				end = len(text)
			}
		}

		chunks = append(chunks, text[start:end])
		start += step
		if start >= len(text) {
			break
		}
	}

	return chunks
}

// snapToWhitespace walks backward from pos until it finds whitespace,
// returning pos unchanged if none is found within a reasonable span.
func snapToWhitespace(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	for i := pos; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' || text[i] == '\t' {
			return i
		}
		if pos-i > 200 {
			break // no nearby whitespace, don't scan the whole document
		}
	}
	return pos
}

// CleanLLMMarkdownOutput strips <think>/<thinking> blocks and surrounding
// triple-backtick fences, then trims. Idempotent: calling it again on its
// own output is a no-op.
func CleanLLMMarkdownOutput(text string) string {
	text = stripTag(text, "think")
	text = stripTag(text, "thinking")
	text = strings.TrimSpace(text)
	text = stripCodeFence(text)
	return strings.TrimSpace(text)
}

// stripTag removes every <tag>...</tag> block, including the tags.
func stripTag(text, tag string) string {
	open := "<" + tag + ">"
	close := "</" + tag + ">"
	for {
		start := strings.Index(text, open)
		if start < 0 {
			return text
		}
		rest := text[start+len(open):]
		end := strings.Index(rest, close)
		if end < 0 {
			// Unterminated block: drop from the opening tag to end of text.
			return text[:start]
		}
		text = text[:start] + rest[end+len(close):]
	}
}

// stripCodeFence removes a single pair of surrounding triple-backtick
// fences, with or without a language tag on the opening fence.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	firstNewline := strings.IndexByte(text, '\n')
	if firstNewline < 0 {
		return text
	}
	body := text[firstNewline+1:]
	body = strings.TrimSuffix(strings.TrimRight(body, "\n"), "```")
	return body
}

// ExtractMeetingName finds the first "# " heading line, returning the
// title and the body with that line removed. If no heading line exists,
// title is empty and body is the input unchanged.
func ExtractMeetingName(markdown string) (title, body string) {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			remaining := append(append([]string{}, lines[:i]...), lines[i+1:]...)
			return title, strings.TrimSpace(strings.Join(remaining, "\n"))
		}
	}
	return "", markdown
}

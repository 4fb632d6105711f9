package summarize

import "strings"

// PromptVersion identifies the prompt template. It participates in the
// response cache key so prompt changes invalidate cached records.
const PromptVersion = "prompt/v1"

const systemPrompt = "You are a research paper analyst. " +
	"Extract structured summaries and insights from the text of a paper. " +
	"Return ONLY JSON that matches the provided schema. " +
	"Never output null; use empty strings or empty arrays when the text gives nothing."

// buildUserPrompt creates the extraction prompt for a paper's markdown.
func buildUserPrompt(markdown string) string {
	var b strings.Builder
	b.WriteString("Extract information from the text of a paper.\n\n")
	b.WriteString("Text of the paper is:\n")
	b.WriteString(markdown)
	return b.String()
}

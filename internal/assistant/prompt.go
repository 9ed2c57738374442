package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

// RefusalMessage is returned verbatim for off-topic questions.
const RefusalMessage = "I'm here to help with accessibility issues. Please ask questions related to web accessibility, WCAG guidelines, or fixing HTML for accessibility."

var keywords = []string{
	"accessibility", "wcag", "html", "fix", "issue", "problem",
	"aria", "alt text", "contrast", "semantic", "landmark",
	"screen reader", "keyboard", "focus", "label", "form",
}

var systemInstruction = strings.TrimSpace(`
You are a strictly professional Accessibility Assistant specializing in WCAG 2.1 AA compliance.
Only answer questions about web accessibility.

Rules:
1. If a question is not about accessibility, reply exactly with:
   "` + RefusalMessage + `"
2. For accessibility questions:
   - identify each issue clearly
   - cite the relevant WCAG success criteria
   - suggest concrete fixes
   - include corrected HTML when it applies
3. Format answers as:
   Accessibility Issues Found:
   [numbered list of issues]

   Corrected HTML:
   [code block when applicable]
4. Never engage in off-topic conversation.
`)

// SystemInstruction returns the fixed instruction sent with every question.
func SystemInstruction() string { return systemInstruction }

type Part struct {
	Text string `json:"text"`
}

// Message is one chat turn as sent by the client.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Gate reports whether question mentions an accessibility topic. Matching is
// case-insensitive substring membership.
func Gate(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// LatestUserQuestion returns the first part of the last user message, or ""
// when there is none.
func LatestUserQuestion(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		if len(messages[i].Parts) == 0 {
			return ""
		}
		return messages[i].Parts[0].Text
	}
	return ""
}

func htmlSnippets(violations []scan.Violation) string {
	var snippets []string
	for _, v := range violations {
		for _, n := range v.Nodes {
			snippets = append(snippets, n.HTML)
		}
	}
	return strings.Join(snippets, "\n\n")
}

// BuildPrompt returns the system and user halves of the model request.
func BuildPrompt(question string, violations []scan.Violation) (string, string, error) {
	raw, err := json.MarshalIndent(violations, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode violations: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# User's Query:\n%q\n\n", question)
	fmt.Fprintf(&b, "# Accessibility Violations:\n%s\n\n", raw)
	fmt.Fprintf(&b, "# HTML Snippets:\n%s\n", htmlSnippets(violations))
	return systemInstruction, b.String(), nil
}

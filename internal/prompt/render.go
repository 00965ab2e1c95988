// Package prompt renders cached issues into bounded-size LLM prompt text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
)

const (
	// NoDescription replaces empty issue bodies.
	NoDescription = "No description provided"

	// chunkHeadroom is subtracted from maxUnits to get the character budget
	// used once chunking engages.
	chunkHeadroom = 1000
	// chunkBodyRunes is how much of each body survives chunking.
	chunkBodyRunes = 500

	createdLayout = "2006-01-02 15:04:05"
)

// EstimateUnits approximates a token count as len(text)/4.
func EstimateUnits(text string) int {
	return len(text) / 4
}

// Render formats issues as prompt text. When the full rendering is estimated
// above maxUnits, issues are re-rendered with truncated bodies and only the
// leading ones that fit into maxUnits-1000 bytes are kept.
func Render(issues []models.Issue, maxUnits int) string {
	full := renderFull(issues)
	if EstimateUnits(full) > maxUnits {
		return renderChunked(issues, maxUnits-chunkHeadroom)
	}
	return full
}

func renderFull(issues []models.Issue) string {
	blocks := make([]string, 0, len(issues))
	for _, issue := range issues {
		blocks = append(blocks, block(issue, describe(issue.Body)))
	}
	return strings.Join(blocks, "\n")
}

// renderChunked keeps a prefix of issues whose blocks fit in maxChars. The
// first block that does not fit ends accumulation.
func renderChunked(issues []models.Issue, maxChars int) string {
	var (
		blocks []string
		total  int
	)
	for _, issue := range issues {
		b := block(issue, truncate(describe(issue.Body), chunkBodyRunes)+"...")
		if total+len(b) > maxChars {
			break
		}
		blocks = append(blocks, b)
		total += len(b)
	}

	if shown := len(blocks); shown < len(issues) {
		blocks = append(blocks, fmt.Sprintf("\n[Note: Showing %d of %d issues due to context limitations]", shown, len(issues)))
	}
	return strings.Join(blocks, "\n")
}

func block(issue models.Issue, description string) string {
	return fmt.Sprintf("\nIssue #%d: %s\nURL: %s\nCreated: %s\nDescription: %s\n---\n",
		issue.Number,
		issue.Title,
		issue.URL,
		issue.CreatedAt.Format(createdLayout),
		description)
}

func describe(body string) string {
	if body == "" {
		return NoDescription
	}
	return body
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package insight

import (
	"fmt"
	"strings"

	"notesync/internal/llm"
)

const (
	// MaxQueryLength is the number of characters of the query document included in the prompt.
	MaxQueryLength = 1000
	// MaxDocumentLength is the number of characters of each related document included in the prompt.
	MaxDocumentLength = 500
)

const systemPrompt = "You are a thoughtful research assistant. The user is writing a document and has " +
	"related documents from their own collection. Point out the meaningful connections between them, " +
	"recurring themes, contradictions and ideas worth following up. Refer to related documents by title. " +
	"Be concise and only use the content provided."

// buildMessages assembles the chat prompt for the query document and its related documents.
// Truncation is by character with no word-boundary adjustment.
func buildMessages(title, content string, docs []relatedDocument) []llm.Message {
	var b strings.Builder

	b.WriteString("--- Current document ---\n")
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	fmt.Fprintf(&b, "Content: %s\n\n", truncate(content, MaxQueryLength))

	b.WriteString("--- Related documents ---\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] Title: %s\n", i+1, d.title)
		fmt.Fprintf(&b, "Similarity: %.2f\n", d.score)
		fmt.Fprintf(&b, "Content: %s\n\n", truncate(d.content, MaxDocumentLength))
	}
	b.WriteString("--- End related documents ---\n\n")
	b.WriteString("What connections and insights link the current document to the related documents?")

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

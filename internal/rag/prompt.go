package rag

import (
	"fmt"
	"strings"
)

// promptTemplate frames every chat turn. The retrieved context and the
// customer question are interpolated in that order.
const promptTemplate = `You are a customer representative. Answer the customer's question using the knowledge base below.

Knowledge Base:
%s

Customer Question: %s

Please:
1. Respond in English
2. Be helpful and professional
3. Only use information from the knowledge base
4. If the answer is not in the knowledge base, state this and suggest another way to get help
5. Give short and clear answers

Response:`

// buildPrompt assembles the generation prompt from retrieved chunks and
// the user's question. Chunks are joined by blank lines in retrieval
// order (most relevant first).
func buildPrompt(contextDocs []string, question string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contextDocs, "\n\n"), question)
}

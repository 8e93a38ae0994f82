package answer

import "fmt"

const promptTemplate = `You are an expert automotive assistant. Use the provided context to answer the user's question. Look carefully through the context for relevant information.

CONTEXT:
%s

USER'S QUESTION: %s

Please provide a helpful answer based on the context above. If you find relevant information, share it. If the specific information isn't available, explain what you can find in the context.

ANSWER:`

// buildPrompt embeds the assembled context block and the verbatim user
// question into the fixed answering template.
func buildPrompt(query, contextBlock string) string {
	return fmt.Sprintf(promptTemplate, contextBlock, query)
}

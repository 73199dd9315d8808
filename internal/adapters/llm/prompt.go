// Package llm provides answer generation backends.
package llm

import (
	"fmt"
	"strings"
)

// BuildPrompt assembles the grounded question-answering prompt shared by the
// generative backends. Context passages are numbered so the model can cite
// them.
func BuildPrompt(question string, contexts []string) string {
	var b strings.Builder
	b.WriteString("Use the following context to answer the question. ")
	b.WriteString("Base your answer only on the context. ")
	b.WriteString("If the context does not contain the answer, say so.\n\n")
	b.WriteString("Context:\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, c)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:", question)
	return b.String()
}

const systemPrompt = "You are a helpful assistant that answers questions using only the provided context."

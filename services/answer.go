package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"academiqa-backend/internal/ai"
	"academiqa-backend/internal/logger"
	"academiqa-backend/models"
)

// promptTemplate is the instructional prompt the model is invoked with.
// The wording is part of the output-format contract; do not edit it.
const promptTemplate = `You are an academic assistant analyzing the document "{document_name}".

Answer the question based ONLY on the content provided in the context below. The context contains relevant excerpts from the document "{document_name}".

IMPORTANT:
- You are specifically analyzing the document "{document_name}"
- Base your answer ONLY on the provided context
- If the question asks for the first line, first sentence, or similar, try to extract and return ONLY the first line or sentence from the context if it exists. If you cannot find it in the context, clearly state that the information is not available.
- If the question asks about this specific document, refer to it by name
- If the information in the context is not sufficient to answer the question, clearly state this
- Provide a detailed and accurate answer

Document being analyzed: {document_name}

Context from the document:
{context}

Question:
{input}

Answer:`

// AnswerGenerator formats the retrieval context into a prompt, invokes the
// language model and parses its output into a structured answer.
type AnswerGenerator struct {
	llm ai.LLM
}

func NewAnswerGenerator(llm ai.LLM) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// FormatPrompt substitutes the context, question and document name into
// the prompt template. An empty document name falls back to the literal
// "the document".
func FormatPrompt(documentName, contextText, question string) string {
	if documentName == "" {
		documentName = "the document"
	}
	replacer := strings.NewReplacer(
		"{document_name}", documentName,
		"{context}", contextText,
		"{input}", question,
	)
	return replacer.Replace(promptTemplate)
}

// Generate invokes the model and parses the response. A model failure is
// not an error here: it is converted into a successful-shaped result whose
// answer carries the failure text, so callers never see a hard failure
// from this stage.
func (g *AnswerGenerator) Generate(ctx context.Context, question, documentName string, contexts []string) models.QueryResult {
	contextText := strings.Join(contexts, "\n\n")
	prompt := FormatPrompt(documentName, contextText, question)

	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Model invocation failed", "error", err, "document", documentName)
		return models.QueryResult{
			Answer:    fmt.Sprintf("Error processing the question: %v", err),
			Citations: []models.Citation{},
		}
	}

	return ParseLLMResponse(raw)
}

// ParseLLMResponse extracts the answer and citations from the raw model
// output. If the trimmed text starts with "{" it is tried as strict JSON;
// anything else, including JSON that fails to parse, is treated as a
// plain-text answer with no citations. The fallback is deliberate, not an
// error.
func ParseLLMResponse(raw string) models.QueryResult {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			result := models.QueryResult{Answer: raw, Citations: []models.Citation{}}
			if answer, ok := parsed["answer"].(string); ok {
				result.Answer = answer
			}
			if list, ok := parsed["citations"].([]interface{}); ok {
				for _, item := range list {
					entry, ok := item.(map[string]interface{})
					if !ok {
						continue
					}
					// Keys beyond document_name/chunk_id are dropped
					var citation models.Citation
					if v, ok := entry["document_name"].(string); ok {
						citation.DocumentName = v
					}
					if v, ok := entry["chunk_id"].(string); ok {
						citation.ChunkID = v
					}
					result.Citations = append(result.Citations, citation)
				}
			}
			return result
		}
	}

	return models.QueryResult{Answer: raw, Citations: []models.Citation{}}
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func TestFormatPrompt(t *testing.T) {
	prompt := FormatPrompt("survey.pdf", "some context", "what is this?")

	if !strings.Contains(prompt, `analyzing the document "survey.pdf"`) {
		t.Error("document name not substituted")
	}
	if !strings.Contains(prompt, "some context") {
		t.Error("context not substituted")
	}
	if !strings.Contains(prompt, "what is this?") {
		t.Error("question not substituted")
	}
	if strings.Contains(prompt, "{document_name}") || strings.Contains(prompt, "{context}") || strings.Contains(prompt, "{input}") {
		t.Error("unsubstituted placeholder left in prompt")
	}
}

func TestFormatPromptEmptyName(t *testing.T) {
	prompt := FormatPrompt("", "ctx", "q")
	if !strings.Contains(prompt, `analyzing the document "the document"`) {
		t.Error("empty document name did not fall back to generic label")
	}
}

func TestParseLLMResponse(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantAnswer    string
		wantCitations int
	}{
		{
			name:       "plain text",
			raw:        "The first line is an abstract.",
			wantAnswer: "The first line is an abstract.",
		},
		{
			name:          "structured json",
			raw:           `{"answer": "It covers transformers.", "citations": [{"document_name": "survey.pdf", "chunk_id": "chunk_2", "page": 7}]}`,
			wantAnswer:    "It covers transformers.",
			wantCitations: 1,
		},
		{
			name:       "malformed json falls back to raw",
			raw:        `{"answer": "broken`,
			wantAnswer: `{"answer": "broken`,
		},
		{
			name:       "json without answer keeps raw text",
			raw:        `{"citations": []}`,
			wantAnswer: `{"citations": []}`,
		},
		{
			name:          "non-map citation entries skipped",
			raw:           `{"answer": "ok", "citations": ["stray", {"document_name": "a.pdf", "chunk_id": "chunk_0"}]}`,
			wantAnswer:    "ok",
			wantCitations: 1,
		},
		{
			name:       "leading whitespace before json",
			raw:        "\n  {\"answer\": \"trimmed\"}",
			wantAnswer: "trimmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseLLMResponse(tt.raw)
			if result.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", result.Answer, tt.wantAnswer)
			}
			if result.Citations == nil {
				t.Fatal("citations must never be nil")
			}
			if len(result.Citations) != tt.wantCitations {
				t.Errorf("citations = %d, want %d", len(result.Citations), tt.wantCitations)
			}
		})
	}
}

func TestParseLLMResponseCitationFields(t *testing.T) {
	result := ParseLLMResponse(`{"answer": "x", "citations": [{"document_name": "survey.pdf", "chunk_id": "chunk_3", "score": 0.9}]}`)
	if len(result.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(result.Citations))
	}
	c := result.Citations[0]
	if c.DocumentName != "survey.pdf" || c.ChunkID != "chunk_3" {
		t.Errorf("unexpected citation: %+v", c)
	}
}

func TestGenerateModelFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	gen := NewAnswerGenerator(llm)

	result := gen.Generate(context.Background(), "q", "survey.pdf", []string{"ctx"})
	if !strings.Contains(result.Answer, "Error processing the question:") {
		t.Errorf("model failure not encoded into answer: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "connection refused") {
		t.Errorf("cause text missing from answer: %q", result.Answer)
	}
	if len(result.Citations) != 0 || result.Citations == nil {
		t.Errorf("expected empty citations, got %v", result.Citations)
	}
}

func TestGenerateJoinsContexts(t *testing.T) {
	llm := &fakeLLM{response: "fine"}
	gen := NewAnswerGenerator(llm)

	gen.Generate(context.Background(), "q", "survey.pdf", []string{"alpha", "beta"})
	if !strings.Contains(llm.prompt, "alpha\n\nbeta") {
		t.Errorf("contexts not joined with blank line: %q", llm.prompt)
	}
}

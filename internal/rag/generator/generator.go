package generator

import (
	"context"
	"fmt"
	"strings"

	"medibot/internal/rag/contextbuilder"
	"medibot/internal/rag/interfaces"
	"medibot/pkg/logger"
)

const systemText = "You are Medibot, a medically-informed assistant. You MUST NOT provide definitive diagnoses. " +
	"Always recommend consulting a qualified healthcare professional. " +
	"If the user describes an emergency (chest pain, severe bleeding, difficulty breathing, sudden weakness or slurred speech), instruct them to call emergency services immediately."

const noContextMessage = "Local LLM unavailable and no retrieved context. Please try again later or consult a medical professional."

const maxFallbackSnippets = 3

// Generator produces an answer from retrieved context and a question. A
// model failure degrades to an extractive answer built from the context
// itself, so Answer never fails outright.
type Generator struct {
	llm interfaces.LLM
	log *logger.Logger
}

// New creates a Generator backed by the given model.
func New(llm interfaces.LLM, log *logger.Logger) *Generator {
	return &Generator{llm: llm, log: log}
}

// Answer asks the model and returns its trimmed response. When the model
// call fails the extractive fallback is returned instead.
func (g *Generator) Answer(ctx context.Context, contextText, question string) string {
	answer, err := g.llm.Generate(ctx, BuildPrompt(contextText, question))
	if err != nil {
		g.log.Error(fmt.Sprintf("LLM call failed, using extractive fallback: %v", err))
		return ExtractiveFallback(contextText, err.Error())
	}
	return strings.TrimSpace(answer)
}

// BuildPrompt assembles the grounded prompt: safety preamble, retrieved
// context, the question, and the answering instruction.
func BuildPrompt(contextText, question string) string {
	return fmt.Sprintf(
		"%s\n\nCONTEXT:\n%s\n\nQUESTION:\n%s\n\n"+
			"Using ONLY the context above and general medical knowledge, answer concisely and safely. "+
			"If the context is insufficient, say so and recommend seeing a doctor.",
		systemText, contextText, question,
	)
}

// ExtractiveFallback builds an answer directly from the first few context
// snippets, wrapped in a safety disclaimer. With no usable context it
// returns a static unavailability notice. errDetail, when non-empty, is
// appended for debugging.
func ExtractiveFallback(contextText, errDetail string) string {
	if strings.TrimSpace(contextText) == "" {
		msg := noContextMessage
		if errDetail != "" {
			msg += fmt.Sprintf(" (error: %s)", errDetail)
		}
		return msg
	}

	var snippets []string
	for _, part := range strings.Split(contextText, contextbuilder.Separator) {
		if part = strings.TrimSpace(part); part != "" {
			snippets = append(snippets, part)
		}
		if len(snippets) == maxFallbackSnippets {
			break
		}
	}
	summary := strings.Join(snippets, contextbuilder.Separator)

	fallback := "The local language model is currently unavailable or returned an error. " +
		"Below are the most relevant excerpts from the documents:\n\n" +
		summary + "\n\n" +
		"This is NOT a diagnosis. If you have severe or urgent symptoms (chest pain, difficulty breathing, heavy bleeding), call emergency services immediately. " +
		"For a full evaluation, consult a qualified healthcare professional."
	if errDetail != "" {
		fallback += fmt.Sprintf("\n\n[debug: %s]", errDetail)
	}
	return fallback
}

// Package answer turns ranked knowledge chunks into a grounded narrative
// answer via the chat model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/umoja/ujenzi/internal/llm"
	"github.com/umoja/ujenzi/internal/models"
)

// ErrSynthesisFailed marks chat completion failures. Synthesis has no
// degraded fallback: without a completion there is no answer.
var ErrSynthesisFailed = errors.New("answer synthesis failed")

// personaPrompt frames every completion request. The numbered citation
// style it asks for matches the context block built by BuildContext.
const personaPrompt = `You are an expert urban planning advisor specializing in African infrastructure development.

Your role is to help urban planners identify problems and develop actionable solutions for their communities.

Key Principles:
- Think from an urban planner's perspective - focus on practical, implementable solutions
- Identify stakeholders who need to be involved (e.g., parks departments, health ministries, community organizations)
- Emphasize community engagement and how residents can contribute information to inform planning decisions
- Provide specific, actionable recommendations based on the context
- Address spatial/geographic considerations when relevant (which areas, neighborhoods, or communities need attention)
- Consider equity and accessibility in recommendations

When answering questions:
- For facility/service gaps: Identify underserved areas and suggest criteria for site selection
- For access issues: Propose solutions involving relevant departments and community input mechanisms
- For growth/development: Analyze patterns and recommend where resources should be allocated
- Always consider: Who needs to be involved? How can residents contribute? What are the next steps?

Response Format:
- Start with a clear answer to the question
- Provide specific details and examples from the context
- Include actionable recommendations with relevant stakeholders
- Suggest community engagement strategies when appropriate
- Use bullet points for clarity
- Reference sources with [1], [2], etc. when citing specific information`

// Synthesizer generates answers from ranked knowledge chunks.
type Synthesizer struct {
	completions llm.CompletionProvider
	temperature float32
}

// NewSynthesizer creates a synthesizer that completes with the given
// provider at the given sampling temperature.
func NewSynthesizer(completions llm.CompletionProvider, temperature float32) *Synthesizer {
	return &Synthesizer{
		completions: completions,
		temperature: temperature,
	}
}

// BuildContext renders ranked chunks as a numbered block, one chunk per
// "[n] text" entry in rank order.
func BuildContext(ranked []models.RankedResult) string {
	parts := make([]string, 0, len(ranked))
	for i, result := range ranked {
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, result.Chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}

// Synthesize asks the chat model to answer the question from the ranked
// chunks. An empty or whitespace-only completion counts as a failure.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, ranked []models.RankedResult) (string, error) {
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", BuildContext(ranked), question)

	text, err := s.completions.Complete(ctx, personaPrompt, userPrompt, s.temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned an empty completion", ErrSynthesisFailed)
	}
	return text, nil
}

// WithPopulationContext appends a demographic footer to a finished
// answer. The answer is returned unchanged when record is nil.
func WithPopulationContext(answer string, record *models.PopulationRecord) string {
	if record == nil {
		return answer
	}
	return answer + fmt.Sprintf(
		"\n\n**Population Context:**\n- Country: %s\n- Latest WorldPop data: %d\n- Source: WorldPop Global Population Dataset\n- Citation: %s",
		record.Country, record.Year, record.Citation,
	)
}

package generator

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight caps simultaneous upstream calls across the whole
// process. Kept low to stay under the upstream's rate limits.
const DefaultMaxInFlight = 2

// Generator wraps an LLMClient with concurrency throttling, bounded retries
// on overload, and strict response parsing. One Generator is constructed at
// startup and shared by every request.
type Generator struct {
	llm     LLMClient
	sem     *semaphore.Weighted
	retrier *Retrier
}

func NewGenerator(llm LLMClient, maxInFlight int64) *Generator {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &Generator{
		llm:     llm,
		sem:     semaphore.NewWeighted(maxInFlight),
		retrier: NewRetrier(DefaultRetryPolicy()),
	}
}

// GenerateQuestion produces one multiple-choice question from the topic's
// source text. Overload is retried under the adapter's budget; auth failures
// and malformed responses are terminal.
func (g *Generator) GenerateQuestion(ctx context.Context, category, sourceText string) (*GeneratedQuestion, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire generation slot: %w", err)
	}
	defer g.sem.Release(1)

	var resp *LLMResponse
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		r, err := g.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(category, sourceText))
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ParseResponse(resp.Content)
}

// ValidateQuestion asks the model to judge a stored question against its
// topic's source text and returns the verdict.
func (g *Generator) ValidateQuestion(ctx context.Context, category, sourceText, question string, options []string, correctAnswer int, explanation string) (*ValidationVerdict, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire generation slot: %w", err)
	}
	defer g.sem.Release(1)

	var resp *LLMResponse
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		prompt := BuildValidationPrompt(category, sourceText, question, options, correctAnswer, explanation)
		r, err := g.llm.Generate(ctx, SystemPrompt(), prompt)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ParseValidationResponse(resp.Content)
}

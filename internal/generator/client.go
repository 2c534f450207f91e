package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"
)

// LLMClient is the interface all generation backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewClient selects a generation backend from the environment: mock for local
// development, OpenAI when an OpenAI model is configured, Anthropic otherwise.
func NewClient() LLMClient {
	if os.Getenv("MOCK_GENERATOR") == "true" {
		log.Println("[generator] using mock client")
		return NewMockClient()
	}

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		log.Println("[generator] using OpenAI API:", model)
		return NewOpenAIClient(model)
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	log.Println("[generator] using Anthropic API:", model)
	return NewAPIClient(model)
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return nil, classify(apierr.StatusCode, err)
		}
		return nil, classify(0, err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, &GenerationError{Kind: FailureMalformed, Err: fmt.Errorf("no text content in API response")}
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// ── OpenAIClient — alternate backend ───────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		var apierr *openai.APIError
		if errors.As(err, &apierr) {
			return nil, classify(apierr.HTTPStatusCode, err)
		}
		return nil, classify(0, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &GenerationError{Kind: FailureMalformed, Err: fmt.Errorf("no content in API response")}
	}

	return &LLMResponse{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// ── MockClient — Local Development ─────────────────────────

// MockClient fabricates a distinct question per call so local batch flows
// exercise dedup and persistence realistically.
type MockClient struct {
	calls atomic.Int64
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	n := m.calls.Add(1)
	mockJSON := fmt.Sprintf(`{
  "question": "[Mock %d] 다음 중 데이터 분석 준전문가 시험의 학습 주제로 가장 거리가 먼 것은?",
  "options": [
    {"index": 0, "text": "[Mock %d] 데이터의 이해와 가치"},
    {"index": 1, "text": "기획 단계의 분석 과제 도출"},
    {"index": 2, "text": "통계 기반 분석 기법"},
    {"index": 3, "text": "네트워크 장비 설치"}
  ],
  "correct_answer": 3,
  "explanation": "[Mock %d] 네트워크 장비 설치는 데이터 분석 학습 범위에 포함되지 않습니다."
}`, n, n, n)
	return &LLMResponse{
		Content:      mockJSON,
		PromptTokens: 800,
		OutputTokens: 400,
	}, nil
}

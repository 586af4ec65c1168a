// Package generate asks a language model to propose SaFE API pairs and
// benchmark cases from crawled answers.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/config"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/store"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const DefaultOutput = "generated_output.xlsx"

const systemPrompt = "You are a professional AI assistant, adept at analyzing text and code and generating test cases."

const PromptTemplate = `Definition:
A Scenario-aware Functional Equivalent (SaFE) API pair is two APIs that can be used interchangeably in the same application scenario to achieve equivalent functionality, whether or not their documented purpose is identical.

Task:
The content above comes from a question-and-answer post about choosing and using APIs. It contains answer text and code snippets that may reference library functions.

1. Extract every referenced API with its full package-qualified name (for example numpy.linalg.norm). Identify pairs that are functionally equivalent in the scenario and label them api1 and api2.
2. For each pair, write a complete benchmark case: a method_v1 using api1 and a method_v2 using api2 with identical signatures, plus an input generator producing random, representative data at the scales 10, 100, 1000 and 10000.

Example:
Title: Efficient row elements multiplication in numpy
Answer: np.prod(a, axis=1) returns the product of every row.
api1 = "numpy.prod"
api2 = "numpy.multiply.reduce"
test_sizes = [10, 100, 1000, 10000]
def method_v1(A):
    return np.prod(A, axis=1)
def method_v2(A):
    return np.multiply.reduce(A, axis=1)
`

var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer sends a chat conversation and returns the assistant's reply.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAICompleter(cfg config.Generation) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation api key is not set (config generation.api_key or OPENAI_API_KEY)")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// Combined renders one row's crawled answers as the user message.
func Combined(answers, codes string) string {
	return "### Answer Text ###\n" + answers + "\n\n### Code Snippets ###\n" + codes
}

func Messages(answers, codes string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: Combined(answers, codes)},
		{Role: openai.ChatMessageRoleUser, Content: PromptTemplate},
	}
}

// GenerateAll fills the generated_code column of every row. A failed
// completion is recorded in the cell as "Error: <msg>" and the loop moves on.
// It returns the number of failed rows.
func GenerateAll(ctx context.Context, t *store.Table, c Completer, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	t.AddColumns(types.ColGeneratedCode)
	total := len(t.Rows)
	failed := 0
	for i, row := range t.Rows {
		msgs := Messages(types.TextOrEmpty(row[types.ColAnswersText]), types.TextOrEmpty(row[types.ColCodeBlocks]))
		out, err := c.Complete(ctx, msgs)
		if err != nil {
			failed++
			row[types.ColGeneratedCode] = fmt.Sprintf("Error: %v", err)
			logger.Warn(fmt.Sprintf("[%d/%d] Error: %v", i+1, total, err))
			continue
		}
		row[types.ColGeneratedCode] = out
		logger.Info(fmt.Sprintf("[%d/%d] Generated successfully.", i+1, total))
	}
	return failed
}

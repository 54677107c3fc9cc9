// Package coach provides the AI coaching chat client.
package coach

import (
	"context"

	"github.com/sashabaranov/go-openai"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/pkg/utils"
)

const systemPrompt = `You are a pragmatic crypto trading coach inside a personal
trading journal. Answer questions about trading concepts, risk management and
the user's ideas. Be concise. Never give financial advice presented as
certainty, and never invent market prices.`

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Coach answers journal questions through a chat-completion API.
type Coach struct {
	client *openai.Client
	model  string
}

// New creates a coach backed by the OpenAI API.
func New(apiKey, model string) *Coach {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Coach{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Ask sends the question with the recent conversation history and returns
// the coach's reply.
func (c *Coach) Ask(ctx context.Context, history []Turn, question string) (string, error) {
	if question == "" {
		return "", apperrors.NewValidationError("question", question, "question must not be empty")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	// The completion API fails transiently under load; retry with backoff
	// before reporting the coach as unavailable.
	resp, err := utils.RetryWithResult(ctx, utils.DefaultRetryConfig(), func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
	})
	if err != nil {
		return "", apperrors.NewRemoteError("openai", "chat completion", "coach is unavailable", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewRemoteError("openai", "chat completion", "empty response", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

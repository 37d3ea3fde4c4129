package reasoning

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Chunk is one unit of streamed model output. Thought chunks carry the
// model's free-text reasoning; the rest accumulate into the decision JSON.
type Chunk struct {
	Thought bool
	Text    string
}

// StreamClient opens one streamed completion and delivers chunks in arrival
// order through emit.
type StreamClient interface {
	Stream(ctx context.Context, model, prompt string, emit func(Chunk)) error
}

// OpenAIStream adapts the go-openai streaming API to StreamClient. Any
// OpenAI-compatible endpoint works; reasoning models surface their thinking
// through the reasoning_content delta field.
type OpenAIStream struct {
	client *openai.Client
	logger zerolog.Logger
}

// NewOpenAIStream creates a streaming client. An empty baseURL targets the
// OpenAI API itself.
func NewOpenAIStream(apiKey, baseURL string) *OpenAIStream {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIStream{
		client: openai.NewClientWithConfig(cfg),
		logger: log.With().Str("component", "reasoning_stream").Logger(),
	}
}

func (s *OpenAIStream) Stream(ctx context.Context, model, prompt string, emit func(Chunk)) error {
	s.logger.Debug().Str("model", model).Msg("Opening completion stream")

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receiving stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta
		if delta.ReasoningContent != "" {
			emit(Chunk{Thought: true, Text: delta.ReasoningContent})
		}
		if delta.Content != "" {
			emit(Chunk{Text: delta.Content})
		}
	}
}

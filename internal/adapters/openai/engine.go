package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// transcriptionPrompt asks the vision model to behave like an OCR engine.
const transcriptionPrompt = `Transcribe all text visible in this document image.
Preserve the reading order and line breaks. Respond only with the transcribed text and nothing else.
If the image contains no readable text, respond with an empty string.`

// Engine is a recognition engine backed by an OpenAI vision model.
type Engine struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewEngine creates a new OpenAI recognition engine.
func NewEngine(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// RecognizeImage sends the page image to the vision model and returns the
// transcription.
func (e *Engine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.modelName,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: transcriptionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	e.logger.Debug("OpenAI transcription complete",
		zap.String("model", e.modelName),
		zap.Int("chars", len(text)))
	return text, nil
}

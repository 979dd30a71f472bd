package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

const transcriptionPrompt = `Transcribe all text visible in this document image.
Preserve the reading order and line breaks. Respond only with the transcribed text and nothing else.
If the image contains no readable text, respond with an empty string.`

// Engine is a recognition engine backed by a Bedrock vision model.
type Engine struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewEngine creates a new Bedrock recognition engine.
func NewEngine(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// messagesRequest is the Anthropic messages payload accepted by Bedrock.
type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float32   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// RecognizeImage sends the page image to the vision model and returns the
// transcription.
func (e *Engine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        e.maxTokens,
		Temperature:      e.temperature,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: "image/png",
							Data:      base64.StdEncoding.EncodeToString(image),
						},
					},
					{
						Type: "text",
						Text: transcriptionPrompt,
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &e.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal Bedrock response: %w", err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	e.logger.Debug("Bedrock transcription complete",
		zap.String("model_id", e.modelID),
		zap.Int("chars", len(result)))
	return result, nil
}

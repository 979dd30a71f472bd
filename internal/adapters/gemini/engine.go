package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const transcriptionPrompt = `Transcribe all text visible in this document image.
Preserve the reading order and line breaks. Respond only with the transcribed text and nothing else.
If the image contains no readable text, respond with an empty string.`

// Engine is a recognition engine backed by a Gemini vision model.
type Engine struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewEngine creates a new Gemini recognition engine.
func NewEngine(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	logger *zap.Logger,
) (*Engine, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Engine{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// RecognizeImage sends the page image to the vision model and returns the
// transcription.
func (e *Engine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	resp, err := e.model.GenerateContent(ctx,
		genai.ImageData("png", image),
		genai.Text(transcriptionPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcription failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	result := strings.TrimSpace(text.String())
	e.logger.Debug("Gemini transcription complete",
		zap.String("model", e.modelName),
		zap.Int("chars", len(result)))
	return result, nil
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	return e.client.Close()
}

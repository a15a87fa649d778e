package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rmarinho/granabot/internal/logging"
)

// GeminiClient implements Client against the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    logging.Logger
}

// NewGeminiClient creates a Gemini-backed Client.
func NewGeminiClient(ctx context.Context, apiKey, model string, log logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(model),
		log:    log,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// AskText sends a prompt and returns the model's text response.
func (c *GeminiClient) AskText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// ClassifyStructured sends a prompt and decodes the response as a JSON
// object, tolerating markdown fences the model may wrap it in.
func (c *GeminiClient) ClassifyStructured(ctx context.Context, prompt string) (map[string]any, error) {
	text, err := c.AskText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	clean := CleanModelJSON(text)
	var out map[string]any
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		c.log.WithError(err).WithField("response", clean).Debug("Model returned unparseable JSON")
		return nil, fmt.Errorf("decode model JSON: %w", err)
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}

package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider asks for a JSON response body directly since the Gemini API
// has no forced function calling equivalent for this flow. The payload is still
// checked against the ranking schema downstream.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}

	return &GeminiProvider{client: client, modelName: model}, nil
}

func (p *GeminiProvider) InvokeTool(ctx context.Context, prompts promptSet) (string, error) {
	if p == nil || p.client == nil {
		return "", errors.New("gemini provider is not initialized")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{{
				Text: prompts.System,
			}},
		},
		ResponseMIMEType: "application/json",
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, genai.Text(prompts.User), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return extractJSON(builder.String()), nil
}

func (p *GeminiProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.modelName
}

// extractJSON strips markdown code fences some models wrap JSON bodies in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

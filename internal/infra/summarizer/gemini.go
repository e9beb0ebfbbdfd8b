package summarizer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Generator is the slice of the genai client the Gemini summarizer uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for the summary and falls back to Metadata when the
// model returns no text.
type Gemini struct {
	models   Generator
	model    string
	fallback Metadata
	logger   *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer: create gemini client: %w", err)
	}
	return NewGeminiWithGenerator(client.Models, model, logger), nil
}

func NewGeminiWithGenerator(models Generator, model string, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{models: models, model: model, logger: logger.Named("gemini")}
}

func (g *Gemini) Summarize(ctx context.Context, in Input) (string, error) {
	facts, err := g.fallback.Summarize(ctx, in)
	if err != nil {
		return "", err
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(in, facts)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	})
	if err != nil {
		return "", fmt.Errorf("summarizer: gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.Warn("empty gemini response, using metadata summary", zap.String("title", in.Title()))
		return facts, nil
	}
	return text, nil
}

func buildPrompt(in Input, facts string) string {
	var b strings.Builder
	kind := "video"
	if in.Channel != nil {
		kind = "channel"
	}
	fmt.Fprintf(&b, "Summarize this YouTube %s for its creator in one short paragraph. ", kind)
	b.WriteString("Mention what the audience reacts to and anything worth improving.\n\n")
	b.WriteString("Facts: ")
	b.WriteString(facts)
	b.WriteString("\n")
	if in.Video != nil && in.Video.Snippet.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(in.Video.Snippet.Description, 1500))
	}
	if in.Channel != nil && in.Channel.Snippet.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(in.Channel.Snippet.Description, 1500))
	}
	if len(in.Comments) > 0 {
		b.WriteString("Comments:\n")
		for _, c := range in.Comments {
			fmt.Fprintf(&b, "- %s\n", truncate(oneLine(c.Text), 300))
		}
	}
	return b.String()
}

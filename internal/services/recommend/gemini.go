package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

const narratorInstruction = `You write one or two sentence rationales for stock recommendations on a
personal investment dashboard. Use only the figures given. Do not invent news, targets or fundamentals.
Do not contradict the action. Plain text, no markdown.`

// GeminiNarrator writes rationales with a Gemini model.
type GeminiNarrator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiNarrator creates a narrator from config. It returns nil, nil when
// no API key is configured.
func NewGeminiNarrator(ctx context.Context, cfg config.GeminiConfig) (*GeminiNarrator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiNarrator{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.GetTimeout(),
	}, nil
}

// Narrate asks the model for a rationale.
func (n *GeminiNarrator) Narrate(ctx context.Context, rec models.Recommendation, holding *models.Holding) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt(rec, holding)), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: narratorInstruction}}},
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   120,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func prompt(rec models.Recommendation, holding *models.Holding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\nAction: %s\nPrice: %.2f\nDaily change: %.2f%%\nConfidence: %.2f\n",
		rec.Symbol, rec.Action, rec.Price, rec.PercentChange, rec.Confidence)
	if holding != nil {
		fmt.Fprintf(&b, "Held: %.4g shares at average cost %.2f\n", holding.Shares, holding.AvgCost)
	} else {
		b.WriteString("Held: no\n")
	}
	return b.String()
}

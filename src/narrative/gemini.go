// backend/src/narrative/gemini.go
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/username/finsight/backend/src/models"
	"google.golang.org/genai"
)

const summaryPrompt = "You are a personal finance assistant. Provide concise, practical advice only.\n\n" +
	"Write a short executive summary (max 120 words) of the monthly finance report JSON below. " +
	"Focus on the top savings actions and risk signals. " +
	"Quote figures exactly as given; do not recompute, round differently, or reorder the recommendations. " +
	"Return plain text only, no Markdown.\n\n"

// GeminiService generates report narratives with the Gemini API. Credentials
// are taken from the environment by the genai client.
type GeminiService struct {
	model   string
	timeout time.Duration
}

func NewGeminiService(model string, timeout time.Duration) *GeminiService {
	return &GeminiService{model: model, timeout: timeout}
}

// GenerateSummary sends the structured report to the model, bounded by the
// configured timeout. Every failure mode maps onto ErrUnavailable so callers
// need exactly one fallback path.
func (s *GeminiService) GenerateSummary(ctx context.Context, report *models.Report) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("%w: creating genai client: %v", ErrUnavailable, err)
	}

	payload, err := json.Marshal(narrativeInput(report))
	if err != nil {
		return "", fmt.Errorf("%w: encoding report: %v", ErrUnavailable, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: summaryPrompt + string(payload)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrUnavailable)
	}
	return text, nil
}

// narrativeInput trims the report to the fields the model needs. Anomalies
// are capped to keep the prompt bounded.
func narrativeInput(report *models.Report) map[string]any {
	anomalies := report.Anomalies
	if len(anomalies) > 10 {
		anomalies = anomalies[:10]
	}
	return map[string]any{
		"month":           report.Month,
		"summary":         report.Summary,
		"anomalies":       anomalies,
		"recommendations": report.Recommendations,
	}
}

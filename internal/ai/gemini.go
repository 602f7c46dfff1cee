// Package ai proposes categories for uncategorized transactions with
// Google's Gemini models.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"moneylens/internal/models"
	"moneylens/internal/resilience"
)

var tracer = otel.Tracer("moneylens/ai")

// generateFunc sends one prompt and returns the model's text.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiSuggester implements services.CategorySuggester.
type GeminiSuggester struct {
	model    string
	generate generateFunc
	cb       *gobreaker.CircuitBreaker
	cfg      resilience.Config
	bulkhead *resilience.Bulkhead
}

// NewGeminiSuggester connects to the Gemini API with apiKey.
func NewGeminiSuggester(ctx context.Context, apiKey, model string, cfg resilience.Config) (*GeminiSuggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("empty response from model")
		}
		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
		return text.String(), nil
	}
	return newSuggester(model, generate, cfg), nil
}

func newSuggester(model string, generate generateFunc, cfg resilience.Config) *GeminiSuggester {
	return &GeminiSuggester{
		model:    model,
		generate: generate,
		cb:       resilience.NewCircuitBreaker("gemini"),
		cfg:      cfg,
		bulkhead: resilience.NewBulkhead(cfg.MaxConcurrency),
	}
}

type promptTransaction struct {
	ID          string   `json:"transaction_id"`
	Date        string   `json:"date"`
	Amount      string   `json:"amount"`
	BankAccount *string  `json:"bank_account,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

func buildPrompt(categories []string, transactions []models.Transaction) (string, error) {
	var b strings.Builder
	b.WriteString("You categorize personal finance transactions.\n")
	b.WriteString("Return a RAW JSON ARRAY of objects with 'transaction_id' and 'category'. Do NOT use markdown formatting.\n")
	b.WriteString("Use only these categories, exactly as written, and skip transactions that fit none of them:\n")
	for _, c := range categories {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\nTransactions:\n")
	for _, t := range transactions {
		line, err := json.Marshal(promptTransaction{
			ID:          t.ID,
			Date:        t.Date.String(),
			Amount:      t.Amount.StringFixed(2),
			BankAccount: t.BankAccount,
			Tags:        t.Tags,
			Notes:       t.Notes,
		})
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// parseSuggestions reads the model's answer, tolerating a ```json fence.
func parseSuggestions(raw string) ([]models.CategorySuggestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var suggestions []models.CategorySuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return suggestions, nil
}

// SuggestCategories asks the model to place each transaction in one of
// categories.
func (s *GeminiSuggester) SuggestCategories(ctx context.Context, categories []string, transactions []models.Transaction) ([]models.CategorySuggestion, error) {
	ctx, span := tracer.Start(ctx, "Gemini.SuggestCategories")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", s.model),
		attribute.Int("ai.transactions", len(transactions)),
	)

	prompt, err := buildPrompt(categories, transactions)
	if err != nil {
		return nil, err
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	var suggestions []models.CategorySuggestion
	err = resilience.Call(ctx, s.cb, s.cfg, func() error {
		text, err := s.generate(ctx, prompt)
		if err != nil {
			return err
		}
		parsed, err := parseSuggestions(text)
		if err != nil {
			return resilience.Permanent(err)
		}
		suggestions = parsed
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("ai.suggestions", len(suggestions)))
	return suggestions, nil
}

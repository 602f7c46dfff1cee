package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneylens/internal/models"
	"moneylens/internal/resilience"
	"moneylens/internal/services"
)

var _ services.CategorySuggester = (*GeminiSuggester)(nil)

func testConfig() resilience.Config {
	return resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 1}
}

func sampleTransactions() []models.Transaction {
	notes := "TESCO STORES 2231"
	tx := models.Transaction{
		Type:   models.TransactionTypeSpend,
		Date:   models.MustParseDate("2024-03-04"),
		Amount: decimal.RequireFromString("12.5"),
		Notes:  &notes,
	}
	tx.ID = "tx-1"
	return []models.Transaction{tx}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt([]string{"Food", "Travel"}, sampleTransactions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"- Food\n", "- Travel\n", `"transaction_id":"tx-1"`, `"amount":"12.50"`, "TESCO STORES"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "plain", raw: `[{"transaction_id":"tx-1","category":"Food"}]`, want: 1},
		{name: "fenced", raw: "```json\n[{\"transaction_id\":\"tx-1\",\"category\":\"Food\"}]\n```", want: 1},
		{name: "empty array", raw: `[]`, want: 0},
		{name: "prose", raw: "I think it is Food", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d suggestions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSuggestCategories(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		s := newSuggester("test-model", func(context.Context, string) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("503 unavailable")
			}
			return `[{"transaction_id":"tx-1","category":"Food"}]`, nil
		}, testConfig())

		got, err := s.SuggestCategories(t.Context(), []string{"Food"}, sampleTransactions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Category != "Food" || got[0].TransactionID != "tx-1" {
			t.Errorf("unexpected suggestions %+v", got)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("unparseable answers are not retried", func(t *testing.T) {
		calls := 0
		s := newSuggester("test-model", func(context.Context, string) (string, error) {
			calls++
			return "no idea", nil
		}, testConfig())

		if _, err := s.SuggestCategories(t.Context(), []string{"Food"}, sampleTransactions()); err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
	"moneylens/internal/optional"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", server.Client())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin_StoresToken(t *testing.T) {
	var sawToken atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req["email"] != "a@example.com" || req["password"] != "secret123" {
				t.Errorf("unexpected credentials: %v", req)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"user":          map[string]string{"id": "user-1"},
			})
		case "/api/v1/transactions":
			sawToken.Store(r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"transactions": []any{}})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	userID, err := c.Login(context.Background(), "a@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("user id = %q, want user-1", userID)
	}
	if _, err := c.ListTransactions(context.Background(), models.TransactionFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := sawToken.Load().(string); got != "Bearer access-1" {
		t.Errorf("Authorization = %q, want Bearer access-1", got)
	}
}

func TestServerErrorsPassThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "TAG_NOT_FOUND", "message": "Tag not found"},
		})
	})

	_, err := c.UpdateTag(context.Background(), "tag-1", models.ReferenceChanges{Name: optional.Of("x")})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != "TAG_NOT_FOUND" || appErr.Message != "Tag not found" || appErr.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected error: %+v", appErr)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "bad gateway")
	})

	_, err := c.ListTags(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected status 502") {
		t.Errorf("error %q should mention the status", err.Error())
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestListTransactions_EncodesFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"from":      "2024-03-01",
			"to":        "2024-03-31",
			"type":      "spend",
			"tags_any":  "food,travel",
			"order_by":  "date",
			"order_dir": "desc",
			"limit":     "20",
			"offset":    "40",
		}
		for key, value := range want {
			if got := q.Get(key); got != value {
				t.Errorf("%s = %q, want %q", key, got, value)
			}
		}
		if q.Has("category") || q.Has("tags_all") {
			t.Errorf("unset filters should be omitted: %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": []map[string]any{
			{"id": "tx-1", "type": "spend", "date": "2024-03-05", "amount": "12.50", "tags": []string{"food"}},
		}})
	})

	from, to := models.MustParseDate("2024-03-01"), models.MustParseDate("2024-03-31")
	spend := models.TransactionTypeSpend
	txs, err := c.ListTransactions(context.Background(), models.TransactionFilter{
		From: &from, To: &to, Type: &spend,
		TagsAny: []string{"food", "travel"},
		OrderBy: "date", OrderDir: models.OrderDesc,
		Limit: 20, Offset: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("12.5")) || txs[0].Date.String() != "2024-03-05" {
		t.Errorf("unexpected transaction: %+v", txs[0])
	}
}

func TestSumTransactions_DropsWindow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transactions/sum" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Has("limit") || r.URL.Query().Has("order_by") {
			t.Errorf("sum should not send ordering or windowing: %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, map[string]string{"total": "250.75"})
	})

	total, err := c.SumTransactions(context.Background(), models.TransactionFilter{Limit: 5, OrderBy: "amount"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.String() != "250.75" {
		t.Errorf("total = %s, want 250.75", total)
	}
}

func TestCreateTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/transactions/earn" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["amount"] != 100.0 || body["date"] != "2024-03-01" {
			t.Errorf("unexpected body: %v", body)
		}
		if v, ok := body["notes"]; !ok || v != nil {
			t.Errorf("blank notes should be sent as null, got %v", body["notes"])
		}
		writeJSON(w, http.StatusCreated, map[string]any{"transaction": map[string]any{"id": "tx-9", "type": "earn"}})
	})

	tx, err := c.CreateTransaction(context.Background(), models.TransactionTypeEarn, models.TransactionInput{
		Date:   models.MustParseDate("2024-03-01"),
		Amount: models.AmountOf(decimal.NewFromInt(100)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != "tx-9" || tx.Type != models.TransactionTypeEarn {
		t.Errorf("unexpected transaction: %+v", tx)
	}

	if _, err := c.CreateTransaction(context.Background(), "gift", models.TransactionInput{}); err != apperrors.ErrInvalidTransactionType {
		t.Errorf("expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestUpdateTransaction_SendsOnlyPresentFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/transactions/tx-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 2 {
			t.Errorf("expected 2 fields, got %v", body)
		}
		if string(body["category"]) != `"Food"` || string(body["notes"]) != "null" {
			t.Errorf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{"transaction": map[string]any{"id": "tx-1"}})
	})

	_, err := c.UpdateTransaction(context.Background(), "tx-1", models.TransactionChanges{
		Category: optional.Of("Food"),
		Notes:    optional.Null[string](),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteTransactions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/transactions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": 2})
	})

	n, err := c.DeleteTransactions(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}

func TestSafeDelete(t *testing.T) {
	tests := []struct {
		name string
		kind models.ReferenceKind
		path string
	}{
		{"category", models.ReferenceCategory, "/api/v1/categories/id-1"},
		{"tag", models.ReferenceTag, "/api/v1/tags/id-1"},
		{"bank account", models.ReferenceBankAccount, "/api/v1/bank-accounts/id-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != tt.path {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				writeJSON(w, http.StatusOK, map[string]any{"deleted": false, "blocking_usage_count": 3})
			})

			result, err := c.SafeDelete(context.Background(), tt.kind, "id-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Deleted || result.BlockingUsageCount != 3 {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		c := NewClient("http://unused", nil)
		if _, err := c.SafeDelete(context.Background(), "folder", "id-1"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestListCategories_TypeFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "save" {
			t.Errorf("type = %q, want save", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": []map[string]any{
			{"id": "c1", "type": "save", "name": "Pension", "in_use_count": 4},
		}})
	})

	save := models.TransactionTypeSave
	cats, err := c.ListCategories(context.Background(), &save)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Pension" || cats[0].InUseCount != 4 {
		t.Errorf("unexpected categories: %+v", cats)
	}
}

func TestBulkPreviewAndCommit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/bulk-upload/preview":
			if got := r.URL.Query().Get("date"); got != "2024-04-01" {
				t.Errorf("date = %q, want 2024-04-01", got)
			}
			writeJSON(w, http.StatusOK, map[string]any{"preview": map[string]any{
				"preview_id": "p-1",
				"totals":     map[string]string{"spend": "10"},
			}})
		case "/api/v1/bulk-upload/commit":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["preview_id"] != "p-1" {
				t.Errorf("preview_id = %q, want p-1", body["preview_id"])
			}
			writeJSON(w, http.StatusCreated, map[string]any{"result": map[string]int{"inserted": 1}})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	date := models.MustParseDate("2024-04-01")
	preview, err := c.PreviewBulkUpload(context.Background(), models.BulkPayload{}, &date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.ID != "p-1" || preview.Totals[models.TransactionTypeSpend].String() != "10" {
		t.Errorf("unexpected preview: %+v", preview)
	}

	result, err := c.CommitBulkUpload(context.Background(), preview.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", result.Inserted)
	}
}

func TestMonthOverview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("month"); got != "2024-03-01" {
			t.Errorf("month = %q, want 2024-03-01", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"overview": map[string]any{
			"month": "2024-03-01", "earned": "1000", "spent": "400", "saved": "100", "net": "500",
		}})
	})

	overview, err := c.MonthOverview(context.Background(), models.MustParseDate("2024-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Net().String() != "500" {
		t.Errorf("net = %s, want 500", overview.Net())
	}
}

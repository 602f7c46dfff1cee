package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
	"moneylens/internal/observability"
	"moneylens/internal/services"
)

const testRefID = "0192d7a8-57c3-7b4e-9a36-2f0c1d5e8a33"

// --- mock reference services ---

type mockCategoryService struct {
	listFn   func(userID string, txType *models.TransactionType) ([]models.CategoryWithUsage, error)
	createFn func(userID string, input models.CategoryInput) (*models.Category, error)
	getFn    func(userID, id string) (*models.Category, error)
	updateFn func(userID, id string, changes models.ReferenceChanges) (*models.Category, error)
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func (m *mockCategoryService) ListCategories(_ context.Context, userID string, txType *models.TransactionType) ([]models.CategoryWithUsage, error) {
	if m.listFn != nil {
		return m.listFn(userID, txType)
	}
	return []models.CategoryWithUsage{}, nil
}

func (m *mockCategoryService) CreateCategory(_ context.Context, userID string, input models.CategoryInput) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, input)
	}
	return &models.Category{Base: models.Base{ID: testRefID}, UserID: userID, Type: input.Type, Name: input.Name}, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, userID, id string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Category{Base: models.Base{ID: id}, UserID: userID}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, id string, changes models.ReferenceChanges) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, changes)
	}
	return &models.Category{Base: models.Base{ID: id}, UserID: userID, Name: changes.Name.Value}, nil
}

type mockTagService struct {
	createFn func(userID string, input models.ReferenceInput) (*models.Tag, error)
}

var _ services.TagServicer = (*mockTagService)(nil)

func (m *mockTagService) ListTags(_ context.Context, _ string) ([]models.TagWithUsage, error) {
	return []models.TagWithUsage{{Tag: models.Tag{Name: "weekly"}, InUseCount: 2}}, nil
}

func (m *mockTagService) CreateTag(_ context.Context, userID string, input models.ReferenceInput) (*models.Tag, error) {
	if m.createFn != nil {
		return m.createFn(userID, input)
	}
	return &models.Tag{Base: models.Base{ID: testRefID}, UserID: userID, Name: input.Name}, nil
}

func (m *mockTagService) GetTagByID(_ context.Context, userID, id string) (*models.Tag, error) {
	return &models.Tag{Base: models.Base{ID: id}, UserID: userID}, nil
}

func (m *mockTagService) UpdateTag(_ context.Context, userID, id string, _ models.ReferenceChanges) (*models.Tag, error) {
	return &models.Tag{Base: models.Base{ID: id}, UserID: userID}, nil
}

type mockBankAccountService struct{}

var _ services.BankAccountServicer = (*mockBankAccountService)(nil)

func (m *mockBankAccountService) ListBankAccounts(_ context.Context, _ string) ([]models.BankAccountWithUsage, error) {
	return []models.BankAccountWithUsage{}, nil
}

func (m *mockBankAccountService) CreateBankAccount(_ context.Context, userID string, input models.ReferenceInput) (*models.BankAccount, error) {
	return &models.BankAccount{Base: models.Base{ID: testRefID}, UserID: userID, Name: input.Name}, nil
}

func (m *mockBankAccountService) GetBankAccountByID(_ context.Context, _, _ string) (*models.BankAccount, error) {
	return nil, apperrors.ErrBankAccountNotFound
}

func (m *mockBankAccountService) UpdateBankAccount(_ context.Context, userID, id string, _ models.ReferenceChanges) (*models.BankAccount, error) {
	return &models.BankAccount{Base: models.Base{ID: id}, UserID: userID}, nil
}

type mockSafeDeleter struct {
	deleteFn func(userID string, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error)
}

var _ services.SafeDeleter = (*mockSafeDeleter)(nil)

func (m *mockSafeDeleter) SafeDelete(_ context.Context, userID string, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error) {
	if m.deleteFn != nil {
		return m.deleteFn(userID, kind, id)
	}
	return &models.SafeDeleteResult{Deleted: true}, nil
}

// scrape renders the metrics registry in the text format.
func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/categories", handler.ListCategories)
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PATCH("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		handler := NewCategoryHandler(&mockCategoryService{}, &mockSafeDeleter{}, audit, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"type":"spend","name":"Food"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["name"] != "Food" || cat["type"] != "spend" {
			t.Errorf("unexpected category %v", cat)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "CREATE_CATEGORY" {
			t.Errorf("expected CREATE_CATEGORY audit, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"type":"spend"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"type":"expense","name":"Food"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createFn: func(_ string, _ models.CategoryInput) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		handler := NewCategoryHandler(catSvc, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"type":"spend","name":"Food"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	t.Run("passes the type filter", func(t *testing.T) {
		var got *models.TransactionType
		catSvc := &mockCategoryService{
			listFn: func(_ string, txType *models.TransactionType) ([]models.CategoryWithUsage, error) {
				got = txType
				return []models.CategoryWithUsage{{Category: models.Category{Name: "Salary", Type: models.TransactionTypeEarn}, InUseCount: 4}}, nil
			},
		}
		handler := NewCategoryHandler(catSvc, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories?type=earn", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != models.TransactionTypeEarn {
			t.Errorf("expected earn filter, got %v", got)
		}
		cats := parseJSON(t, rec)["categories"].([]interface{})
		if len(cats) != 1 || cats[0].(map[string]interface{})["in_use_count"] != float64(4) {
			t.Errorf("unexpected categories %v", cats)
		}
	})

	t.Run("no type lists everything", func(t *testing.T) {
		catSvc := &mockCategoryService{
			listFn: func(_ string, txType *models.TransactionType) ([]models.CategoryWithUsage, error) {
				if txType != nil {
					t.Errorf("expected no type filter, got %v", *txType)
				}
				return nil, nil
			},
		}
		handler := NewCategoryHandler(catSvc, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		if rec := doRequest(r, "GET", "/categories", ""); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("binds a partial update", func(t *testing.T) {
		var got models.ReferenceChanges
		catSvc := &mockCategoryService{
			updateFn: func(_, id string, changes models.ReferenceChanges) (*models.Category, error) {
				got = changes
				return &models.Category{Base: models.Base{ID: id}, Name: "Groceries"}, nil
			},
		}
		handler := NewCategoryHandler(catSvc, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PATCH", "/categories/"+testRefID, `{"name":"Groceries","description":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name.Value != "Groceries" || !got.Description.Null {
			t.Errorf("unexpected changes %+v", got)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			updateFn: func(_, _ string, _ models.ReferenceChanges) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewCategoryHandler(catSvc, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PATCH", "/categories/"+testRefID, `{"name":"X"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("deletes an unused category", func(t *testing.T) {
		var gotKind models.ReferenceKind
		deleter := &mockSafeDeleter{
			deleteFn: func(_ string, kind models.ReferenceKind, _ string) (*models.SafeDeleteResult, error) {
				gotKind = kind
				return &models.SafeDeleteResult{Deleted: true}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewCategoryHandler(&mockCategoryService{}, deleter, audit, observability.NewMetrics())
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/"+testRefID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotKind != models.ReferenceCategory {
			t.Errorf("expected category kind, got %s", gotKind)
		}
		if parseJSON(t, rec)["deleted"] != true {
			t.Error("expected deleted true")
		}
		if len(audit.actions) != 1 || audit.actions[0] != "DELETE_REFERENCE" {
			t.Errorf("expected DELETE_REFERENCE audit, got %v", audit.actions)
		}
	})

	t.Run("reports the blocking count and counts the refusal", func(t *testing.T) {
		deleter := &mockSafeDeleter{
			deleteFn: func(_ string, _ models.ReferenceKind, _ string) (*models.SafeDeleteResult, error) {
				return &models.SafeDeleteResult{Deleted: false, BlockingUsageCount: 3}, nil
			},
		}
		audit := &mockAuditService{}
		metrics := observability.NewMetrics()
		handler := NewCategoryHandler(&mockCategoryService{}, deleter, audit, metrics)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/"+testRefID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["deleted"] != false || result["blocking_usage_count"] != float64(3) {
			t.Errorf("unexpected result %v", result)
		}
		if len(audit.actions) != 0 {
			t.Errorf("expected no audit for refused delete, got %v", audit.actions)
		}
		if !strings.Contains(scrape(t, metrics), `moneylens_safe_delete_blocked_total{kind="category"} 1`) {
			t.Error("expected blocked delete to be counted")
		}
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockSafeDeleter{}, &mockAuditService{}, nil)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTagHandler(t *testing.T) {
	handler := NewTagHandler(&mockTagService{}, &mockSafeDeleter{
		deleteFn: func(_ string, kind models.ReferenceKind, _ string) (*models.SafeDeleteResult, error) {
			if kind != models.ReferenceTag {
				t.Errorf("expected tag kind, got %s", kind)
			}
			return &models.SafeDeleteResult{Deleted: true}, nil
		},
	}, &mockAuditService{}, nil)
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/tags", handler.ListTags)
	auth.POST("/tags", handler.CreateTag)
	auth.DELETE("/tags/:id", handler.DeleteTag)

	t.Run("lists tags with usage", func(t *testing.T) {
		rec := doRequest(r, "GET", "/tags", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		tags := parseJSON(t, rec)["tags"].([]interface{})
		if len(tags) != 1 || tags[0].(map[string]interface{})["name"] != "weekly" {
			t.Errorf("unexpected tags %v", tags)
		}
	})

	t.Run("creates a tag", func(t *testing.T) {
		rec := doRequest(r, "POST", "/tags", `{"name":"holiday"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		rec := doRequest(r, "POST", "/tags", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("safe deletes a tag", func(t *testing.T) {
		rec := doRequest(r, "DELETE", "/tags/"+testRefID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestBankAccountHandler(t *testing.T) {
	handler := NewBankAccountHandler(&mockBankAccountService{}, &mockSafeDeleter{}, &mockAuditService{}, nil)
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/bank-accounts", handler.ListBankAccounts)
	auth.POST("/bank-accounts", handler.CreateBankAccount)
	auth.GET("/bank-accounts/:id", handler.GetBankAccountByID)

	t.Run("lists bank accounts", func(t *testing.T) {
		rec := doRequest(r, "GET", "/bank-accounts", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if _, ok := parseJSON(t, rec)["bank_accounts"].([]interface{}); !ok {
			t.Error("expected bank_accounts array")
		}
	})

	t.Run("creates a bank account", func(t *testing.T) {
		rec := doRequest(r, "POST", "/bank-accounts", `{"name":"Monzo"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		account := parseJSON(t, rec)["bank_account"].(map[string]interface{})
		if account["name"] != "Monzo" {
			t.Errorf("expected Monzo, got %v", account["name"])
		}
	})

	t.Run("returns 404 for a missing account", func(t *testing.T) {
		rec := doRequest(r, "GET", "/bank-accounts/"+testRefID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BANK_ACCOUNT_NOT_FOUND")
	})
}

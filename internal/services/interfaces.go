package services

import (
	"context"

	"github.com/shopspring/decimal"

	"moneylens/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
}

// TransactionServicer is the transaction half of the data-access façade.
// Every call is scoped to the acting user.
type TransactionServicer interface {
	ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error)
	CreateSpend(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error)
	CreateEarn(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error)
	CreateSave(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, changes models.TransactionChanges) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	DeleteTransactions(ctx context.Context, userID string, ids []string) (int64, error)
	SumTransactionsAmount(ctx context.Context, userID string, filter models.TransactionFilter) (decimal.Decimal, error)
}

// TotalsServicer reads the per-period aggregates. A nil period key returns
// every period.
type TotalsServicer interface {
	MonthlyTotals(ctx context.Context, userID string, month *models.Date) ([]models.MonthlyTotal, error)
	YearlyTotals(ctx context.Context, userID string, year *models.Date) ([]models.YearlyTotal, error)
	MonthlyCategoryTotals(ctx context.Context, userID string, month *models.Date) ([]models.MonthlyCategoryTotal, error)
	YearlyCategoryTotals(ctx context.Context, userID string, year *models.Date) ([]models.YearlyCategoryTotal, error)
	MonthlyTaggedTypeTotals(ctx context.Context, userID string, month *models.Date, tagsAny []string) ([]models.MonthlyTaggedTypeTotal, error)
	YearlyTaggedTypeTotals(ctx context.Context, userID string, year *models.Date, tagsAny []string) ([]models.YearlyTaggedTypeTotal, error)
	TaggedTypeTotals(ctx context.Context, userID string, tagsAny []string) ([]models.TaggedTypeTotal, error)
	CurrentMonthCategoryTotals(ctx context.Context, userID string) ([]models.MonthlyCategoryTotal, error)
	CurrentYearCategoryTotals(ctx context.Context, userID string) ([]models.YearlyCategoryTotal, error)
	MonthOverview(ctx context.Context, userID string, month models.Date) (*models.MonthOverview, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(ctx context.Context, userID string, txType *models.TransactionType) ([]models.CategoryWithUsage, error)
	CreateCategory(ctx context.Context, userID string, input models.CategoryInput) (*models.Category, error)
	GetCategoryByID(ctx context.Context, userID, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.Category, error)
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	ListTags(ctx context.Context, userID string) ([]models.TagWithUsage, error)
	CreateTag(ctx context.Context, userID string, input models.ReferenceInput) (*models.Tag, error)
	GetTagByID(ctx context.Context, userID, id string) (*models.Tag, error)
	UpdateTag(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.Tag, error)
}

// BankAccountServicer defines the contract for bank-account business logic.
type BankAccountServicer interface {
	ListBankAccounts(ctx context.Context, userID string) ([]models.BankAccountWithUsage, error)
	CreateBankAccount(ctx context.Context, userID string, input models.ReferenceInput) (*models.BankAccount, error)
	GetBankAccountByID(ctx context.Context, userID, id string) (*models.BankAccount, error)
	UpdateBankAccount(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.BankAccount, error)
}

// SafeDeleter removes a category, tag or bank account only when no
// transaction references it.
type SafeDeleter interface {
	SafeDelete(ctx context.Context, userID string, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error)
}

// BulkUploadServicer imports a bulk-upload document, either directly or
// through a preview the user confirms.
type BulkUploadServicer interface {
	Preview(ctx context.Context, userID string, payload models.BulkPayload, targetDate *models.Date) (*models.BulkPreview, error)
	Commit(ctx context.Context, userID, previewID string) (*models.BulkResult, error)
	BulkInsert(ctx context.Context, userID string, payload models.BulkPayload) (*models.BulkResult, error)
}

// StatementServicer renders account statements.
type StatementServicer interface {
	Render(ctx context.Context, userID string, from, to models.Date) ([]byte, error)
}

// SuggestionServicer proposes categories for uncategorized transactions.
type SuggestionServicer interface {
	SuggestCategories(ctx context.Context, userID string, txType models.TransactionType, limit int) ([]models.CategorySuggestion, error)
}

// CategorySuggester is the model behind SuggestionServicer. Implementations
// return one suggestion per transaction they can place, using only names
// from categories.
type CategorySuggester interface {
	SuggestCategories(ctx context.Context, categories []string, transactions []models.Transaction) ([]models.CategorySuggestion, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// Package tui is the terminal client: a Spend page for the current month's
// spending and a Categories page for managing categories.
package tui

import (
	"context"
	"time"

	"moneylens/internal/models"
)

// requestTimeout bounds every backend call made by a page.
const requestTimeout = 15 * time.Second

// Backend is the part of the API the pages use. *client.Client satisfies it.
type Backend interface {
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, txType models.TransactionType, input models.TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, changes models.TransactionChanges) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	MonthlyTotals(ctx context.Context, month *models.Date) ([]models.MonthlyTotal, error)

	ListCategories(ctx context.Context, txType *models.TransactionType) ([]models.CategoryWithUsage, error)
	CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, changes models.ReferenceChanges) (*models.Category, error)
	SafeDelete(ctx context.Context, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error)
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

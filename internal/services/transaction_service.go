package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions returns the user's transactions matching every set
// filter field, ordered and windowed as requested.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	order, err := orderClause(filter)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	transactions := []models.Transaction{}
	if err := q.Order(order).Scopes(window(filter).Scope()).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// CreateSpend records money going out.
func (s *transactionService) CreateSpend(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error) {
	return s.create(ctx, userID, models.TransactionTypeSpend, input)
}

// CreateEarn records money coming in.
func (s *transactionService) CreateEarn(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error) {
	return s.create(ctx, userID, models.TransactionTypeEarn, input)
}

// CreateSave records money put aside.
func (s *transactionService) CreateSave(ctx context.Context, userID string, input models.TransactionInput) (*models.Transaction, error) {
	return s.create(ctx, userID, models.TransactionTypeSave, input)
}

func (s *transactionService) create(ctx context.Context, userID string, txType models.TransactionType, input models.TransactionInput) (*models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if input.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	if input.Amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
	}
	if input.Amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Date:        input.Date,
		Amount:      *input.Amount,
		Category:    cleanLabel(input.Category),
		BankAccount: cleanLabel(input.BankAccount),
		Tags:        models.CleanTags(input.Tags),
		Notes:       cleanLabel(input.Notes),
	}

	db := s.db.WithContext(ctx)
	var err error
	if transaction.CategoryID, err = resolveCategoryID(db, userID, txType, transaction.Category); err != nil {
		return nil, err
	}
	if transaction.BankAccountID, err = resolveBankAccountID(db, userID, transaction.BankAccount); err != nil {
		return nil, err
	}

	if err := db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx), userID, id)
}

func findTransaction(db *gorm.DB, userID, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies only the fields present in changes and returns
// the updated row.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, id string, changes models.TransactionChanges) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findTransaction(tx, userID, id)
		if err != nil {
			return err
		}
		if changes.Empty() {
			result = current
			return nil
		}

		updates, err := transactionUpdates(current, changes)
		if err != nil {
			return err
		}

		// Re-link the normalized references when the label they derive from
		// (or the type that scopes categories) changed.
		if changes.Category.Present || changes.Type.Present {
			txType := current.Type
			if changes.Type.Present {
				txType = changes.Type.Value
			}
			category := current.Category
			if changes.Category.Present {
				category = cleanLabel(changes.Category.Ptr())
			}
			categoryID, err := resolveCategoryID(tx, userID, txType, category)
			if err != nil {
				return err
			}
			updates["category_id"] = categoryID
		}
		if changes.BankAccount.Present {
			bankAccountID, err := resolveBankAccountID(tx, userID, cleanLabel(changes.BankAccount.Ptr()))
			if err != nil {
				return err
			}
			updates["bank_account_id"] = bankAccountID
		}

		if err := tx.Model(current).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result, err = findTransaction(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transactionUpdates turns the present fields into a column map. Null or
// blank values clear nullable columns; the required columns reject null.
func transactionUpdates(current *models.Transaction, c models.TransactionChanges) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if c.Type.Present {
		if c.Type.Null || !c.Type.Value.Valid() {
			return nil, apperrors.ErrInvalidTransactionType
		}
		updates["type"] = c.Type.Value
	}
	if c.Date.Present {
		if c.Date.Null || c.Date.Value.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date cannot be cleared")
		}
		updates["date"] = c.Date.Value
	}
	if c.Amount.Present {
		if c.Amount.Null {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be cleared")
		}
		if c.Amount.Value.IsNegative() {
			return nil, apperrors.ErrNegativeAmount
		}
		updates["amount"] = c.Amount.Value
	}
	if c.Category.Present {
		updates["category"] = cleanLabel(c.Category.Ptr())
	}
	if c.BankAccount.Present {
		updates["bank_account"] = cleanLabel(c.BankAccount.Ptr())
	}
	if c.Notes.Present {
		updates["notes"] = cleanLabel(c.Notes.Ptr())
	}
	if c.Tags.Present {
		updates["tags"] = models.CleanTags(c.Tags.Value)
	}
	return updates, nil
}

// DeleteTransaction removes a transaction. Deleting a missing id succeeds.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteTransactions removes every listed transaction and reports how many
// rows went away. An empty list issues no query.
func (s *transactionService) DeleteTransactions(ctx context.Context, userID string, ids []string) (int64, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// SumTransactionsAmount totals the amount of every matching transaction.
// Ordering and windowing in the filter are ignored; no rows sums to zero.
func (s *transactionService) SumTransactionsAmount(ctx context.Context, userID string, filter models.TransactionFilter) (decimal.Decimal, error) {
	if userID == "" {
		return decimal.Zero, apperrors.ErrUnauthorized
	}
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	var total decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// cleanLabel trims a nullable text field; blank becomes nil.
func cleanLabel(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

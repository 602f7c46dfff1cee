package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// A transaction uses a category when it points at it by id, or when it has
// no id yet and its label and type match. Bank accounts follow the same
// rule without the type. Tags are matched by name inside the tag list.

const categoryUsageSQL = `(SELECT COUNT(*) FROM transactions t WHERE t.user_id = categories.user_id AND ` +
	`(t.category_id = categories.id OR (t.category_id IS NULL AND t.category = categories.name AND t.type = categories.type)))`

const bankAccountUsageSQL = `(SELECT COUNT(*) FROM transactions t WHERE t.user_id = bank_accounts.user_id AND ` +
	`(t.bank_account_id = bank_accounts.id OR (t.bank_account_id IS NULL AND t.bank_account = bank_accounts.name)))`

func tagUsageSQL(db *gorm.DB) string {
	return `(SELECT COUNT(*) FROM transactions t WHERE t.user_id = tags.user_id AND ` +
		`EXISTS (SELECT 1 FROM ` + tagElements(db, "t.tags") + ` WHERE tv.value = tags.name))`
}

func categoryUsage(db *gorm.DB, c *models.Category) (int64, error) {
	var count int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND (category_id = ? OR (category_id IS NULL AND category = ? AND type = ?))",
			c.UserID, c.ID, c.Name, c.Type).
		Count(&count).Error
	return count, err
}

func bankAccountUsage(db *gorm.DB, a *models.BankAccount) (int64, error) {
	var count int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND (bank_account_id = ? OR (bank_account_id IS NULL AND bank_account = ?))",
			a.UserID, a.ID, a.Name).
		Count(&count).Error
	return count, err
}

func tagUsage(db *gorm.DB, tag *models.Tag) (int64, error) {
	var count int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ?", tag.UserID).
		Where(tagsOverlapClause(db, "transactions.tags"), []string{tag.Name}).
		Count(&count).Error
	return count, err
}

// resolveCategoryID finds the id of the user's category with this label and
// type, or nil when there is none.
func resolveCategoryID(db *gorm.DB, userID string, txType models.TransactionType, name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	var ids []string
	err := db.Model(&models.Category{}).
		Where("user_id = ? AND type = ? AND name = ?", userID, txType, *name).
		Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// resolveBankAccountID finds the id of the user's bank account with this
// label, or nil when there is none.
func resolveBankAccountID(db *gorm.DB, userID string, name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	var ids []string
	err := db.Model(&models.BankAccount{}).
		Where("user_id = ? AND name = ?", userID, *name).
		Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// referenceName validates a required, trimmed name.
func referenceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrNameRequired
	}
	return name, nil
}

// renameTo returns the trimmed new name when changes carries one.
func renameTo(changes models.ReferenceChanges) (string, bool, error) {
	if !changes.Name.Present {
		return "", false, nil
	}
	if changes.Name.Null {
		return "", false, apperrors.ErrNameRequired
	}
	name, err := referenceName(changes.Name.Value)
	return name, err == nil, err
}

// safeDeleter implements SafeDeleter over the reference tables.
type safeDeleter struct {
	db *gorm.DB
}

// NewSafeDeleter creates a new SafeDeleter.
func NewSafeDeleter(db *gorm.DB) SafeDeleter {
	return &safeDeleter{db: db}
}

// SafeDelete removes the referenced row only when nothing uses it. A row in
// use is left alone and the result carries the blocking count.
func (s *safeDeleter) SafeDelete(ctx context.Context, userID string, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error) {
	var result *models.SafeDeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			row      interface{}
			count    int64
			notFound *apperrors.AppError
			err      error
		)

		switch kind {
		case models.ReferenceCategory:
			var c models.Category
			row, notFound = &c, apperrors.ErrCategoryNotFound
			if err = tx.Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err == nil {
				count, err = categoryUsage(tx, &c)
			}
		case models.ReferenceTag:
			var t models.Tag
			row, notFound = &t, apperrors.ErrTagNotFound
			if err = tx.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err == nil {
				count, err = tagUsage(tx, &t)
			}
		case models.ReferenceBankAccount:
			var a models.BankAccount
			row, notFound = &a, apperrors.ErrBankAccountNotFound
			if err = tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err == nil {
				count, err = bankAccountUsage(tx, &a)
			}
		default:
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown reference kind "+string(kind))
		}

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			result = &models.SafeDeleteResult{Deleted: false, BlockingUsageCount: count}
			return nil
		}
		if err := tx.Delete(row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = &models.SafeDeleteResult{Deleted: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// bankAccountService handles bank-account business logic.
type bankAccountService struct {
	db *gorm.DB
}

// NewBankAccountService creates a new BankAccountServicer.
func NewBankAccountService(db *gorm.DB) BankAccountServicer {
	return &bankAccountService{db: db}
}

// ListBankAccounts returns the user's bank accounts with usage counts,
// sorted by name.
func (s *bankAccountService) ListBankAccounts(ctx context.Context, userID string) ([]models.BankAccountWithUsage, error) {
	accounts := []models.BankAccountWithUsage{}
	err := s.db.WithContext(ctx).Model(&models.BankAccount{}).
		Select("bank_accounts.*, "+bankAccountUsageSQL+" AS in_use_count").
		Where("bank_accounts.user_id = ?", userID).
		Order("bank_accounts.name ASC").
		Scan(&accounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// CreateBankAccount adds a bank account and links transactions already
// carrying its name.
func (s *bankAccountService) CreateBankAccount(ctx context.Context, userID string, input models.ReferenceInput) (*models.BankAccount, error) {
	name, err := referenceName(input.Name)
	if err != nil {
		return nil, err
	}
	account := &models.BankAccount{UserID: userID, Name: name, Description: cleanLabel(input.Description)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBankAccountNameFree(tx, userID, name, ""); err != nil {
			return err
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND bank_account_id IS NULL AND bank_account = ?", userID, name).
			Update("bank_account_id", account.ID).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetBankAccountByID retrieves a bank account by ID for a specific user
func (s *bankAccountService) GetBankAccountByID(ctx context.Context, userID, id string) (*models.BankAccount, error) {
	return findBankAccount(s.db.WithContext(ctx), userID, id)
}

func findBankAccount(db *gorm.DB, userID, id string) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateBankAccount renames or re-describes a bank account. A rename
// relabels the transactions that use it.
func (s *bankAccountService) UpdateBankAccount(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.BankAccount, error) {
	var result *models.BankAccount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := findBankAccount(tx, userID, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		newName, rename, err := renameTo(changes)
		if err != nil {
			return err
		}
		if rename && newName != account.Name {
			if err := ensureBankAccountNameFree(tx, userID, newName, account.ID); err != nil {
				return err
			}
			updates["name"] = newName
			err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND (bank_account_id = ? OR (bank_account_id IS NULL AND bank_account = ?))",
					userID, account.ID, account.Name).
				Updates(map[string]interface{}{"bank_account": newName, "bank_account_id": account.ID}).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if changes.Description.Present {
			updates["description"] = cleanLabel(changes.Description.Ptr())
		}

		if len(updates) > 0 {
			if err := tx.Model(account).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		result, err = findBankAccount(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureBankAccountNameFree(db *gorm.DB, userID, name, exceptID string) error {
	q := db.Model(&models.BankAccount{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateBankAccount
	}
	return nil
}

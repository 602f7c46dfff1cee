package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"moneylens/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a uniquely named category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, txType, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Type: txType, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTag creates a tag with the given name.
func CreateTestTag(t *testing.T, db *gorm.DB, userID, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{UserID: userID, Name: name}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestBankAccount creates a bank account with the given name.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID, name string) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{UserID: userID, Name: name}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction of the given type, amount and
// date (YYYY-MM-DD).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount, date string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionWith(t, db, &models.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: decimal.RequireFromString(amount),
		Date:   models.MustParseDate(date),
	})
}

// CreateTestTransactionWith inserts tx as given, filling in a type, date
// and amount when they are missing.
func CreateTestTransactionWith(t *testing.T, db *gorm.DB, tx *models.Transaction) *models.Transaction {
	t.Helper()

	if tx.Type == "" {
		tx.Type = models.TransactionTypeSpend
	}
	if tx.Date.IsZero() {
		tx.Date = models.NewDate(2024, 1, 15)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

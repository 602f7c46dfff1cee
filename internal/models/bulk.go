package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BulkPayload is the bulk-upload document: reference rows to create plus
// the transactions to insert.
type BulkPayload struct {
	BankAccounts []BulkReference   `json:"bank_accounts,omitempty"`
	Categories   []BulkCategory    `json:"categories,omitempty"`
	Tags         []BulkReference   `json:"tags,omitempty"`
	Transactions []BulkTransaction `json:"transactions"`
}

type BulkCategory struct {
	Type        TransactionType `json:"type"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
}

type BulkReference struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type BulkTransaction struct {
	Date        Date             `json:"date"`
	Type        TransactionType  `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category,omitempty"`
	BankAccount *string          `json:"bank_account,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

// BulkResult counts what a bulk insert created.
type BulkResult struct {
	Inserted            int `json:"inserted"`
	CategoriesCreated   int `json:"categories_created"`
	BankAccountsCreated int `json:"bank_accounts_created"`
	TagsCreated         int `json:"tags_created"`
}

// DuplicateCandidate points a payload row at an existing transaction that
// looks like the same entry.
type DuplicateCandidate struct {
	Index         int     `json:"index"`
	ExistingID    string  `json:"existing_id"`
	ExistingDate  Date    `json:"existing_date"`
	ExistingNotes *string `json:"existing_notes"`
	Distance      float64 `json:"distance"`
}

// BulkPreview is what the user confirms before a bulk upload is committed.
type BulkPreview struct {
	ID                 string                              `json:"preview_id"`
	ExpiresAt          time.Time                           `json:"expires_at"`
	Transactions       []BulkTransaction                   `json:"transactions"`
	Totals             map[TransactionType]decimal.Decimal `json:"totals"`
	NewCategories      []BulkCategory                      `json:"new_categories"`
	NewBankAccounts    []string                            `json:"new_bank_accounts"`
	NewTags            []string                            `json:"new_tags"`
	PossibleDuplicates []DuplicateCandidate                `json:"possible_duplicates"`
}

// CategorySuggestion proposes a category for an uncategorized transaction.
type CategorySuggestion struct {
	TransactionID string `json:"transaction_id"`
	Category      string `json:"category"`
}

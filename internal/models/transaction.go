package models

import (
	"moneylens/internal/optional"

	"github.com/shopspring/decimal"
)

// TransactionType classifies every transaction and scopes categories.
type TransactionType string

const (
	TransactionTypeEarn  TransactionType = "earn"
	TransactionTypeSpend TransactionType = "spend"
	TransactionTypeSave  TransactionType = "save"
)

// TransactionTypes lists the types in display order.
var TransactionTypes = []TransactionType{TransactionTypeSpend, TransactionTypeEarn, TransactionTypeSave}

// Valid reports whether t is one of the fixed types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeEarn, TransactionTypeSpend, TransactionTypeSave:
		return true
	}
	return false
}

// Transaction is a single earn, spend or save entry. Category and bank
// account are free-text labels; the *_id columns hold the normalized
// reference when a matching row exists.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Type          TransactionType `gorm:"type:varchar(8);not null;index" json:"type"`
	Date          Date            `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category      *string         `json:"category"`
	CategoryID    *string         `gorm:"type:uuid;index" json:"category_id"`
	BankAccount   *string         `json:"bank_account"`
	BankAccountID *string         `gorm:"type:uuid;index" json:"bank_account_id"`
	Tags          StringList      `json:"tags"`
	Notes         *string         `json:"notes"`
}

// TransactionInput is the payload of createSpend, createEarn and createSave.
// Amount is a pointer so a missing amount is told apart from zero.
type TransactionInput struct {
	Date        Date             `json:"date"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	BankAccount *string          `json:"bank_account"`
	Tags        []string         `json:"tags"`
	Notes       *string          `json:"notes"`
}

// TransactionChanges is a partial update. Absent fields are untouched; null
// (or an empty value) clears a nullable field.
type TransactionChanges struct {
	Type        optional.Field[TransactionType] `json:"type,omitzero"`
	Date        optional.Field[Date]            `json:"date,omitzero"`
	Amount      optional.Field[decimal.Decimal] `json:"amount,omitzero"`
	Category    optional.Field[string]          `json:"category,omitzero"`
	BankAccount optional.Field[string]          `json:"bank_account,omitzero"`
	Tags        optional.Field[[]string]        `json:"tags,omitzero"`
	Notes       optional.Field[string]          `json:"notes,omitzero"`
}

// Empty reports whether no field is present.
func (c TransactionChanges) Empty() bool {
	return !c.Type.Present && !c.Date.Present && !c.Amount.Present && !c.Category.Present &&
		!c.BankAccount.Present && !c.Tags.Present && !c.Notes.Present
}

// Order directions accepted by TransactionFilter.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// TransactionFilter is the shared filter vocabulary of listing and summing.
// Every set field narrows the result; unset fields impose no constraint.
type TransactionFilter struct {
	From        *Date
	To          *Date
	Type        *TransactionType
	Category    *string
	BankAccount *string
	TagsAny     []string
	TagsAll     []string
	OrderBy     string
	OrderDir    string
	Limit       int
	Offset      int
}

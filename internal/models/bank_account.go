package models

// BankAccount is where money moved from or to.
type BankAccount struct {
	Base
	UserID      string  `gorm:"type:uuid;not null;uniqueIndex:idx_bank_accounts_user_name,priority:1" json:"user_id"`
	Name        string  `gorm:"not null;uniqueIndex:idx_bank_accounts_user_name,priority:2" json:"name"`
	Description *string `json:"description"`
}

type BankAccountWithUsage struct {
	BankAccount
	InUseCount int64 `json:"in_use_count"`
}

package models

import "moneylens/internal/optional"

// ReferenceKind names the entities transactions point at.
type ReferenceKind string

const (
	ReferenceCategory    ReferenceKind = "category"
	ReferenceTag         ReferenceKind = "tag"
	ReferenceBankAccount ReferenceKind = "bank_account"
)

// Valid reports whether k is a known kind.
func (k ReferenceKind) Valid() bool {
	switch k {
	case ReferenceCategory, ReferenceTag, ReferenceBankAccount:
		return true
	}
	return false
}

// SafeDeleteResult reports whether a referenced row was removed. When it
// was not, BlockingUsageCount is the number of transactions still using it.
type SafeDeleteResult struct {
	Deleted            bool  `json:"deleted"`
	BlockingUsageCount int64 `json:"blocking_usage_count"`
}

// ReferenceInput creates a tag or bank account.
type ReferenceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ReferenceChanges renames or re-describes a category, tag or bank account.
type ReferenceChanges struct {
	Name        optional.Field[string] `json:"name,omitzero"`
	Description optional.Field[string] `json:"description,omitzero"`
}

package models

// Category labels transactions of a single type. Names are unique per user
// and type.
type Category struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_type_name,priority:1" json:"user_id"`
	Type        TransactionType `gorm:"type:varchar(8);not null;uniqueIndex:idx_categories_user_type_name,priority:2" json:"type"`
	Name        string          `gorm:"not null;uniqueIndex:idx_categories_user_type_name,priority:3" json:"name"`
	Description *string         `json:"description"`
}

// CategoryWithUsage adds the number of transactions referencing the category.
type CategoryWithUsage struct {
	Category
	InUseCount int64 `json:"in_use_count"`
}

// CategoryInput creates a category.
type CategoryInput struct {
	Type        TransactionType `json:"type" binding:"required,transaction_type"`
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
}

package models

// Tag is a user-defined label. Transactions refer to tags by name only.
type Tag struct {
	Base
	UserID      string  `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name,priority:1" json:"user_id"`
	Name        string  `gorm:"not null;uniqueIndex:idx_tags_user_name,priority:2" json:"name"`
	Description *string `json:"description"`
}

type TagWithUsage struct {
	Tag
	InUseCount int64 `json:"in_use_count"`
}

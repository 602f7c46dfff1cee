package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// tagService handles tag-related business logic. Transactions hold tags as
// plain labels, so renaming a tag does not rewrite existing transactions.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context, userID string) ([]models.TagWithUsage, error) {
	db := s.db.WithContext(ctx)
	tags := []models.TagWithUsage{}
	err := db.Model(&models.Tag{}).
		Select("tags.*, "+tagUsageSQL(db)+" AS in_use_count").
		Where("tags.user_id = ?", userID).
		Order("tags.name ASC").
		Scan(&tags).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

func (s *tagService) CreateTag(ctx context.Context, userID string, input models.ReferenceInput) (*models.Tag, error) {
	name, err := referenceName(input.Name)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureTagNameFree(db, userID, name, ""); err != nil {
		return nil, err
	}

	tag := &models.Tag{UserID: userID, Name: name, Description: cleanLabel(input.Description)}
	if err := db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

func (s *tagService) GetTagByID(ctx context.Context, userID, id string) (*models.Tag, error) {
	return findTag(s.db.WithContext(ctx), userID, id)
}

func findTag(db *gorm.DB, userID, id string) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

func (s *tagService) UpdateTag(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.Tag, error) {
	db := s.db.WithContext(ctx)
	tag, err := findTag(db, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	newName, rename, err := renameTo(changes)
	if err != nil {
		return nil, err
	}
	if rename && newName != tag.Name {
		if err := ensureTagNameFree(db, userID, newName, tag.ID); err != nil {
			return nil, err
		}
		updates["name"] = newName
	}
	if changes.Description.Present {
		updates["description"] = cleanLabel(changes.Description.Ptr())
	}
	if len(updates) > 0 {
		if err := db.Model(tag).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findTag(db, userID, id)
}

func ensureTagNameFree(db *gorm.DB, userID, name, exceptID string) error {
	q := db.Model(&models.Tag{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateTag
	}
	return nil
}

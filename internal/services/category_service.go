package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ListCategories returns the user's categories with their usage counts,
// sorted by name. A nil type returns every type.
func (s *categoryService) ListCategories(ctx context.Context, userID string, txType *models.TransactionType) ([]models.CategoryWithUsage, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.*, "+categoryUsageSQL+" AS in_use_count").
		Where("categories.user_id = ?", userID)
	if txType != nil {
		q = q.Where("categories.type = ?", *txType)
	}

	categories := []models.CategoryWithUsage{}
	if err := q.Order("categories.name ASC").Scan(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateCategory adds a category and links existing transactions that
// already carry its label.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, input models.CategoryInput) (*models.Category, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	name, err := referenceName(input.Name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:      userID,
		Type:        input.Type,
		Name:        name,
		Description: cleanLabel(input.Description),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoryNameFree(tx, userID, input.Type, name, ""); err != nil {
			return err
		}
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND category_id IS NULL AND category = ? AND type = ?", userID, name, input.Type).
			Update("category_id", category.ID).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, id string) (*models.Category, error) {
	return findCategory(s.db.WithContext(ctx), userID, id)
}

func findCategory(db *gorm.DB, userID, id string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames or re-describes a category. A rename relabels the
// transactions that use it.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, id string, changes models.ReferenceChanges) (*models.Category, error) {
	var result *models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, userID, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		newName, rename, err := renameTo(changes)
		if err != nil {
			return err
		}
		if rename && newName != category.Name {
			if err := ensureCategoryNameFree(tx, userID, category.Type, newName, category.ID); err != nil {
				return err
			}
			updates["name"] = newName
			err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND (category_id = ? OR (category_id IS NULL AND category = ? AND type = ?))",
					userID, category.ID, category.Name, category.Type).
				Updates(map[string]interface{}{"category": newName, "category_id": category.ID}).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if changes.Description.Present {
			updates["description"] = cleanLabel(changes.Description.Ptr())
		}

		if len(updates) > 0 {
			if err := tx.Model(category).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		result, err = findCategory(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureCategoryNameFree(db *gorm.DB, userID string, txType models.TransactionType, name, exceptID string) error {
	q := db.Model(&models.Category{}).Where("user_id = ? AND type = ? AND name = ?", userID, txType, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// maxSuggestionBatch bounds how many transactions go to the model at once.
const maxSuggestionBatch = 50

// suggestionService proposes categories for uncategorized transactions.
type suggestionService struct {
	db        *gorm.DB
	suggester CategorySuggester
}

// NewSuggestionService creates a new SuggestionServicer. A nil suggester
// makes every call fail with SUGGESTIONS_UNAVAILABLE.
func NewSuggestionService(db *gorm.DB, suggester CategorySuggester) SuggestionServicer {
	return &suggestionService{db: db, suggester: suggester}
}

// SuggestCategories asks the suggester to place up to limit uncategorized
// transactions of txType into the user's existing categories of that type.
// Suggestions naming unknown categories or transactions are dropped.
func (s *suggestionService) SuggestCategories(ctx context.Context, userID string, txType models.TransactionType, limit int) ([]models.CategorySuggestion, error) {
	if s.suggester == nil {
		return nil, apperrors.ErrSuggestionsUnavailable
	}
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if limit <= 0 || limit > maxSuggestionBatch {
		limit = maxSuggestionBatch
	}

	db := s.db.WithContext(ctx)
	var categories []string
	err := db.Model(&models.Category{}).
		Where("user_id = ? AND type = ?", userID, txType).
		Order("name").
		Pluck("name", &categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err = db.Where("user_id = ? AND type = ? AND category IS NULL", userID, txType).
		Order("date DESC, created_at DESC, id").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	suggestions := []models.CategorySuggestion{}
	if len(categories) == 0 || len(transactions) == 0 {
		return suggestions, nil
	}

	proposed, err := s.suggester.SuggestCategories(ctx, categories, transactions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	knownCategory := make(map[string]bool, len(categories))
	for _, c := range categories {
		knownCategory[c] = true
	}
	knownTransaction := make(map[string]bool, len(transactions))
	for _, t := range transactions {
		knownTransaction[t.ID] = true
	}
	seen := map[string]bool{}
	for _, p := range proposed {
		if !knownCategory[p.Category] || !knownTransaction[p.TransactionID] || seen[p.TransactionID] {
			continue
		}
		seen[p.TransactionID] = true
		suggestions = append(suggestions, p)
	}
	return suggestions, nil
}

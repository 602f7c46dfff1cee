package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
	"moneylens/internal/pagination"
)

// orderColumns whitelists the columns a listing may be ordered by.
var orderColumns = map[string]string{
	"date":         "date",
	"amount":       "amount",
	"type":         "type",
	"category":     "category",
	"bank_account": "bank_account",
	"notes":        "notes",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

// applyTransactionFilters narrows q by every set field of f. Ordering and
// windowing are applied separately so sums can reuse the same filter.
func applyTransactionFilters(q *gorm.DB, f models.TransactionFilter) *gorm.DB {
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.BankAccount != nil {
		q = q.Where("bank_account = ?", *f.BankAccount)
	}
	if tags := distinct(f.TagsAny); len(tags) > 0 {
		q = q.Where(tagsOverlapClause(q, "transactions.tags"), tags)
	}
	if tags := distinct(f.TagsAll); len(tags) > 0 {
		q = q.Where("(SELECT COUNT(DISTINCT tv.value) FROM "+tagElements(q, "transactions.tags")+" WHERE tv.value IN ?) = ?", tags, len(tags))
	}
	return q
}

// tagsOverlapClause matches rows whose tag list shares an element with the
// bound list.
func tagsOverlapClause(db *gorm.DB, column string) string {
	return "EXISTS (SELECT 1 FROM " + tagElements(db, column) + " WHERE tv.value IN ?)"
}

// orderClause returns the ORDER BY for f, ascending unless OrderDir is desc.
func orderClause(f models.TransactionFilter) (string, error) {
	if f.OrderBy == "" {
		return "date DESC, created_at DESC, id", nil
	}
	column, ok := orderColumns[f.OrderBy]
	if !ok {
		return "", apperrors.WithMessage(apperrors.ErrInvalidOrderBy, "cannot order by "+f.OrderBy)
	}
	dir := "ASC"
	if strings.EqualFold(f.OrderDir, models.OrderDesc) {
		dir = "DESC"
	}
	return column + " " + dir + ", id", nil
}

func window(f models.TransactionFilter) pagination.Window {
	return pagination.Window{Limit: f.Limit, Offset: f.Offset}
}

// distinct drops blanks and repeats, keeping first-seen order.
func distinct(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

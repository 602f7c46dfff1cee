package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"moneylens/internal/cache"
	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
	"moneylens/internal/uuid"
)

const (
	// duplicateWindowDays is how far apart two entries may be and still
	// count as the same transaction.
	duplicateWindowDays = 7
	// duplicateMaxDistance is the normalized edit distance below which two
	// descriptions are considered the same.
	duplicateMaxDistance = 0.4
	bulkInsertBatchSize  = 500
)

// bulkUploadService imports bulk-upload documents. Previews live in a TTL
// cache keyed by user and preview id, so a preview can only be committed by
// the user who made it, and only once.
type bulkUploadService struct {
	db       *gorm.DB
	previews *cache.InMemory[models.BulkPayload]
	tracer   trace.Tracer
}

// NewBulkUploadService creates a new BulkUploadServicer.
func NewBulkUploadService(db *gorm.DB, previews *cache.InMemory[models.BulkPayload]) BulkUploadServicer {
	return &bulkUploadService{
		db:       db,
		previews: previews,
		tracer:   otel.Tracer("moneylens/services/bulk"),
	}
}

func previewKey(userID, previewID string) string {
	return userID + "/" + previewID
}

// Preview validates payload, optionally moves every row to targetDate, and
// parks the result for Commit.
func (s *bulkUploadService) Preview(ctx context.Context, userID string, payload models.BulkPayload, targetDate *models.Date) (*models.BulkPreview, error) {
	ctx, span := s.tracer.Start(ctx, "bulk.preview")
	defer span.End()

	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	payload = normalizePayload(payload)
	if targetDate != nil {
		for i := range payload.Transactions {
			payload.Transactions[i].Date = *targetDate
		}
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("bulk.rows", len(payload.Transactions)))

	db := s.db.WithContext(ctx)
	existing, err := loadReferenceNames(db, userID)
	if err != nil {
		return nil, err
	}
	duplicates, err := findDuplicates(db, userID, payload.Transactions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate scan failed")
		return nil, err
	}

	plan := planReferences(payload, existing)
	preview := &models.BulkPreview{
		ID:                 uuid.NewRandom(),
		Transactions:       payload.Transactions,
		Totals:             totalsByType(payload.Transactions),
		NewCategories:      plan.categories,
		NewBankAccounts:    names(plan.bankAccounts),
		NewTags:            names(plan.tags),
		PossibleDuplicates: duplicates,
	}
	preview.ExpiresAt = s.previews.Set(previewKey(userID, preview.ID), payload)
	return preview, nil
}

// Commit inserts a previewed payload. The preview is consumed even when the
// insert fails.
func (s *bulkUploadService) Commit(ctx context.Context, userID, previewID string) (*models.BulkResult, error) {
	payload, ok := s.previews.Take(previewKey(userID, previewID))
	if !ok {
		return nil, apperrors.ErrPreviewNotFound
	}
	return s.BulkInsert(ctx, userID, payload)
}

// BulkInsert creates every missing category, bank account and tag the
// payload names, then inserts all of its transactions, in one database
// transaction.
func (s *bulkUploadService) BulkInsert(ctx context.Context, userID string, payload models.BulkPayload) (*models.BulkResult, error) {
	ctx, span := s.tracer.Start(ctx, "bulk.insert")
	defer span.End()

	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	payload = normalizePayload(payload)
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	result := &models.BulkResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadReferenceNames(tx, userID)
		if err != nil {
			return err
		}
		plan := planReferences(payload, existing)

		for _, c := range plan.categories {
			row := &models.Category{UserID: userID, Type: c.Type, Name: c.Name, Description: cleanLabel(c.Description)}
			if err := tx.Create(row).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			existing.categories[categoryKey(c.Type, c.Name)] = row.ID
		}
		for _, b := range plan.bankAccounts {
			row := &models.BankAccount{UserID: userID, Name: b.Name, Description: cleanLabel(b.Description)}
			if err := tx.Create(row).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			existing.bankAccounts[b.Name] = row.ID
		}
		for _, t := range plan.tags {
			row := &models.Tag{UserID: userID, Name: t.Name, Description: cleanLabel(t.Description)}
			if err := tx.Create(row).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		rows := make([]models.Transaction, 0, len(payload.Transactions))
		for _, t := range payload.Transactions {
			row := models.Transaction{
				UserID:      userID,
				Type:        t.Type,
				Date:        t.Date,
				Amount:      *t.Amount,
				Category:    t.Category,
				BankAccount: t.BankAccount,
				Tags:        models.CleanTags(t.Tags),
				Notes:       t.Notes,
			}
			if t.Category != nil {
				if id, ok := existing.categories[categoryKey(t.Type, *t.Category)]; ok {
					row.CategoryID = &id
				}
			}
			if t.BankAccount != nil {
				if id, ok := existing.bankAccounts[*t.BankAccount]; ok {
					row.BankAccountID = &id
				}
			}
			rows = append(rows, row)
		}
		if err := tx.CreateInBatches(&rows, bulkInsertBatchSize).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result.Inserted = len(rows)
		result.CategoriesCreated = len(plan.categories)
		result.BankAccountsCreated = len(plan.bankAccounts)
		result.TagsCreated = len(plan.tags)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk insert failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("bulk.inserted", result.Inserted))
	return result, nil
}

// normalizePayload trims every label and drops blank optionals, the same
// way single-row writes do.
func normalizePayload(p models.BulkPayload) models.BulkPayload {
	out := models.BulkPayload{
		Categories:   make([]models.BulkCategory, 0, len(p.Categories)),
		BankAccounts: make([]models.BulkReference, 0, len(p.BankAccounts)),
		Tags:         make([]models.BulkReference, 0, len(p.Tags)),
		Transactions: make([]models.BulkTransaction, 0, len(p.Transactions)),
	}
	for _, c := range p.Categories {
		c.Name = strings.TrimSpace(c.Name)
		out.Categories = append(out.Categories, c)
	}
	for _, b := range p.BankAccounts {
		b.Name = strings.TrimSpace(b.Name)
		out.BankAccounts = append(out.BankAccounts, b)
	}
	for _, t := range p.Tags {
		t.Name = strings.TrimSpace(t.Name)
		out.Tags = append(out.Tags, t)
	}
	for _, t := range p.Transactions {
		t.Category = cleanLabel(t.Category)
		t.BankAccount = cleanLabel(t.BankAccount)
		t.Notes = cleanLabel(t.Notes)
		t.Tags = models.CleanTags(t.Tags)
		out.Transactions = append(out.Transactions, t)
	}
	return out
}

func validatePayload(p models.BulkPayload) error {
	if len(p.Transactions) == 0 {
		return apperrors.ErrEmptyUpload
	}
	for i, c := range p.Categories {
		if !c.Type.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidTransactionType, fmt.Sprintf("categories[%d]: invalid type %q", i, c.Type))
		}
		if c.Name == "" {
			return apperrors.WithMessage(apperrors.ErrNameRequired, fmt.Sprintf("categories[%d]: name is required", i))
		}
	}
	for i, b := range p.BankAccounts {
		if b.Name == "" {
			return apperrors.WithMessage(apperrors.ErrNameRequired, fmt.Sprintf("bank_accounts[%d]: name is required", i))
		}
	}
	for i, t := range p.Tags {
		if t.Name == "" {
			return apperrors.WithMessage(apperrors.ErrNameRequired, fmt.Sprintf("tags[%d]: name is required", i))
		}
	}
	for i, t := range p.Transactions {
		if !t.Type.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidTransactionType, fmt.Sprintf("transactions[%d]: invalid type %q", i, t.Type))
		}
		if t.Date.IsZero() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("transactions[%d]: date is required", i))
		}
		if t.Amount == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("transactions[%d]: amount is required", i))
		}
		if t.Amount.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrNegativeAmount, fmt.Sprintf("transactions[%d]: amount must not be negative", i))
		}
	}
	return nil
}

func categoryKey(txType models.TransactionType, name string) string {
	return string(txType) + "\x00" + name
}

// referenceNames maps the user's existing reference names to their ids.
type referenceNames struct {
	categories   map[string]string
	bankAccounts map[string]string
	tags         map[string]bool
}

func loadReferenceNames(db *gorm.DB, userID string) (*referenceNames, error) {
	var categories []models.Category
	if err := db.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var accounts []models.BankAccount
	if err := db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var tags []models.Tag
	if err := db.Where("user_id = ?", userID).Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	names := &referenceNames{
		categories:   make(map[string]string, len(categories)),
		bankAccounts: make(map[string]string, len(accounts)),
		tags:         make(map[string]bool, len(tags)),
	}
	for _, c := range categories {
		names.categories[categoryKey(c.Type, c.Name)] = c.ID
	}
	for _, a := range accounts {
		names.bankAccounts[a.Name] = a.ID
	}
	for _, t := range tags {
		names.tags[t.Name] = true
	}
	return names, nil
}

// referencePlan lists the references a payload needs that do not exist yet,
// in first-seen order.
type referencePlan struct {
	categories   []models.BulkCategory
	bankAccounts []models.BulkReference
	tags         []models.BulkReference
}

func planReferences(p models.BulkPayload, existing *referenceNames) referencePlan {
	var plan referencePlan
	seenCategory := map[string]bool{}
	seenAccount := map[string]bool{}
	seenTag := map[string]bool{}

	addCategory := func(c models.BulkCategory) {
		key := categoryKey(c.Type, c.Name)
		if _, ok := existing.categories[key]; ok || seenCategory[key] {
			return
		}
		seenCategory[key] = true
		plan.categories = append(plan.categories, c)
	}
	addAccount := func(b models.BulkReference) {
		if _, ok := existing.bankAccounts[b.Name]; ok || seenAccount[b.Name] {
			return
		}
		seenAccount[b.Name] = true
		plan.bankAccounts = append(plan.bankAccounts, b)
	}
	addTag := func(t models.BulkReference) {
		if existing.tags[t.Name] || seenTag[t.Name] {
			return
		}
		seenTag[t.Name] = true
		plan.tags = append(plan.tags, t)
	}

	for _, c := range p.Categories {
		addCategory(c)
	}
	for _, b := range p.BankAccounts {
		addAccount(b)
	}
	for _, t := range p.Tags {
		addTag(t)
	}
	for _, t := range p.Transactions {
		if t.Category != nil {
			addCategory(models.BulkCategory{Type: t.Type, Name: *t.Category})
		}
		if t.BankAccount != nil {
			addAccount(models.BulkReference{Name: *t.BankAccount})
		}
		for _, tag := range t.Tags {
			addTag(models.BulkReference{Name: tag})
		}
	}
	return plan
}

func names(refs []models.BulkReference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

func totalsByType(rows []models.BulkTransaction) map[models.TransactionType]decimal.Decimal {
	totals := make(map[models.TransactionType]decimal.Decimal, len(models.TransactionTypes))
	for _, t := range models.TransactionTypes {
		totals[t] = decimal.Zero
	}
	for _, r := range rows {
		totals[r.Type] = totals[r.Type].Add(*r.Amount)
	}
	return totals
}

// findDuplicates flags payload rows that look like a transaction the user
// already has: same type and amount, a date at most a week away, and a
// similar description.
func findDuplicates(db *gorm.DB, userID string, rows []models.BulkTransaction) ([]models.DuplicateCandidate, error) {
	duplicates := []models.DuplicateCandidate{}
	if len(rows) == 0 {
		return duplicates, nil
	}

	from, to := rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(from.Time) {
			from = r.Date
		}
		if r.Date.After(to.Time) {
			to = r.Date
		}
	}

	var existing []models.Transaction
	err := db.Where("user_id = ? AND date >= ? AND date <= ?",
		userID, from.AddDays(-duplicateWindowDays), to.AddDays(duplicateWindowDays)).
		Order("date, id").
		Find(&existing).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i, r := range rows {
		best := -1
		bestDistance := 1.0
		for j, e := range existing {
			if e.Type != r.Type || !e.Amount.Equal(*r.Amount) || daysApart(e.Date, r.Date) > duplicateWindowDays {
				continue
			}
			d := descriptionDistance(bulkDescription(r.Notes, r.Category), bulkDescription(e.Notes, e.Category))
			if d < duplicateMaxDistance && d < bestDistance {
				best, bestDistance = j, d
			}
		}
		if best >= 0 {
			e := existing[best]
			duplicates = append(duplicates, models.DuplicateCandidate{
				Index:         i,
				ExistingID:    e.ID,
				ExistingDate:  e.Date,
				ExistingNotes: e.Notes,
				Distance:      bestDistance,
			})
		}
	}
	sort.SliceStable(duplicates, func(a, b int) bool { return duplicates[a].Index < duplicates[b].Index })
	return duplicates, nil
}

// bulkDescription is what two entries are compared on: the notes, or the
// category label when there are none.
func bulkDescription(notes, category *string) string {
	if notes != nil {
		return *notes
	}
	if category != nil {
		return *category
	}
	return ""
}

// descriptionDistance is the case-insensitive edit distance scaled by the
// longer string. Two empty descriptions are identical.
func descriptionDistance(a, b string) float64 {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(maxLen)
}

func daysApart(a, b models.Date) int {
	d := a.Sub(b.Time)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// totalsService reads the per-period aggregates straight off the
// transactions table. Periods are keyed by their first day.
type totalsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTotalsService creates a new TotalsServicer.
func NewTotalsService(db *gorm.DB) TotalsServicer {
	return &totalsService{db: db, now: time.Now}
}

// totalsQuery starts an aggregate over the user's transactions, limited to
// [from, to] when from is set.
func (s *totalsService) totalsQuery(ctx context.Context, userID string, from, to *models.Date) *gorm.DB {
	q := s.db.WithContext(ctx).Table("transactions").Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("date >= ? AND date <= ?", *from, *to)
	}
	return q
}

func monthRange(month *models.Date) (*models.Date, *models.Date) {
	if month == nil {
		return nil, nil
	}
	from, to := month.MonthStart(), month.MonthEnd()
	return &from, &to
}

func yearRange(year *models.Date) (*models.Date, *models.Date) {
	if year == nil {
		return nil, nil
	}
	from, to := year.YearStart(), year.YearEnd()
	return &from, &to
}

func (s *totalsService) MonthlyTotals(ctx context.Context, userID string, month *models.Date) ([]models.MonthlyTotal, error) {
	from, to := monthRange(month)
	q := s.totalsQuery(ctx, userID, from, to)
	key := monthKey(q)

	rows := []models.MonthlyTotal{}
	err := q.Select("user_id, " + key + " AS month, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", type").
		Order("month DESC, type").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *totalsService) YearlyTotals(ctx context.Context, userID string, year *models.Date) ([]models.YearlyTotal, error) {
	from, to := yearRange(year)
	q := s.totalsQuery(ctx, userID, from, to)
	key := yearKey(q)

	rows := []models.YearlyTotal{}
	err := q.Select("user_id, " + key + " AS year, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", type").
		Order("year DESC, type").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// MonthlyCategoryTotals groups by category label. Uncategorized rows form
// their own group with a null category.
func (s *totalsService) MonthlyCategoryTotals(ctx context.Context, userID string, month *models.Date) ([]models.MonthlyCategoryTotal, error) {
	from, to := monthRange(month)
	q := s.totalsQuery(ctx, userID, from, to)
	key := monthKey(q)

	rows := []models.MonthlyCategoryTotal{}
	err := q.Select("user_id, " + key + " AS month, category, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", category, type").
		Order("month DESC, type, category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *totalsService) YearlyCategoryTotals(ctx context.Context, userID string, year *models.Date) ([]models.YearlyCategoryTotal, error) {
	from, to := yearRange(year)
	q := s.totalsQuery(ctx, userID, from, to)
	key := yearKey(q)

	rows := []models.YearlyCategoryTotal{}
	err := q.Select("user_id, " + key + " AS year, category, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", category, type").
		Order("year DESC, type, category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// tagged narrows q to tagged rows, and to rows sharing a tag with tagsAny
// when it is non-empty. Untagged rows never appear in a tagged total.
func tagged(q *gorm.DB, tagsAny []string) *gorm.DB {
	q = q.Where("tags IS NOT NULL")
	if tags := distinct(tagsAny); len(tags) > 0 {
		q = q.Where(tagsOverlapClause(q, "transactions.tags"), tags)
	}
	return q
}

func (s *totalsService) MonthlyTaggedTypeTotals(ctx context.Context, userID string, month *models.Date, tagsAny []string) ([]models.MonthlyTaggedTypeTotal, error) {
	from, to := monthRange(month)
	q := tagged(s.totalsQuery(ctx, userID, from, to), tagsAny)
	key := monthKey(q)

	rows := []models.MonthlyTaggedTypeTotal{}
	err := q.Select("user_id, " + key + " AS month, tags, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", tags, type").
		Order("month DESC, type, tags").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *totalsService) YearlyTaggedTypeTotals(ctx context.Context, userID string, year *models.Date, tagsAny []string) ([]models.YearlyTaggedTypeTotal, error) {
	from, to := yearRange(year)
	q := tagged(s.totalsQuery(ctx, userID, from, to), tagsAny)
	key := yearKey(q)

	rows := []models.YearlyTaggedTypeTotal{}
	err := q.Select("user_id, " + key + " AS year, tags, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, " + key + ", tags, type").
		Order("year DESC, type, tags").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *totalsService) TaggedTypeTotals(ctx context.Context, userID string, tagsAny []string) ([]models.TaggedTypeTotal, error) {
	q := tagged(s.totalsQuery(ctx, userID, nil, nil), tagsAny)

	rows := []models.TaggedTypeTotal{}
	err := q.Select("user_id, tags, type, COALESCE(SUM(amount), 0) AS total").
		Group("user_id, tags, type").
		Order("type, tags").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// CurrentMonthCategoryTotals is MonthlyCategoryTotals for today's month.
func (s *totalsService) CurrentMonthCategoryTotals(ctx context.Context, userID string) ([]models.MonthlyCategoryTotal, error) {
	month := models.DateOf(s.now()).MonthStart()
	return s.MonthlyCategoryTotals(ctx, userID, &month)
}

// CurrentYearCategoryTotals is YearlyCategoryTotals for today's year.
func (s *totalsService) CurrentYearCategoryTotals(ctx context.Context, userID string) ([]models.YearlyCategoryTotal, error) {
	year := models.DateOf(s.now()).YearStart()
	return s.YearlyCategoryTotals(ctx, userID, &year)
}

// MonthOverview loads a month's totals, category totals and per-type sums
// concurrently. The first failure cancels the rest.
func (s *totalsService) MonthOverview(ctx context.Context, userID string, month models.Date) (*models.MonthOverview, error) {
	month = month.MonthStart()
	overview := &models.MonthOverview{Month: month}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.MonthlyTotals(gctx, userID, &month)
		overview.Totals = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.MonthlyCategoryTotals(gctx, userID, &month)
		overview.Categories = rows
		return err
	})

	sums := map[models.TransactionType]*decimal.Decimal{
		models.TransactionTypeEarn:  &overview.Earned,
		models.TransactionTypeSpend: &overview.Spent,
		models.TransactionTypeSave:  &overview.Saved,
	}
	for txType, dst := range sums {
		g.Go(func() error {
			total, err := s.sumByType(gctx, userID, month, txType)
			*dst = total
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

func (s *totalsService) sumByType(ctx context.Context, userID string, month models.Date, txType models.TransactionType) (decimal.Decimal, error) {
	from, to := month.MonthStart(), month.MonthEnd()
	var total decimal.NullDecimal
	err := s.totalsQuery(ctx, userID, &from, &to).
		Where("type = ?", txType).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

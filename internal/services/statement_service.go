package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// statementMaxRows caps the transaction table; totals always cover the
// whole period.
const statementMaxRows = 2000

var statementColumns = []struct {
	title string
	width float64
	align string
}{
	{"DATE", 24, "C"},
	{"TYPE", 18, "C"},
	{"CATEGORY", 40, "L"},
	{"ACCOUNT", 36, "L"},
	{"NOTES", 46, "L"},
	{"AMOUNT", 28, "R"},
}

// statementService renders PDF statements of a user's transactions.
type statementService struct {
	db *gorm.DB
}

// NewStatementService creates a new StatementServicer.
func NewStatementService(db *gorm.DB) StatementServicer {
	return &statementService{db: db}
}

// Render builds an A4 statement for [from, to]: a per-type summary row and
// the transactions in date order.
func (s *statementService) Render(ctx context.Context, userID string, from, to models.Date) ([]byte, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if from.IsZero() || to.IsZero() || to.Before(from.Time) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from and to must form a valid date range")
	}

	db := s.db.WithContext(ctx)
	var rows []models.Transaction
	err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC, created_at ASC, id").
		Limit(statementMaxRows + 1).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[models.TransactionType]decimal.Decimal, len(models.TransactionTypes))
	for _, t := range models.TransactionTypes {
		var sum decimal.NullDecimal
		err := db.Model(&models.Transaction{}).
			Where("user_id = ? AND type = ? AND date >= ? AND date <= ?", userID, t, from, to).
			Select("COALESCE(SUM(amount), 0)").
			Row().Scan(&sum)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		totals[t] = sum.Decimal
	}

	truncated := len(rows) > statementMaxRows
	if truncated {
		rows = rows[:statementMaxRows]
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle("MoneyLens statement", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MoneyLens Statement")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from.String()+" to "+to.String())
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	net := totals[models.TransactionTypeEarn].
		Sub(totals[models.TransactionTypeSpend]).
		Sub(totals[models.TransactionTypeSave])
	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Earned", totals[models.TransactionTypeEarn]},
		{"Spent", totals[models.TransactionTypeSpend]},
		{"Saved", totals[models.TransactionTypeSave]},
		{"Net", net},
	}
	const sumW = 45.5
	for i, cell := range summary {
		pdf.CellFormat(sumW, 10, cell.label, "1", lineBreak(i, len(summary)), "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	for i, cell := range summary {
		pdf.CellFormat(sumW, 10, cell.value.StringFixed(2), "1", lineBreak(i, len(summary)), "C", false, 0, "")
	}
	pdf.Ln(6)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		for i, col := range statementColumns {
			pdf.CellFormat(col.width, 8, col.title, "1", lineBreak(i, len(statementColumns)), col.align, true, 0, "")
		}
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	if len(rows) == 0 {
		pdf.CellFormat(0, 8, "No transactions in this period", "1", 1, "C", false, 0, "")
	}
	for _, row := range rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			row.Date.String(),
			strings.ToUpper(string(row.Type)),
			trimTo(deref(row.Category), 24),
			trimTo(deref(row.BankAccount), 22),
			trimTo(deref(row.Notes), 28),
			row.Amount.StringFixed(2),
		}
		for i, col := range statementColumns {
			pdf.CellFormat(col.width, 7, tr(cells[i]), "1", lineBreak(i, len(statementColumns)), col.align, false, 0, "")
		}
	}
	if truncated {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, "Truncated: too many transactions for one statement", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

// lineBreak moves to the next line after the last cell of a row.
func lineBreak(i, n int) int {
	if i == n-1 {
		return 1
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimTo(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}

package csvconvert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"moneylens/internal/models"
)

// Converter reads one export format into a shared PayloadBuilder. Convert
// may be called once per input file.
type Converter interface {
	Convert(r io.Reader) error
	Payload() models.BulkPayload
}

// New returns the converter for kind: "savings" or "transactions".
func New(kind string) (Converter, error) {
	switch kind {
	case "savings":
		return NewSavingsConverter(), nil
	case "transactions":
		return NewTransactionsConverter(), nil
	}
	return nil, fmt.Errorf("unknown export type %q: expected savings or transactions", kind)
}

// bankAccounts maps the one-letter codes of the transactions export.
var bankAccounts = map[string]string{
	"":  "NatWest",
	"B": "Barclays",
	"W": "Wise Virtual Card",
	"A": "Wise Virtual Card",
	"X": "AmEx",
	"M": "Monzo",
}

// BankAccountForCode resolves a bank-account code.
func BankAccountForCode(code string) (string, error) {
	name, ok := bankAccounts[strings.TrimSpace(code)]
	if !ok {
		return "", fmt.Errorf("unknown bank account code: %q", code)
	}
	return name, nil
}

// ParseTags splits a comma-separated cell. A cell with no tag gives nil.
func ParseTags(cell string) []string {
	var tags []string
	for _, tag := range strings.Split(cell, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

var dateLayouts = []string{models.DateLayout, "02/01/2006", "2/1/2006", "02 Jan 2006", "2 Jan 2006"}

// parseDate accepts ISO dates and the day-first forms spreadsheets export.
func parseDate(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("invalid date %q", s)
}

// records reads every row, padding short rows to width.
func records(r io.Reader, width int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		for len(row) < width {
			row = append(row, "")
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		rows = append(rows, row)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SavingsConverter reads the savings export: four header lines, then
// columns _, _, date, amount, category, notes.
type SavingsConverter struct {
	builder     *PayloadBuilder
	bankAccount string
}

const savingsHeaderRows = 4

func NewSavingsConverter() *SavingsConverter {
	return &SavingsConverter{builder: NewPayloadBuilder(), bankAccount: "Savings Account"}
}

func (c *SavingsConverter) Convert(r io.Reader) error {
	rows, err := records(r, 6)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if i < savingsHeaderRows {
			continue
		}
		date, amount, category, notes := row[2], row[3], row[4], row[5]
		if date == "" || category == "" {
			continue
		}

		d, err := parseDate(date)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		a, err := ParseAmount(amount)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		c.builder.
			AddCategory(models.TransactionTypeSave, category).
			AddBankAccount(c.bankAccount).
			AddTransaction(models.BulkTransaction{
				Date:        d,
				Type:        models.TransactionTypeSave,
				Amount:      models.AmountOf(a),
				Category:    strPtr(category),
				BankAccount: strPtr(c.bankAccount),
				Notes:       strPtr(notes),
			})
	}
	return nil
}

func (c *SavingsConverter) Payload() models.BulkPayload { return c.builder.Build() }

// TransactionsConverter reads the monthly sheet. Line 2 carries the pay
// date in the fourth column. From line 3 the last five columns hold spends;
// from line 15 the first two hold earnings paid on that date into Barclays.
type TransactionsConverter struct {
	builder *PayloadBuilder
}

const (
	earnDateRow     = 1
	spendStartRow   = 2
	earnStartRow    = 14
	earnBankAccount = "Barclays"
)

func NewTransactionsConverter() *TransactionsConverter {
	return &TransactionsConverter{builder: NewPayloadBuilder()}
}

func (c *TransactionsConverter) Convert(r io.Reader) error {
	rows, err := records(r, 10)
	if err != nil {
		return err
	}

	var earnDate models.Date
	for i, row := range rows {
		if i == earnDateRow && row[3] != "" {
			if earnDate, err = parseDate(row[3]); err != nil {
				return fmt.Errorf("line %d: earn date: %w", i+1, err)
			}
		}

		if i >= spendStartRow {
			if err := c.spend(i, row); err != nil {
				return err
			}
		}
		if i >= earnStartRow {
			if err := c.earn(i, row, earnDate); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *TransactionsConverter) spend(i int, row []string) error {
	date, category, amount := row[5], row[6], row[7]
	if date == "" || category == "" || amount == "" {
		return nil
	}
	bankAccount, err := BankAccountForCode(row[8])
	if err != nil {
		return fmt.Errorf("line %d: %w", i+1, err)
	}
	d, err := parseDate(date)
	if err != nil {
		return fmt.Errorf("line %d: %w", i+1, err)
	}
	a, err := ParseAmount(amount)
	if err != nil {
		return fmt.Errorf("line %d: %w", i+1, err)
	}
	tags := ParseTags(row[9])

	c.builder.
		AddCategory(models.TransactionTypeSpend, category).
		AddBankAccount(bankAccount).
		AddTags(tags...).
		AddTransaction(models.BulkTransaction{
			Date:        d,
			Type:        models.TransactionTypeSpend,
			Amount:      models.AmountOf(a),
			Category:    strPtr(category),
			BankAccount: strPtr(bankAccount),
			Tags:        tags,
		})
	return nil
}

func (c *TransactionsConverter) earn(i int, row []string, earnDate models.Date) error {
	category, amount := row[0], row[1]
	if category == "" || amount == "" {
		return nil
	}
	if earnDate.IsZero() {
		return fmt.Errorf("line %d: earning without an earn date on line %d", i+1, earnDateRow+1)
	}
	a, err := ParseAmount(amount)
	if err != nil {
		return fmt.Errorf("line %d: %w", i+1, err)
	}

	c.builder.
		AddCategory(models.TransactionTypeEarn, category).
		AddBankAccount(earnBankAccount).
		AddTransaction(models.BulkTransaction{
			Date:        earnDate,
			Type:        models.TransactionTypeEarn,
			Amount:      models.AmountOf(a),
			Category:    strPtr(category),
			BankAccount: strPtr(earnBankAccount),
		})
	return nil
}

func (c *TransactionsConverter) Payload() models.BulkPayload { return c.builder.Build() }

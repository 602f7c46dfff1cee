// Package csvconvert turns spreadsheet exports into bulk-upload documents.
package csvconvert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneylens/internal/models"
)

// ParseAmount reads a money amount. Thousands separators and surrounding
// whitespace are ignored and "(12.50)" is read as -12.50.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	negative := strings.HasPrefix(cleaned, "(")
	if negative {
		cleaned = strings.TrimSpace(strings.NewReplacer("(", "", ")", "").Replace(cleaned))
	}
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %q", s)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// PayloadBuilder collects a bulk-upload document. Categories are kept once
// per (name, type), bank accounts and tags once per name, in first-seen
// order. Transactions are always appended.
type PayloadBuilder struct {
	payload      models.BulkPayload
	categories   map[string]bool
	bankAccounts map[string]bool
	tags         map[string]bool
}

// NewPayloadBuilder creates an empty builder.
func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{
		payload:      models.BulkPayload{Transactions: []models.BulkTransaction{}},
		categories:   map[string]bool{},
		bankAccounts: map[string]bool{},
		tags:         map[string]bool{},
	}
}

func (b *PayloadBuilder) AddCategory(txType models.TransactionType, name string) *PayloadBuilder {
	key := string(txType) + "\x00" + name
	if !b.categories[key] {
		b.categories[key] = true
		b.payload.Categories = append(b.payload.Categories, models.BulkCategory{Type: txType, Name: name})
	}
	return b
}

func (b *PayloadBuilder) AddBankAccount(name string) *PayloadBuilder {
	if !b.bankAccounts[name] {
		b.bankAccounts[name] = true
		b.payload.BankAccounts = append(b.payload.BankAccounts, models.BulkReference{Name: name})
	}
	return b
}

func (b *PayloadBuilder) AddTags(names ...string) *PayloadBuilder {
	for _, name := range names {
		if !b.tags[name] {
			b.tags[name] = true
			b.payload.Tags = append(b.payload.Tags, models.BulkReference{Name: name})
		}
	}
	return b
}

func (b *PayloadBuilder) AddTransaction(tx models.BulkTransaction) *PayloadBuilder {
	b.payload.Transactions = append(b.payload.Transactions, tx)
	return b
}

// Build returns the document collected so far.
func (b *PayloadBuilder) Build() models.BulkPayload {
	return b.payload
}

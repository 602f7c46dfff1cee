package models

import "github.com/shopspring/decimal"

// Aggregate rows. Period keys are the first day of the period.

type MonthlyTotal struct {
	UserID string          `json:"user_id"`
	Month  Date            `json:"month"`
	Type   TransactionType `json:"type"`
	Total  decimal.Decimal `json:"total"`
}

type YearlyTotal struct {
	UserID string          `json:"user_id"`
	Year   Date            `json:"year"`
	Type   TransactionType `json:"type"`
	Total  decimal.Decimal `json:"total"`
}

type MonthlyCategoryTotal struct {
	UserID   string          `json:"user_id"`
	Month    Date            `json:"month"`
	Category *string         `json:"category"`
	Type     TransactionType `json:"type"`
	Total    decimal.Decimal `json:"total"`
}

type YearlyCategoryTotal struct {
	UserID   string          `json:"user_id"`
	Year     Date            `json:"year"`
	Category *string         `json:"category"`
	Type     TransactionType `json:"type"`
	Total    decimal.Decimal `json:"total"`
}

type MonthlyTaggedTypeTotal struct {
	UserID string          `json:"user_id"`
	Month  Date            `json:"month"`
	Tags   StringList      `json:"tags"`
	Type   TransactionType `json:"type"`
	Total  decimal.Decimal `json:"total"`
}

type YearlyTaggedTypeTotal struct {
	UserID string          `json:"user_id"`
	Year   Date            `json:"year"`
	Tags   StringList      `json:"tags"`
	Type   TransactionType `json:"type"`
	Total  decimal.Decimal `json:"total"`
}

type TaggedTypeTotal struct {
	UserID string          `json:"user_id"`
	Tags   StringList      `json:"tags"`
	Type   TransactionType `json:"type"`
	Total  decimal.Decimal `json:"total"`
}

// MonthOverview is everything the spend dashboard shows for one month.
type MonthOverview struct {
	Month      Date                   `json:"month"`
	Totals     []MonthlyTotal         `json:"totals"`
	Categories []MonthlyCategoryTotal `json:"categories"`
	Earned     decimal.Decimal        `json:"earned"`
	Spent      decimal.Decimal        `json:"spent"`
	Saved      decimal.Decimal        `json:"saved"`
}

// Net is what was earned minus what was spent or put aside.
func (o MonthOverview) Net() decimal.Decimal {
	return o.Earned.Sub(o.Spent).Sub(o.Saved)
}

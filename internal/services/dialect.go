package services

import "gorm.io/gorm"

// The service runs on postgres in production and sqlite in tests. Tags are
// a JSON array on both; these helpers hide the few SQL spellings that differ.

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// tagElements returns a FROM item exposing each element of the JSON tag
// array in column as tv.value.
func tagElements(db *gorm.DB, column string) string {
	if isPostgres(db) {
		return "jsonb_array_elements_text(" + column + ") AS tv(value)"
	}
	return "json_each(" + column + ") AS tv"
}

// monthKey is the first day of the row's month as YYYY-MM-DD.
func monthKey(db *gorm.DB) string {
	if isPostgres(db) {
		return "to_char(date, 'YYYY-MM-01')"
	}
	return "strftime('%Y-%m-01', date)"
}

// yearKey is January 1 of the row's year as YYYY-MM-DD.
func yearKey(db *gorm.DB) string {
	if isPostgres(db) {
		return "to_char(date, 'YYYY-01-01')"
	}
	return "strftime('%Y-01-01', date)"
}

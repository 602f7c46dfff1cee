// Package pagination converts limit/offset windows into GORM scopes.
package pagination

import "gorm.io/gorm"

// DefaultPageSize is the limit used when an offset is given without one.
const DefaultPageSize = 20

// MaxPageSize caps any single listing.
const MaxPageSize = 1000

// Window is a limit/offset slice of an ordered result. A zero Limit means
// no limit unless an Offset is set, in which case DefaultPageSize applies.
type Window struct {
	Limit  int
	Offset int
}

// Effective returns the limit and offset actually sent to the database.
// A zero limit is returned as -1, GORM's "no limit".
func (w Window) Effective() (limit, offset int) {
	limit = w.Limit
	if w.Offset > 0 && limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if limit <= 0 {
		limit = -1
	}
	offset = w.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Scope returns a GORM scope applying the window.
func (w Window) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		limit, offset := w.Effective()
		if limit > 0 {
			db = db.Limit(limit)
		}
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}

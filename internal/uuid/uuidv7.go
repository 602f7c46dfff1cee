// Package uuid wraps google/uuid with the identifier formats moneylens uses.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string, used for primary keys so that
// inserts stay roughly sequential in the index.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// NewRandom returns a UUIDv4 string for opaque tokens such as request ids
// and bulk-upload preview ids.
func NewRandom() string {
	return googleuuid.NewString()
}

// Parse validates s and returns its canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s is a UUID in any accepted encoding.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

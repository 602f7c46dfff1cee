package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is an ordered list of labels stored as a JSON array. A nil
// list is stored as NULL.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan StringList: %w", err)
	}
	*l = out
	return nil
}

// GormDataType reports the generic type so schema parsing does not depend
// on Value, which returns nil for an empty list.
func (StringList) GormDataType() string {
	return "json"
}

// GormDBDataType uses jsonb on postgres and plain text elsewhere.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// Contains reports whether s is one of the labels.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// CleanTags trims every label and drops blanks. It returns nil when nothing
// is left so an all-blank input clears the column.
func CleanTags(in []string) StringList {
	var out StringList
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags parses a comma-separated tag field.
func SplitTags(s string) StringList {
	return CleanTags(strings.Split(s, ","))
}

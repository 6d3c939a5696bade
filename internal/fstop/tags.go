package fstop

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Tags is an ordered list of tag titles. It is stored as a JSON array in a
// single TEXT column; duplicates from the source pass through unchanged.
type Tags []string

// Value implements [driver.Valuer].
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("error marshalling tags: %w", err)
	}

	return string(b), nil
}

// Scan implements [sql.Scanner].
func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = Tags{}
		return nil
	}

	var b []byte
	switch v := src.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into tags", src)
	}

	if len(b) == 0 {
		*t = Tags{}
		return nil
	}
	if err := json.Unmarshal(b, t); err != nil {
		return fmt.Errorf("error unmarshalling tags: %w", err)
	}

	return nil
}

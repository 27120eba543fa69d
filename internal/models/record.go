package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Column is a single named value of a result row
type Column struct {
	Name  string
	Value interface{}
}

// UserRecord is a users row keyed by the column names reported by the query.
// Columns keep the order the database returned them in.
type UserRecord []Column

// NewUserRecord zips column names with scanned values
func NewUserRecord(names []string, values []interface{}) (UserRecord, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("column count mismatch: %d names, %d values", len(names), len(values))
	}

	record := make(UserRecord, len(names))
	for i, name := range names {
		value := values[i]
		if b, ok := value.([]byte); ok {
			value = string(b)
		}
		record[i] = Column{Name: name, Value: value}
	}
	return record, nil
}

// MarshalJSON encodes the record as a JSON object with keys in column order
func (r UserRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(col.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %s: %w", col.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

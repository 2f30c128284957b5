package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores Data as a jsonb column. Valid=false maps to SQL NULL in both
// directions.
type JSONB[T any] struct {
	Data  T
	Valid bool
}

func NewJSONB[T any](data *T) JSONB[T] {
	if data == nil {
		return JSONB[T]{}
	}
	return JSONB[T]{Data: *data, Valid: true}
}

func (p *JSONB[T]) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		var zero T
		p.Data, p.Valid = zero, false
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("JSONB.Scan: expected []byte, got %T", src)
	}

	if err := json.Unmarshal(b, &p.Data); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

// Value returns the encoded document as a string; lib/pq sends []byte as bytea.
func (p JSONB[T]) Value() (driver.Value, error) {
	if !p.Valid {
		return nil, nil
	}
	b, err := json.Marshal(p.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *JSONB[T]) GetValue() *T {
	if !p.Valid {
		return nil
	}
	return &p.Data
}

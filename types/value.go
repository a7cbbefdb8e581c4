// Package types defines the SQL type-code alphabet, the Column result
// metadata, and the FieldValue model bridging a decoded Paradox field to a
// client's SQL type system.
package types

import (
	"bytes"
	"fmt"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// SQLType is the closed alphabet of value shapes a Column can carry. It
// stands in for a JDBC-style java.sql.Types code.
type SQLType int32

const (
	Char SQLType = iota
	Integer
	Float
	Date
	Time
	Timestamp
	Boolean
	Binary
)

func (t SQLType) String() string {
	switch t {
	case Char:
		return "CHAR"
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	case Boolean:
		return "BOOLEAN"
	case Binary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// Row is an ordered sequence of field values, one per Column of the
// result it belongs to.
type Row []FieldValue

// Column is the result metadata for one projected field: its underlying
// name, its output label (the projection alias), its SQL type, whether it
// may hold null, and the table it was bound to.
type Column struct {
	Name      string
	Label     string
	SQLType   SQLType
	Nullable  bool
	TableName string
}

// FieldValue is a single cell: a SQL type code plus an optional payload.
// Null is represented as an explicit absence (raw == nil), never a
// sentinel value of the underlying Go type.
type FieldValue struct {
	SQLType SQLType
	raw     interface{}
}

// Null constructs a null FieldValue of the given type.
func Null(t SQLType) FieldValue { return FieldValue{SQLType: t} }

// NewText constructs a non-null Char value.
func NewText(s string) FieldValue { return FieldValue{SQLType: Char, raw: s} }

// NewInteger constructs a non-null Integer value.
func NewInteger(i int64) FieldValue { return FieldValue{SQLType: Integer, raw: i} }

// NewFloat constructs a non-null Float value.
func NewFloat(f float64) FieldValue { return FieldValue{SQLType: Float, raw: f} }

// NewBoolean constructs a non-null Boolean value.
func NewBoolean(b bool) FieldValue { return FieldValue{SQLType: Boolean, raw: b} }

// NewDate constructs a non-null Date value.
func NewDate(t time.Time) FieldValue { return FieldValue{SQLType: Date, raw: t} }

// NewTime constructs a non-null Time value.
func NewTime(t time.Time) FieldValue { return FieldValue{SQLType: Time, raw: t} }

// NewTimestamp constructs a non-null Timestamp value.
func NewTimestamp(t time.Time) FieldValue { return FieldValue{SQLType: Timestamp, raw: t} }

// NewBinary constructs a non-null Binary value.
func NewBinary(b []byte) FieldValue { return FieldValue{SQLType: Binary, raw: b} }

// IsNull reports whether the value carries no payload.
func (v FieldValue) IsNull() bool { return v.raw == nil }

// Text returns the value as a string and ok=true if the value is
// non-null and of a type with a natural textual rendering.
func (v FieldValue) Text() (string, bool) {
	if v.raw == nil {
		return "", false
	}
	switch x := v.raw.(type) {
	case string:
		return x, true
	case int64:
		return fmt.Sprintf("%d", x), true
	case float64:
		return fmt.Sprintf("%g", x), true
	case bool:
		return fmt.Sprintf("%t", x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}

// Int64 returns the value as an integer and ok=true if the value is
// non-null and Integer-typed.
func (v FieldValue) Int64() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok
}

// Float64 returns the value as a float and ok=true if the value is
// non-null and Float-typed.
func (v FieldValue) Float64() (float64, bool) {
	f, ok := v.raw.(float64)
	return f, ok
}

// Bool returns the value as a boolean and ok=true if the value is
// non-null and Boolean-typed.
func (v FieldValue) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Time returns the value as a time.Time and ok=true if the value is
// non-null and Date-, Time-, or Timestamp-typed.
func (v FieldValue) Time() (time.Time, bool) {
	t, ok := v.raw.(time.Time)
	return t, ok
}

// Bytes returns the value as a byte slice and ok=true if the value is
// non-null and Binary-typed.
func (v FieldValue) Bytes() ([]byte, bool) {
	b, ok := v.raw.([]byte)
	return b, ok
}

// Equal compares two values by SQL type code, then by payload, matching
// the invariant that FieldValue equality is type-code then value.
func (v FieldValue) Equal(other FieldValue) bool {
	if v.SQLType != other.SQLType {
		return false
	}
	if v.IsNull() != other.IsNull() {
		return false
	}
	if v.IsNull() {
		return true
	}
	switch a := v.raw.(type) {
	case []byte:
		b, ok := other.raw.([]byte)
		return ok && bytes.Equal(a, b)
	default:
		return v.raw == other.raw
	}
}

// DecodeLegacyText decodes a byte payload read from a legacy Paradox text
// field, which predates UTF-8 and stores character data in a DOS/Windows
// code page, into a UTF-8 string. cm is typically charmap.CodePage437
// (the common default for older Paradox tables) or charmap.Windows1252.
func DecodeLegacyText(data []byte, cm *charmap.Charmap) (string, error) {
	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode legacy text: %w", err)
	}
	return string(decoded), nil
}

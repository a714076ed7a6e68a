package frame

// convert.go turns raw CSV text into cells and cells into typed values.
//
// Raw extracts spell nulls several ways (empty field, NA, NULL, nan...) and
// carry stray whitespace around numbers. Cells keep the raw text; the typed
// views below decide what the text means for a given kind.
//
// All ToPg* functions return pgtype values with Valid=false for null or
// unparseable input.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// numericRegex matches integers, decimals, and scientific notation.
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
)

// nullTokens are the field values read as null.
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"NULL": true,
	"null": true,
	"None": true,
	"#N/A": true,
	"<NA>": true,
}

// IsNullToken reports whether a raw field value denotes a null.
func IsNullToken(s string) bool {
	return nullTokens[s]
}

// ParseCell converts a raw field into a cell, mapping null tokens to null.
func ParseCell(raw string) Cell {
	if IsNullToken(raw) {
		return Null
	}
	return Cell{String: raw, Valid: true}
}

// IsInteger reports whether s is a base-10 integer that fits in int64.
func IsInteger(s string) bool {
	s = strings.TrimSpace(s)
	if !integerRegex.MatchString(s) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// IsNumeric reports whether s is a decimal or scientific number.
func IsNumeric(s string) bool {
	return numericRegex.MatchString(strings.TrimSpace(s))
}

// ToPgText converts a cell to pgtype.Text.
func ToPgText(c Cell) pgtype.Text {
	return c
}

// ToPgInt8 converts a cell to pgtype.Int8.
func ToPgInt8(c Cell) pgtype.Int8 {
	if !c.Valid {
		return pgtype.Int8{Valid: false}
	}
	i, err := strconv.ParseInt(strings.TrimSpace(c.String), 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: i, Valid: true}
}

// ToPgFloat8 converts a cell to pgtype.Float8.
func ToPgFloat8(c Cell) pgtype.Float8 {
	if !c.Valid {
		return pgtype.Float8{Valid: false}
	}
	s := strings.TrimSpace(c.String)
	if !numericRegex.MatchString(s) {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// Typed returns the cell as a native Go value for its column kind:
// string, int64, float64, or nil for null and unparseable cells.
func Typed(c Cell, kind Kind) any {
	switch kind {
	case KindInt:
		v := ToPgInt8(c)
		if !v.Valid {
			return nil
		}
		return v.Int64
	case KindFloat:
		v := ToPgFloat8(c)
		if !v.Valid {
			return nil
		}
		return v.Float64
	default:
		if !c.Valid {
			return nil
		}
		return c.String
	}
}

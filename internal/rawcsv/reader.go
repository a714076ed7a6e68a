// Package rawcsv reads the raw yearly extracts into frame tables.
//
// Extracts are delimiter-separated text with a header row. The reader
// decodes legacy charsets, strips a UTF-8 byte order mark, rejects or
// sanitizes invalid UTF-8, maps the usual null spellings to null cells and
// mangles duplicate header names (name, name.1, name.2). All columns are
// returned as text; kind inference is left to the caller.
package rawcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/JonMunkholm/accidents/internal/frame"
)

var (
	// ErrNoHeader is returned for an input with no header row.
	ErrNoHeader = errors.New("no header row")

	// ErrInvalidUTF8 is returned in strict mode when a field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")

	// ErrTooManyFields is returned when a record is longer than the header.
	ErrTooManyFields = errors.New("too many fields")
)

// Options controls how raw input is decoded.
type Options struct {
	// Delimiter separates fields. Zero means ';'.
	Delimiter rune

	// Encoding names the input charset (see LookupEncoding). Empty means UTF-8.
	Encoding string

	// SanitizeUTF8 replaces invalid UTF-8 bytes with '?' instead of failing.
	SanitizeUTF8 bool
}

// Stats describes one read.
type Stats struct {
	Bytes    int64 // bytes read from the source
	Records  int   // data records, header excluded
	Replaced int   // invalid bytes replaced when sanitizing
}

// ReadFile reads the file at path.
func ReadFile(path string, opts Options) (*frame.Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	t, stats, err := Read(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return t, stats, nil
}

// Read parses r into a table of text columns.
func Read(r io.Reader, opts Options) (t *frame.Table, stats Stats, err error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, stats, err
	}

	counter := NewCountingReader(r)
	in := skipBOM(decode(counter, enc))
	var sanitizer *UTF8Sanitizer
	if opts.SanitizeUTF8 {
		sanitizer = NewUTF8Sanitizer(in)
		in = sanitizer
	}

	cr := csv.NewReader(in)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	defer func() {
		stats.Bytes = counter.BytesRead
		if sanitizer != nil {
			stats.Replaced = sanitizer.Replaced
		}
	}()

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrNoHeader
	}
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	if err := checkUTF8(header, 1); err != nil {
		return nil, stats, err
	}
	names := MangleHeader(header)

	cells := make([][]frame.Cell, len(names))
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading record %d: %w", stats.Records+1, err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) > len(names) {
			return nil, stats, fmt.Errorf("line %d: %w: expected %d, saw %d",
				line, ErrTooManyFields, len(names), len(record))
		}
		if err := checkUTF8(record, line); err != nil {
			return nil, stats, err
		}
		for i := range names {
			cell := frame.Null
			if i < len(record) {
				cell = frame.ParseCell(record[i])
			}
			cells[i] = append(cells[i], cell)
		}
		stats.Records++
	}

	cols := make([]*frame.Column, len(names))
	for i, name := range names {
		c := cells[i]
		if c == nil {
			c = []frame.Cell{}
		}
		cols[i] = &frame.Column{Name: name, Kind: frame.KindText, Cells: c}
	}
	t, err = frame.FromColumns(cols...)
	if err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}

// checkUTF8 rejects a record holding invalid UTF-8. Sanitized input always
// passes.
func checkUTF8(record []string, line int) error {
	for i, field := range record {
		if !utf8.ValidString(field) {
			return fmt.Errorf("line %d, field %d: %w", line, i+1, ErrInvalidUTF8)
		}
	}
	return nil
}

// MangleHeader makes header names unique by suffixing repeats with .1, .2,
// and so on, skipping suffixes that collide with a name already present.
func MangleHeader(header []string) []string {
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		n, dup := seen[h]
		if !dup {
			seen[h] = 1
			out[i] = h
			continue
		}
		name := h + "." + strconv.Itoa(n)
		for taken[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

package rawcsv

// streaming.go provides the io.Reader wrappers applied to a raw file before
// it reaches the CSV parser:
//
//   - skipBOM: drops a leading UTF-8 byte order mark (0xEF 0xBB 0xBF)
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?'
//   - CountingReader: counts bytes read from the file
//
// Wrappers are applied in the order counting, decoding, BOM, sanitizing so
// the byte count reflects the file on disk.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader positioned after the UTF-8 BOM if r starts with one.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// UTF8Sanitizer replaces every byte that is not part of a valid UTF-8
// sequence with '?'. A multi-byte sequence split across two reads is held
// back until the next read completes it.
//
// '?' is used instead of U+FFFD so the output never grows past the input.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte

	// Replaced counts the bytes replaced so far.
	Replaced int
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, s.pending)
	s.pending = s.pending[:0]

	var err error
	if n < len(p) {
		var m int
		m, err = s.reader.Read(p[n:])
		n += m
	}
	if n == 0 {
		return 0, err
	}

	atEOF := err == io.EOF
	w := 0
	for r := 0; r < n; {
		b := p[r]
		if b < utf8.RuneSelf {
			p[w] = b
			w++
			r++
			continue
		}
		if !atEOF && !utf8.FullRune(p[r:n]) {
			s.pending = append(s.pending, p[r:n]...)
			break
		}
		ru, size := utf8.DecodeRune(p[r:n])
		if ru == utf8.RuneError && size == 1 {
			p[w] = '?'
			s.Replaced++
			w++
			r++
			continue
		}
		copy(p[w:], p[r:r+size])
		w += size
		r += size
	}

	if w == 0 && err == nil {
		// Only an incomplete sequence was read; ask for more before returning.
		return s.Read(p)
	}
	return w, err
}

// CountingReader tracks the number of bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

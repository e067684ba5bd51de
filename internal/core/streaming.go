package core

// streaming.go provides the reader stack the pipeline pushes file bytes
// through before CSV parsing:
//
//   - skipBOM removes a UTF-8 byte-order mark (common in Windows exports)
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly
//   - countingReader tracks bytes read for byte-based progress
//
// All three operate in constant memory so files near the size ceiling never
// need to be buffered whole.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader positioned past a leading UTF-8 BOM, if present.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err == nil && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		br.Discard(3)
	}
	return br
}

// utf8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with
// '?'. A one-byte replacement avoids growing the buffer mid-read. Up to
// three trailing bytes of an incomplete multi-byte sequence are held back
// for the next read.
type utf8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if allASCII(data) {
		return n, err
	}

	atEOF := err == io.EOF
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if r == utf8.RuneError && size == 1 {
			if !atEOF && len(data)-read < utf8.UTFMax && startsRune(data[read]) {
				// Possibly an incomplete sequence split across reads.
				s.pending = append(s.pending, data[read:]...)
				break
			}
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}

	return write, err
}

// allASCII is the fast path: most incident exports are pure ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// startsRune reports whether b could begin a multi-byte UTF-8 sequence.
func startsRune(b byte) bool {
	return b >= 0xC0
}

// countingReader tracks bytes read for progress reporting.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
	total     int64 // 0 when unknown
}

func newCountingReader(r io.Reader, total int64) *countingReader {
	return &countingReader{reader: r, total: total}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.bytesRead += int64(n)
	return n, err
}

// progress returns the read fraction in [0,1], or 0 when the total size is
// unknown.
func (c *countingReader) progress() float64 {
	if c.total <= 0 {
		return 0
	}
	f := float64(c.bytesRead) / float64(c.total)
	if f > 1 {
		f = 1
	}
	return f
}

// wrapForStreaming stacks the three readers in the required order: BOM
// first, sanitization next, counting outermost.
func wrapForStreaming(r io.Reader, totalSize int64) *countingReader {
	return newCountingReader(newUTF8Sanitizer(skipBOM(r)), totalSize)
}

package buffer

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer is a thread-safe text store for composer-sized documents.
// Content is kept as a single string with a line-start index that is
// rebuilt on every mutation. All offsets are byte offsets and all line
// endings are normalized to LF on the way in.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset
	revisionID RevisionID
}

// New creates an empty buffer.
func New() *Buffer {
	b := &Buffer{revisionID: NewRevisionID()}
	b.reindex()
	return b
}

// FromString creates a buffer with initial content.
func FromString(s string) *Buffer {
	b := New()
	b.text = normalizeLineEndings(s)
	b.reindex()
	return b
}

// normalizeLineEndings converts CRLF and bare CR to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// reindex rebuilds the line-start index. Callers must hold the write lock.
func (b *Buffer) reindex() {
	starts := b.lineStarts[:0]
	starts = append(starts, 0)
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	b.lineStarts = starts
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range, clamped to the buffer.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end = b.clampRangeLocked(start, end)
	return b.text[start:end]
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// IsEmpty returns true if the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// LineCount returns the number of logical lines. An empty buffer has one.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// LineText returns the text of a line (without newline).
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := b.lineBoundsLocked(line)
	return b.text[start:end]
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line int) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, _ := b.lineBoundsLocked(line)
	return start
}

// LineEndOffset returns the byte offset of the end of a line (before newline).
func (b *Buffer) LineEndOffset(line int) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, end := b.lineBoundsLocked(line)
	return end
}

// lineBoundsLocked returns [start, end) of a line, clamping the line
// number into range. Callers must hold a lock.
func (b *Buffer) lineBoundsLocked(line int) (ByteOffset, ByteOffset) {
	if line < 0 {
		line = 0
	}
	if line >= len(b.lineStarts) {
		line = len(b.lineStarts) - 1
	}
	start := b.lineStarts[line]
	end := len(b.text)
	if line+1 < len(b.lineStarts) {
		end = b.lineStarts[line+1] - 1 // exclude the newline
	}
	return start, end
}

// RuneAt returns the rune at the given byte offset.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= len(b.text) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(b.text[offset:])
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
// Offsets outside the buffer clamp to the nearest end.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offset = b.clampLocked(offset)
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	return Point{Line: line, Column: offset - b.lineStarts[line]}
}

// PointToOffset converts line/column to a byte offset, clamping the
// column to the line's length.
func (b *Buffer) PointToOffset(p Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := b.lineBoundsLocked(p.Line)
	offset := start + p.Column
	if offset > end {
		offset = end
	}
	if offset < start {
		offset = start
	}
	return offset
}

// Clamp constrains an offset to [0, Len].
func (b *Buffer) Clamp(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clampLocked(offset)
}

// SnapToRuneStart moves offset back to the start of the rune it falls
// inside. Offsets already on a rune boundary come back unchanged.
// Vertical caret moves land on byte columns and need this to avoid
// splitting multibyte characters.
func (b *Buffer) SnapToRuneStart(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offset = b.clampLocked(offset)
	for offset > 0 && offset < len(b.text) && !utf8.RuneStart(b.text[offset]) {
		offset--
	}
	return offset
}

// ClampRange constrains a range to the buffer, swapping inverted bounds.
func (b *Buffer) ClampRange(start, end ByteOffset) (ByteOffset, ByteOffset) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clampRangeLocked(start, end)
}

func (b *Buffer) clampLocked(offset ByteOffset) ByteOffset {
	if offset < 0 {
		return 0
	}
	if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}

func (b *Buffer) clampRangeLocked(start, end ByteOffset) (ByteOffset, ByteOffset) {
	start = b.clampLocked(start)
	end = b.clampLocked(end)
	if start > end {
		start, end = end, start
	}
	return start, end
}

// Write Operations

// SetText replaces the entire content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = normalizeLineEndings(s)
	b.reindex()
	b.revisionID = NewRevisionID()
}

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > len(b.text) {
		return 0, ErrOffsetOutOfRange
	}

	text = normalizeLineEndings(text)
	b.text = b.text[:offset] + text + b.text[offset:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return offset + len(text), nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > len(b.text) {
		return ErrRangeInvalid
	}

	b.text = b.text[:start] + b.text[end:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > len(b.text) {
		return 0, ErrRangeInvalid
	}

	text = normalizeLineEndings(text)
	b.text = b.text[:start] + text + b.text[end:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return start + len(text), nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Package buffer provides a thread-safe text store for the composer.
//
// Documents here are message-sized, so the buffer keeps the text as a
// single string with a rebuilt-on-write line index rather than a heavier
// structure. It provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Coordinate conversion between byte offsets and line/column points
//   - Grapheme-cluster boundaries for caret movement
//   - Line ending normalization to LF
//   - Revision tracking for change detection
//
// Basic usage:
//
//	buf := buffer.FromString("hola mundo")
//	buf.Insert(4, "!")      // "hola! mundo"
//	buf.Delete(0, 5)        // " mundo"
//
// All offsets are byte offsets into the UTF-8 text. Out-of-range reads
// clamp; out-of-range writes return ErrOffsetOutOfRange or ErrRangeInvalid.
package buffer

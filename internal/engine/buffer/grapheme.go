package buffer

import "github.com/rivo/uniseg"

// NextBoundary returns the offset just past the grapheme cluster at
// offset. Caret movement steps by cluster, not by byte, so combining
// marks and emoji sequences are never split.
func (b *Buffer) NextBoundary(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	offset = b.clampLocked(offset)
	if offset >= len(b.text) {
		return len(b.text)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(b.text[offset:], -1)
	return offset + len(cluster)
}

// PrevBoundary returns the offset of the start of the grapheme cluster
// preceding offset. Clusters are scanned from the start of the line
// containing offset, which is cheap at composer sizes.
func (b *Buffer) PrevBoundary(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	offset = b.clampLocked(offset)
	if offset == 0 {
		return 0
	}
	if b.text[offset-1] == '\n' {
		return offset - 1
	}

	line := b.lineIndexLocked(offset)
	start := b.lineStarts[line]
	prev := start
	rest := b.text[start:offset]
	state := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if len(rest) == 0 {
			return prev
		}
		prev += len(cluster)
	}
	return prev
}

// lineIndexLocked returns the line containing offset. Callers must hold a lock.
func (b *Buffer) lineIndexLocked(offset ByteOffset) int {
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Package substring implements the substring buffer (§4.7): in-place
// editing of a source substring that keeps original offsets meaningful
// across replacements, used by the statement renderer and the editor.
package substring

import "github.com/dashql-run/dashql-core/ast"

type patch struct {
	offset uint32
	delta  int32 // positive = lengthen, negative = shorten
}

// Buffer holds one substring's mutable copy plus the patches recorded so
// far, letting callers keep addressing replacements by original offset.
type Buffer struct {
	loc     ast.Location
	text    string
	patches []patch
}

// New starts a buffer over source[loc.Offset : loc.End()].
func New(source string, loc ast.Location) *Buffer {
	end := loc.End()
	if int(end) > len(source) {
		end = uint32(len(source))
	}
	return &Buffer{loc: loc, text: source[loc.Offset:end]}
}

// translate maps an original-coordinate offset to its current position in
// b.text by applying every recorded patch in turn: each patch
// contributes its delta whenever the target offset is at or past the
// patch's original offset.
func (b *Buffer) translate(offset uint32) int {
	pos := int(offset) - int(b.loc.Offset)
	for _, p := range b.patches {
		if offset >= p.offset {
			pos += int(p.delta)
		}
	}
	return pos
}

// Intersects reports whether loc, clipped to the buffer's original
// substring, has non-zero length.
func (b *Buffer) Intersects(loc ast.Location) bool {
	_, _, ok := b.clip(loc)
	return ok
}

func (b *Buffer) clip(loc ast.Location) (begin, end uint32, ok bool) {
	lo := b.loc.Offset
	hi := b.loc.End()
	begin, end = loc.Offset, loc.End()
	if begin < lo {
		begin = lo
	}
	if end > hi {
		end = hi
	}
	if end <= begin {
		return 0, 0, false
	}
	return begin, end, true
}

// Replace clips loc to the buffer's substring, translates it to current
// buffer coordinates through every prior patch, performs the replacement,
// and records a new patch keyed at loc's original offset so subsequent
// Replace calls using original offsets remain valid.
func (b *Buffer) Replace(loc ast.Location, value string) {
	begin, end, ok := b.clip(loc)
	if !ok {
		return
	}
	curBegin := b.translate(begin)
	curEnd := b.translate(end)
	if curBegin < 0 {
		curBegin = 0
	}
	if curEnd > len(b.text) {
		curEnd = len(b.text)
	}
	if curEnd < curBegin {
		curEnd = curBegin
	}

	b.text = b.text[:curBegin] + value + b.text[curEnd:]
	delta := int32(len(value)) - int32(curEnd-curBegin)
	if delta != 0 {
		b.patches = append(b.patches, patch{offset: begin, delta: delta})
	}
}

// Finish returns the accumulated buffer text.
func (b *Buffer) Finish() string { return b.text }

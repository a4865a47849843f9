// spans.go: source spans and offset to line/column mapping.
//
// Every token and AST node carries a Span: a half-open byte interval
// [Start, End) into the original UTF-8 source. Spans exist for tooling
// (highlighting, caret diagnostics, trace export); evaluation never reads them.
//
// Line/column coordinates are not stored on nodes. Callers derive them on
// demand with a LineIndex built once per source.
package olang

import (
	"sort"
)

// Span is a half-open byte interval [Start, End) in the source text.
type Span struct {
	Start int `json:"from" yaml:"from"`
	End   int `json:"to" yaml:"to"`
}

// Join returns the smallest span covering both a and b.
func (s Span) Join(o Span) Span {
	out := s
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// Len is the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// LineIndex maps byte offsets to 1-based (line, column) pairs.
// It is read-only after construction and safe for concurrent use.
type LineIndex struct {
	starts []int // byte offset of the first byte of each line
	size   int
}

// NewLineIndex scans src once for line starts.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// Position returns the 1-based line and column of offset. Offsets outside the
// source are clamped.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	// first line whose start is > offset, minus one
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return i + 1, offset - li.starts[i] + 1
}

// Lines reports the number of lines in the source.
func (li *LineIndex) Lines() int { return len(li.starts) }

package rbxml

import (
	"fmt"
	"strings"
)

// Writer is an append-only line buffer with a running indent level.
//
// The level starts at 1: the document envelope itself is unindented,
// so first-level content sits one tab deep. The writer never checks
// that the level stays non-negative; balancing Indent calls is the
// caller's responsibility.
type Writer struct {
	frags []string
	level int
}

// NewWriter returns a writer positioned at indent level 1.
func NewWriter() *Writer {
	return &Writer{level: 1}
}

// Write appends each part, stringified, followed by a single newline.
func (w *Writer) Write(parts ...any) {
	for _, p := range parts {
		w.frags = append(w.frags, fmt.Sprint(p))
	}
	w.frags = append(w.frags, "\n")
}

// Indent adjusts the level by delta, then appends the tab prefix for
// the next line. Callers follow immediately with Write to complete it.
func (w *Writer) Indent(delta int) {
	w.level += delta
	if w.level > 0 {
		w.frags = append(w.frags, strings.Repeat("\t", w.level))
	}
}

// Render concatenates the buffer into the final document text.
func (w *Writer) Render() string {
	return strings.Join(w.frags, "")
}

// Package history provides snapshot-based undo/redo for a document session.
//
// Every entry is a full copy of the document content (a content.Content,
// which shares its bytes with the live buffer), not a diff. Two stacks are
// kept:
//
//   - the undo stack holds past states, most recent last; its top is always
//     the current state
//   - the redo stack holds undone states, most recent last
//
// # Usage
//
//	h := history.New(content.New(""))
//
//	h.RecordEdit(content.New("hello"))
//	h.RecordEdit(content.New("hello world"))
//
//	prev, ok := h.Undo() // "hello", true
//	next, ok := h.Redo() // "hello world", true
//
// The undo stack is never empty: it is seeded with one entry, so Undo from
// the first state reports false instead of failing. Recording an edit clears
// the redo stack; history is strictly linear.
//
// # Coalescing
//
// Amend replaces the most recent snapshot instead of pushing a new one. A
// caller that wants one undo step per typing burst records the first edit of
// the burst and amends the rest.
package history

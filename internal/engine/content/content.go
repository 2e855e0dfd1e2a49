// Package content provides the immutable text value held by a session.
//
// A Content is backed by a Go string, so the live buffer and every history
// snapshot that hold the same Content share one backing array. Replacing the
// document always produces a new Content; nothing mutates one in place.
package content

import "unicode/utf8"

// Content is the full text of a document at a point in time.
// The zero value is the empty document.
type Content struct {
	text string
}

// New wraps s as a Content.
func New(s string) Content {
	return Content{text: s}
}

// FromBytes copies b into a new Content.
func FromBytes(b []byte) Content {
	return Content{text: string(b)}
}

// String returns the text.
func (c Content) String() string { return c.text }

// Bytes returns a fresh copy of the text.
func (c Content) Bytes() []byte { return []byte(c.text) }

// Len returns the length in bytes.
func (c Content) Len() int { return len(c.text) }

// RuneCount returns the number of runes.
func (c Content) RuneCount() int { return utf8.RuneCountInString(c.text) }

// IsEmpty returns true for the empty document.
func (c Content) IsEmpty() bool { return c.text == "" }

// Equal reports whether c and other hold the same text.
func (c Content) Equal(other Content) bool { return c.text == other.text }

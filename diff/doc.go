// Package diff computes edit scripts between two strings and renders them
// as inline-styled HTML.
//
// Diff returns a sequence of Equal, Insert and Delete edits. Concatenating
// the Equal and Delete spans reproduces the old string byte for byte, and
// concatenating the Equal and Insert spans reproduces the new one. Edits
// never carry empty text, neighbours never share a kind, and a Delete is
// never followed by an Insert of the same text.
//
// The search is Myers' O(ND) algorithm in its linear-space form, run over
// runes for short inputs and over lines for long ones, with changed line
// blocks refined at rune level. Each search is bounded by Options.MaxCost;
// a region that exceeds the bound is reported as one Delete and one Insert,
// which is valid but not minimal.
//
// Render is a pure serializer: it escapes every span and wraps it in a
// kind-specific element. It performs no diffing and can re-render a stored
// edit script with a different Style.
package diff

package diff

import "strings"

// Escaper neutralizes markup-reserved characters in a span of text.
type Escaper func(string) string

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\n", "<br />",
)

// HTMLEscape escapes &, < and > and turns newlines into <br /> elements.
func HTMLEscape(s string) string {
	return htmlReplacer.Replace(s)
}

// Wrapper is the markup placed around one span.
type Wrapper struct {
	Open  string
	Close string
}

// Style holds the wrappers for each edit kind.
type Style struct {
	Insert Wrapper
	Delete Wrapper
	Equal  Wrapper
}

// DefaultStyle marks insertions green and deletions red.
var DefaultStyle = Style{
	Insert: Wrapper{Open: `<ins style="background:#e6ffe6;">`, Close: `</ins>`},
	Delete: Wrapper{Open: `<del style="background:#ffe6e6;">`, Close: `</del>`},
	Equal:  Wrapper{Open: `<span>`, Close: `</span>`},
}

// Render serializes edits with DefaultStyle. A nil escape means HTMLEscape.
func Render(edits []Edit, escape Escaper) string {
	return RenderStyle(edits, escape, DefaultStyle)
}

// RenderStyle serializes edits, escaping each span and wrapping it in the
// style's wrapper for its kind. Wrappers are concatenated with no
// separators.
func RenderStyle(edits []Edit, escape Escaper, style Style) string {
	if escape == nil {
		escape = HTMLEscape
	}

	var b strings.Builder
	for _, e := range edits {
		w := style.Equal
		switch e.Kind {
		case Insert:
			w = style.Insert
		case Delete:
			w = style.Delete
		}
		b.WriteString(w.Open)
		b.WriteString(escape(e.Text))
		b.WriteString(w.Close)
	}
	return b.String()
}

// HTML diffs old and new and renders the result with DefaultStyle.
func HTML(old, new string) string {
	return Render(Diff(old, new), HTMLEscape)
}

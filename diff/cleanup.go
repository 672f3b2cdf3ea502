package diff

import (
	"strings"
	"unicode/utf8"
)

// commonPrefix returns the byte length of the longest common prefix of a
// and b that ends on a rune boundary.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(a) && !utf8.RuneStart(a[i]) {
		i--
	}
	return i
}

// commonSuffix returns the byte length of the longest common suffix of a
// and b that starts on a rune boundary.
func commonSuffix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	for i > 0 && i < len(a) && !utf8.RuneStart(a[len(a)-i]) {
		i--
	}
	return i
}

// appendEdit appends an edit, joining it to the last one when the kinds
// match and dropping it when empty.
func appendEdit(out []Edit, kind Kind, text string) []Edit {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Kind == kind {
		out[n-1].Text += text
		return out
	}
	return append(out, Edit{Kind: kind, Text: text})
}

// merge normalizes an edit script: it coalesces runs of the same kind,
// moves text shared by a Delete and its Insert into the surrounding
// equalities, orders Delete before Insert, drops empty spans and slides
// single edits sideways when that removes an equality.
func merge(edits []Edit) []Edit {
	for {
		edits = mergePass(edits)
		var shifted bool
		edits, shifted = shiftPass(edits)
		if !shifted {
			return edits
		}
	}
}

func mergePass(edits []Edit) []Edit {
	out := make([]Edit, 0, len(edits))
	var del, ins strings.Builder

	flush := func() {
		d, i := del.String(), ins.String()
		del.Reset()
		ins.Reset()

		var suffix string
		if d != "" && i != "" {
			if p := commonPrefix(d, i); p > 0 {
				out = appendEdit(out, Equal, i[:p])
				d, i = d[p:], i[p:]
			}
			if s := commonSuffix(d, i); s > 0 {
				suffix = i[len(i)-s:]
				d, i = d[:len(d)-s], i[:len(i)-s]
			}
		}
		out = appendEdit(out, Delete, d)
		out = appendEdit(out, Insert, i)
		out = appendEdit(out, Equal, suffix)
	}

	for _, e := range edits {
		switch e.Kind {
		case Delete:
			del.WriteString(e.Text)
		case Insert:
			ins.WriteString(e.Text)
		default:
			flush()
			out = appendEdit(out, Equal, e.Text)
		}
	}
	flush()
	return out
}

// shiftPass looks for a single edit between two equalities that can slide
// over one of them, e.g. "A<ins>BA</ins>C" becomes "<ins>AB</ins>AC".
func shiftPass(edits []Edit) ([]Edit, bool) {
	changed := false
	for i := 1; i < len(edits)-1; i++ {
		prev, cur, next := edits[i-1], edits[i], edits[i+1]
		if prev.Kind != Equal || next.Kind != Equal || cur.Kind == Equal {
			continue
		}

		switch {
		case strings.HasSuffix(cur.Text, prev.Text):
			edits[i].Text = prev.Text + cur.Text[:len(cur.Text)-len(prev.Text)]
			edits[i+1].Text = prev.Text + next.Text
			edits = append(edits[:i-1], edits[i:]...)
			changed = true
		case strings.HasPrefix(cur.Text, next.Text):
			edits[i-1].Text = prev.Text + next.Text
			edits[i].Text = cur.Text[len(next.Text):] + next.Text
			edits = append(edits[:i+1], edits[i+2:]...)
			changed = true
		}
	}
	return edits, changed
}

// semantic folds equalities that are no longer than the changes on both
// sides of them into those changes, trading minimality for readability.
func semantic(edits []Edit) []Edit {
	edits = append([]Edit(nil), edits...)
	changed := false

	var equalities []int
	var lastEquality string
	hasLast := false
	var ins1, del1, ins2, del2 int

	for i := 0; i < len(edits); i++ {
		e := edits[i]
		if e.Kind == Equal {
			equalities = append(equalities, i)
			ins1, del1 = ins2, del2
			ins2, del2 = 0, 0
			lastEquality, hasLast = e.Text, true
			continue
		}

		n := utf8.RuneCountInString(e.Text)
		if e.Kind == Insert {
			ins2 += n
		} else {
			del2 += n
		}

		eqLen := utf8.RuneCountInString(lastEquality)
		if !hasLast || eqLen > max(ins1, del1) || eqLen > max(ins2, del2) {
			continue
		}

		at := equalities[len(equalities)-1]
		edits = append(edits[:at], append([]Edit{{Kind: Delete, Text: lastEquality}}, edits[at:]...)...)
		edits[at+1].Kind = Insert

		equalities = equalities[:len(equalities)-1]
		if len(equalities) > 0 {
			equalities = equalities[:len(equalities)-1]
		}
		i = -1
		if len(equalities) > 0 {
			i = equalities[len(equalities)-1]
		}

		ins1, del1, ins2, del2 = 0, 0, 0, 0
		lastEquality, hasLast = "", false
		changed = true
	}

	if !changed {
		return edits
	}
	return merge(edits)
}

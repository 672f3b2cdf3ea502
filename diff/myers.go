package diff

import "unicode/utf8"

// seq is a tokenized string: ids[i] covers src[off[i]:off[i+1]].
type seq[T comparable] struct {
	ids []T
	off []int
	src string
}

func (s seq[T]) text(i, j int) string {
	return s.src[s.off[i]:s.off[j]]
}

// runeSeq splits s into runes. Invalid bytes become single-byte tokens with
// negative ids so that every byte of s survives reconstruction.
func runeSeq(s string) seq[rune] {
	ids := make([]rune, 0, len(s))
	off := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			r = -1 - rune(s[i])
		}
		ids = append(ids, r)
		off = append(off, i)
		i += size
	}
	off = append(off, len(s))
	return seq[rune]{ids: ids, off: off, src: s}
}

// lineSeqs splits a and b into lines, each keeping its trailing newline,
// and interns identical lines to the same id across both strings.
func lineSeqs(a, b string) (seq[int], seq[int]) {
	intern := make(map[string]int)
	split := func(s string) seq[int] {
		var ids, off []int
		start := 0
		for start < len(s) {
			end := start
			for end < len(s) && s[end] != '\n' {
				end++
			}
			if end < len(s) {
				end++
			}
			line := s[start:end]
			id, ok := intern[line]
			if !ok {
				id = len(intern)
				intern[line] = id
			}
			ids = append(ids, id)
			off = append(off, start)
			start = end
		}
		off = append(off, len(s))
		return seq[int]{ids: ids, off: off, src: s}
	}
	return split(a), split(b)
}

// myers computes an edit script between two token sequences. Every bisect
// explores at most maxCost edit steps; a region that needs more is emitted
// as one Delete and one Insert.
type myers[T comparable] struct {
	a, b    seq[T]
	maxCost int
	out     []Edit
}

func diffSeq[T comparable](a, b seq[T], maxCost int) []Edit {
	m := &myers[T]{a: a, b: b, maxCost: maxCost}
	m.run(0, len(a.ids), 0, len(b.ids))
	return m.out
}

func (m *myers[T]) emit(kind Kind, text string) {
	if text == "" {
		return
	}
	if n := len(m.out); n > 0 && m.out[n-1].Kind == kind {
		m.out[n-1].Text += text
		return
	}
	m.out = append(m.out, Edit{Kind: kind, Text: text})
}

func (m *myers[T]) run(a0, a1, b0, b1 int) {
	p0 := a0
	for a0 < a1 && b0 < b1 && m.a.ids[a0] == m.b.ids[b0] {
		a0++
		b0++
	}
	m.emit(Equal, m.a.text(p0, a0))

	s1 := a1
	for a0 < a1 && b0 < b1 && m.a.ids[a1-1] == m.b.ids[b1-1] {
		a1--
		b1--
	}

	switch {
	case a0 == a1:
		m.emit(Insert, m.b.text(b0, b1))
	case b0 == b1:
		m.emit(Delete, m.a.text(a0, a1))
	default:
		x, y, ok := m.bisect(a0, a1, b0, b1)
		if !ok || x < a0 || x > a1 || y < b0 || y > b1 || (x == a0 && y == b0) || (x == a1 && y == b1) {
			m.emit(Delete, m.a.text(a0, a1))
			m.emit(Insert, m.b.text(b0, b1))
		} else {
			m.run(a0, x, b0, y)
			m.run(x, a1, y, b1)
		}
	}

	m.emit(Equal, m.a.text(a1, s1))
}

// bisect finds the middle snake of a[a0:a1] and b[b0:b1] and returns the
// point where the forward and reverse searches overlap.
func (m *myers[T]) bisect(a0, a1, b0, b1 int) (int, int, bool) {
	a, b := m.a.ids, m.b.ids
	n, mm := a1-a0, b1-b0
	maxD := (n + mm + 1) / 2
	limit := maxD
	if m.maxCost > 0 && m.maxCost < limit {
		limit = m.maxCost
	}

	vOffset := maxD
	vLen := 2*maxD + 2
	v1 := make([]int, vLen)
	v2 := make([]int, vLen)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0

	delta := n - mm
	// With an odd delta the forward path detects the overlap.
	front := delta%2 != 0
	var k1start, k1end, k2start, k2end int

	for d := 0; d < limit; d++ {
		for k1 := -d + k1start; k1 <= d-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -d || (k1 != d && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < n && y1 < mm && a[a0+x1] == b[b0+y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			switch {
			case x1 > n:
				k1end += 2
			case y1 > mm:
				k1start += 2
			case front:
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLen && v2[k2Offset] != -1 {
					if x2 := n - v2[k2Offset]; x1 >= x2 {
						return a0 + x1, b0 + y1, true
					}
				}
			}
		}

		for k2 := -d + k2start; k2 <= d-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -d || (k2 != d && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < n && y2 < mm && a[a1-x2-1] == b[b1-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			switch {
			case x2 > n:
				k2end += 2
			case y2 > mm:
				k2start += 2
			case !front:
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLen && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					if x1 <= n && y1 >= 0 && y1 <= mm && x1 >= n-x2 {
						return a0 + x1, b0 + y1, true
					}
				}
			}
		}
	}
	return 0, 0, false
}

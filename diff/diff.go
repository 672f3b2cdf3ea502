package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Granularity selects the token unit of the search.
type Granularity int

const (
	// Auto diffs runes for short inputs and lines, refined at rune level,
	// for inputs longer than RuneThreshold.
	Auto Granularity = iota
	// Runes always diffs rune by rune.
	Runes
	// Lines diffs whole lines without refinement.
	Lines
)

func (g Granularity) String() string {
	switch g {
	case Auto:
		return "auto"
	case Runes:
		return "runes"
	case Lines:
		return "lines"
	default:
		return "unknown"
	}
}

// ParseGranularity parses a configuration value. Empty means Auto.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "runes", "rune", "chars":
		return Runes, nil
	case "lines", "line":
		return Lines, nil
	default:
		return Auto, fmt.Errorf("diff: unknown granularity %q", s)
	}
}

const (
	// DefaultRuneThreshold is the changed-region size, in runes, above
	// which Auto switches to line tokens.
	DefaultRuneThreshold = 10000

	// DefaultMaxCost bounds the edit steps explored by one Myers search.
	DefaultMaxCost = 4096
)

// Options tunes the diff. The zero value selects the defaults.
type Options struct {
	Granularity   Granularity
	RuneThreshold int
	MaxCost       int
	Semantic      bool
}

func (o Options) withDefaults() Options {
	if o.RuneThreshold <= 0 {
		o.RuneThreshold = DefaultRuneThreshold
	}
	if o.MaxCost <= 0 {
		o.MaxCost = DefaultMaxCost
	}
	return o
}

// Diff computes the edit script from old to new with default options.
func Diff(old, new string) []Edit {
	return DiffOptions(old, new, Options{})
}

// DiffOptions computes the edit script from old to new.
//
// Equal inputs yield a single Equal edit, or none when both are empty. An
// empty side yields a single Insert or Delete.
func DiffOptions(old, new string, opts Options) []Edit {
	opts = opts.withDefaults()

	switch {
	case old == new:
		if old == "" {
			return nil
		}
		return []Edit{{Kind: Equal, Text: old}}
	case old == "":
		return []Edit{{Kind: Insert, Text: new}}
	case new == "":
		return []Edit{{Kind: Delete, Text: old}}
	}

	p := commonPrefix(old, new)
	prefix := old[:p]
	old, new = old[p:], new[p:]

	s := commonSuffix(old, new)
	suffix := old[len(old)-s:]
	old, new = old[:len(old)-s], new[:len(new)-s]

	edits := make([]Edit, 0, 8)
	edits = appendEdit(edits, Equal, prefix)
	edits = append(edits, middle(old, new, opts)...)
	edits = appendEdit(edits, Equal, suffix)

	edits = merge(edits)
	if opts.Semantic {
		edits = semantic(edits)
	}
	return edits
}

// middle diffs the region left after trimming the common prefix and suffix.
func middle(old, new string, opts Options) []Edit {
	switch {
	case old == "":
		return appendEdit(nil, Insert, new)
	case new == "":
		return appendEdit(nil, Delete, old)
	}

	switch opts.Granularity {
	case Runes:
		return diffSeq(runeSeq(old), runeSeq(new), opts.MaxCost)
	case Lines:
		a, b := lineSeqs(old, new)
		return diffSeq(a, b, opts.MaxCost)
	}

	if utf8.RuneCountInString(old)+utf8.RuneCountInString(new) <= opts.RuneThreshold {
		return diffSeq(runeSeq(old), runeSeq(new), opts.MaxCost)
	}
	a, b := lineSeqs(old, new)
	return refine(diffSeq(a, b, opts.MaxCost), opts)
}

// refine re-diffs each changed block of a line-level script at rune level
// when the block fits under the rune threshold.
func refine(edits []Edit, opts Options) []Edit {
	out := make([]Edit, 0, len(edits))
	var del, ins strings.Builder

	flush := func() {
		d, i := del.String(), ins.String()
		del.Reset()
		ins.Reset()
		if d != "" && i != "" && utf8.RuneCountInString(d)+utf8.RuneCountInString(i) <= opts.RuneThreshold {
			for _, e := range diffSeq(runeSeq(d), runeSeq(i), opts.MaxCost) {
				out = appendEdit(out, e.Kind, e.Text)
			}
			return
		}
		out = appendEdit(out, Delete, d)
		out = appendEdit(out, Insert, i)
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

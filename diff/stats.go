package diff

import "unicode/utf8"

// Summary counts the runes an edit script keeps, inserts and deletes.
type Summary struct {
	Equal    int `json:"equal"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
	Edits    int `json:"edits"`
}

// Changed reports whether the script contains any insertion or deletion.
func (s Summary) Changed() bool {
	return s.Inserted > 0 || s.Deleted > 0
}

// Stats summarizes edits.
func Stats(edits []Edit) Summary {
	var s Summary
	for _, e := range edits {
		n := utf8.RuneCountInString(e.Text)
		switch e.Kind {
		case Insert:
			s.Inserted += n
		case Delete:
			s.Deleted += n
		default:
			s.Equal += n
		}
	}
	s.Edits = len(edits)
	return s
}

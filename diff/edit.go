package diff

import (
	"fmt"
	"strings"
)

// Kind is the operation an Edit performs.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Equal, Insert, Delete:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("diff: invalid kind %d", int(k))
	}
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "equal":
		*k = Equal
	case "insert":
		*k = Insert
	case "delete":
		*k = Delete
	default:
		return fmt.Errorf("diff: unknown kind %q", b)
	}
	return nil
}

// Edit is one span of an edit script.
type Edit struct {
	Kind Kind   `json:"op"`
	Text string `json:"text"`
}

// OldText reconstructs the old string from the Equal and Delete spans.
func OldText(edits []Edit) string {
	var b strings.Builder
	for _, e := range edits {
		if e.Kind != Insert {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// NewText reconstructs the new string from the Equal and Insert spans.
func NewText(edits []Edit) string {
	var b strings.Builder
	for _, e := range edits {
		if e.Kind != Delete {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

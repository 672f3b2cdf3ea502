package server

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jonwraymond/textops/diff"
	"github.com/jonwraymond/textops/memo"
)

// ErrInvalidUTF8 is returned by PlainText for text that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("server: text is not valid UTF-8")

// PlainText renders text as escaped HTML paragraphs. Blank lines separate
// paragraphs and single newlines become <br />. The scope is ignored.
//
// Data carries "paragraphs" and "words" counts.
var PlainText = memo.TransformFunc(func(ctx context.Context, _ string, text string) (memo.Result, error) {
	if err := ctx.Err(); err != nil {
		return memo.Result{}, err
	}
	if !utf8.ValidString(text) {
		return memo.Result{}, ErrInvalidUTF8
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	paragraphs, words := 0, 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		paragraphs++
		words += len(strings.Fields(para))
		b.WriteString("<p>")
		b.WriteString(diff.HTMLEscape(para))
		b.WriteString("</p>\n")
	}

	return memo.Result{
		Output: b.String(),
		Data:   map[string]any{"paragraphs": paragraphs, "words": words},
	}, nil
})

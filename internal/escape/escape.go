// Package escape implements the backslash escaping used by ffmpeg filter graph
// syntax.
package escape

import "strings"

const (
	// ParamChars are special inside a single filter's parameter list.
	ParamChars = `\'=:`
	// GraphChars delimit filters and pads inside a -filter_complex argument.
	GraphChars = `\'[],;`
	// TextChars are special inside drawtext text, which also expands %{...}.
	TextChars = `\'%`
)

// Chars inserts a backslash before every rune of text that appears in charset.
// No other transformation is applied.
func Chars(text, charset string) string {
	if !strings.ContainsAny(text, charset) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if strings.ContainsRune(charset, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

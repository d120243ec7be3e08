package formatter

import (
	"strings"
	"unicode"
)

// RuneWidth returns the display width of a rune.
// ASCII characters have width 1, CJK characters have width 2.
func RuneWidth(r rune) int {
	if r < 128 {
		return 1
	}

	if unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) {
		return 2
	}
	return 1
}

// StringWidth returns the display width of a string
func StringWidth(s string) int {
	width := 0
	for _, r := range s {
		width += RuneWidth(r)
	}
	return width
}

// FitWidth truncates s to at most width display columns, marking the cut
// with "..", then right-pads it with spaces to exactly width.
func FitWidth(s string, width int) string {
	if StringWidth(s) > width {
		var b strings.Builder
		current := 0
		for _, r := range s {
			w := RuneWidth(r)
			if current+w > width-2 {
				break
			}
			b.WriteRune(r)
			current += w
		}
		s = b.String() + ".."
	}

	if pad := width - StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

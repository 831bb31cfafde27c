package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text into lines no wider than width display cells.
// Words longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		lineWidth := 0
		for _, word := range words {
			wordWidth := runewidth.StringWidth(word)
			for wordWidth > width {
				if lineWidth > 0 {
					lines = append(lines, line)
					line, lineWidth = "", 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				lines = append(lines, head)
				word = word[len(head):]
				wordWidth = runewidth.StringWidth(word)
			}
			if word == "" {
				continue
			}
			switch {
			case lineWidth == 0:
				line, lineWidth = word, wordWidth
			case lineWidth+1+wordWidth <= width:
				line += " " + word
				lineWidth += 1 + wordWidth
			default:
				lines = append(lines, line)
				line, lineWidth = word, wordWidth
			}
		}
		if lineWidth > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// hangingIndent wraps text after prefix and indents continuation lines to
// line up under the text.
func hangingIndent(prefix, text string, width int) []string {
	prefixWidth := runewidth.StringWidth(prefix)
	lines := wrapText(text, width-prefixWidth)
	if len(lines) == 0 {
		return []string{prefix}
	}
	pad := strings.Repeat(" ", prefixWidth)
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return lines
}

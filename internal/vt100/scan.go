package vt100

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// csiRun matches one or more back-to-back CSI sequences: an ESC [ (or the
// 8-bit CSI introducer) followed by parameter bytes 0x30-0x3F, intermediate
// bytes 0x20-0x2F and a final byte 0x40-0x7E.
var csiRun = regexp.MustCompile(`((\x1b\[|\x{9b})[\x30-\x3f]*[\x20-\x2f]*[\x40-\x7e])+`)

// Spans returns the [start, end) byte offsets of every escape run in s.
func Spans(s string) [][]int {
	return csiRun.FindAllStringIndex(s, -1)
}

// setsStyle reports whether s holds a select-graphic-rendition sequence.
// 'm' is never a parameter or intermediate byte, so any escape run that
// contains one ends an SGR.
func setsStyle(s string) bool {
	for _, span := range Spans(s) {
		if strings.IndexByte(s[span[0]:span[1]], 'm') >= 0 {
			return true
		}
	}
	return false
}

// VisibleLen counts the cells s occupies once escape runs are removed.
// Every rune is one cell.
func VisibleLen(s string) int {
	n, pos := 0, 0
	for _, span := range Spans(s) {
		n += utf8.RuneCountInString(s[pos:span[0]])
		pos = span[1]
	}
	return n + utf8.RuneCountInString(s[pos:])
}

// Lines splits text into display lines. A single trailing newline does not
// open an extra line and a carriage return before a newline is dropped.
func Lines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Measure returns the intrinsic size of text: the widest visible line by
// the number of lines. Empty text measures 0x0.
func Measure(text string) CharDims {
	if text == "" {
		return CharDims{}
	}
	lines := Lines(text)
	width := 0
	for _, l := range lines {
		width = max(width, VisibleLen(l))
	}
	return CharDims{Width: width, Height: len(lines)}
}

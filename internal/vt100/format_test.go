package vt100

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "TEST" interleaved with colour changes.
const colored = "T\x1b[33mE\x1b[96mS\x1b[39mT\x1b[39m"

func TestSliceKeepsLeadingSequences(t *testing.T) {
	assert.Equal(t, "T\x1b[33mE", Slice(colored, 2))
	assert.Equal(t, "T", Slice(colored, 1))
	assert.Equal(t, "T\x1b[33mE\x1b[96mS\x1b[39mT\x1b[39m  ", Slice(colored, 6))
}

func TestSliceWidthIsExact(t *testing.T) {
	lines := []string{
		"",
		"plain text",
		colored,
		"\x1b[1;31mred\x1b[0m and \x1b[4munderlined\x1b[24m",
		"\x1b[2J\x1b[H",
		"héllo wörld",
		"\u009b31mcsi8\u009b0m",
	}
	for _, line := range lines {
		for n := 0; n <= VisibleLen(line)+3; n++ {
			got := Slice(line, n)
			assert.Equal(t, n, VisibleLen(got), "line %q width %d -> %q", line, n, got)
		}
	}
}

func TestSlicePreservesSequences(t *testing.T) {
	line := "ab\x1b[38;5;196mcd\x1b[0mef"
	got := Slice(line, 4)
	assert.Equal(t, "ab\x1b[38;5;196mcd", got)
	for _, span := range Spans(got) {
		assert.Contains(t, line, got[span[0]:span[1]])
	}
}

func TestSliceIdempotentAtExactWidth(t *testing.T) {
	assert.Equal(t, "exact", Slice("exact", 5))
	assert.Equal(t, colored, Slice(colored, 4)+"\x1b[39m")
}

func TestSlicePlainSubstring(t *testing.T) {
	assert.Equal(t, "This is so", Slice("This is some raw text", 10))
	assert.Equal(t, "", Slice("anything", 0))
}

func TestSliceIncompleteSequenceIsLiteral(t *testing.T) {
	// An unterminated introducer is not an escape run, so its bytes count.
	got := Slice("ab\x1b[3", 5)
	assert.Equal(t, "ab\x1b[3", got)
}

func TestFormatColoredLine(t *testing.T) {
	got := VT100Formatter{}.Format(colored, Dims(2, 1), At(1, 1))
	assert.Equal(t, "\x1b[1;1HT\x1b[33mE\x1b[m", got)
}

func TestFormatResetsStyleCutOffAtEdge(t *testing.T) {
	got := VT100Formatter{}.Format("\x1b[31mred\x1b[0m\nplain", Dims(3, 2), At(4, 2))
	assert.Equal(t, "\x1b[2;4H\x1b[31mred\x1b[m"+"\x1b[3;4Hpla", got)
}

func TestFormatLeavesNonStyleSequencesAlone(t *testing.T) {
	got := VT100Formatter{}.Format("\x1b[Kab", Dims(2, 1), At(1, 1))
	assert.Equal(t, "\x1b[1;1H\x1b[Kab", got)
}

func TestFormatConfinesClear(t *testing.T) {
	got := VT100Formatter{}.Format("\x1b[2JThis is new\nmultiline text", Dims(2, 2), At(1, 1))
	want := "\x1b[1;1H" + "\x1b[1;1H  \x1b[2;1H  " + "\x1b[1;1H" + "Th" + "\x1b[2;1Hmu"
	assert.Equal(t, want, got)
}

func TestFormatAddressesEveryLine(t *testing.T) {
	got := VT100Formatter{}.Format("some\ntext\nmore", Dims(4, 2), At(3, 5))
	assert.Equal(t, "\x1b[5;3Hsome\x1b[6;3Htext", got)
}

func TestFormatPadsShortLines(t *testing.T) {
	got := VT100Formatter{}.Format("a\nbcd\n", Dims(3, 5), At(1, 1))
	assert.Equal(t, "\x1b[1;1Ha  \x1b[2;1Hbcd", got)
}

func TestFormatZeroWidth(t *testing.T) {
	got := VT100Formatter{}.Format("text", Dims(0, 1), At(2, 2))
	assert.Equal(t, "\x1b[2;2H", got)
}

func TestPlainFormatterStripsSequences(t *testing.T) {
	got := PlainFormatter{}.Format(colored, Dims(3, 1), At(1, 1))
	assert.Equal(t, "\x1b[1;1HTES", got)
}

func TestClearRegion(t *testing.T) {
	got := ClearRegion(At(1, 1), Dims(3, 2))
	assert.Equal(t, "\x1b[1;1H   \x1b[2;1H   ", got)
	assert.Empty(t, ClearRegion(At(1, 1), Dims(0, 4)))
}

func TestMeasure(t *testing.T) {
	size := Measure("This is some raw text\nwith multiple lines\nand then another line.")
	assert.Equal(t, Dims(22, 3), size)

	assert.Equal(t, Dims(4, 1), Measure(colored))
	assert.Equal(t, CharDims{}, Measure(""))
	assert.Equal(t, Dims(2, 2), Measure("ab\r\ncd\n"))
}

func TestVisibleLenMatchesStrip(t *testing.T) {
	for _, s := range []string{colored, "plain", "\x1b[1;2Hx\x1b[K"} {
		require.Equal(t, len([]rune(ansi.Strip(s))), VisibleLen(s), s)
	}
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Lines("a\r\nb\n"))
	assert.Equal(t, []string{""}, Lines(""))
	assert.Equal(t, 3, len(Lines(strings.Repeat("x\n", 3))))
}

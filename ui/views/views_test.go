package views

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hex/internal/vt100"
)

const rawText = "This is some raw text\nwith multiple lines\nand then another line."

// tenByTwo measures exactly 10x2.
const tenByTwo = "0123456789\nabcdefghij"

var (
	screen = vt100.Dims(100, 100)
	origin = vt100.At(1, 1)
)

func textWidget(width, height DimConstraint, text string, opts ...Option) *Widget {
	w := NewWidget(width, height, opts...)
	w.UpdateContent(text)
	return w
}

// paint applies a frame's cursor moves and text to a blank grid. Escape
// sequences other than cursor positioning are skipped.
func paint(frame string, width, height int) []string {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	row, col := 0, 0
	rs := []rune(frame)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\x1b' && i+1 < len(rs) && rs[i+1] == '[' {
			j := i + 2
			for j < len(rs) && (rs[j] < 0x40 || rs[j] > 0x7e) {
				j++
			}
			if j < len(rs) && rs[j] == 'H' {
				var r, c int
				fmt.Sscanf(string(rs[i+2:j]), "%d;%d", &r, &c)
				row, col = r-1, c-1
			}
			i = j
			continue
		}
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = rs[i]
		}
		col++
	}
	out := make([]string, height)
	for i, line := range grid {
		out[i] = strings.TrimRight(string(line), " ")
	}
	return out
}

func TestDimConstraintOrdering(t *testing.T) {
	assert.True(t, Fixed(0).Less(Fixed(1)))
	assert.False(t, Fixed(1).Less(UpTo(1)))
	assert.False(t, UpTo(1).Less(Fixed(1)))
	assert.True(t, Fixed(1).Less(UpTo(2)))
	assert.True(t, Fixed(1000).Less(WrapContent))
	assert.False(t, WrapContent.Less(WrapContent))
}

func TestMinConstraint(t *testing.T) {
	tests := []struct {
		name string
		a, b DimConstraint
		want DimConstraint
	}{
		{"smaller cap wins", Fixed(5), UpTo(3), UpTo(3)},
		{"wrap loses to fixed", WrapContent, Fixed(7), Fixed(7)},
		{"wrap loses on the right too", UpTo(9), WrapContent, UpTo(9)},
		{"tie keeps the left operand", UpTo(4), Fixed(4), UpTo(4)},
		{"both wrap", WrapContent, WrapContent, WrapContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinConstraint(tt.a, tt.b))
		})
	}
}

func TestDesiredSize(t *testing.T) {
	assert.Equal(t, 0, WrapContent.DesiredSize())
	assert.Equal(t, 8, Fixed(8).DesiredSize())
	assert.Equal(t, 3, UpTo(3).DesiredSize())
	assert.Equal(t, 0, Fixed(-2).DesiredSize())
}

func TestFixedWidgetClipsText(t *testing.T) {
	w := textWidget(Fixed(10), Fixed(2), rawText)
	assert.Equal(t, vt100.Dims(10, 2), w.Inflate(screen, origin))
	assert.Equal(t, 10, w.Width())
	assert.Equal(t, 2, w.Height())
}

func TestWrapWidgetTakesTextSize(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, rawText)
	assert.Equal(t, vt100.Dims(22, 3), w.Inflate(screen, origin))
}

func TestWidgetShrinksToParent(t *testing.T) {
	w := textWidget(Fixed(10), WrapContent, rawText)
	assert.Equal(t, vt100.Dims(4, 1), w.Inflate(vt100.Dims(4, 1), origin))
}

func TestFixedWidgetNeverExceedsContent(t *testing.T) {
	w := textWidget(Fixed(40), Fixed(10), "short")
	assert.Equal(t, vt100.Dims(5, 1), w.Inflate(screen, origin))
}

func TestEmptyWidgetHasNoSize(t *testing.T) {
	w := NewWidget(Fixed(10), Fixed(2))
	assert.Equal(t, CharDims{}, w.Inflate(screen, origin))
}

func TestWidgetRender(t *testing.T) {
	w := textWidget(Fixed(4), Fixed(2), "some\ntext")
	w.Inflate(screen, origin)
	assert.Equal(t, "\x1b[1;1Hsome\x1b[2;1Htext", w.Render())
}

func TestCleanWidgetRendersNothing(t *testing.T) {
	w := textWidget(Fixed(4), Fixed(2), "some\ntext")
	w.Inflate(screen, origin)
	require.NotEmpty(t, w.Render())
	w.Wash()

	assert.False(t, w.Dirty())
	w.Inflate(screen, origin)
	assert.Empty(t, w.Render())
	assert.Equal(t, "some\ntext", w.Text())
}

func TestInvisibleWidget(t *testing.T) {
	w := textWidget(Fixed(10), Fixed(2), rawText, Hidden())
	assert.Equal(t, CharDims{}, w.Inflate(screen, origin))
	assert.Empty(t, w.Render())
	assert.False(t, w.Visible())
}

func TestWidgetMoveMarksDirtyAndClearsOldRegion(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, "ab")
	w.Inflate(screen, origin)
	w.Render()
	w.Wash()

	w.Inflate(screen, vt100.At(3, 2))
	require.True(t, w.Dirty())
	assert.Equal(t, "\x1b[1;1H  "+"\x1b[2;3Hab", w.Render())
}

func TestWidgetShrinkClearsOldRegion(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, "abc\ndef")
	w.Inflate(screen, origin)
	w.Wash()

	w.UpdateContent("x")
	assert.Equal(t, vt100.Dims(1, 1), w.Inflate(screen, origin))
	assert.Equal(t, "\x1b[1;1H   \x1b[2;1H   "+"\x1b[1;1Hx", w.Render())
}

func TestWidgetLastWriteWins(t *testing.T) {
	w := NewWidget(WrapContent, WrapContent)
	w.UpdateContent("first")
	w.UpdateContent("second")
	assert.Equal(t, "second", w.Text())
}

func TestWidgetInvalidate(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, "ab")
	w.Inflate(screen, origin)
	w.Wash()
	w.Invalidate()
	assert.True(t, w.Dirty())
	assert.Equal(t, "\x1b[1;1Hab", w.Render())
}

func TestPlainFormatterOption(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, "\x1b[31mred\x1b[0m", WithFormatter(vt100.PlainFormatter{}))
	w.Inflate(screen, origin)
	assert.Equal(t, "\x1b[1;1Hred", w.Render())
}

func TestVerticalLayoutOfFixedWidgets(t *testing.T) {
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))

	assert.Equal(t, vt100.Dims(10, 4), l.Inflate(screen, origin))
}

func TestVerticalLayoutMixedWidgets(t *testing.T) {
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))
	l.AddChild(textWidget(WrapContent, WrapContent, rawText))

	assert.Equal(t, vt100.Dims(22, 5), l.Inflate(screen, origin))
}

func TestHorizontalLayoutOfFixedWidgets(t *testing.T) {
	l := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))

	assert.Equal(t, vt100.Dims(20, 2), l.Inflate(screen, origin))
}

func TestHorizontalLayoutMixedWidgets(t *testing.T) {
	l := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	l.AddChild(textWidget(Fixed(10), Fixed(2), rawText))
	l.AddChild(textWidget(WrapContent, WrapContent, rawText))

	assert.Equal(t, vt100.Dims(32, 3), l.Inflate(screen, origin))
}

func TestWrapLayoutsOfIntrinsicWidgets(t *testing.T) {
	vertical := NewLinearLayout(Vertical, WrapContent, WrapContent)
	for range 2 {
		vertical.AddChild(textWidget(WrapContent, WrapContent, tenByTwo))
	}
	assert.Equal(t, vt100.Dims(10, 4), vertical.Inflate(screen, origin))

	horizontal := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	for range 3 {
		horizontal.AddChild(textWidget(WrapContent, WrapContent, tenByTwo))
	}
	assert.Equal(t, vt100.Dims(30, 2), horizontal.Inflate(screen, origin))
}

func TestLayoutAssignsRunningOrigins(t *testing.T) {
	first := textWidget(WrapContent, WrapContent, tenByTwo)
	second := textWidget(WrapContent, WrapContent, tenByTwo)
	row := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	row.AddChild(first)
	row.AddChild(second)

	below := textWidget(WrapContent, WrapContent, "x")
	col := NewLinearLayout(Vertical, WrapContent, WrapContent)
	col.AddChild(row)
	col.AddChild(below)

	col.Inflate(screen, vt100.At(3, 4))
	assert.Equal(t, vt100.At(3, 4), first.Location())
	assert.Equal(t, vt100.At(13, 4), second.Location())
	assert.Equal(t, vt100.At(3, 6), below.Location())
}

func TestLayoutNeverExceedsItsBudget(t *testing.T) {
	l := NewLinearLayout(Vertical, WrapContent, Fixed(3))
	first := textWidget(WrapContent, WrapContent, tenByTwo)
	second := textWidget(WrapContent, WrapContent, tenByTwo)
	l.AddChild(first)
	l.AddChild(second)

	assert.Equal(t, vt100.Dims(10, 3), l.Inflate(screen, origin))
	assert.Equal(t, 1, second.Height())

	assert.Equal(t, vt100.Dims(10, 2), l.Inflate(vt100.Dims(100, 2), origin))
	assert.Equal(t, 0, second.Height())
}

func TestEmptyLayout(t *testing.T) {
	l := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	assert.Equal(t, CharDims{}, l.Inflate(screen, origin))
	assert.Empty(t, l.Render())
	assert.False(t, l.Dirty())
}

func TestInvisibleLayout(t *testing.T) {
	l := NewLinearLayout(Horizontal, Fixed(10), Fixed(10), Hidden())
	l.AddChild(textWidget(WrapContent, WrapContent, tenByTwo))
	assert.Equal(t, CharDims{}, l.Inflate(screen, origin))
	assert.Empty(t, l.Render())
}

func TestLayoutDirtyIsDerived(t *testing.T) {
	w := textWidget(WrapContent, WrapContent, "ab")
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(w)
	l.Inflate(screen, origin)
	require.True(t, l.Dirty())

	assert.Equal(t, "\x1b[1;1Hab", l.Render())
	l.Wash()
	assert.False(t, l.Dirty())
	assert.Empty(t, l.Render())

	l.UpdateContent("ignored")
	assert.False(t, l.Dirty())

	w.UpdateContent("cd")
	assert.True(t, l.Dirty())
}

func TestLayoutRendersOnlyDirtyChildren(t *testing.T) {
	a := textWidget(WrapContent, WrapContent, "aa")
	b := textWidget(WrapContent, WrapContent, "bb")
	l := NewLinearLayout(Horizontal, WrapContent, WrapContent)
	l.AddChild(a)
	l.AddChild(b)
	l.Inflate(screen, origin)
	l.Render()
	l.Wash()

	b.UpdateContent("BB")
	l.Inflate(screen, origin)
	assert.Equal(t, "\x1b[1;3HBB", l.Render())
}

func TestInteractiveWidgetTakesParentSpace(t *testing.T) {
	w := NewInteractiveWidget(WrapContent, Fixed(5))
	assert.Equal(t, vt100.Dims(30, 5), w.Inflate(vt100.Dims(30, 20), origin))
}

func TestInteractiveWidgetPassesThroughTranslated(t *testing.T) {
	w := NewInteractiveWidget(Fixed(3), Fixed(2))
	w.Inflate(screen, vt100.At(5, 2))
	require.Equal(t, "\x1b[2;5H   \x1b[3;5H   ", w.Render())
	w.Wash()
	assert.False(t, w.Dirty())

	w.UpdateContent("\x1b[1;1Hhi\x1b[3")
	assert.True(t, w.Dirty())
	assert.Equal(t, "\x1b[2;5Hhi", w.Render())
	assert.Equal(t, "\x1b[3", w.Pending())
	w.Wash()

	w.UpdateContent("1mred")
	assert.Equal(t, "\x1b[31mred", w.Render())
}

func TestInvisibleInteractiveWidget(t *testing.T) {
	w := NewInteractiveWidget(Fixed(3), Fixed(2), Hidden())
	assert.Equal(t, CharDims{}, w.Inflate(screen, origin))
	w.UpdateContent("text")
	assert.Empty(t, w.Render())
}

func TestWalkSkipsPrunedSubtrees(t *testing.T) {
	leaf := NewWidget(WrapContent, WrapContent, WithID("clock"))
	l := NewLinearLayout(Vertical, WrapContent, WrapContent, WithID("root"))
	inner := NewLinearLayout(Horizontal, WrapContent, WrapContent, WithID("inner"))
	inner.AddChild(leaf)
	l.AddChild(inner)

	var seen []ViewID
	walk(l, func(v View) bool { seen = append(seen, v.ID()); return true })
	assert.Equal(t, []ViewID{"root", "inner", "clock"}, seen)

	seen = nil
	walk(l, func(v View) bool { seen = append(seen, v.ID()); return v.ID() != "inner" })
	assert.Equal(t, []ViewID{"root", "inner"}, seen)
}

func TestGrowingSiblingKeepsNeighbourVisible(t *testing.T) {
	a := textWidget(WrapContent, WrapContent, "a")
	b := textWidget(WrapContent, WrapContent, "b")
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(a)
	l.AddChild(b)

	l.Inflate(vt100.Dims(5, 4), origin)
	frame := l.Render()
	l.Wash()
	require.Equal(t, []string{"a", "b", "", ""}, paint(frame, 5, 4))

	a.UpdateContent("A\nA")
	l.Inflate(vt100.Dims(5, 4), origin)
	next := l.Render()
	assert.Equal(t, []string{"A", "A", "b", ""}, paint(frame+next, 5, 4))
}

func TestShrinkingSiblingClearsBeforeDrawing(t *testing.T) {
	a := textWidget(WrapContent, WrapContent, "A\nA")
	b := textWidget(WrapContent, WrapContent, "bb")
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(a)
	l.AddChild(b)

	l.Inflate(vt100.Dims(5, 4), origin)
	frame := l.Render()
	l.Wash()
	require.Equal(t, []string{"A", "A", "bb", ""}, paint(frame, 5, 4))

	a.UpdateContent("a")
	l.Inflate(vt100.Dims(5, 4), origin)
	frame += l.Render()
	assert.Equal(t, []string{"a", "bb", "", ""}, paint(frame, 5, 4))
}

func TestMovedInteractiveWidgetKeepsSiblingVisible(t *testing.T) {
	a := textWidget(WrapContent, WrapContent, "a")
	w := NewInteractiveWidget(Fixed(2), Fixed(1))
	l := NewLinearLayout(Vertical, WrapContent, WrapContent)
	l.AddChild(a)
	l.AddChild(w)

	l.Inflate(vt100.Dims(5, 4), origin)
	frame := l.Render()
	l.Wash()
	w.UpdateContent("\x1b[1;1Hzz")
	frame += l.Render()
	l.Wash()
	require.Equal(t, []string{"a", "zz", "", ""}, paint(frame, 5, 4))

	a.UpdateContent("A\nA")
	l.Inflate(vt100.Dims(5, 4), origin)
	frame += l.Render()
	assert.Equal(t, []string{"A", "A", "", ""}, paint(frame, 5, 4))
}

func TestParseOrientation(t *testing.T) {
	assert.Equal(t, Vertical, ParseOrientation("vertical"))
	assert.Equal(t, Horizontal, ParseOrientation("horizontal"))
	assert.Equal(t, Horizontal, ParseOrientation(""))
	assert.Equal(t, "vertical", Vertical.String())
}

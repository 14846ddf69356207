package cli

import "github.com/panerepl/panerepl/pkg/cli/term"

// vscrollbar renders a one-column scrollbar for a view showing lines
// [low, high) out of total.
type vscrollbar struct {
	total, low, high int
}

const (
	thumbStyle  = "35;7"
	troughStyle = "35"
)

func (v vscrollbar) render(height int) *term.Buffer {
	posLow, posHigh := findScrollInterval(v.total, v.low, v.high, height)
	bb := term.NewBufferBuilder(1)
	for i := 0; i < height; i++ {
		if i > 0 {
			bb.Newline()
		}
		if posLow <= i && i < posHigh {
			bb.WriteStringSGR(" ", thumbStyle)
		} else {
			bb.WriteStringSGR("│", troughStyle)
		}
	}
	return bb.Buffer()
}

// findScrollInterval maps [low, high) out of n onto [0, height). The thumb is
// always at least one row tall.
func findScrollInterval(n, low, high, height int) (int, int) {
	if n <= 0 {
		return 0, height
	}
	f := func(i int) int {
		return int(float64(i)/float64(n)*float64(height) + 0.5)
	}
	scrollLow, scrollHigh := f(low), f(high)
	if scrollLow == scrollHigh {
		if scrollHigh == height {
			scrollLow--
		} else {
			scrollHigh++
		}
	}
	return scrollLow, scrollHigh
}

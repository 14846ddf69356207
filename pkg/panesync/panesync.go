// Package panesync keeps the scroll positions of the prompt pane and the
// transcript pane in step.
package panesync

import "math"

// Scroller is a scrollable view whose position is expressed as the fraction
// of the content above the first visible line, as text widgets report it.
type Scroller interface {
	YView() float64
	SetYView(f float64)
	// OnYViewChange registers a callback that is called after the position
	// changes, including changes made by SetYView.
	OnYViewChange(func(f float64))
}

// Linker propagates scroll position changes between two Scrollers.
type Linker struct {
	a, b Scroller
	// Depth of propagation in progress. Setting the position of one view
	// fires its own change notification synchronously; those nested
	// notifications must not propagate back.
	depth int
}

// Link links the scroll positions of a and b, and aligns b with a
// immediately.
func Link(a, b Scroller) *Linker {
	l := &Linker{a: a, b: b}
	a.OnYViewChange(func(f float64) { l.propagate(b, f) })
	b.OnYViewChange(func(f float64) { l.propagate(a, f) })
	l.propagate(b, a.YView())
	return l
}

// Depth returns the current propagation depth. It is 0 whenever no
// propagation is running.
func (l *Linker) Depth() int { return l.depth }

func (l *Linker) propagate(to Scroller, f float64) {
	if l.depth > 0 {
		return
	}
	l.depth++
	defer func() { l.depth-- }()
	to.SetYView(f)
}

// View is a vertical viewport over a sequence of lines.
type View struct {
	lines     func() int
	height    int
	first     float64
	listeners []func(float64)
}

// NewView returns a View over content whose line count is reported by lines.
// The View shows height lines at a time.
func NewView(lines func() int, height int) *View {
	return &View{lines: lines, height: max(height, 1)}
}

// Height returns the number of visible lines.
func (v *View) Height() int { return v.height }

// SetHeight changes the number of visible lines, keeping the top line where
// possible.
func (v *View) SetHeight(h int) {
	top := v.Top()
	v.height = max(h, 1)
	v.setTop(top)
}

// YView returns the fraction of lines above the first visible line.
func (v *View) YView() float64 { return v.first }

// SetYView moves the view so that fraction f of the lines are above it. The
// fraction is clamped to the range where the view stays filled, and
// listeners are only called when the position actually changes.
func (v *View) SetYView(f float64) {
	n := v.lines()
	maxF := 0.0
	if n > v.height {
		maxF = float64(n-v.height) / float64(n)
	}
	f = math.Max(0, math.Min(f, maxF))
	if f == v.first {
		return
	}
	v.first = f
	for _, cb := range v.listeners {
		cb(f)
	}
}

// OnYViewChange implements Scroller.
func (v *View) OnYViewChange(cb func(float64)) {
	v.listeners = append(v.listeners, cb)
}

// Top returns the 1-based first visible line.
func (v *View) Top() int {
	return int(math.Round(v.first*float64(v.lines()))) + 1
}

func (v *View) setTop(line int) {
	n := v.lines()
	if n == 0 {
		return
	}
	v.SetYView(float64(line-1) / float64(n))
}

// Refresh re-clamps the position after the number of lines has changed.
func (v *View) Refresh() { v.SetYView(v.first) }

// Scroll moves the view down by n lines, or up when n is negative.
func (v *View) Scroll(n int) { v.setTop(v.Top() + n) }

// See scrolls the minimum amount needed to make line visible.
func (v *View) See(line int) {
	top := v.Top()
	switch {
	case line < top:
		v.setTop(line)
	case line >= top+v.height:
		v.setTop(line - v.height + 1)
	}
}

// Visible returns the 1-based range [from, to] of visible lines.
func (v *View) Visible() (from, to int) {
	top := v.Top()
	return top, min(top+v.height-1, v.lines())
}

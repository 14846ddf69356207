package cli

import "sync"

// Buffer size of the input channel. Terminal events arrive in bursts when
// text is pasted without bracketed paste.
const inputChSize = 128

// loop serializes terminal events, signals and redraws. All callbacks are
// called from the goroutine running Run.
type loop struct {
	inputCh  chan event
	handleCb func(event)
	redrawCb func(redrawFlag)

	redrawCh    chan struct{}
	redrawFull  bool
	redrawMutex sync.Mutex

	returnCh chan error
	doneCh   chan struct{}
}

// A terminal event, a signal, or an error from reading the terminal.
type event any

type redrawFlag uint

const (
	// fullRedraw is set on the first redraw and when Redraw has been called
	// with full = true.
	fullRedraw redrawFlag = 1 << iota
	// finalRedraw is set on the last redraw before Run returns.
	finalRedraw
)

func newLoop() *loop {
	return &loop{
		inputCh:  make(chan event, inputChSize),
		handleCb: func(event) {},
		redrawCb: func(redrawFlag) {},

		redrawCh:   make(chan struct{}, 1),
		redrawFull: true,

		returnCh: make(chan error, 1),
		doneCh:   make(chan struct{}),
	}
}

// HandleCb sets the handle callback. It must be called before Run.
func (lp *loop) HandleCb(cb func(event)) { lp.handleCb = cb }

// RedrawCb sets the redraw callback. It must be called before Run.
func (lp *loop) RedrawCb(cb func(redrawFlag)) { lp.redrawCb = cb }

// Redraw requests a redraw. It never blocks.
func (lp *loop) Redraw(full bool) {
	lp.redrawMutex.Lock()
	defer lp.redrawMutex.Unlock()
	if full {
		lp.redrawFull = true
	}
	select {
	case lp.redrawCh <- struct{}{}:
	default:
	}
}

// Input provides an event. It blocks while the input buffer is full, and
// returns false without delivering the event once Run has returned.
func (lp *loop) Input(ev event) bool {
	select {
	case lp.inputCh <- ev:
		return true
	case <-lp.doneCh:
		return false
	}
}

// Return requests Run to return err. Only the first call in a loop has an
// effect. It never blocks.
func (lp *loop) Return(err error) {
	select {
	case lp.returnCh <- err:
	default:
	}
}

// HasReturned returns whether Return has been called.
func (lp *loop) HasReturned() bool { return len(lp.returnCh) == 1 }

// Run runs the loop until Return is called. It can only be called once.
func (lp *loop) Run() error {
	defer close(lp.doneCh)
	for {
		var flag redrawFlag
		if lp.extractRedrawFull() {
			flag |= fullRedraw
		}
		lp.redrawCb(flag)
		select {
		case ev := <-lp.inputCh:
			// Consume all pending events before redrawing.
		consumeAll:
			for {
				lp.handleCb(ev)
				select {
				case err := <-lp.returnCh:
					lp.redrawCb(finalRedraw)
					return err
				default:
				}
				select {
				case ev = <-lp.inputCh:
				default:
					break consumeAll
				}
			}
		case err := <-lp.returnCh:
			lp.redrawCb(finalRedraw)
			return err
		case <-lp.redrawCh:
		}
	}
}

func (lp *loop) extractRedrawFull() bool {
	lp.redrawMutex.Lock()
	defer lp.redrawMutex.Unlock()
	full := lp.redrawFull
	lp.redrawFull = false
	return full
}

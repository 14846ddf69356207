//go:build unix

package sys

import (
	"os"
	"os/signal"
	"syscall"
)

func notifySignals() (chan os.Signal, func()) {
	sigCh := make(chan os.Signal, sigsChanBufferSize)
	// In raw mode the terminal does not generate SIGINT; SIGTERM and SIGHUP
	// still arrive when the console is killed or its terminal goes away.
	signal.Notify(sigCh, syscall.SIGWINCH, syscall.SIGTERM, syscall.SIGHUP)
	return sigCh, func() { signal.Stop(sigCh) }
}

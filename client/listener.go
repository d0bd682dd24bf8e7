package client

import (
	"io"
	"sync"

	"github.com/ekmixon/ncclient/devices"
)

// Device handlers can register listeners to observe the raw byte stream
// arriving from the server, typically to drive vendor specific parsing.

// listenerFanout duplicates raw transport reads to registered listeners.
type listenerFanout struct {
	mu        sync.Mutex
	listeners []devices.Listener
}

func (lf *listenerFanout) add(l devices.Listener) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.listeners = append(lf.listeners, l)
}

// remove takes a listener out of the fanout. Removing a listener that was
// never added has no effect.
func (lf *listenerFanout) remove(l devices.Listener) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	for i, candidate := range lf.listeners {
		if candidate == l {
			lf.listeners = append(lf.listeners[:i], lf.listeners[i+1:]...)
			return
		}
	}
}

func (lf *listenerFanout) notify(p []byte) {
	lf.mu.Lock()
	targets := append([]devices.Listener(nil), lf.listeners...)
	lf.mu.Unlock()

	for _, l := range targets {
		l.Received(p)
	}
}

// observedReader passes transport reads through the fanout on their way to
// the decoder.
type observedReader struct {
	r  io.Reader
	lf *listenerFanout
}

func (or *observedReader) Read(p []byte) (n int, err error) {
	n, err = or.r.Read(p)
	if n > 0 {
		or.lf.notify(p[:n])
	}
	return n, err
}

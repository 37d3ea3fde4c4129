package pipeline

import "sync"

// Ack is the single-fire aiThinkingComplete signal for one run. The
// subscriber resolves it when it has finished narrating the thinking text;
// only the first Resolve counts.
type Ack struct {
	once sync.Once
	done chan struct{}
}

func NewAck() *Ack {
	return &Ack{done: make(chan struct{})}
}

// Resolve fires the signal and reports whether this call was the first.
func (a *Ack) Resolve() bool {
	fired := false
	a.once.Do(func() {
		fired = true
		close(a.done)
	})
	return fired
}

// Done is closed once the signal has fired.
func (a *Ack) Done() <-chan struct{} {
	return a.done
}

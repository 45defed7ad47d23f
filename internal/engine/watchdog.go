package engine

import "time"

// watchdog enqueues a liveness sweep on a fixed interval until the
// engine closes. The sweep itself runs on the event loop so it is
// serialized with every other reconciliation input.
func (e *Engine) watchdog() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.enqueue(sweepEvent{})
		case <-e.done:
			return
		}
	}
}

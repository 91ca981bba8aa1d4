package relay

// run is the delivery worker. It sleeps on the wake condition until a push
// signals pending work or Stop clears the running flag, then drains every
// channel once per wake-up. The loop only terminates through Stop; delivery
// errors are absorbed inside the fan-out so one bad sink can never silence
// every channel.
func (r *Relay) run() {
	defer r.stopOnce.Do(func() { close(r.stopped) })
	for {
		r.wakeMu.Lock()
		for !r.pending && r.running {
			r.wake.Wait()
		}
		if !r.running {
			r.wakeMu.Unlock()
			return
		}
		r.pending = false
		r.wakeMu.Unlock()

		r.drainPass()
	}
}

// drainPass runs one bounded drain over every registered channel.
func (r *Relay) drainPass() {
	clients := r.clientSnapshot()
	for _, ch := range r.channelList() {
		r.drainChannel(ch, clients)
	}
}

// drainChannel processes at most the number of frames that were buffered when
// the pass started, so a producer pushing concurrently cannot pin the worker
// to one channel. Empty payloads are discarded without a delivery attempt.
// A "not delivered" result parks the channel until the next wake-up rather
// than busy-spinning against a channel with no ready receivers.
func (r *Relay) drainChannel(ch *Channel, clients []*client) {
	budget := ch.depth()
	for i := 0; i < budget; i++ {
		front, ok := ch.peek()
		if !ok {
			return
		}
		if len(front.Data) == 0 {
			ch.popFront()
			continue
		}

		var delivered bool
		if ch.Kind == KindData {
			delivered = r.deliverData(ch, front, clients)
		} else {
			// Media is latest-wins and never retried: one attempt always
			// consumes the front slot, whatever the sinks made of it.
			r.deliverMedia(ch, clients)
			delivered = true
		}
		if !delivered {
			return
		}
		ch.popFront()
	}
}

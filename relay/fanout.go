package relay

import "log"

// deliverMedia sends the channel's newest buffered frame to every connected
// receiver with an open sink for the channel, independent of the scheduler's
// drain pointer. When the frame is a sync unit the cached parameter sets go
// out first, each as its own send, so a receiver that joined mid-stream can
// decode the IDR. Every outgoing packet is a copy with the channel's payload
// type and SSRC stamped in; the buffered frame itself stays untouched. A
// failing sink is logged and skipped, never aborting the rest of the fan-out.
func (r *Relay) deliverMedia(ch *Channel, clients []*client) {
	batch, ok := ch.takeLatest()
	if !ok {
		return
	}

	for _, c := range clients {
		sink, ok := c.sinks[ch.ID]
		if !ok || !sink.IsOpen() {
			continue
		}
		for _, unit := range batch.units {
			pkt := append([]byte(nil), unit...)
			rewriteRTPHeader(pkt, ch.PayloadType, ch.SSRC)
			if err := sink.Send(pkt); err != nil {
				log.Printf("relay: media send on %s failed: %v", ch.ID, err)
				ch.errors.Add(1)
				break
			}
			ch.sent.Add(1)
		}
	}
}

// deliverData broadcasts the frame verbatim to every open data sink and
// reports whether at least one receiver accepted it. The scheduler dequeues
// only on success, so a message pushed while no receiver is ready stays
// buffered (up to the channel's capacity) until one shows up. This is
// broadcast-once, not per-client acknowledgment: a receiver that joins after
// the first successful send never sees the message again.
func (r *Relay) deliverData(ch *Channel, f Frame, clients []*client) bool {
	delivered := false
	for _, c := range clients {
		sink, ok := c.sinks[ch.ID]
		if !ok || !sink.IsOpen() {
			continue
		}
		if err := sink.Send(f.Data); err != nil {
			log.Printf("relay: data send on %s failed: %v", ch.ID, err)
			ch.errors.Add(1)
			continue
		}
		ch.sent.Add(1)
		delivered = true
	}
	return delivered
}

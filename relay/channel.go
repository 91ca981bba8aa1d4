package relay

import (
	"sync"
	"sync/atomic"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindData  Kind = "data"
)

// DefaultMaxFrames bounds a channel's buffer when the caller passes no limit.
const DefaultMaxFrames = 200

// Frame is one encoded media frame or one data-channel message. Frames are
// copied into the channel buffer on push and never mutated afterwards;
// delivery rewrites into its own copy.
type Frame struct {
	Data        []byte
	Keyframe    bool
	TimestampUs int64

	seq  uint64 // assigned by push, per channel, starting at 1
	sync bool   // video only: payload classified as an IDR unit
}

// ChannelStats is a point-in-time snapshot of a channel's delivery counters.
type ChannelStats struct {
	Pushed  uint64 // frames accepted into the buffer
	Evicted uint64 // frames dropped by drop-oldest eviction
	Sent    uint64 // successful sink sends
	Errors  uint64 // failed sink sends
}

// Channel is one named media or data stream with a bounded FIFO of pending
// frames. The buffer and the parameter-set cache are guarded by the channel's
// own mutex so pushes to different channels never contend.
type Channel struct {
	ID          string
	Kind        Kind
	Codec       string
	PayloadType uint8
	SSRC        uint32

	mu        sync.Mutex
	buf       []Frame
	maxFrames int
	nextSeq   uint64
	lastSent  uint64 // seq of the newest media frame already written to sinks
	cache     *paramCache

	pushed  atomic.Uint64
	evicted atomic.Uint64
	sent    atomic.Uint64
	errors  atomic.Uint64
}

func newChannel(id string, kind Kind, codec string, maxFrames int) *Channel {
	ch := &Channel{
		ID:          id,
		Kind:        kind,
		Codec:       codec,
		PayloadType: payloadTypeFor(codec),
		SSRC:        newSSRC(),
		maxFrames:   maxFrames,
	}
	if kind == KindVideo {
		ch.cache = &paramCache{}
	}
	return ch
}

// push classifies a video payload, then appends the frame with drop-oldest
// eviction. The classification must happen before the append so a freshly
// cached parameter set is visible to the delivery that consumes this frame.
func (ch *Channel) push(data []byte, keyframe bool, tsUs int64) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	f := Frame{
		Data:        append([]byte(nil), data...),
		Keyframe:    keyframe,
		TimestampUs: tsUs,
	}
	if ch.cache != nil {
		f.sync = ch.cache.observe(ch.Codec, f.Data)
	}

	if len(ch.buf) >= ch.maxFrames {
		ch.buf = ch.buf[1:]
		ch.evicted.Add(1)
	}
	ch.nextSeq++
	f.seq = ch.nextSeq
	ch.buf = append(ch.buf, f)
	ch.pushed.Add(1)
}

// depth returns the number of buffered frames, used as the per-pass budget.
func (ch *Channel) depth() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.buf)
}

// peek returns the oldest buffered frame without removing it.
func (ch *Channel) peek() (Frame, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if len(ch.buf) == 0 {
		return Frame{}, false
	}
	return ch.buf[0], true
}

// popFront removes the oldest buffered frame.
func (ch *Channel) popFront() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if len(ch.buf) > 0 {
		ch.buf = ch.buf[1:]
	}
}

// Frames returns a copy of the buffered frames in push order.
func (ch *Channel) Frames() []Frame {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]Frame, len(ch.buf))
	copy(out, ch.buf)
	return out
}

// Stats returns the channel's delivery counters.
func (ch *Channel) Stats() ChannelStats {
	return ChannelStats{
		Pushed:  ch.pushed.Load(),
		Evicted: ch.evicted.Load(),
		Sent:    ch.sent.Load(),
		Errors:  ch.errors.Load(),
	}
}

// mediaBatch is the ordered unit list for one media delivery: cached
// parameter sets first (when delivering a sync unit), then the frame itself.
type mediaBatch struct {
	units [][]byte
}

// takeLatest picks what media delivery should send right now: the newest
// buffered frame, wrapped with the cached parameter sets when it is a sync
// unit. Returns false when nothing should be sent, which covers an empty
// buffer, a video channel that has not yet observed a sync unit, and a
// latest frame that was already written out on an earlier pass.
func (ch *Channel) takeLatest() (mediaBatch, bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if len(ch.buf) == 0 {
		return mediaBatch{}, false
	}
	latest := ch.buf[len(ch.buf)-1]
	if len(latest.Data) == 0 {
		return mediaBatch{}, false
	}
	if ch.cache != nil && !ch.cache.syncSeen {
		// Nothing is decodable before the first IDR; hold back everything.
		return mediaBatch{}, false
	}
	if latest.seq == ch.lastSent {
		return mediaBatch{}, false
	}
	ch.lastSent = latest.seq

	var units [][]byte
	if latest.sync {
		units = ch.cache.parameterSets()
	}
	units = append(units, latest.Data)
	return mediaBatch{units: units}, true
}

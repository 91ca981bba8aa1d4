// Package relay buffers encoded audio/video frames and data-channel messages
// per named channel and fans them out to every connected receiver's sink from
// a single background delivery worker. Media delivery is latest-wins and
// fire-and-forget; data delivery dequeues only once at least one receiver has
// accepted the message. Video channels keep a parameter-set cache so a
// receiver joining mid-stream gets VPS/SPS/PPS ahead of the next IDR.
package relay

import (
	"fmt"
	"sync"
)

// Sink is the outbound send endpoint for one channel on one connected
// receiver, provided by the transport layer. Both media tracks and data
// channels satisfy it.
type Sink interface {
	IsOpen() bool
	Send(p []byte) error
}

// client is one connected receiver: an opaque transport handle plus exactly
// one sink per channel it participates in.
type client struct {
	handle any
	sinks  map[string]Sink
}

// Relay owns the channel registry, the client registry, and the delivery
// worker. Producer calls (PushFrame, AddClient, RemoveClient) only take
// short-lived locks and never block on delivery.
type Relay struct {
	mu       sync.RWMutex // channel registry
	channels map[string]*Channel

	clientMu sync.Mutex // client list and sink maps
	clients  []*client

	wakeMu   sync.Mutex
	wake     *sync.Cond
	pending  bool
	running  bool
	started  bool
	stopped  chan struct{}
	stopOnce sync.Once
}

func New() *Relay {
	r := &Relay{
		channels: make(map[string]*Channel),
		stopped:  make(chan struct{}),
	}
	r.wake = sync.NewCond(&r.wakeMu)
	return r
}

// CreateChannel registers a channel. Re-registering an existing id replaces
// it with a fresh channel. maxFrames <= 0 falls back to DefaultMaxFrames.
func (r *Relay) CreateChannel(id string, kind Kind, codec string, maxFrames int) error {
	if id == "" {
		return fmt.Errorf("relay: empty channel id")
	}
	switch kind {
	case KindVideo, KindAudio, KindData:
	default:
		return fmt.Errorf("relay: unknown channel kind %q", kind)
	}
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}

	r.mu.Lock()
	r.channels[id] = newChannel(id, kind, codec, maxFrames)
	r.mu.Unlock()
	return nil
}

// Channel looks up a registered channel.
func (r *Relay) Channel(id string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// PushFrame appends a frame to the channel's bounded buffer and wakes the
// delivery worker. An unknown channel id is a silent no-op: producers race
// with channel removal, and a late push is not an error. The call never
// blocks on delivery.
func (r *Relay) PushFrame(channelID string, data []byte, isKeyframe bool, timestampUs int64) {
	r.mu.RLock()
	ch := r.channels[channelID]
	r.mu.RUnlock()
	if ch == nil {
		return
	}

	ch.push(data, isKeyframe, timestampUs)

	r.wakeMu.Lock()
	r.pending = true
	r.wakeMu.Unlock()
	r.wake.Signal()
}

// AddClient registers a receiver with its sinks-by-channel map.
func (r *Relay) AddClient(handle any, sinks map[string]Sink) {
	r.clientMu.Lock()
	r.clients = append(r.clients, &client{handle: handle, sinks: sinks})
	r.clientMu.Unlock()
}

// RemoveClient drops the receiver registered under handle. Unknown handles
// are ignored so session teardown can be called unconditionally.
func (r *Relay) RemoveClient(handle any) {
	r.clientMu.Lock()
	for i, c := range r.clients {
		if c.handle == handle {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	r.clientMu.Unlock()
}

// clientSnapshot copies the client list so delivery can iterate without
// holding the registry lock across sink sends.
func (r *Relay) clientSnapshot() []*client {
	r.clientMu.Lock()
	defer r.clientMu.Unlock()
	out := make([]*client, len(r.clients))
	copy(out, r.clients)
	return out
}

// channelList returns the registered channels in unspecified order.
func (r *Relay) channelList() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch)
	}
	return out
}

// Stats returns per-channel delivery counters keyed by channel id.
func (r *Relay) Stats() map[string]ChannelStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ChannelStats, len(r.channels))
	for id, ch := range r.channels {
		out[id] = ch.Stats()
	}
	return out
}

// Start launches the delivery worker. Safe to call once.
func (r *Relay) Start() {
	r.wakeMu.Lock()
	if r.started {
		r.wakeMu.Unlock()
		return
	}
	r.started = true
	r.running = true
	r.wakeMu.Unlock()
	go r.run()
}

// Stop shuts the worker down and blocks until it has exited. Frames pushed
// after Stop stay buffered and are never drained. Duplicate stops are no-ops.
func (r *Relay) Stop() {
	r.wakeMu.Lock()
	if !r.started {
		r.started = true
		r.wakeMu.Unlock()
		r.stopOnce.Do(func() { close(r.stopped) })
		return
	}
	r.running = false
	r.wakeMu.Unlock()
	r.wake.Signal()
	<-r.stopped
}

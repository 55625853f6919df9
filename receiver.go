/*
 * Copyright 2025 The SwiftChannel Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package swiftchannel

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"

	"github.com/iceplosion/SwiftChannel/internal/shm"
)

// MessageHandler processes one delivered payload. The slice is only valid
// for the duration of the call; copy it to retain.
type MessageHandler func(payload []byte)

// Receiver is the consumer side of a named channel. It opens an existing
// region (the sender creates it) and drives the poll loop. The core exports
// only the non-blocking read; all pacing lives here: a delivered message
// resets the backoff, an empty ring waits adaptively.
type Receiver struct {
	name   string
	cfg    Config
	region *shm.Region
	ch     *Channel
	stats  ChannelStats

	running atomix.Bool // loop active
	stopped atomix.Bool // Stop requested; terminal
	mu      sync.Mutex
	started bool
	done    chan struct{}
	buf     []byte
}

// NewReceiver opens the named channel and attaches its consumer side.
// Fails with ErrChannelNotFound when no sender has created the region yet.
func NewReceiver(name string, cfg Config) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	region, err := shm.Open(name)
	if err != nil {
		return nil, mapShmErr(err)
	}
	ch, err := AttachReceiver(region.Bytes(), cfg)
	if err != nil {
		region.Close()
		return nil, err
	}
	r := &Receiver{
		name:   name,
		cfg:    cfg,
		region: region,
		ch:     ch,
		buf:    make([]byte, cfg.MaxMessageSize),
	}
	ch.SetObserver(&r.stats)
	return r, nil
}

// PollOne delivers at most one pending message to handler. It returns true
// when a message was delivered, false when the ring was empty. Corruption
// errors are fatal for the channel.
func (r *Receiver) PollOne(handler MessageHandler) (bool, error) {
	if r.ch == nil {
		return false, ErrChannelClosed
	}
	n, outcome, err := r.ch.Recv(r.buf)
	switch outcome {
	case ReadDelivered:
		handler(r.buf[:n])
		return true, nil
	case ReadEmpty:
		return false, nil
	case ReadBufferTooSmall:
		// The sender wrote a frame beyond the agreed maximum.
		return false, ErrInvalidMessage
	default:
		return false, err
	}
}

// Start runs the poll loop in the calling goroutine until Stop or a fatal
// channel error. Empty polls back off adaptively. A Receiver runs one loop
// in its lifetime: starting twice, or after Stop, fails.
func (r *Receiver) Start(handler MessageHandler) error {
	if r.ch == nil {
		return ErrChannelNotFound
	}
	r.mu.Lock()
	if r.started || r.stopped.Load() {
		r.mu.Unlock()
		return ErrInvalidOperation
	}
	r.started = true
	r.mu.Unlock()

	r.running.Store(true)
	defer r.running.Store(false)

	backoff := iox.Backoff{}
	for !r.stopped.Load() {
		delivered, err := r.PollOne(handler)
		if err != nil {
			return err
		}
		if delivered {
			backoff.Reset()
			continue
		}
		backoff.Wait()
	}
	return nil
}

// StartAsync runs Start in a background goroutine. Stop joins it.
func (r *Receiver) StartAsync(handler MessageHandler) error {
	r.mu.Lock()
	if r.started || r.stopped.Load() || r.done != nil {
		r.mu.Unlock()
		return ErrInvalidOperation
	}
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		if err := r.Start(handler); err != nil && ERRon() {
			ERR("receiver %s stopped: %v\n", r.name, err)
		}
	}()
	return nil
}

// Stop ends the poll loop and, for StartAsync, waits for it to exit.
// Terminal: the loop cannot be restarted afterwards.
func (r *Receiver) Stop() {
	r.stopped.Store(true)

	r.mu.Lock()
	done := r.done
	r.done = nil
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// IsRunning reports whether the poll loop is active.
func (r *Receiver) IsRunning() bool {
	return r.running.Load()
}

// ChannelName returns the undecorated channel name.
func (r *Receiver) ChannelName() string {
	return r.name
}

// Stats returns a snapshot of this receiver's counters.
func (r *Receiver) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// Close stops the loop, detaches the channel and unmaps the region.
// Idempotent.
func (r *Receiver) Close() error {
	r.Stop()
	var firstErr error
	if r.ch != nil {
		firstErr = r.ch.Close()
		r.ch = nil
	}
	if r.region != nil {
		if err := r.region.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.region = nil
	}
	return firstErr
}

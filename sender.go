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
	"errors"
	"os"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"github.com/iceplosion/SwiftChannel/internal/shm"
)

// spinSendAttempts is how many failed sends SendWait spins through before
// falling back to adaptive backoff.
const spinSendAttempts = 64

// Sender is the producer side of a named channel. It owns the platform
// region handle and creates the region when it does not exist yet.
type Sender struct {
	name   string
	cfg    Config
	region *shm.Region
	ch     *Channel
	stats  ChannelStats
}

// NewSender opens or creates the named channel and attaches its producer
// side.
func NewSender(name string, cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	region, err := shm.CreateOrOpen(name, int(RegionSize(cfg.RingSize)))
	if err != nil {
		return nil, mapShmErr(err)
	}
	ch, err := AttachSender(region.Bytes(), cfg)
	if err != nil {
		region.Close()
		return nil, err
	}
	s := &Sender{name: name, cfg: cfg, region: region, ch: ch}
	ch.SetObserver(&s.stats)
	return s, nil
}

// IsReady reports whether the sender is bound to a live channel.
func (s *Sender) IsReady() bool {
	return s.ch != nil && s.ch.IsOpen()
}

// Send appends one message. A full ring returns ErrChannelFull without side
// effects; retry after the receiver drains.
func (s *Sender) Send(payload []byte) error {
	if !s.IsReady() {
		return ErrChannelClosed
	}
	return s.ch.Send(payload)
}

// TrySend reports whether one message was appended.
func (s *Sender) TrySend(payload []byte) bool {
	return s.Send(payload) == nil
}

// SendWait appends one message, spinning briefly and then backing off while
// the ring is full. Errors other than the transient full condition are
// returned immediately.
func (s *Sender) SendWait(payload []byte) error {
	sw := spin.Wait{}
	backoff := iox.Backoff{}
	for i := 0; ; i++ {
		err := s.Send(payload)
		if err == nil || !IsWouldBlock(err) {
			return err
		}
		if i < spinSendAttempts {
			sw.Once()
			continue
		}
		backoff.Wait()
	}
}

// AvailableSpace returns the advisory free byte count of the ring.
func (s *Sender) AvailableSpace() uint64 {
	if !s.IsReady() {
		return 0
	}
	return s.ch.FreeSpace()
}

// ChannelName returns the undecorated channel name.
func (s *Sender) ChannelName() string {
	return s.name
}

// Stats returns a snapshot of this sender's counters.
func (s *Sender) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// Close detaches the channel and unmaps the region. Idempotent. The
// region's backing file is left for the receiver; use Unlink to remove it.
func (s *Sender) Close() error {
	var firstErr error
	if s.ch != nil {
		firstErr = s.ch.Close()
		s.ch = nil
	}
	if s.region != nil {
		if err := s.region.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.region = nil
	}
	return firstErr
}

// Unlink removes the channel's backing file by name.
func (s *Sender) Unlink() error {
	return mapShmErr(shm.Remove(s.name))
}

// mapShmErr translates platform-layer errors into channel error codes.
func mapShmErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shm.ErrInvalidName):
		return ErrInvalidChannelName
	case errors.Is(err, shm.ErrNotFound):
		return ErrChannelNotFound
	case errors.Is(err, shm.ErrAlreadyExists):
		return ErrChannelAlreadyExists
	case errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	default:
		return ErrMappingFailed
	}
}

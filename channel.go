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
	"fmt"
	"unsafe"
)

// Role selects which side of the channel an attach binds.
type Role int

const (
	// RoleSender attaches the producer side; it initializes a fresh region.
	RoleSender Role = iota

	// RoleReceiver attaches the consumer side; the region must already be
	// initialized.
	RoleReceiver
)

func (r Role) String() string {
	if r == RoleSender {
		return "sender"
	}
	return "receiver"
}

// Channel binds a mapped byte region to its header and ring. It borrows the
// region: Close releases only in-process state, never the mapping, whose
// lifetime belongs to the shared-memory collaborator that produced it.
type Channel struct {
	cfg  Config
	mem  []byte
	hdr  *SharedHeader
	ring *RingBuffer
	role Role
	obs  StatsObserver
}

// AttachSender binds the producer side of a channel to mem. A region whose
// header magic is zero is initialized from cfg; otherwise the existing
// header is validated and must be compatible.
func AttachSender(mem []byte, cfg Config) (*Channel, error) {
	return attach(mem, cfg, RoleSender)
}

// AttachReceiver binds the consumer side of a channel to mem. The region
// must have been initialized by a sender.
func AttachReceiver(mem []byte, cfg Config) (*Channel, error) {
	return attach(mem, cfg, RoleReceiver)
}

func attach(mem []byte, cfg Config, role Role) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(mem)) < RegionSize(cfg.RingSize) {
		return nil, fmt.Errorf("region of %d bytes cannot hold a %d byte ring: %w",
			len(mem), cfg.RingSize, ErrInvalidMemoryLayout)
	}
	if !isAligned(uint64(uintptr(unsafe.Pointer(&mem[0]))), CacheLineSize) {
		return nil, fmt.Errorf("region base not cache-line aligned: %w", ErrInvalidMemoryLayout)
	}

	hdr, err := HeaderOf(mem)
	if err != nil {
		return nil, err
	}

	switch role {
	case RoleSender:
		err = SenderHandshake(hdr, cfg.RingSize, cfg.Flags)
	case RoleReceiver:
		err = ReceiverHandshake(hdr)
	default:
		err = ErrInvalidOperation
	}
	if err != nil {
		return nil, err
	}

	// The header is authoritative for peers that attached to an existing
	// region with a differing configuration.
	ringSize := hdr.RingSize()
	if uint64(len(mem)) < RegionSize(ringSize) {
		return nil, fmt.Errorf("header declares a %d byte ring beyond the region: %w",
			ringSize, ErrInvalidMemoryLayout)
	}
	if cfg.MaxMessageSize+MessageHeaderSize > ringSize/2 {
		return nil, fmt.Errorf("max message size %d does not fit half of the attached %d byte ring: %w",
			cfg.MaxMessageSize, ringSize, ErrInvalidOperation)
	}

	ring, err := NewRingBuffer(mem[ringStartOffset : ringStartOffset+ringSize])
	if err != nil {
		return nil, err
	}

	if DBGon() {
		DBG("%s attached: ring=%d max_msg=%d flags=%#x\n",
			role, ringSize, cfg.MaxMessageSize, uint64(hdr.Flags()))
	}
	return &Channel{cfg: cfg, mem: mem, hdr: hdr, ring: ring, role: role}, nil
}

// SetObserver injects a StatsObserver notified on send/recv outcomes.
// Pass nil to detach. Not safe to call concurrently with Send/Recv.
func (c *Channel) SetObserver(obs StatsObserver) {
	c.obs = obs
}

// IsOpen reports whether the channel is still bound to its region.
func (c *Channel) IsOpen() bool {
	return c.hdr != nil
}

// Header exposes the region header for diagnostics.
func (c *Channel) Header() *SharedHeader {
	return c.hdr
}

// Config returns the configuration the channel was attached with.
func (c *Channel) Config() Config {
	return c.cfg
}

// Send frames payload and appends it to the ring. It never blocks:
// a full ring returns ErrChannelFull and the retry belongs to the caller.
func (c *Channel) Send(payload []byte) error {
	if c.hdr == nil {
		return ErrChannelClosed
	}
	if uint64(len(payload)) > c.cfg.MaxMessageSize {
		if c.obs != nil {
			c.obs.RecordSendError()
		}
		return ErrMessageTooLarge
	}
	if !c.ring.TryWrite(c.hdr, payload) {
		if c.obs != nil {
			c.obs.RecordBufferFull()
		}
		return ErrChannelFull
	}
	if c.obs != nil {
		c.obs.RecordSend(len(payload))
	}
	return nil
}

// Recv copies the oldest unread payload into buf. See ReadOutcome for the
// result classification. err is ErrChannelClosed (with ReadEmpty) after
// Close; otherwise it is non-nil only for ReadCorrupt, after which the
// channel must be torn down.
func (c *Channel) Recv(buf []byte) (int, ReadOutcome, error) {
	if c.hdr == nil {
		return 0, ReadEmpty, ErrChannelClosed
	}
	n, outcome, err := c.ring.TryRead(c.hdr, buf)
	if c.obs != nil {
		switch outcome {
		case ReadDelivered:
			c.obs.RecordRecv(n)
		case ReadCorrupt:
			if err == ErrChecksumMismatch {
				c.obs.RecordChecksumError()
			}
			c.obs.RecordRecvError()
		}
	}
	return n, outcome, err
}

// FreeSpace returns the advisory free byte count from the producer's view.
func (c *Channel) FreeSpace() uint64 {
	if c.hdr == nil {
		return 0
	}
	return c.ring.AvailableWrite(c.hdr)
}

// Pending returns the advisory occupied byte count from the consumer's view.
func (c *Channel) Pending() uint64 {
	if c.hdr == nil {
		return 0
	}
	return c.ring.AvailableRead(c.hdr)
}

// Close releases the in-process binding. It is idempotent. The mapping
// itself stays alive until its owner unmaps it.
func (c *Channel) Close() error {
	if c.hdr == nil {
		return nil
	}
	if DBGon() {
		DBG("%s detached: widx=%d ridx=%d\n", c.role, c.hdr.WriteIndex(), c.hdr.ReadIndex())
	}
	c.hdr = nil
	c.ring = nil
	c.mem = nil
	return nil
}

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

import "fmt"

// Flags is the header's 64-bit flag field. Bits 4-63 are reserved and must
// be zero.
type Flags uint64

const (
	// FlagNoChecksum disables payload CRC-32: the checksum field is written
	// as zero and the receiver skips verification.
	FlagNoChecksum Flags = 1 << 0

	// FlagOverwrite is reserved. Overwrite-on-full needs torn-read-resistant
	// framing this format does not have; configurations carrying the bit
	// are rejected.
	FlagOverwrite Flags = 1 << 1

	// FlagSingleProducer is advisory; single-producer operation is the only
	// supported mode.
	FlagSingleProducer Flags = 1 << 2

	// FlagSingleConsumer is advisory; single-consumer operation is the only
	// supported mode.
	FlagSingleConsumer Flags = 1 << 3

	knownFlags = FlagNoChecksum | FlagOverwrite | FlagSingleProducer | FlagSingleConsumer
)

// Size limits enforced by Config.Validate.
const (
	MinRingSize    = 4096
	MinMessageSize = 64

	DefaultRingSize       = 1 << 20 // 1 MiB
	DefaultMaxMessageSize = 64 << 10
)

// Config describes a channel before attach.
type Config struct {
	// RingSize is the ring capacity in bytes; a power of two >= MinRingSize.
	RingSize uint64

	// MaxMessageSize bounds a single payload. The largest frame must fit in
	// half the ring so the producer always makes progress.
	MaxMessageSize uint64

	// Flags are written to the header on first-touch initialization and
	// must match the known bits.
	Flags Flags
}

// DefaultConfig returns a 1 MiB ring accepting payloads up to 64 KiB, with
// checksums disabled.
func DefaultConfig() Config {
	return Config{
		RingSize:       DefaultRingSize,
		MaxMessageSize: DefaultMaxMessageSize,
		Flags:          FlagNoChecksum,
	}
}

// Validate reports whether the configuration can back a usable region.
func (c Config) Validate() error {
	if c.RingSize < MinRingSize || !IsPowerOfTwo(c.RingSize) {
		return fmt.Errorf("ring size %d (want power of two >= %d): %w",
			c.RingSize, MinRingSize, ErrInvalidOperation)
	}
	if c.MaxMessageSize < MinMessageSize {
		return fmt.Errorf("max message size %d below minimum %d: %w",
			c.MaxMessageSize, MinMessageSize, ErrInvalidOperation)
	}
	if c.MaxMessageSize+MessageHeaderSize > c.RingSize/2 {
		return fmt.Errorf("max message size %d: largest frame must fit in half of ring %d: %w",
			c.MaxMessageSize, c.RingSize, ErrInvalidOperation)
	}
	if c.Flags&^knownFlags != 0 {
		return fmt.Errorf("flags %#x contain reserved bits: %w", uint64(c.Flags), ErrInvalidOperation)
	}
	if c.Flags&FlagOverwrite != 0 {
		return fmt.Errorf("overwrite flag is reserved: %w", ErrInvalidOperation)
	}
	return nil
}

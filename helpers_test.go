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
	"testing"
	"unsafe"
)

// testConfig matches the seed scenarios: 4 KiB ring, 1 KiB max message,
// checksums off.
func testConfig() Config {
	return Config{
		RingSize:       4096,
		MaxMessageSize: 1024,
		Flags:          FlagNoChecksum,
	}
}

// alignedRegion allocates a zeroed byte region sized for the given ring,
// with its base on a cache-line boundary like a real mapping.
func alignedRegion(tb testing.TB, ringSize uint64) []byte {
	tb.Helper()
	size := int(RegionSize(ringSize))
	raw := make([]byte, size+CacheLineSize)
	off := 0
	if rem := uintptr(unsafe.Pointer(&raw[0])) & (CacheLineSize - 1); rem != 0 {
		off = CacheLineSize - int(rem)
	}
	return raw[off : off+size]
}

// attachPair binds both sides of a channel to one in-process region.
func attachPair(tb testing.TB, cfg Config) (tx, rx *Channel) {
	tb.Helper()
	mem := alignedRegion(tb, cfg.RingSize)
	tx, err := AttachSender(mem, cfg)
	if err != nil {
		tb.Fatalf("AttachSender failed: %v", err)
	}
	rx, err = AttachReceiver(mem, cfg)
	if err != nil {
		tb.Fatalf("AttachReceiver failed: %v", err)
	}
	return tx, rx
}

// frameHeaderAt decodes the frame header at an absolute ring index.
func frameHeaderAt(tb testing.TB, ch *Channel, idx uint64) MessageHeader {
	tb.Helper()
	var scratch [MessageHeaderSize]byte
	ch.ring.readBytes(scratch[:], idx)
	mh, err := DecodeMessageHeader(scratch[:])
	if err != nil {
		tb.Fatalf("decode frame header at %d: %v", idx, err)
	}
	return mh
}

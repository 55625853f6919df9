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
	"encoding/binary"
	"errors"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// Memory layout constants
const (
	// HeaderMagic identifies a valid region header and frames within the
	// ring ("SWIF" as a number; the little-endian wire bytes read "FIWS").
	HeaderMagic = uint32(0x53574946)

	// SharedHeaderSize is the fixed size of the region control header.
	SharedHeaderSize = 128

	// MessageHeaderSize is the fixed size of the per-frame header.
	MessageHeaderSize = 32

	// CacheLineSize determines the alignment of the ring start within the
	// region. It never affects the header size.
	CacheLineSize = 64

	// Payload bytes are rounded up to this alignment inside a frame.
	payloadAlign = 8
)

// ringStartOffset is the byte offset of the first ring byte in a region.
const ringStartOffset = (SharedHeaderSize + CacheLineSize - 1) &^ (CacheLineSize - 1)

// SharedHeader is the 128-byte control record at offset 0 of a mapped
// region. The two indices are the only cross-process atomics: the producer
// owns writeIdx, the consumer owns readIdx, and each reads the peer's index
// with acquire ordering. All other fields are written once during handshake
// and treated as read-only afterwards.
type SharedHeader struct {
	magic      uint32
	version    uint32
	ringSize   uint64
	writeIdx   atomix.Uint64
	readIdx    atomix.Uint64
	senderID   uint32
	receiverID uint32
	flags      uint64
	reserved   [80]byte
}

// Compile-time layout assertions.
var (
	_ [SharedHeaderSize]byte  = [unsafe.Sizeof(SharedHeader{})]byte{}
	_ [16]byte                = [unsafe.Offsetof(SharedHeader{}.writeIdx)]byte{}
	_ [24]byte                = [unsafe.Offsetof(SharedHeader{}.readIdx)]byte{}
	_ [40]byte                = [unsafe.Offsetof(SharedHeader{}.flags)]byte{}
)

// Magic returns the region magic value.
func (h *SharedHeader) Magic() uint32 { return h.magic }

// Version returns the packed protocol version written at initialization.
func (h *SharedHeader) Version() uint32 { return h.version }

// RingSize returns the byte capacity of the ring that follows the header.
func (h *SharedHeader) RingSize() uint64 { return h.ringSize }

// WriteIndex returns the total number of bytes ever written.
func (h *SharedHeader) WriteIndex() uint64 { return h.writeIdx.Load() }

// ReadIndex returns the total number of bytes ever consumed.
func (h *SharedHeader) ReadIndex() uint64 { return h.readIdx.Load() }

// SenderID returns the producer's process identifier (diagnostic only).
func (h *SharedHeader) SenderID() uint32 { return h.senderID }

// ReceiverID returns the consumer's process identifier (diagnostic only).
func (h *SharedHeader) ReceiverID() uint32 { return h.receiverID }

// Flags returns the region flag bits.
func (h *SharedHeader) Flags() Flags { return Flags(h.flags) }

func (h *SharedHeader) checksumEnabled() bool {
	return h.flags&uint64(FlagNoChecksum) == 0
}

// ErrRegionTooSmall reports a byte region shorter than the control header.
var ErrRegionTooSmall = errors.New("swiftchannel: region smaller than header")

// HeaderOf overlays a SharedHeader on the start of a mapped region. The
// region base must be 8-byte aligned; Attach additionally requires
// cache-line alignment.
func HeaderOf(mem []byte) (*SharedHeader, error) {
	if len(mem) < SharedHeaderSize {
		return nil, ErrRegionTooSmall
	}
	if uintptr(unsafe.Pointer(&mem[0]))&(payloadAlign-1) != 0 {
		return nil, ErrInvalidMemoryLayout
	}
	return (*SharedHeader)(unsafe.Pointer(&mem[0])), nil
}

// MessageHeader is the 32-byte frame header written immediately before each
// payload. It is encoded little-endian regardless of host order.
type MessageHeader struct {
	Magic     uint32 // frame sentinel, HeaderMagic
	Size      uint32 // payload length in bytes
	Sequence  uint64 // write index at framing time; strictly increasing
	Timestamp uint64 // steady-clock ns; per-process epoch, not comparable across channels
	Checksum  uint32 // CRC-32 of payload, zero when checksums are disabled
	Reserved  uint32 // zero
}

func encodeMessageHeader(dst *[MessageHeaderSize]byte, mh MessageHeader) {
	b := dst[:]
	binary.LittleEndian.PutUint32(b[0:4], mh.Magic)
	binary.LittleEndian.PutUint32(b[4:8], mh.Size)
	binary.LittleEndian.PutUint64(b[8:16], mh.Sequence)
	binary.LittleEndian.PutUint64(b[16:24], mh.Timestamp)
	binary.LittleEndian.PutUint32(b[24:28], mh.Checksum)
	binary.LittleEndian.PutUint32(b[28:32], mh.Reserved)
}

// DecodeMessageHeader parses a frame header from b.
func DecodeMessageHeader(b []byte) (MessageHeader, error) {
	if len(b) < MessageHeaderSize {
		return MessageHeader{}, errors.New("swiftchannel: message header too short")
	}
	var mh MessageHeader
	mh.Magic = binary.LittleEndian.Uint32(b[0:4])
	mh.Size = binary.LittleEndian.Uint32(b[4:8])
	mh.Sequence = binary.LittleEndian.Uint64(b[8:16])
	mh.Timestamp = binary.LittleEndian.Uint64(b[16:24])
	mh.Checksum = binary.LittleEndian.Uint32(b[24:28])
	mh.Reserved = binary.LittleEndian.Uint32(b[28:32])
	return mh, nil
}

// FrameSize returns the total ring footprint of a frame carrying a payload
// of the given length.
func FrameSize(payloadLen int) uint64 {
	return MessageHeaderSize + alignUp(uint64(payloadLen), payloadAlign)
}

// RegionSize returns the total byte size of a region holding a ring of the
// given capacity: header, padding to the cache-line boundary, then the ring.
func RegionSize(ringSize uint64) uint64 {
	return ringStartOffset + ringSize
}

// alignUp rounds v up to the next multiple of a. a must be a power of two.
func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

func isAligned(v, a uint64) bool {
	return v&(a-1) == 0
}

// IsPowerOfTwo returns true if n is a power of two.
func IsPowerOfTwo(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the next power of two >= n.
func NextPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	if IsPowerOfTwo(n) {
		return n
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// processEpoch anchors frame timestamps. The epoch is unspecified by the
// wire format; timestamps from different processes must not be compared.
var processEpoch = time.Now()

func steadyNowNS() uint64 {
	return uint64(time.Since(processEpoch))
}

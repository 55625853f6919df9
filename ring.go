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
	"hash/crc32"
)

// ReadOutcome classifies the result of a TryRead.
type ReadOutcome int

const (
	// ReadEmpty: no frame available. Not an error.
	ReadEmpty ReadOutcome = iota

	// ReadDelivered: one frame copied out and consumed.
	ReadDelivered

	// ReadBufferTooSmall: the caller's buffer cannot hold the pending
	// payload; the required size is reported and the frame stays queued.
	ReadBufferTooSmall

	// ReadCorrupt: the pending frame failed magic or checksum validation.
	// The stream is no longer self-framing; the region must be torn down.
	ReadCorrupt
)

func (o ReadOutcome) String() string {
	switch o {
	case ReadEmpty:
		return "empty"
	case ReadDelivered:
		return "delivered"
	case ReadBufferTooSmall:
		return "buffer too small"
	case ReadCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// RingBuffer is a lock-free single-producer single-consumer framed byte
// queue over a power-of-two span of shared bytes. The buffer holds no
// indices of its own: the absolute 64-bit write and read indices live in
// the region's SharedHeader and are passed in by the caller, so any number
// of in-process views may exist over one region.
//
// The producer's release store of writeIdx is the single linearization
// point: all header and payload bytes of a frame become visible to the
// consumer's acquire load together.
type RingBuffer struct {
	buf  []byte
	size uint64
	mask uint64
}

// NewRingBuffer wraps a ring span whose length must be a power of two.
func NewRingBuffer(buf []byte) (*RingBuffer, error) {
	size := uint64(len(buf))
	if !IsPowerOfTwo(size) {
		return nil, fmt.Errorf("ring span of %d bytes is not a power of two: %w",
			size, ErrInvalidMemoryLayout)
	}
	return &RingBuffer{buf: buf, size: size, mask: size - 1}, nil
}

// Size returns the ring capacity in bytes.
func (rb *RingBuffer) Size() uint64 { return rb.size }

// TryWrite frames payload and appends it to the ring. It returns false
// without any visible change when the frame does not fit. The caller is
// responsible for the max-message-size precondition.
func (rb *RingBuffer) TryWrite(hdr *SharedHeader, payload []byte) bool {
	frameSize := FrameSize(len(payload))

	w := hdr.writeIdx.LoadRelaxed()
	r := hdr.readIdx.LoadAcquire()
	if rb.size-(w-r) < frameSize {
		return false
	}

	mh := MessageHeader{
		Magic:     HeaderMagic,
		Size:      uint32(len(payload)),
		Sequence:  w,
		Timestamp: steadyNowNS(),
	}
	if hdr.checksumEnabled() {
		mh.Checksum = crc32.ChecksumIEEE(payload)
	}

	var scratch [MessageHeaderSize]byte
	encodeMessageHeader(&scratch, mh)
	rb.writeBytes(scratch[:], w)
	rb.writeBytes(payload, w+MessageHeaderSize)

	// Publish. Everything copied above becomes visible with this store.
	hdr.writeIdx.StoreRelease(w + frameSize)
	return true
}

// TryRead copies the oldest unread payload into buf and consumes its frame.
//
// Outcomes:
//   - ReadEmpty: nothing pending; n is 0.
//   - ReadDelivered: n payload bytes copied; readIdx advanced.
//   - ReadBufferTooSmall: n is the required size; nothing consumed.
//   - ReadCorrupt: err is ErrMessageCorrupted or ErrChecksumMismatch;
//     readIdx is not advanced and subsequent reads keep failing.
func (rb *RingBuffer) TryRead(hdr *SharedHeader, buf []byte) (n int, outcome ReadOutcome, err error) {
	r := hdr.readIdx.LoadRelaxed()
	w := hdr.writeIdx.LoadAcquire()
	if r >= w {
		return 0, ReadEmpty, nil
	}

	var scratch [MessageHeaderSize]byte
	rb.readBytes(scratch[:], r)
	mh, _ := DecodeMessageHeader(scratch[:])

	if mh.Magic != HeaderMagic {
		return 0, ReadCorrupt, ErrMessageCorrupted
	}
	if hdr.checksumEnabled() {
		if rb.crcAt(r+MessageHeaderSize, uint64(mh.Size)) != mh.Checksum {
			return 0, ReadCorrupt, ErrChecksumMismatch
		}
	}
	if int(mh.Size) > len(buf) {
		return int(mh.Size), ReadBufferTooSmall, nil
	}

	rb.readBytes(buf[:mh.Size], r+MessageHeaderSize)
	hdr.readIdx.StoreRelease(r + FrameSize(int(mh.Size)))
	return int(mh.Size), ReadDelivered, nil
}

// AvailableWrite returns the free space as observed by the producer. The
// value is advisory and may be stale by the time it is used.
func (rb *RingBuffer) AvailableWrite(hdr *SharedHeader) uint64 {
	w := hdr.writeIdx.LoadRelaxed()
	r := hdr.readIdx.LoadAcquire()
	return rb.size - (w - r)
}

// AvailableRead returns the occupied bytes as observed by the consumer.
func (rb *RingBuffer) AvailableRead(hdr *SharedHeader) uint64 {
	r := hdr.readIdx.LoadRelaxed()
	w := hdr.writeIdx.LoadAcquire()
	return w - r
}

// writeBytes copies src into the ring at the given absolute index,
// splitting at the physical end of the buffer.
func (rb *RingBuffer) writeBytes(src []byte, idx uint64) {
	pos := idx & rb.mask
	if pos+uint64(len(src)) <= rb.size {
		copy(rb.buf[pos:], src)
		return
	}
	first := rb.size - pos
	copy(rb.buf[pos:], src[:first])
	copy(rb.buf, src[first:])
}

// readBytes copies from the ring at the given absolute index into dst,
// splitting at the physical end of the buffer.
func (rb *RingBuffer) readBytes(dst []byte, idx uint64) {
	pos := idx & rb.mask
	if pos+uint64(len(dst)) <= rb.size {
		copy(dst, rb.buf[pos:])
		return
	}
	first := rb.size - pos
	copy(dst[:first], rb.buf[pos:])
	copy(dst[first:], rb.buf)
}

// crcAt computes CRC-32 over n ring bytes starting at the given absolute
// index without copying them out.
func (rb *RingBuffer) crcAt(idx, n uint64) uint32 {
	pos := idx & rb.mask
	if pos+n <= rb.size {
		return crc32.ChecksumIEEE(rb.buf[pos : pos+n])
	}
	first := rb.size - pos
	sum := crc32.Update(0, crc32.IEEETable, rb.buf[pos:])
	return crc32.Update(sum, crc32.IEEETable, rb.buf[:n-first])
}

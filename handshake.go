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

import "os"

// InitializeHeader performs first-touch initialization of a freshly mapped
// region. The indices are stored with release ordering before the magic is
// written, so a peer that observes a valid magic also observes zeroed
// indices and the final ring size.
func InitializeHeader(h *SharedHeader, ringSize uint64, flags Flags) {
	*h = SharedHeader{}
	h.version = ProtocolVersion.Pack()
	h.ringSize = ringSize
	h.flags = uint64(flags)
	h.senderID = uint32(os.Getpid())
	h.writeIdx.StoreRelease(0)
	h.readIdx.StoreRelease(0)
	h.magic = HeaderMagic
}

// SenderHandshake binds the producer side to a region. A region whose magic
// is still zero is initialized here; an initialized region is validated and
// the producer's pid recorded.
func SenderHandshake(h *SharedHeader, ringSize uint64, flags Flags) error {
	if h.magic == 0 {
		InitializeHeader(h, ringSize, flags)
		return nil
	}
	if err := ValidateHeader(h); err != nil {
		return err
	}
	h.senderID = uint32(os.Getpid())
	return nil
}

// ReceiverHandshake binds the consumer side to a region. The receiver never
// initializes: attaching before the sender would mean observing torn state,
// so an uninitialized region fails with ErrChannelNotFound.
func ReceiverHandshake(h *SharedHeader) error {
	if h.magic == 0 {
		return ErrChannelNotFound
	}
	if err := ValidateHeader(h); err != nil {
		return err
	}
	h.receiverID = uint32(os.Getpid())
	return nil
}

// ValidateHeader checks an initialized header: magic, protocol
// compatibility, and a sane ring size.
func ValidateHeader(h *SharedHeader) error {
	if h.magic != HeaderMagic {
		return ErrInvalidMemoryLayout
	}
	if !ProtocolVersion.Compatible(UnpackVersion(h.version)) {
		return ErrVersionMismatch
	}
	if !IsPowerOfTwo(h.ringSize) {
		return ErrInvalidMemoryLayout
	}
	return nil
}

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

// Package swiftchannel provides low-latency one-way message passing between
// two cooperating processes on the same host.
//
// A single sender process produces discrete messages and a single receiver
// process consumes them in the order produced. The transport is a shared
// memory region containing a fixed-layout control header followed by a
// power-of-two ring buffer, coordinated lock-free by two monotonically
// increasing 64-bit indices. The producer publishes each frame with a single
// release store of the write index; the consumer observes it with an acquire
// load. There are no locks, no condition variables, and no blocking
// operations in the core: TryWrite and TryRead are wait-free and report
// full/empty as ordinary outcomes.
//
// The wire layout is little-endian. Both the region header and each message
// frame carry the sentinel 0x53574946 ("SWIF"). A frame is a 32-byte
// MessageHeader followed by its payload rounded up to 8 bytes; frames wrap
// around the physical end of the ring by splitting the copy.
//
// Channel binds an already-mapped byte region to its header and ring.
// Sender and Receiver wrap Channel with the platform shared-memory
// collaborator (internal/shm) for named channels.
package swiftchannel

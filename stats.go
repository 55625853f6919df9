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

import "code.hybscloud.com/atomix"

// StatsObserver receives send/recv outcome notifications from a Channel.
// Implementations must be safe for concurrent use by the producer and
// consumer sides. The core holds no process-wide state: observers are
// injected per channel.
type StatsObserver interface {
	RecordSend(bytes int)
	RecordRecv(bytes int)
	RecordSendError()
	RecordRecvError()
	RecordBufferFull()
	RecordChecksumError()
}

// ChannelStats is the default StatsObserver: a set of monotonic counters.
type ChannelStats struct {
	messagesSent     atomix.Uint64
	messagesReceived atomix.Uint64
	bytesSent        atomix.Uint64
	bytesReceived    atomix.Uint64
	sendErrors       atomix.Uint64
	receiveErrors    atomix.Uint64
	bufferFullEvents atomix.Uint64
	checksumErrors   atomix.Uint64
}

// StatsSnapshot is a point-in-time copy of a ChannelStats.
type StatsSnapshot struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
	SendErrors       uint64
	ReceiveErrors    uint64
	BufferFullEvents uint64
	ChecksumErrors   uint64
}

func (s *ChannelStats) RecordSend(bytes int) {
	s.messagesSent.Add(1)
	s.bytesSent.Add(uint64(bytes))
}

func (s *ChannelStats) RecordRecv(bytes int) {
	s.messagesReceived.Add(1)
	s.bytesReceived.Add(uint64(bytes))
}

func (s *ChannelStats) RecordSendError() { s.sendErrors.Add(1) }

func (s *ChannelStats) RecordRecvError() { s.receiveErrors.Add(1) }

func (s *ChannelStats) RecordBufferFull() { s.bufferFullEvents.Add(1) }

func (s *ChannelStats) RecordChecksumError() { s.checksumErrors.Add(1) }

// Snapshot returns a consistent-enough copy for diagnostics; individual
// counters are read atomically but not as a group.
func (s *ChannelStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		MessagesSent:     s.messagesSent.Load(),
		MessagesReceived: s.messagesReceived.Load(),
		BytesSent:        s.bytesSent.Load(),
		BytesReceived:    s.bytesReceived.Load(),
		SendErrors:       s.sendErrors.Load(),
		ReceiveErrors:    s.receiveErrors.Load(),
		BufferFullEvents: s.bufferFullEvents.Load(),
		ChecksumErrors:   s.checksumErrors.Load(),
	}
}

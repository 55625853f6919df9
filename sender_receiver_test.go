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
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSenderReceiverEndToEnd(t *testing.T) {
	name := fmt.Sprintf("test-e2e-%d", time.Now().UnixNano())
	cfg := Config{RingSize: 8192, MaxMessageSize: 1024, Flags: FlagNoChecksum}

	// The receiver never creates: attaching first fails.
	if _, err := NewReceiver(name, cfg); err != ErrChannelNotFound {
		t.Fatalf("NewReceiver before sender = %v, want ErrChannelNotFound", err)
	}

	sender, err := NewSender(name, cfg)
	if err != nil {
		t.Fatalf("NewSender failed: %v", err)
	}
	defer func() {
		sender.Close()
		sender.Unlink()
	}()

	if !sender.IsReady() {
		t.Fatal("sender not ready after open")
	}

	receiver, err := NewReceiver(name, cfg)
	if err != nil {
		t.Fatalf("NewReceiver failed: %v", err)
	}
	defer receiver.Close()

	const numMessages = 100
	var mu sync.Mutex
	var got [][]byte

	if err := receiver.StartAsync(func(payload []byte) {
		mu.Lock()
		got = append(got, append([]byte(nil), payload...))
		mu.Unlock()
	}); err != nil {
		t.Fatalf("StartAsync failed: %v", err)
	}

	for i := 0; i < numMessages; i++ {
		payload := []byte(fmt.Sprintf("message-%04d", i))
		if err := sender.SendWait(payload); err != nil {
			t.Fatalf("SendWait %d failed: %v", i, err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == numMessages {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d of %d messages before timeout", n, numMessages)
		}
		time.Sleep(time.Millisecond)
	}

	receiver.Stop()
	if receiver.IsRunning() {
		t.Fatal("receiver still running after Stop")
	}

	for i, payload := range got {
		want := []byte(fmt.Sprintf("message-%04d", i))
		if !bytes.Equal(payload, want) {
			t.Fatalf("message %d = %q, want %q", i, payload, want)
		}
	}

	sstats := sender.Stats()
	if sstats.MessagesSent != numMessages {
		t.Fatalf("sender stats: sent = %d, want %d", sstats.MessagesSent, numMessages)
	}
	rstats := receiver.Stats()
	if rstats.MessagesReceived != numMessages {
		t.Fatalf("receiver stats: received = %d, want %d", rstats.MessagesReceived, numMessages)
	}
}

func TestReceiverPollOne(t *testing.T) {
	name := fmt.Sprintf("test-poll-%d", time.Now().UnixNano())
	cfg := Config{RingSize: 4096, MaxMessageSize: 512, Flags: FlagNoChecksum}

	sender, err := NewSender(name, cfg)
	if err != nil {
		t.Fatalf("NewSender failed: %v", err)
	}
	defer func() {
		sender.Close()
		sender.Unlink()
	}()

	receiver, err := NewReceiver(name, cfg)
	if err != nil {
		t.Fatalf("NewReceiver failed: %v", err)
	}
	defer receiver.Close()

	var polled []byte
	delivered, err := receiver.PollOne(func(p []byte) { polled = append([]byte(nil), p...) })
	if err != nil || delivered {
		t.Fatalf("PollOne on empty channel: delivered=%v err=%v", delivered, err)
	}

	if err := sender.Send([]byte("one message")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	delivered, err = receiver.PollOne(func(p []byte) { polled = append([]byte(nil), p...) })
	if err != nil || !delivered {
		t.Fatalf("PollOne: delivered=%v err=%v", delivered, err)
	}
	if string(polled) != "one message" {
		t.Fatalf("PollOne payload = %q", polled)
	}
}

func TestSenderRejectsInvalidName(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewSender("not/a/name", cfg); err != ErrInvalidChannelName {
		t.Fatalf("NewSender with bad name = %v, want ErrInvalidChannelName", err)
	}
	if _, err := NewSender("", cfg); err != ErrInvalidChannelName {
		t.Fatalf("NewSender with empty name = %v, want ErrInvalidChannelName", err)
	}
}

func TestSenderCloseIdempotent(t *testing.T) {
	name := fmt.Sprintf("test-close-%d", time.Now().UnixNano())
	sender, err := NewSender(name, DefaultConfig())
	if err != nil {
		t.Fatalf("NewSender failed: %v", err)
	}
	defer sender.Unlink()

	if err := sender.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := sender.Send([]byte("x")); err != ErrChannelClosed {
		t.Fatalf("Send after Close = %v, want ErrChannelClosed", err)
	}
}

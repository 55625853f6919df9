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

// Command swiftchannel-send is an example producer: it creates a channel
// and streams patterned messages through it.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	swiftchannel "github.com/iceplosion/SwiftChannel"
)

func main() {
	var (
		name     = flag.String("channel", "demo", "channel name")
		count    = flag.Int("count", 1000, "messages to send")
		size     = flag.Int("size", 256, "payload size in bytes")
		ringSize = flag.Uint64("ring", swiftchannel.DefaultRingSize, "ring size in bytes (power of two)")
		checksum = flag.Bool("checksum", false, "enable payload CRC-32")
	)
	flag.Parse()

	cfg := swiftchannel.DefaultConfig()
	cfg.RingSize = *ringSize
	if *checksum {
		cfg.Flags &^= swiftchannel.FlagNoChecksum
	}

	sender, err := swiftchannel.NewSender(*name, cfg)
	if err != nil {
		log.Fatalf("open channel %q: %v", *name, err)
	}
	defer sender.Close()

	payload := make([]byte, *size)
	start := time.Now()
	for i := 0; i < *count; i++ {
		for j := range payload {
			payload[j] = byte(i + j)
		}
		if err := sender.SendWait(payload); err != nil {
			log.Fatalf("send %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	stats := sender.Stats()
	fmt.Printf("sent %d messages (%d bytes) in %v\n",
		stats.MessagesSent, stats.BytesSent, elapsed)
	fmt.Printf("free space: %d bytes, buffer-full events: %d\n",
		sender.AvailableSpace(), stats.BufferFullEvents)
}

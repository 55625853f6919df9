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

// Command swiftchannel-recv is an example consumer: it attaches to an
// existing channel and drains it until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	swiftchannel "github.com/iceplosion/SwiftChannel"
)

func main() {
	var (
		name     = flag.String("channel", "demo", "channel name")
		verbose  = flag.Bool("verbose", false, "print every message")
		checksum = flag.Bool("checksum", false, "clear NoChecksum in the local config (CRC-32 verification follows the region's flags)")
	)
	flag.Parse()

	cfg := swiftchannel.DefaultConfig()
	if *checksum {
		cfg.Flags &^= swiftchannel.FlagNoChecksum
	}

	receiver, err := swiftchannel.NewReceiver(*name, cfg)
	if err != nil {
		log.Fatalf("open channel %q: %v", *name, err)
	}
	defer receiver.Close()

	err = receiver.StartAsync(func(payload []byte) {
		if *verbose {
			fmt.Printf("recv %d bytes\n", len(payload))
		}
	})
	if err != nil {
		log.Fatalf("start: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	receiver.Stop()

	stats := receiver.Stats()
	fmt.Printf("received %d messages (%d bytes), errors: %d\n",
		stats.MessagesReceived, stats.BytesReceived, stats.ReceiveErrors)
}

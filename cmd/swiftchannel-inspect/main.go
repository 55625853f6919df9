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

// Command swiftchannel-inspect dumps the control header of a live channel
// region and walks its pending frames without consuming them.
package main

import (
	"flag"
	"fmt"
	"log"

	swiftchannel "github.com/iceplosion/SwiftChannel"
	"github.com/iceplosion/SwiftChannel/internal/shm"
)

func main() {
	var (
		name      = flag.String("channel", "demo", "channel name")
		maxFrames = flag.Int("frames", 16, "max pending frames to list")
	)
	flag.Parse()

	region, err := shm.Open(*name)
	if err != nil {
		log.Fatalf("open region %q: %v", *name, err)
	}
	defer region.Close()

	hdr, err := swiftchannel.HeaderOf(region.Bytes())
	if err != nil {
		log.Fatalf("overlay header: %v", err)
	}

	fmt.Printf("region: %s (%d bytes)\n", region.Path(), region.Size())
	fmt.Printf("magic:       %#x", hdr.Magic())
	if hdr.Magic() != swiftchannel.HeaderMagic {
		fmt.Printf("  (INVALID, want %#x)", swiftchannel.HeaderMagic)
	}
	fmt.Println()
	fmt.Printf("version:     %s (raw %#x)\n",
		swiftchannel.UnpackVersion(hdr.Version()), hdr.Version())
	fmt.Printf("ring size:   %d\n", hdr.RingSize())
	w, r := hdr.WriteIndex(), hdr.ReadIndex()
	fmt.Printf("write index: %d\n", w)
	fmt.Printf("read index:  %d\n", r)
	fmt.Printf("occupied:    %d / %d bytes\n", w-r, hdr.RingSize())
	fmt.Printf("sender pid:  %d\n", hdr.SenderID())
	fmt.Printf("recv pid:    %d\n", hdr.ReceiverID())
	fmt.Printf("flags:       %#x\n", uint64(hdr.Flags()))

	if hdr.Magic() != swiftchannel.HeaderMagic || w == r {
		return
	}

	ringStart := swiftchannel.RegionSize(0)
	ring := region.Bytes()[ringStart : ringStart+hdr.RingSize()]
	mask := hdr.RingSize() - 1

	fmt.Printf("\npending frames:\n")
	for idx, i := r, 0; idx < w && i < *maxFrames; i++ {
		mh, err := swiftchannel.DecodeMessageHeader(frameHeaderAt(ring, idx&mask))
		if err != nil || mh.Magic != swiftchannel.HeaderMagic {
			fmt.Printf("  [%d] index %d: corrupt frame header\n", i, idx)
			return
		}
		fmt.Printf("  [%d] seq=%d size=%d ts=%dns checksum=%#x\n",
			i, mh.Sequence, mh.Size, mh.Timestamp, mh.Checksum)
		idx += swiftchannel.FrameSize(int(mh.Size))
	}
}

// frameHeaderAt copies out a frame header that may straddle the physical
// end of the ring.
func frameHeaderAt(ring []byte, pos uint64) []byte {
	size := uint64(len(ring))
	if pos+swiftchannel.MessageHeaderSize <= size {
		return ring[pos : pos+swiftchannel.MessageHeaderSize]
	}
	buf := make([]byte, swiftchannel.MessageHeaderSize)
	n := copy(buf, ring[pos:])
	copy(buf[n:], ring)
	return buf
}

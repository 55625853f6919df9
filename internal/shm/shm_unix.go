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

//go:build unix

package shm

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func init() {
	mapFile = mmapImpl
	unmapMemory = munmapImpl
	regionPath = unixRegionPath
}

// unixRegionPath decorates a channel name into a backing-file path. tmpfs
// at /dev/shm is preferred; a regular temp file works everywhere else.
func unixRegionPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "swiftchannel_"+name)
	}
	return filepath.Join(os.TempDir(), "swiftchannel_"+name)
}

func mmapImpl(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmapImpl(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Munmap(mem)
}

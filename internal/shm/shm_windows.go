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

//go:build windows

package shm

import (
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
)

func init() {
	mapFile = mmapImpl
	unmapMemory = munmapImpl
	regionPath = windowsRegionPath
}

func windowsRegionPath(name string) string {
	return filepath.Join(os.TempDir(), "SwiftChannel_"+name)
}

func mmapImpl(f *os.File, size int) ([]byte, error) {
	m, err := mmap.MapRegion(f, size, mmap.RDWR, 0, 0)
	if err != nil {
		return nil, err
	}
	return []byte(m), nil
}

func munmapImpl(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	m := mmap.MMap(mem)
	return m.Unmap()
}

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

// Package shm acquires named OS shared-memory regions and hands the mapped
// bytes to the channel core. The core consumes only raw byte regions; all
// naming, backing-file, and mapping concerns live here.
package shm

import (
	"errors"
	"fmt"
	"os"
)

// MaxNameLen bounds a channel name before platform decoration.
const MaxNameLen = 128

var (
	// ErrInvalidName reports a channel name outside the allowed alphabet.
	ErrInvalidName = errors.New("shm: invalid region name")

	// ErrAlreadyExists reports an exclusive create of an existing region.
	ErrAlreadyExists = errors.New("shm: region already exists")

	// ErrNotFound reports an open of a region that does not exist.
	ErrNotFound = errors.New("shm: region not found")
)

// Platform-specific hooks, assigned by init in the platform files.
var (
	mapFile     func(f *os.File, size int) ([]byte, error)
	unmapMemory func(mem []byte) error
	regionPath  func(name string) string
)

// Region is a named, mapped shared-memory area backed by a file.
type Region struct {
	name    string
	path    string
	file    *os.File
	mem     []byte
	created bool
}

// ValidateName accepts non-empty ASCII names of letters, digits,
// underscores and dashes, at most MaxNameLen bytes. The platform layer
// decorates the name; the raw form never reaches the filesystem.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLen {
		return ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return ErrInvalidName
		}
	}
	return nil
}

// Create makes a new region of the given size, failing if one already
// exists under the name. The backing file is zero-filled by the OS, so the
// mapped bytes start in the all-zero "new region" state.
func Create(name string, size int) (*Region, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("shm: non-positive region size %d", size)
	}
	path := regionPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("shm: create %s: %w", path, err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shm: resize %s: %w", path, err)
	}
	mem, err := mapFile(file, size)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("shm: map %s: %w", path, err)
	}
	if DBGon() {
		DBG("created region %s (%d bytes)\n", path, size)
	}
	return &Region{name: name, path: path, file: file, mem: mem, created: true}, nil
}

// Open maps an existing region at its current size.
func Open(name string) (*Region, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := regionPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	size := int(info.Size())
	if size == 0 {
		file.Close()
		return nil, fmt.Errorf("shm: empty region %s: %w", path, ErrNotFound)
	}
	mem, err := mapFile(file, size)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shm: map %s: %w", path, err)
	}
	if DBGon() {
		DBG("opened region %s (%d bytes)\n", path, size)
	}
	return &Region{name: name, path: path, file: file, mem: mem}, nil
}

// CreateOrOpen creates the region, or opens it when it already exists.
func CreateOrOpen(name string, size int) (*Region, error) {
	r, err := Create(name, size)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return nil, err
	}
	return Open(name)
}

// Exists reports whether a region is present under the name.
func Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(regionPath(name))
	return err == nil
}

// Remove unlinks a region's backing file by name. Mappings held by live
// processes survive until they unmap.
func Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(regionPath(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// Name returns the undecorated region name.
func (r *Region) Name() string { return r.name }

// Path returns the backing file path.
func (r *Region) Path() string { return r.path }

// Bytes returns the mapped region. Valid until Close.
func (r *Region) Bytes() []byte { return r.mem }

// Size returns the mapped length in bytes.
func (r *Region) Size() int { return len(r.mem) }

// Created reports whether this handle created the backing file.
func (r *Region) Created() bool { return r.created }

// Close unmaps the region and closes the backing file. Idempotent. The
// file itself stays on disk until Unlink or Remove.
func (r *Region) Close() error {
	var firstErr error
	if r.mem != nil {
		if err := unmapMemory(r.mem); err != nil {
			firstErr = err
		}
		r.mem = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.file = nil
	}
	return firstErr
}

// Unlink removes the backing file of this region.
func (r *Region) Unlink() error {
	err := os.Remove(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

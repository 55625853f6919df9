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

package shm

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	name := fmt.Sprintf("test-shm-%d", time.Now().UnixNano())

	created, err := Create(name, 8192)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer func() {
		created.Close()
		Remove(name)
	}()

	if !created.Created() {
		t.Fatal("Created() = false on a fresh region")
	}
	if created.Size() != 8192 {
		t.Fatalf("size = %d, want 8192", created.Size())
	}

	// A fresh region starts zeroed.
	if !bytes.Equal(created.Bytes()[:64], make([]byte, 64)) {
		t.Fatal("fresh region not zero-filled")
	}

	// Writes through one mapping are visible through another.
	copy(created.Bytes(), []byte("shared bytes"))

	opened, err := Open(name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer opened.Close()

	if opened.Created() {
		t.Fatal("Created() = true on an opened region")
	}
	if !bytes.Equal(opened.Bytes()[:12], []byte("shared bytes")) {
		t.Fatal("bytes written through creator not visible through opener")
	}
}

func TestCreateExclusive(t *testing.T) {
	name := fmt.Sprintf("test-excl-%d", time.Now().UnixNano())

	first, err := Create(name, 4096)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer func() {
		first.Close()
		Remove(name)
	}()

	if _, err := Create(name, 4096); err != ErrAlreadyExists {
		t.Fatalf("second Create = %v, want ErrAlreadyExists", err)
	}

	// CreateOrOpen falls back to opening.
	r, err := CreateOrOpen(name, 4096)
	if err != nil {
		t.Fatalf("CreateOrOpen on existing region failed: %v", err)
	}
	r.Close()
}

func TestOpenMissing(t *testing.T) {
	name := fmt.Sprintf("test-missing-%d", time.Now().UnixNano())
	if _, err := Open(name); err != ErrNotFound {
		t.Fatalf("Open of missing region = %v, want ErrNotFound", err)
	}
	if Exists(name) {
		t.Fatal("Exists reported a missing region")
	}
}

func TestRemove(t *testing.T) {
	name := fmt.Sprintf("test-remove-%d", time.Now().UnixNano())

	r, err := Create(name, 4096)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	r.Close()

	if !Exists(name) {
		t.Fatal("Exists = false for a live region")
	}
	if err := Remove(name); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if Exists(name) {
		t.Fatal("region still exists after Remove")
	}
	if err := Remove(name); err != ErrNotFound {
		t.Fatalf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestRegionCloseIdempotent(t *testing.T) {
	name := fmt.Sprintf("test-close-%d", time.Now().UnixNano())

	r, err := Create(name, 4096)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer Remove(name)

	if err := r.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "demo", "Demo-42", "under_score", "UPPER"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "has space", "slash/name", "dot.name", "non-ascii-\xc3\xa9",
		string(make([]byte, MaxNameLen+1))}
	for _, name := range invalid {
		if err := ValidateName(name); err != ErrInvalidName {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

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

import "testing"

func TestVersionPack(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	raw := v.Pack()
	if raw != 0x00010203 {
		t.Fatalf("Pack() = %#x, want 0x00010203", raw)
	}
	if got := UnpackVersion(raw); got != v {
		t.Fatalf("UnpackVersion(Pack()) = %+v, want %+v", got, v)
	}
}

func TestVersionMajorRecoveredByMasking(t *testing.T) {
	// Minor and patch share the low 16 bits; values above 255 are lossy,
	// but the major must always survive.
	v := Version{Major: 7, Minor: 300, Patch: 500}
	got := UnpackVersion(v.Pack())
	if got.Major != 7 {
		t.Fatalf("major after round trip = %d, want 7", got.Major)
	}
}

func TestVersionCompatibility(t *testing.T) {
	cases := []struct {
		a, b Version
		want bool
	}{
		{Version{1, 0, 0}, Version{1, 0, 0}, true},
		{Version{1, 0, 0}, Version{1, 9, 9}, true},
		{Version{1, 2, 3}, Version{1, 0, 7}, true},
		{Version{1, 0, 0}, Version{2, 0, 0}, false},
		{Version{2, 0, 0}, Version{1, 0, 0}, false},
		{Version{0, 1, 0}, Version{1, 1, 0}, false},
	}
	for _, c := range cases {
		if got := c.a.Compatible(c.b); got != c.want {
			t.Errorf("%v compatible with %v = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	if got := (Version{Major: 1, Minor: 0, Patch: 0}).String(); got != "1.0.0" {
		t.Fatalf("String() = %q, want \"1.0.0\"", got)
	}
}

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
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"seed scenario", Config{RingSize: 4096, MaxMessageSize: 1024, Flags: FlagNoChecksum}, true},
		{"checksums on", Config{RingSize: 4096, MaxMessageSize: 1024}, true},
		{"advisory flags", Config{RingSize: 8192, MaxMessageSize: 1024,
			Flags: FlagNoChecksum | FlagSingleProducer | FlagSingleConsumer}, true},

		{"zero ring", Config{RingSize: 0, MaxMessageSize: 64}, false},
		{"ring below minimum", Config{RingSize: 2048, MaxMessageSize: 64}, false},
		{"ring not power of two", Config{RingSize: 5000, MaxMessageSize: 64}, false},
		{"message below minimum", Config{RingSize: 4096, MaxMessageSize: 63}, false},
		{"message half of ring", Config{RingSize: 4096, MaxMessageSize: 2048}, false},
		{"frame beyond half ring", Config{RingSize: 4096, MaxMessageSize: 2047}, false},
		{"reserved flag bits", Config{RingSize: 4096, MaxMessageSize: 1024, Flags: 1 << 4}, false},
		{"high reserved bit", Config{RingSize: 4096, MaxMessageSize: 1024, Flags: 1 << 63}, false},
		{"overwrite rejected", Config{RingSize: 4096, MaxMessageSize: 1024, Flags: FlagOverwrite}, false},
	}

	for _, c := range cases {
		err := c.cfg.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: Validate() = %v, want nil", c.name, err)
		}
		if !c.ok {
			if err == nil {
				t.Errorf("%s: Validate() = nil, want error", c.name)
			} else if !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("%s: Validate() = %v, want ErrInvalidOperation", c.name, err)
			}
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

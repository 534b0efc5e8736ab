// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package sym implements process-wide string interning.  Identifiers
// are represented everywhere else as dense Symbol handles; the pool is
// append-only and lives for the process, so handles never dangle.
package sym

import (
	"sync"
)

// Symbol is an interned identifier handle.  Two symbols are equal exactly
// when the strings they were interned from are equal, which makes symbols
// cheap map keys and cheap to compare.  Handles are allocated densely
// from one; the zero value is the invalid sentinel, so uninitialised
// symbol fields are invalid rather than aliasing a real identifier.
type Symbol uint32

// Invalid is the sentinel symbol.  It resolves to the fixed text
// "<Invalid>" and never compares equal to any interned symbol.
const Invalid Symbol = 0

// invalidText is the resolved form of the invalid sentinel.
const invalidText = "<Invalid>"

// pool is the process-wide intern pool.  Entries are append only and
// persist until process exit, hence text references handed out by Text
// remain valid after the lock is released.
type pool struct {
	mu      sync.Mutex
	strings []string
	index   map[string]Symbol
}

var (
	globalOnce sync.Once
	global     *pool
)

// globalPool initialises the pool on first use.
func globalPool() *pool {
	globalOnce.Do(func() {
		global = &pool{index: make(map[string]Symbol)}
	})
	//
	return global
}

// Intern maps the given text to its dense handle, allocating a new handle
// if the text has not been seen before.  Interning never fails and never
// forgets.
func Intern(text string) Symbol {
	p := globalPool()
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	if s, ok := p.index[text]; ok {
		return s
	}
	// Handle 0 is reserved for the invalid sentinel.
	s := Symbol(len(p.strings) + 1)
	p.strings = append(p.strings, text)
	p.index[text] = s
	//
	return s
}

// TryLookup resolves text to an existing symbol without interning it.
// Returns Invalid when the text has never been interned.
func TryLookup(text string) Symbol {
	p := globalPool()
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	if s, ok := p.index[text]; ok {
		return s
	}
	//
	return Invalid
}

// Valid reports whether this symbol refers to an interned string.
func (s Symbol) Valid() bool {
	return s != Invalid
}

// String returns the text this symbol was interned from, or "<Invalid>"
// for the sentinel (and for any handle outside the pool).
func (s Symbol) String() string {
	if s == Invalid {
		return invalidText
	}
	//
	p := globalPool()
	p.mu.Lock()
	defer p.mu.Unlock()
	//
	if int(s) > len(p.strings) {
		return invalidText
	}
	//
	return p.strings[s-1]
}

// Cmp returns < 0 if this symbol is less than other, 0 if they are equal,
// and > 0 otherwise.  Symbols are totally ordered by handle.
func (s Symbol) Cmp(other Symbol) int {
	switch {
	case s < other:
		return -1
	case s > other:
		return 1
	default:
		return 0
	}
}

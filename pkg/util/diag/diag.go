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
package diag

import (
	"fmt"
	"io"
	"strings"
)

// Kind classifies a reported condition.  Every recoverable failure in the
// elaborator maps to exactly one kind, which lets callers count or filter
// specific conditions without parsing message text.
type Kind uint8

// The condition taxonomy.  All kinds except CyclicInstantiation are
// recoverable: the reporting operation continues with a deterministic
// recovery value.
const (
	// UnknownParameter indicates a parameter symbol was not bound in the
	// environment during integer evaluation.
	UnknownParameter Kind = iota
	// UnknownIdentifier indicates a name used in a bit-vector expression
	// resolved to neither a port nor a wire.
	UnknownIdentifier
	// UnknownModule indicates an instance's target module was not found in
	// the declaration library.
	UnknownModule
	// UnknownPort indicates a connection's formal name is not a port of the
	// callee.
	UnknownPort
	// WidthMismatch indicates an assignment or port binding whose two sides
	// flatten to different lengths.
	WidthMismatch
	// SliceOutOfRange indicates a slice whose evaluated absolute bits lie
	// outside the owner's declared range.
	SliceOutOfRange
	// WidthlessConstant indicates a constant reached the flattener with
	// width zero.
	WidthlessConstant
	// NonAssignableLhs indicates an assignment target bit resolved to a
	// constant.
	NonAssignableLhs
	// ZeroStep indicates a generate-for whose step evaluated to zero.
	ZeroStep
	// ScopeOutOfRange indicates a scope path index beyond the instance list
	// at some depth.
	ScopeOutOfRange
	// NullCalleeRef indicates a scope path traversed an instance with no
	// callee.
	NullCalleeRef
	// CyclicInstantiation indicates a module specialisation was requested
	// while that same specialisation was still being linked.  Fatal.
	CyclicInstantiation
	// FeatureUnsupported indicates a construct which is recognised but not
	// handled in this context (e.g. arithmetic operators in wiring).
	FeatureUnsupported
	//
	numKinds
)

// String returns the canonical name of this kind.
func (k Kind) String() string {
	switch k {
	case UnknownParameter:
		return "UnknownParameter"
	case UnknownIdentifier:
		return "UnknownIdentifier"
	case UnknownModule:
		return "UnknownModule"
	case UnknownPort:
		return "UnknownPort"
	case WidthMismatch:
		return "WidthMismatch"
	case SliceOutOfRange:
		return "SliceOutOfRange"
	case WidthlessConstant:
		return "WidthlessConstant"
	case NonAssignableLhs:
		return "NonAssignableLhs"
	case ZeroStep:
		return "ZeroStep"
	case ScopeOutOfRange:
		return "ScopeOutOfRange"
	case NullCalleeRef:
		return "NullCallee"
	case CyclicInstantiation:
		return "CyclicInstantiation"
	case FeatureUnsupported:
		return "FeatureUnsupported"
	default:
		return "?"
	}
}

// Sink receives warnings and errors during elaboration.  Messages are
// written as "<LEVEL>: <message>\n" lines, with nested messages indented
// by spaces.  A nil *Sink discards everything, so callers can pass nil
// when they do not care about diagnostics.
type Sink struct {
	out      io.Writer
	counts   [numKinds]uint
	warnings uint
	errors   uint
}

// NewSink constructs a sink writing to the given writer.  The writer may
// be nil, in which case messages are counted but not written.
func NewSink(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Warnf reports a warning of the given kind.
func (s *Sink) Warnf(kind Kind, format string, args ...any) {
	s.report("WARN", kind, 0, format, args...)
}

// Errorf reports an error of the given kind.
func (s *Sink) Errorf(kind Kind, format string, args ...any) {
	s.report("ERROR", kind, 0, format, args...)
}

// WarnAtf reports a warning indented by the given number of spaces.
func (s *Sink) WarnAtf(indent int, kind Kind, format string, args ...any) {
	s.report("WARN", kind, indent, format, args...)
}

// ErrorAtf reports an error indented by the given number of spaces.
func (s *Sink) ErrorAtf(indent int, kind Kind, format string, args ...any) {
	s.report("ERROR", kind, indent, format, args...)
}

// Count returns how many messages of the given kind have been reported.
func (s *Sink) Count(kind Kind) uint {
	if s == nil {
		return 0
	}
	//
	return s.counts[kind]
}

// Warnings returns the total number of warnings reported.
func (s *Sink) Warnings() uint {
	if s == nil {
		return 0
	}
	//
	return s.warnings
}

// Errors returns the total number of errors reported.
func (s *Sink) Errors() uint {
	if s == nil {
		return 0
	}
	//
	return s.errors
}

func (s *Sink) report(level string, kind Kind, indent int, format string, args ...any) {
	if s == nil {
		return
	}
	//
	s.counts[kind]++
	//
	if level == "WARN" {
		s.warnings++
	} else {
		s.errors++
	}
	//
	if s.out != nil {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(s.out, "%s%s: %s\n", strings.Repeat(" ", indent), level, msg)
	}
}

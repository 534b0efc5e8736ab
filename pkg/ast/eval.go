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
package ast

import (
	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
)

// ParamEnv binds parameter symbols to their (already evaluated) values.
type ParamEnv map[sym.Symbol]int64

// Clone returns an independent copy of this environment.
func (env ParamEnv) Clone() ParamEnv {
	clone := make(ParamEnv, len(env))
	//
	for k, v := range env {
		clone[k] = v
	}
	//
	return clone
}

// Update applies every binding of overrides on top of this environment,
// in place.
func (env ParamEnv) Update(overrides ParamEnv) {
	for k, v := range overrides {
		env[k] = v
	}
}

// EvalInt folds an integer expression to a signed 64-bit value under the
// given environment.  Arithmetic wraps on overflow.  An unbound parameter
// is reported as UnknownParameter and evaluates to zero, so surrounding
// computation keeps its shape.
func EvalInt(e IntExpr, env ParamEnv, d *diag.Sink) int64 {
	switch e.Kind {
	case IntLiteral:
		return e.Value
	case IntParameter:
		if v, ok := env[e.Name]; ok {
			return v
		}
		//
		d.Errorf(diag.UnknownParameter, "unknown parameter '%s'", e.Name)
		//
		return 0
	default:
		return evalOp(e, env, d)
	}
}

func evalOp(e IntExpr, env ParamEnv, d *diag.Sink) int64 {
	if len(e.Operands) == 0 {
		return 0
	}
	// Unary subtraction denotes negation.
	if e.Op == OpSub && len(e.Operands) == 1 {
		return -EvalInt(e.Operands[0], env, d)
	}
	//
	acc := EvalInt(e.Operands[0], env, d)
	//
	for _, op := range e.Operands[1:] {
		v := EvalInt(op, env, d)
		//
		if e.Op == OpAdd {
			acc += v
		} else {
			acc -= v
		}
	}
	//
	return acc
}

// WidthFromRange returns the bit width of a declared [msb:lsb] range.
// Either orientation is permitted; the width is always at least one.
func WidthFromRange(msb, lsb int64) int64 {
	if msb >= lsb {
		return msb - lsb + 1
	}
	//
	return lsb - msb + 1
}

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
	"math"
	"testing"

	"github.com/hdltools/go-netelab/pkg/util/diag"
	"github.com/hdltools/go-netelab/pkg/util/sym"
	"github.com/stretchr/testify/assert"
)

func TestEvalInt(t *testing.T) {
	n := sym.Intern("N")
	m := sym.Intern("M")
	env := ParamEnv{n: 8, m: 3}
	//
	tests := []struct {
		name     string
		expr     IntExpr
		expected int64
	}{
		{"literal", IntLit(42), 42},
		{"negative literal", IntLit(-7), -7},
		{"parameter", IntParam(n), 8},
		{"add", IntAdd(IntLit(1), IntLit(2), IntLit(3)), 6},
		{"sub binary", IntSub(IntLit(10), IntLit(4)), 6},
		{"sub nary", IntSub(IntLit(10), IntLit(4), IntLit(3)), 3},
		{"unary neg positive", IntNeg(IntLit(5)), -5},
		{"unary neg negative", IntNeg(IntLit(-5)), 5},
		{"mixed", IntSub(IntParam(n), IntAdd(IntParam(m), IntLit(1))), 4},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvalInt(tt.expr, env, nil))
		})
	}
}

func TestEvalIntUnknownParameter(t *testing.T) {
	d := diag.NewSink(nil)
	missing := sym.Intern("MISSING_PARAM")
	// Unknown parameters recover to zero, preserving the shape of the
	// surrounding computation.
	v := EvalInt(IntAdd(IntLit(5), IntParam(missing)), ParamEnv{}, d)
	assert.Equal(t, int64(5), v)
	assert.Equal(t, uint(1), d.Count(diag.UnknownParameter))
}

func TestEvalIntWrapping(t *testing.T) {
	env := ParamEnv{}
	// Signed 64-bit wrapping is allowed and deterministic.
	v := EvalInt(IntAdd(IntLit(math.MaxInt64), IntLit(1)), env, nil)
	assert.Equal(t, int64(math.MinInt64), v)
}

func TestWidthFromRange(t *testing.T) {
	assert.Equal(t, int64(8), WidthFromRange(7, 0))
	assert.Equal(t, int64(8), WidthFromRange(0, 7))
	assert.Equal(t, int64(1), WidthFromRange(3, 3))
	assert.Equal(t, int64(6), WidthFromRange(-2, 3))
}

func TestParamEnvCloneUpdate(t *testing.T) {
	a := sym.Intern("PA")
	b := sym.Intern("PB")
	env := ParamEnv{a: 1, b: 2}
	clone := env.Clone()
	clone.Update(ParamEnv{b: 9})
	//
	assert.Equal(t, int64(2), env[b], "update must not touch the original")
	assert.Equal(t, int64(9), clone[b])
	assert.Equal(t, int64(1), clone[a])
}

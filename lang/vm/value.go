// Package vm implements the virtual machine that executes a
// lang/compiler.Chunk, and the runtime representation of its values. The
// value set is closed: the eight numeric kinds, bool, string, unit, and the
// two callable kinds.
package vm

import (
	"fmt"
	"math"

	"github.com/mna/slang/lang/compiler"
)

// Value is the interface implemented by every runtime value. Tag identifies
// the concrete kind without a type switch, matching the stable wire tag
// byte values from the bytecode container format.
type Value interface {
	String() string
	Tag() compiler.ConstantTag
}

type (
	I32    int32
	I64    int64
	U32    uint32
	U64    uint64
	F32    float32
	F64    float64
	Bool   bool
	String string
	Unit   struct{}
)

func (v I32) String() string    { return fmt.Sprintf("%d", int32(v)) }
func (v I64) String() string    { return fmt.Sprintf("%d", int64(v)) }
func (v U32) String() string    { return fmt.Sprintf("%d", uint32(v)) }
func (v U64) String() string    { return fmt.Sprintf("%d", uint64(v)) }
func (v F32) String() string    { return fmt.Sprintf("%g", float32(v)) }
func (v F64) String() string    { return fmt.Sprintf("%g", float64(v)) }
func (v Bool) String() string   { return fmt.Sprintf("%t", bool(v)) }
func (v String) String() string { return string(v) }
func (Unit) String() string     { return "unit" }

func (I32) Tag() compiler.ConstantTag    { return compiler.TagI32 }
func (I64) Tag() compiler.ConstantTag    { return compiler.TagI64 }
func (U32) Tag() compiler.ConstantTag    { return compiler.TagU32 }
func (U64) Tag() compiler.ConstantTag    { return compiler.TagU64 }
func (F32) Tag() compiler.ConstantTag    { return compiler.TagF32 }
func (F64) Tag() compiler.ConstantTag    { return compiler.TagF64 }
func (Bool) Tag() compiler.ConstantTag   { return compiler.TagBool }
func (String) Tag() compiler.ConstantTag { return compiler.TagString }
func (Unit) Tag() compiler.ConstantTag   { return compiler.TagUnit }

var (
	_ Value = I32(0)
	_ Value = I64(0)
	_ Value = U32(0)
	_ Value = U64(0)
	_ Value = F32(0)
	_ Value = F64(0)
	_ Value = Bool(false)
	_ Value = String("")
	_ Value = Unit{}
)

// Function is a compiled user function: a body already present in the
// owning chunk's code. It carries no closure state since the language has
// no captures.
type Function struct {
	Name       string
	Arity      int
	CodeOffset uint32
	Params     []string
}

func (fn *Function) String() string           { return fmt.Sprintf("<fn %s>", fn.Name) }
func (fn *Function) Tag() compiler.ConstantTag { return compiler.TagFunction }
func (fn *Function) CallableName() string      { return fn.Name }

// NativeImpl is a host-provided implementation of a native function. args are
// passed in call order; the implementation must not retain the slice.
type NativeImpl func(args []Value) (Value, error)

// NativeFunction is a host-provided callable, rebound by name at chunk load
// time — the container format has no way to transport executable code, so
// the Impl field is never populated by deserialization; callers of
// (*Thread).Run or a chunk loader must bind it via Predeclared.
type NativeFunction struct {
	Name  string
	Arity int
	Impl  NativeImpl
}

func (fn *NativeFunction) String() string           { return fmt.Sprintf("<native fn %s>", fn.Name) }
func (fn *NativeFunction) Tag() compiler.ConstantTag { return compiler.TagNativeFunction }
func (fn *NativeFunction) CallableName() string      { return fn.Name }

var (
	_ Value = (*Function)(nil)
	_ Value = (*NativeFunction)(nil)
)

// Callable is implemented by every value that may appear as the callee
// operand of Call.
type Callable interface {
	Value
	CallableName() string
}

// constantToValue converts a compiler.ConstantValue — plain, behavior-free pool
// data — into the typed, live Value the machine operates on. A
// NativeFunction constant is never produced by the compiler (it has no
// source syntax to emit one): it exists here only so a future host-authored
// loader can construct one from container data plus a name-based rebind.
func constantToValue(c compiler.ConstantValue) Value {
	switch c.Tag {
	case compiler.TagI32:
		return I32(c.Int)
	case compiler.TagI64:
		return I64(c.Int)
	case compiler.TagU32:
		return U32(c.Int)
	case compiler.TagU64:
		return U64(c.Int)
	case compiler.TagF32:
		return F32(c.Float)
	case compiler.TagF64:
		return F64(c.Float)
	case compiler.TagString:
		return String(c.Str)
	case compiler.TagBool:
		return Bool(c.Bool)
	case compiler.TagUnit:
		return Unit{}
	case compiler.TagFunction:
		return &Function{Name: c.Name, Arity: c.Arity, CodeOffset: c.CodeOffset, Params: c.Params}
	case compiler.TagNativeFunction:
		return &NativeFunction{Name: c.Name, Arity: c.Arity}
	default:
		panic(fmt.Sprintf("vm: unhandled constant tag %s", c.Tag))
	}
}

func isInfAfterFinite(r float64, a, b float64) bool {
	return math.IsInf(r, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0)
}

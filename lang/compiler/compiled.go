package compiler

import "fmt"

// ConstantTag is a constant's type tag, as persisted by the bytecode
// container. Values are fixed and must remain stable across versions since
// they appear in the serialized format.
type ConstantTag uint8

const (
	TagI32            ConstantTag = 0
	TagI64            ConstantTag = 1
	TagU32            ConstantTag = 2
	TagU64            ConstantTag = 3
	TagString         ConstantTag = 4
	TagF64            ConstantTag = 5
	TagFunction       ConstantTag = 6
	TagNativeFunction ConstantTag = 7
	TagF32            ConstantTag = 8
	TagBool           ConstantTag = 9
	TagUnit           ConstantTag = 10
)

func (t ConstantTag) String() string {
	switch t {
	case TagI32:
		return "i32"
	case TagI64:
		return "i64"
	case TagU32:
		return "u32"
	case TagU64:
		return "u64"
	case TagString:
		return "string"
	case TagF64:
		return "f64"
	case TagFunction:
		return "function"
	case TagNativeFunction:
		return "native_function"
	case TagF32:
		return "f32"
	case TagBool:
		return "bool"
	case TagUnit:
		return "unit"
	default:
		return fmt.Sprintf("illegal tag (%d)", t)
	}
}

// ConstantValue is an unbound entry of a Chunk's constant pool: plain data, with
// no host-side behavior attached. A Function constant is fully
// self-contained (its code already lives in the same Chunk); a
// NativeFunction constant carries only its name and arity, since a
// container cannot transport executable code — the host rebinds it by name
// when the chunk is loaded.
type ConstantValue struct {
	Tag ConstantTag

	Int   int64   // TagI32, TagI64, TagU32, TagU64 (zero/sign-extended as appropriate)
	Float float64 // TagF32, TagF64
	Str   string  // TagString
	Bool  bool    // TagBool

	// TagFunction, TagNativeFunction
	Name       string
	Arity      int
	CodeOffset uint32   // TagFunction only
	Params     []string // TagFunction only, len(Params) == Arity
}

func (c ConstantValue) String() string {
	switch c.Tag {
	case TagI32, TagI64, TagU32, TagU64:
		return fmt.Sprintf("%s %d", c.Tag, c.Int)
	case TagF32, TagF64:
		return fmt.Sprintf("%s %g", c.Tag, c.Float)
	case TagString:
		return fmt.Sprintf("string %q", c.Str)
	case TagBool:
		return fmt.Sprintf("bool %t", c.Bool)
	case TagUnit:
		return "unit"
	case TagFunction:
		return fmt.Sprintf("function %s/%d @%d", c.Name, c.Arity, c.CodeOffset)
	case TagNativeFunction:
		return fmt.Sprintf("native_function %s/%d", c.Name, c.Arity)
	default:
		return fmt.Sprintf("<%s>", c.Tag)
	}
}

// Chunk is the compiled artifact produced by Compile: flat bytecode plus the
// constant and identifier pools it indexes into, and a per-instruction line
// table for runtime diagnostics. A Chunk owns all four slices; nothing
// outside it mutates them after compilation completes.
type Chunk struct {
	Code        []byte
	Constants   []ConstantValue
	Identifiers []string
	Lines       []int
}

package vm

import (
	"fmt"
	"math"

	"github.com/mna/slang/lang/compiler"
)

// binaryArith implements the checked Add/Sub/Mul/Div opcodes: identical
// concrete numeric types perform the operation with overflow/underflow/
// division-by-zero checks; + on two strings concatenates. The
// analyzer has already rejected every other operand-type combination by the
// time codegen runs, but the VM re-checks since it does not trust the chunk
// (a hand-assembled one, for instance, never went through analysis).
func binaryArith(op compiler.Opcode, a, b Value) (Value, error) {
	if op == compiler.Add {
		if as, ok := a.(String); ok {
			if bs, ok := b.(String); ok {
				return as + bs, nil
			}
		}
	}

	switch x := a.(type) {
	case I32:
		y, ok := b.(I32)
		if !ok {
			break
		}
		return arithI32(op, int32(x), int32(y))
	case I64:
		y, ok := b.(I64)
		if !ok {
			break
		}
		return arithI64(op, int64(x), int64(y))
	case U32:
		y, ok := b.(U32)
		if !ok {
			break
		}
		return arithU32(op, uint32(x), uint32(y))
	case U64:
		y, ok := b.(U64)
		if !ok {
			break
		}
		return arithU64(op, uint64(x), uint64(y))
	case F32:
		y, ok := b.(F32)
		if !ok {
			break
		}
		return arithF32(op, float32(x), float32(y))
	case F64:
		y, ok := b.(F64)
		if !ok {
			break
		}
		return arithF64(op, float64(x), float64(y))
	}
	return nil, fmt.Errorf("cannot apply %s to %s and %s", op, a.Tag(), b.Tag())
}

func arithI32(op compiler.Opcode, a, b int32) (Value, error) {
	switch op {
	case compiler.Add:
		r := int64(a) + int64(b)
		if r < math.MinInt32 || r > math.MaxInt32 {
			return nil, fmt.Errorf("integer overflow in i32 addition")
		}
		return I32(r), nil
	case compiler.Sub:
		r := int64(a) - int64(b)
		if r < math.MinInt32 || r > math.MaxInt32 {
			return nil, fmt.Errorf("integer underflow in i32 subtraction")
		}
		return I32(r), nil
	case compiler.Mul:
		r := int64(a) * int64(b)
		if r < math.MinInt32 || r > math.MaxInt32 {
			return nil, fmt.Errorf("integer overflow in i32 multiplication")
		}
		return I32(r), nil
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if a == math.MinInt32 && b == -1 {
			return nil, fmt.Errorf("integer overflow in i32 division")
		}
		return I32(a / b), nil
	}
	panic("vm: arithI32 called with non-arithmetic opcode")
}

func arithI64(op compiler.Opcode, a, b int64) (Value, error) {
	switch op {
	case compiler.Add:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return nil, fmt.Errorf("integer overflow in i64 addition")
		}
		return I64(r), nil
	case compiler.Sub:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return nil, fmt.Errorf("integer underflow in i64 subtraction")
		}
		return I64(r), nil
	case compiler.Mul:
		if a == 0 || b == 0 {
			return I64(0), nil
		}
		r := a * b
		if r/b != a {
			return nil, fmt.Errorf("integer overflow in i64 multiplication")
		}
		return I64(r), nil
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return nil, fmt.Errorf("integer overflow in i64 division")
		}
		return I64(a / b), nil
	}
	panic("vm: arithI64 called with non-arithmetic opcode")
}

func arithU32(op compiler.Opcode, a, b uint32) (Value, error) {
	switch op {
	case compiler.Add:
		r := uint64(a) + uint64(b)
		if r > math.MaxUint32 {
			return nil, fmt.Errorf("integer overflow in u32 addition")
		}
		return U32(r), nil
	case compiler.Sub:
		if b > a {
			return nil, fmt.Errorf("integer underflow in u32 subtraction")
		}
		return U32(a - b), nil
	case compiler.Mul:
		r := uint64(a) * uint64(b)
		if r > math.MaxUint32 {
			return nil, fmt.Errorf("integer overflow in u32 multiplication")
		}
		return U32(r), nil
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return U32(a / b), nil
	}
	panic("vm: arithU32 called with non-arithmetic opcode")
}

func arithU64(op compiler.Opcode, a, b uint64) (Value, error) {
	switch op {
	case compiler.Add:
		r := a + b
		if r < a {
			return nil, fmt.Errorf("integer overflow in u64 addition")
		}
		return U64(r), nil
	case compiler.Sub:
		if b > a {
			return nil, fmt.Errorf("integer underflow in u64 subtraction")
		}
		return U64(a - b), nil
	case compiler.Mul:
		if a == 0 || b == 0 {
			return U64(0), nil
		}
		r := a * b
		if r/b != a {
			return nil, fmt.Errorf("integer overflow in u64 multiplication")
		}
		return U64(r), nil
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return U64(a / b), nil
	}
	panic("vm: arithU64 called with non-arithmetic opcode")
}

func arithF32(op compiler.Opcode, a, b float32) (Value, error) {
	var r float32
	switch op {
	case compiler.Add:
		r = a + b
	case compiler.Sub:
		r = a - b
	case compiler.Mul:
		r = a * b
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		r = a / b
	default:
		panic("vm: arithF32 called with non-arithmetic opcode")
	}
	if isInfAfterFinite(float64(r), float64(a), float64(b)) {
		return nil, fmt.Errorf("floating point overflow in f32 %s", op)
	}
	return F32(r), nil
}

func arithF64(op compiler.Opcode, a, b float64) (Value, error) {
	var r float64
	switch op {
	case compiler.Add:
		r = a + b
	case compiler.Sub:
		r = a - b
	case compiler.Mul:
		r = a * b
	case compiler.Div:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		r = a / b
	default:
		panic("vm: arithF64 called with non-arithmetic opcode")
	}
	if isInfAfterFinite(r, a, b) {
		return nil, fmt.Errorf("floating point overflow in f64 %s", op)
	}
	return F64(r), nil
}

// negate implements the Neg opcode: signed numeric only, fails on
// i{32,64}::MIN since its magnitude has no positive representation.
func negate(v Value) (Value, error) {
	switch x := v.(type) {
	case I32:
		if x == math.MinInt32 {
			return nil, fmt.Errorf("integer overflow in i32 negation")
		}
		return -x, nil
	case I64:
		if x == math.MinInt64 {
			return nil, fmt.Errorf("integer overflow in i64 negation")
		}
		return -x, nil
	case U32:
		return nil, fmt.Errorf("cannot negate unsigned integer u32")
	case U64:
		return nil, fmt.Errorf("cannot negate unsigned integer u64")
	case F32:
		return -x, nil
	case F64:
		return -x, nil
	}
	return nil, fmt.Errorf("can only negate numbers, got %s", v.Tag())
}

// compare implements Eq/Ne/Lt/Gt/Le/Ge: ordering is defined only for same-
// typed numeric operands; Eq/Ne additionally accept bool and string.
func compare(op compiler.Opcode, a, b Value) (Value, error) {
	if op == compiler.Eq || op == compiler.Ne {
		eq, err := equal(a, b)
		if err != nil {
			return nil, err
		}
		if op == compiler.Ne {
			eq = !eq
		}
		return Bool(eq), nil
	}

	cmp, err := numericCmp(a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case compiler.Lt:
		return Bool(cmp < 0), nil
	case compiler.Gt:
		return Bool(cmp > 0), nil
	case compiler.Le:
		return Bool(cmp <= 0), nil
	case compiler.Ge:
		return Bool(cmp >= 0), nil
	}
	panic("vm: compare called with non-comparison opcode")
}

func equal(a, b Value) (bool, error) {
	switch x := a.(type) {
	case I32:
		y, ok := b.(I32)
		return ok && x == y, okOrErr(ok, a, b)
	case I64:
		y, ok := b.(I64)
		return ok && x == y, okOrErr(ok, a, b)
	case U32:
		y, ok := b.(U32)
		return ok && x == y, okOrErr(ok, a, b)
	case U64:
		y, ok := b.(U64)
		return ok && x == y, okOrErr(ok, a, b)
	case F32:
		y, ok := b.(F32)
		return ok && x == y, okOrErr(ok, a, b)
	case F64:
		y, ok := b.(F64)
		return ok && x == y, okOrErr(ok, a, b)
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y, okOrErr(ok, a, b)
	case String:
		y, ok := b.(String)
		return ok && x == y, okOrErr(ok, a, b)
	}
	return false, fmt.Errorf("cannot compare %s and %s with ==/!=", a.Tag(), b.Tag())
}

func okOrErr(ok bool, a, b Value) error {
	if ok {
		return nil
	}
	return fmt.Errorf("cannot compare %s and %s with ==/!=", a.Tag(), b.Tag())
}

func numericCmp(a, b Value) (int, error) {
	switch x := a.(type) {
	case I32:
		y, ok := b.(I32)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	case I64:
		y, ok := b.(I64)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	case U32:
		y, ok := b.(U32)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	case U64:
		y, ok := b.(U64)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	case F32:
		y, ok := b.(F32)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	case F64:
		y, ok := b.(F64)
		if !ok {
			break
		}
		return cmpOrdered(x, y), nil
	}
	return 0, fmt.Errorf("cannot order %s and %s", a.Tag(), b.Tag())
}

func cmpOrdered[T I32 | I64 | U32 | U64 | F32 | F64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// logical implements the And/Or opcodes; redundant with the short-circuit
// codegen for && and ||, but the opcodes remain independently correct so a
// hand-assembled chunk can rely on them.
func logical(op compiler.Opcode, a, b Value) (Value, error) {
	ab, ok := a.(Bool)
	if !ok {
		return nil, fmt.Errorf("logical %s requires boolean operands, got %s", op, a.Tag())
	}
	bb, ok := b.(Bool)
	if !ok {
		return nil, fmt.Errorf("logical %s requires boolean operands, got %s", op, b.Tag())
	}
	if op == compiler.And {
		return ab && bb, nil
	}
	return ab || bb, nil
}

func not(v Value) (Value, error) {
	b, ok := v.(Bool)
	if !ok {
		return nil, fmt.Errorf("logical not requires a boolean operand, got %s", v.Tag())
	}
	return !b, nil
}

package vm_test

import (
	"bytes"
	"testing"

	"github.com/mna/slang/lang/compiler"
	"github.com/mna/slang/lang/vm"
	"github.com/stretchr/testify/require"
)

func asm(t *testing.T, src string) *compiler.Chunk {
	t.Helper()
	c, err := compiler.Assemble([]byte(src))
	require.NoError(t, err)
	return c
}

func run(t *testing.T, src string) string {
	t.Helper()
	c := asm(t, src)
	var out bytes.Buffer
	th := vm.NewThread()
	th.Stdout = &out
	require.NoError(t, th.Run(c))
	return out.String()
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	c := asm(t, src)
	var out bytes.Buffer
	th := vm.NewThread()
	th.Stdout = &out
	return th.Run(c)
}

func TestScenarioAddAndPrint(t *testing.T) {
	out := run(t, `
constants:
	i64 2
	i64 3
identifiers:
	a
	b
	print_value
code:
	constant 0
	set_variable 0
	pop
	constant 1
	set_variable 1
	pop
	get_variable 0
	get_variable 1
	add
	get_variable 2
	call 1
	pop
`)
	require.Equal(t, "5\n", out)
}

func TestScenarioBooleanPrint(t *testing.T) {
	out := run(t, `
constants:
	bool true
	bool false
identifiers:
	print_value
code:
	constant 0
	get_variable 0
	call 1
	pop
	constant 1
	get_variable 0
	call 1
	pop
`)
	require.Equal(t, "true\nfalse\n", out)
}

func TestScenarioMutableReassignment(t *testing.T) {
	out := run(t, `
constants:
	i32 1
	i32 2
identifiers:
	x
	print_value
code:
	constant 0
	set_variable 0
	pop
	constant 1
	set_variable 0
	pop
	get_variable 0
	get_variable 1
	call 1
	pop
`)
	require.Equal(t, "2\n", out)
}

func TestScenarioIfElseNonBoolConditionErrors(t *testing.T) {
	err := runErr(t, `
constants:
	i32 1
code:
	constant 0
	jump_if_false 0
	pop
`)
	require.ErrorContains(t, err, "bool")
}

func TestScenarioIfElseBranches(t *testing.T) {
	// then-branch spans addr6..addr14 (begin_scope..end_scope), jump_if_false
	// targets addr18 (the else branch's begin_scope); the then-branch's own
	// unconditional jump skips over the else branch to addr27 (end of code).
	out := run(t, `
constants:
	bool true
	i32 1
	i32 2
identifiers:
	print_value
code:
	constant 0
	jump_if_false 13
	pop
	begin_scope
	constant 1
	get_variable 0
	call 1
	pop
	end_scope
	jump 9
	begin_scope
	constant 2
	get_variable 0
	call 1
	pop
	end_scope
`)
	require.Equal(t, "1\n", out)
}

func TestFunctionCallReturnsValue(t *testing.T) {
	// top-level jump skips over the function body (addr3..addr10) to the
	// define_function at addr11; the function's own code offset is addr3.
	out := run(t, `
constants:
	function add 2 3 a b
	i32 1
	i32 2
identifiers:
	a
	b
	add
	print_value
code:
	jump 8
	begin_scope
	get_variable 0
	get_variable 1
	add
	return
	end_scope
	define_function 2 0
	constant 1
	constant 2
	get_variable 2
	call 2
	get_variable 3
	call 1
	pop
`)
	require.Equal(t, "3\n", out)
}

func TestTopLevelReturnHaltsProgram(t *testing.T) {
	out := run(t, `
constants:
	i32 1
identifiers:
	print_value
code:
	constant 0
	get_variable 0
	call 1
	pop
	return
	constant 0
	get_variable 0
	call 1
	pop
`)
	require.Equal(t, "1\n", out)
}

func TestAddOverflowI32(t *testing.T) {
	err := runErr(t, `
constants:
	i32 2147483647
	i32 1
code:
	constant 0
	constant 1
	add
`)
	require.ErrorContains(t, err, "overflow")
}

func TestDivisionByZero(t *testing.T) {
	err := runErr(t, `
constants:
	i64 1
	i64 0
code:
	constant 0
	constant 1
	div
`)
	require.ErrorContains(t, err, "division by zero")
}

func TestNegateMinI32Errors(t *testing.T) {
	err := runErr(t, `
constants:
	i32 -2147483648
code:
	constant 0
	neg
`)
	require.ErrorContains(t, err, "overflow")
}

func TestNegateUnsignedAlwaysErrors(t *testing.T) {
	err := runErr(t, `
constants:
	u32 1
code:
	constant 0
	neg
`)
	require.ErrorContains(t, err, "cannot negate unsigned")
}

func TestUndefinedVariableErrors(t *testing.T) {
	err := runErr(t, `
identifiers:
	missing
code:
	get_variable 0
`)
	require.ErrorContains(t, err, "undefined variable")
}

func TestCallArityMismatchErrors(t *testing.T) {
	err := runErr(t, `
constants:
	function f 1 3 a
identifiers:
	f
code:
	jump 3
	begin_scope
	return
	end_scope
	define_function 0 0
	get_variable 0
	call 0
`)
	require.ErrorContains(t, err, "expects 1 argument")
}

func TestCallOfNonCallableErrors(t *testing.T) {
	err := runErr(t, `
constants:
	i32 1
code:
	constant 0
	call 0
`)
	require.ErrorContains(t, err, "cannot call a value of type")
}

func TestScopeRestoresShadowedGlobalOnExit(t *testing.T) {
	out := run(t, `
constants:
	i32 1
	i32 2
identifiers:
	x
	print_value
code:
	constant 0
	set_variable 0
	pop
	begin_scope
	constant 1
	set_variable 0
	pop
	end_scope
	get_variable 0
	get_variable 1
	call 1
	pop
`)
	require.Equal(t, "1\n", out)
}

func TestPredeclaredNativeFunctionIsCallable(t *testing.T) {
	c := asm(t, `
constants:
	i32 21
identifiers:
	double
code:
	constant 0
	get_variable 0
	call 1
	pop
`)
	th := vm.NewThread()
	var out bytes.Buffer
	th.Stdout = &out
	th.Predeclared("double", &vm.NativeFunction{
		Name:  "double",
		Arity: 1,
		Impl: func(args []vm.Value) (vm.Value, error) {
			n, ok := args[0].(vm.I32)
			require.True(t, ok)
			return n * 2, nil
		},
	})
	require.NoError(t, th.Run(c))
}

func TestStringConcatenation(t *testing.T) {
	out := run(t, `
constants:
	string "foo"
	string "bar"
identifiers:
	print_value
code:
	constant 0
	constant 1
	add
	get_variable 0
	call 1
	pop
`)
	require.Equal(t, "foobar\n", out)
}

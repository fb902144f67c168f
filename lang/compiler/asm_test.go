package compiler_test

import (
	"testing"

	"github.com/mna/slang/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string // error "contains" this err string, no error if empty
	}{
		{"empty", ``, "expected code section"},
		{"not code", `constants:`, "expected code section"},
		{"code only", `
			code:
				return
		`, ""},
		{"unknown opcode", `
			code:
				frobnicate
		`, "invalid opcode"},
		{"missing operand", `
			code:
				constant
		`, "expects 1 operand byte(s)"},
		{"extra operand", `
			code:
				pop 1
		`, "expects 0 operand byte(s)"},
		{"operand not a byte", `
			code:
				constant 300
		`, "invalid operand byte"},
		{"jump offset too large", `
			code:
				jump 65536
		`, "invalid jump offset"},
		{"invalid constant type", `
			constants:
				rune 97
			code:
				return
		`, "invalid constant type"},
		{"invalid integer constant", `
			constants:
				i32 nope
			code:
				return
		`, "invalid integer constant"},
		{"function constant without offset", `
			constants:
				function f 1
			code:
				return
		`, "invalid function constant"},
		{"unexpected trailing section", `
			code:
				return
			constants:
				i32 1
		`, "unexpected section"},
		{"all sections", `
			constants:
				i32 42        # 000
				string "a b"  # 001
				bool true
				unit
				f64 1.5
				function f 1 6 x
				native_function print_value 1
			identifiers:
				x
				f
			code:
				constant 0
				set_variable 0
				pop
				get_variable 0
				print
				return
		`, ""},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			ch, err := compiler.Assemble([]byte(c.in))
			if c.err != "" {
				require.ErrorContains(t, err, c.err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, ch)
			require.Equal(t, len(ch.Code), len(ch.Lines))
		})
	}
}

func TestAssembleOperands(t *testing.T) {
	ch, err := compiler.Assemble([]byte(`
		code:
			constant 7
			jump 258
			define_function 1 2
			call 3
	`))
	require.NoError(t, err)
	require.Equal(t, []byte{
		byte(compiler.Constant), 7,
		byte(compiler.Jump), 1, 2, // 258 == 0x0102, big-endian
		byte(compiler.DefineFunction), 1, 2,
		byte(compiler.Call), 3,
	}, ch.Code)
}

func TestAsmRoundTrip(t *testing.T) {
	const src = `
		constants:
			i32 1
			i64 -2
			u64 3
			f64 2.5
			string "hello world"
			bool false
			unit
			function add 2 9 x y
		identifiers:
			add
			x
		code:
			constant 0
			set_variable 1
			pop
			get_variable 1
			jump_if_false 4
			pop
			constant 1
			begin_scope
			end_scope
			return
	`
	ch1, err := compiler.Assemble([]byte(src))
	require.NoError(t, err)

	// Disassemble emits addresses and jump-target comments that Assemble
	// skips on re-parse.
	ch2, err := compiler.Assemble([]byte(compiler.Disassemble(ch1)))
	require.NoError(t, err)

	require.Equal(t, ch1.Code, ch2.Code)
	require.Equal(t, ch1.Constants, ch2.Constants)
	require.Equal(t, ch1.Identifiers, ch2.Identifiers)
}

package compiler

// This file implements a human-readable/writable textual form of a compiled
// Chunk, adapted from github.com/mna/nenuphar's own compiler/asm.go. It is
// mostly to support testing the virtual machine without going through the
// lexer/parser/analyzer, and to support a disassembler for debugging.
//
// The format looks like this (indentation and spacing is arbitrary, section
// order is not):
//
// 	constants:                    # optional
// 		i32 42
// 		string "hello"
// 		function f 1 3 a
//
// 	identifiers:                  # optional
// 		x
// 		f
//
// 	code:                         # required
// 		constant 0
// 		set_variable 0
// 		pop

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var sections = map[string]bool{
	"constants:":   true,
	"identifiers:": true,
	"code:":        true,
}

// Disassemble renders a Chunk to its textual assembly form.
func Disassemble(c *Chunk) string {
	var buf bytes.Buffer

	if len(c.Constants) > 0 {
		buf.WriteString("constants:\n")
		for i, k := range c.Constants {
			fmt.Fprintf(&buf, "\t%s\t# %03d\n", constantAsm(k), i)
		}
	}

	if len(c.Identifiers) > 0 {
		buf.WriteString("identifiers:\n")
		for i, name := range c.Identifiers {
			fmt.Fprintf(&buf, "\t%s\t# %03d\n", name, i)
		}
	}

	buf.WriteString("code:\n")
	for addr := 0; addr < len(c.Code); {
		op := Opcode(c.Code[addr])
		w := operandWidth(op)
		switch w {
		case 0:
			fmt.Fprintf(&buf, "\t%04d %s\n", addr, op)
		case 1:
			fmt.Fprintf(&buf, "\t%04d %s %d\n", addr, op, c.Code[addr+1])
		case 2:
			if isJump(op) {
				off := int(c.Code[addr+1])<<8 | int(c.Code[addr+2])
				fmt.Fprintf(&buf, "\t%04d %s %d\t# -> %04d\n", addr, op, off, addr+1+2+off)
			} else {
				fmt.Fprintf(&buf, "\t%04d %s %d %d\n", addr, op, c.Code[addr+1], c.Code[addr+2])
			}
		}
		addr += 1 + w
	}

	return buf.String()
}

func constantAsm(k ConstantValue) string {
	switch k.Tag {
	case TagFunction:
		return fmt.Sprintf("function %s %d %d %s", k.Name, k.Arity, k.CodeOffset, strings.Join(k.Params, " "))
	case TagNativeFunction:
		return fmt.Sprintf("native_function %s %d", k.Name, k.Arity)
	case TagString:
		return fmt.Sprintf("string %q", k.Str)
	case TagBool:
		return fmt.Sprintf("bool %t", k.Bool)
	case TagUnit:
		return "unit"
	case TagF32, TagF64:
		return fmt.Sprintf("%s %g", k.Tag, k.Float)
	default:
		return fmt.Sprintf("%s %d", k.Tag, k.Int)
	}
}

// Assemble parses a Chunk from its textual assembly form. It accepts
// Disassemble's output: '#' comments are ignored and a leading numeric
// address on a code line is skipped, so only the opcode/operand fields are
// significant.
func Assemble(src []byte) (*Chunk, error) {
	p := &asmParser{s: bufio.NewScanner(bytes.NewReader(src)), out: &Chunk{}}
	fields := p.next()
	fields = p.constants(fields)
	fields = p.identifiers(fields)
	fields = p.code(fields)
	if p.err == nil && len(fields) > 0 {
		p.err = fmt.Errorf("unexpected section: %s", fields[0])
	}
	return p.out, p.err
}

type asmParser struct {
	s   *bufio.Scanner
	out *Chunk
	err error
}

func (p *asmParser) next() []string {
	if p.err != nil {
		return nil
	}
	for p.s.Scan() {
		fields := strings.Fields(p.s.Text())
		if len(fields) != 0 && !strings.HasPrefix(fields[0], "#") {
			for i, fld := range fields {
				if strings.HasPrefix(fld, "#") {
					fields = fields[:i]
					break
				}
			}
			if len(fields) > 0 {
				return fields
			}
		}
	}
	p.err = p.s.Err()
	return nil
}

func (p *asmParser) constants(fields []string) []string {
	if p.err != nil || len(fields) == 0 || fields[0] != "constants:" {
		return fields
	}
	for fields = p.next(); len(fields) > 0 && !sections[fields[0]]; fields = p.next() {
		k, err := parseConstant(fields)
		if err != nil {
			p.err = err
			return fields
		}
		p.out.Constants = append(p.out.Constants, k)
	}
	return fields
}

func parseConstant(fields []string) (ConstantValue, error) {
	if fields[0] == "unit" {
		return ConstantValue{Tag: TagUnit}, nil
	}
	if len(fields) < 2 {
		return ConstantValue{}, fmt.Errorf("invalid constant line: %s", strings.Join(fields, " "))
	}
	switch fields[0] {
	case "i32", "i64", "u32", "u64":
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid integer constant: %w", err)
		}
		tag := map[string]ConstantTag{"i32": TagI32, "i64": TagI64, "u32": TagU32, "u64": TagU64}[fields[0]]
		return ConstantValue{Tag: tag, Int: n}, nil
	case "f32", "f64":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid float constant: %w", err)
		}
		tag := TagF32
		if fields[0] == "f64" {
			tag = TagF64
		}
		return ConstantValue{Tag: tag, Float: f}, nil
	case "string":
		s, err := strconv.Unquote(strings.Join(fields[1:], " "))
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid string constant: %w", err)
		}
		return ConstantValue{Tag: TagString, Str: s}, nil
	case "bool":
		b, err := strconv.ParseBool(fields[1])
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid bool constant: %w", err)
		}
		return ConstantValue{Tag: TagBool, Bool: b}, nil
	case "function":
		if len(fields) < 4 {
			return ConstantValue{}, errors.New("invalid function constant: want name, arity, code offset")
		}
		arity, err := strconv.Atoi(fields[2])
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid function arity: %w", err)
		}
		offset, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid function code offset: %w", err)
		}
		return ConstantValue{Tag: TagFunction, Name: fields[1], Arity: arity, CodeOffset: uint32(offset), Params: fields[4:]}, nil
	case "native_function":
		if len(fields) < 3 {
			return ConstantValue{}, errors.New("invalid native_function constant: want name, arity")
		}
		arity, err := strconv.Atoi(fields[2])
		if err != nil {
			return ConstantValue{}, fmt.Errorf("invalid native_function arity: %w", err)
		}
		return ConstantValue{Tag: TagNativeFunction, Name: fields[1], Arity: arity}, nil
	default:
		return ConstantValue{}, fmt.Errorf("invalid constant type: %s", fields[0])
	}
}

func (p *asmParser) identifiers(fields []string) []string {
	if p.err != nil || len(fields) == 0 || fields[0] != "identifiers:" {
		return fields
	}
	for fields = p.next(); len(fields) > 0 && !sections[fields[0]]; fields = p.next() {
		p.out.Identifiers = append(p.out.Identifiers, fields[0])
	}
	return fields
}

func (p *asmParser) code(fields []string) []string {
	if p.err != nil {
		return fields
	}
	if len(fields) == 0 || fields[0] != "code:" {
		p.err = errors.New("expected code section")
		return fields
	}
	for fields = p.next(); len(fields) > 0 && !sections[fields[0]]; fields = p.next() {
		if _, err := strconv.ParseUint(fields[0], 10, 32); err == nil {
			// Disassemble prefixes every code line with its address; skip it.
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		op, ok := reverseLookupOpcode[fields[0]]
		if !ok {
			p.err = fmt.Errorf("invalid opcode: %s", fields[0])
			return fields
		}
		w := operandWidth(op)
		if len(fields)-1 != w && !(isJump(op) && len(fields)-1 == 1) {
			p.err = fmt.Errorf("opcode %s expects %d operand byte(s), got %d field(s)", op, w, len(fields)-1)
			return fields
		}

		line := len(p.out.Lines)
		p.out.Code = append(p.out.Code, byte(op))
		p.out.Lines = append(p.out.Lines, line)
		switch {
		case isJump(op):
			off, err := strconv.ParseUint(fields[1], 10, 16)
			if err != nil {
				p.err = fmt.Errorf("invalid jump offset: %w", err)
				return fields
			}
			p.out.Code = append(p.out.Code, byte(off>>8), byte(off))
			p.out.Lines = append(p.out.Lines, line, line)
		case w > 0:
			for _, f := range fields[1:] {
				b, err := strconv.ParseUint(f, 10, 8)
				if err != nil {
					p.err = fmt.Errorf("invalid operand byte: %w", err)
					return fields
				}
				p.out.Code = append(p.out.Code, byte(b))
				p.out.Lines = append(p.out.Lines, line)
			}
		}
	}
	return fields
}

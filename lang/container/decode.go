package container

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/mna/slang/lang/compiler"
)

// Decode reads a Chunk previously written by Encode. The returned Chunk's
// Lines field is a zero-filled slice the length of Code: the line table is
// not part of the wire format, so decoded chunks carry no source-position
// information.
func Decode(r io.Reader) (*compiler.Chunk, error) {
	br := bufio.NewReader(r)
	c := &compiler.Chunk{}

	codeLen, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("container: code length: %w", err)
	}
	c.Code = make([]byte, codeLen)
	if _, err := io.ReadFull(br, c.Code); err != nil {
		return nil, fmt.Errorf("container: code: %w", err)
	}
	c.Lines = make([]int, codeLen)

	constantsLen, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("container: constants length: %w", err)
	}
	c.Constants = make([]compiler.ConstantValue, constantsLen)
	for i := range c.Constants {
		k, err := readConstant(br)
		if err != nil {
			return nil, fmt.Errorf("container: constant %d: %w", i, err)
		}
		c.Constants[i] = k
	}

	identifiersLen, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("container: identifiers length: %w", err)
	}
	c.Identifiers = make([]string, identifiersLen)
	for i := range c.Identifiers {
		s, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("container: identifier %d: %w", i, err)
		}
		c.Identifiers[i] = s
	}

	return c, nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(buf), nil
}

func readConstant(r io.Reader) (compiler.ConstantValue, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return compiler.ConstantValue{}, err
	}
	tag := compiler.ConstantTag(tagByte[0])

	switch tag {
	case compiler.TagI32:
		v, err := readU32(r)
		return compiler.ConstantValue{Tag: tag, Int: int64(int32(v))}, err
	case compiler.TagI64:
		v, err := readU64(r)
		return compiler.ConstantValue{Tag: tag, Int: int64(v)}, err
	case compiler.TagU32:
		v, err := readU32(r)
		return compiler.ConstantValue{Tag: tag, Int: int64(v)}, err
	case compiler.TagU64:
		v, err := readU64(r)
		return compiler.ConstantValue{Tag: tag, Int: int64(v)}, err
	case compiler.TagString:
		s, err := readString(r)
		return compiler.ConstantValue{Tag: tag, Str: s}, err
	case compiler.TagF64:
		v, err := readU64(r)
		return compiler.ConstantValue{Tag: tag, Float: math.Float64frombits(v)}, err
	case compiler.TagF32:
		v, err := readU32(r)
		return compiler.ConstantValue{Tag: tag, Float: float64(math.Float32frombits(v))}, err
	case compiler.TagBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return compiler.ConstantValue{}, err
		}
		return compiler.ConstantValue{Tag: tag, Bool: b[0] != 0}, nil
	case compiler.TagUnit:
		return compiler.ConstantValue{Tag: tag}, nil
	case compiler.TagFunction:
		return readFunctionConstant(r)
	case compiler.TagNativeFunction:
		return readNativeFunctionConstant(r)
	default:
		return compiler.ConstantValue{}, fmt.Errorf("unknown constant tag %d", tagByte[0])
	}
}

func readFunctionConstant(r io.Reader) (compiler.ConstantValue, error) {
	name, err := readString(r)
	if err != nil {
		return compiler.ConstantValue{}, err
	}
	var arity [1]byte
	if _, err := io.ReadFull(r, arity[:]); err != nil {
		return compiler.ConstantValue{}, err
	}
	codeOffset, err := readU32(r)
	if err != nil {
		return compiler.ConstantValue{}, err
	}
	paramsLen, err := readU32(r)
	if err != nil {
		return compiler.ConstantValue{}, err
	}
	params := make([]string, paramsLen)
	for i := range params {
		p, err := readString(r)
		if err != nil {
			return compiler.ConstantValue{}, err
		}
		params[i] = p
	}
	return compiler.ConstantValue{
		Tag:        compiler.TagFunction,
		Name:       name,
		Arity:      int(arity[0]),
		CodeOffset: codeOffset,
		Params:     params,
	}, nil
}

// readNativeFunctionConstant decodes a NativeFunction constant's name and
// arity only: a container has no way to transport executable code, so the
// host rebinds the implementation by name after loading — see
// lang/vm.Thread.Predeclared.
func readNativeFunctionConstant(r io.Reader) (compiler.ConstantValue, error) {
	name, err := readString(r)
	if err != nil {
		return compiler.ConstantValue{}, err
	}
	var arity [1]byte
	if _, err := io.ReadFull(r, arity[:]); err != nil {
		return compiler.ConstantValue{}, err
	}
	return compiler.ConstantValue{Tag: compiler.TagNativeFunction, Name: name, Arity: int(arity[0])}, nil
}

// Package container implements the persistent bytecode container format: a
// bit-exact, little-endian encoding of a lang/compiler.Chunk. The layout is
// fixed (see Encode) so that compiled files round-trip byte for byte across
// versions of the toolchain.
package container

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mna/slang/lang/compiler"
)

// Encode writes c to w in the container's binary format: a u32 length-
// prefixed code section, constant pool, and identifier pool, all
// little-endian. The per-instruction line table is diagnostic-only and is
// not part of the format.
func Encode(w io.Writer, c *compiler.Chunk) error {
	bw := bufio.NewWriter(w)

	if err := writeU32(bw, uint32(len(c.Code))); err != nil {
		return err
	}
	if _, err := bw.Write(c.Code); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(len(c.Constants))); err != nil {
		return err
	}
	for i := range c.Constants {
		if err := writeConstant(bw, c.Constants[i]); err != nil {
			return fmt.Errorf("container: constant %d: %w", i, err)
		}
	}

	if err := writeU32(bw, uint32(len(c.Identifiers))); err != nil {
		return err
	}
	for _, id := range c.Identifiers {
		if err := writeString(bw, id); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeConstant(w io.Writer, k compiler.ConstantValue) error {
	if _, err := w.Write([]byte{byte(k.Tag)}); err != nil {
		return err
	}
	switch k.Tag {
	case compiler.TagI32:
		return writeU32(w, uint32(int32(k.Int)))
	case compiler.TagI64:
		return writeU64(w, uint64(k.Int))
	case compiler.TagU32:
		return writeU32(w, uint32(k.Int))
	case compiler.TagU64:
		return writeU64(w, uint64(k.Int))
	case compiler.TagString:
		return writeString(w, k.Str)
	case compiler.TagF64:
		return writeU64(w, math.Float64bits(k.Float))
	case compiler.TagF32:
		return writeU32(w, math.Float32bits(float32(k.Float)))
	case compiler.TagBool:
		b := byte(0)
		if k.Bool {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case compiler.TagUnit:
		return nil
	case compiler.TagFunction:
		if err := writeString(w, k.Name); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(k.Arity)}); err != nil {
			return err
		}
		if err := writeU32(w, k.CodeOffset); err != nil {
			return err
		}
		if err := writeU32(w, uint32(len(k.Params))); err != nil {
			return err
		}
		for _, p := range k.Params {
			if err := writeString(w, p); err != nil {
				return err
			}
		}
		return nil
	case compiler.TagNativeFunction:
		if err := writeString(w, k.Name); err != nil {
			return err
		}
		_, err := w.Write([]byte{byte(k.Arity)})
		return err
	default:
		return fmt.Errorf("container: unknown constant tag %d", k.Tag)
	}
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// Package types implements the process-wide type registry: opaque type
// handles, the tagged-union type descriptors they resolve to, and the fixed
// primitive handles every component in the pipeline shares.
package types

import (
	"fmt"
	"strings"
)

// ID is an opaque handle into a Registry. The zero value is never a valid
// handle returned to callers; use the predeclared primitive constants below.
type ID int32

// Primitive handles. These are fixed and never change across a process
// lifetime: every component that needs "the i32 type" uses the I32 constant
// rather than looking it up by name.
const (
	Unknown ID = iota
	I32
	I64
	U32
	U64
	F32
	F64
	Bool
	String
	Unit
	UnspecifiedInt
	UnspecifiedFloat

	firstUserID
)

// Kind tags the shape of a type descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBoolean
	KindUnit
	KindStruct
	KindFunction
)

// Field is a single named field of a Struct type.
type Field struct {
	Name string
	Type ID
}

// Info is the tagged-union descriptor a handle resolves to in the Registry.
type Info struct {
	Name string
	Kind Kind

	// Integer/Float
	Signed bool // Integer only
	Bits   int  // 32 or 64 for concrete numerics, 0 for unspecified literals

	// Struct
	Fields []Field

	// Function
	Params []ID
	Return ID
}

// IsNumeric reports whether the descriptor is an Integer or Float kind
// (concrete or unspecified).
func (i Info) IsNumeric() bool { return i.Kind == KindInteger || i.Kind == KindFloat }

// IsUnspecified reports whether the descriptor represents the still-flexible
// type of a suffixless numeric literal.
func (i Info) IsUnspecified() bool {
	return (i.Kind == KindInteger || i.Kind == KindFloat) && i.Bits == 0
}

// Registry is the process-wide mapping from type handle to type Info. The
// zero value is not usable; call NewRegistry. Per the single-writer
// discipline described by the language's resource model, struct
// registration (RegisterStruct) and function-type interning (Function) must
// not be called concurrently with each other or with Lookup, but Lookup
// itself is safe for concurrent readers once registration has settled.
type Registry struct {
	infos []Info
	// fnIndex interns function types by structural equality so that two
	// syntactically identical function signatures resolve to the same handle.
	fnIndex map[string]ID
}

// NewRegistry creates a Registry pre-populated with every primitive handle
// listed above.
func NewRegistry() *Registry {
	r := &Registry{
		infos:   make([]Info, firstUserID),
		fnIndex: make(map[string]ID),
	}
	r.infos[Unknown] = Info{Name: "unknown", Kind: KindUnknown}
	r.infos[I32] = Info{Name: "i32", Kind: KindInteger, Signed: true, Bits: 32}
	r.infos[I64] = Info{Name: "i64", Kind: KindInteger, Signed: true, Bits: 64}
	r.infos[U32] = Info{Name: "u32", Kind: KindInteger, Signed: false, Bits: 32}
	r.infos[U64] = Info{Name: "u64", Kind: KindInteger, Signed: false, Bits: 64}
	r.infos[F32] = Info{Name: "f32", Kind: KindFloat, Bits: 32}
	r.infos[F64] = Info{Name: "f64", Kind: KindFloat, Bits: 64}
	r.infos[Bool] = Info{Name: "bool", Kind: KindBoolean}
	r.infos[String] = Info{Name: "string", Kind: KindString}
	r.infos[Unit] = Info{Name: "unit", Kind: KindUnit}
	r.infos[UnspecifiedInt] = Info{Name: "unspecified_int", Kind: KindInteger, Signed: true, Bits: 0}
	r.infos[UnspecifiedFloat] = Info{Name: "unspecified_float", Kind: KindFloat, Bits: 0}
	return r
}

// Lookup resolves a handle to its descriptor. It panics if id does not
// resolve in the registry, which per the data model invariant should never
// happen for a handle returned by this Registry.
func (r *Registry) Lookup(id ID) Info {
	if int(id) < 0 || int(id) >= len(r.infos) {
		panic(fmt.Sprintf("types: handle %d does not resolve in registry", id))
	}
	return r.infos[id]
}

// Name is a convenience wrapper around Lookup(id).Name.
func (r *Registry) Name(id ID) string { return r.Lookup(id).Name }

// RegisterStruct creates a new Struct type with the given name and fields
// and returns its handle. Callers must have already validated (in the
// analyzer) that no field type is Unknown/UnspecifiedInt/UnspecifiedFloat.
func (r *Registry) RegisterStruct(name string, fields []Field) ID {
	id := ID(len(r.infos))
	r.infos = append(r.infos, Info{Name: name, Kind: KindStruct, Fields: fields})
	return id
}

// Function interns a function type by structural equality: two calls with
// the same params/return produce the same handle.
func (r *Registry) Function(params []ID, ret ID) ID {
	key := fnKey(params, ret)
	if id, ok := r.fnIndex[key]; ok {
		return id
	}
	id := ID(len(r.infos))
	ps := make([]ID, len(params))
	copy(ps, params)
	r.infos = append(r.infos, Info{Name: fnName(r, params, ret), Kind: KindFunction, Params: ps, Return: ret})
	r.fnIndex[key] = id
	return id
}

func fnKey(params []ID, ret ID) string {
	var b strings.Builder
	for _, p := range params {
		fmt.Fprintf(&b, "%d,", p)
	}
	fmt.Fprintf(&b, "->%d", ret)
	return b.String()
}

func fnName(r *Registry, params []ID, ret ID) string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.Lookup(p).Name)
	}
	b.WriteString(") -> ")
	b.WriteString(r.Lookup(ret).Name)
	return b.String()
}

// Equal reports whether two handles denote the same type. Because primitive
// handles are fixed and struct/function handles are unique per registration
// (structs) or interned (functions), this reduces to simple equality, but
// the method exists so callers never have to remember that fact.
func Equal(a, b ID) bool { return a == b }

// ByName resolves a reserved primitive type name to its handle, or false if
// name does not denote a primitive. It does not resolve user struct names;
// those live in the symbol table (package symbols).
func ByName(name string) (ID, bool) {
	switch name {
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	case "bool":
		return Bool, true
	case "string":
		return String, true
	case "unit":
		return Unit, true
	}
	return Unknown, false
}

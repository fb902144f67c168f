package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/mna/slang/lang/compiler"
)

// Thread executes a single compiler.Chunk to completion. It carries no
// cancellation, step budget or recursion-depth knobs: the machine is
// single-threaded and synchronous with no suspension points, so none of
// those apply.
type Thread struct {
	// Stdout receives the output of the Print opcode and of print_value. Nil
	// defaults to os.Stdout at Run time.
	Stdout io.Writer

	globals *swiss.Map[string, Value]
	stack   []Value
	frames  []*frame

	// scopes holds, for each active BeginScope, a snapshot of every global
	// that existed at the time: present entries restore their old value on
	// EndScope, absent ones (recorded as a nil Value) are deleted.
	scopes [][]scopeEntry
}

type scopeEntry struct {
	name string
	val  Value // nil means the global did not exist before the scope
}

// NewThread creates a Thread with print_value already installed in globals.
func NewThread() *Thread {
	th := &Thread{globals: swiss.NewMap[string, Value](16)}
	th.globals.Put("print_value", &NativeFunction{Name: "print_value", Arity: 1, Impl: th.printValue})
	return th
}

// Predeclared binds or rebinds a native function by name in globals, for
// example to supply the host Impl of a NativeFunction constant decoded from
// a container, which never carries executable code.
func (th *Thread) Predeclared(name string, fn *NativeFunction) {
	th.globals.Put(name, fn)
}

func (th *Thread) printValue(args []Value) (Value, error) {
	out := th.Stdout
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, displayString(args[0]))
	return I32(0), nil
}

// displayString is the bare, unquoted textual form printed by Print and
// print_value. Strings print without surrounding quotes.
func displayString(v Value) string {
	return v.String()
}

// Run interprets chunk from instruction 0 until a top-level Return or the
// end of the code is reached.
func (th *Thread) Run(chunk *compiler.Chunk) error {
	if th.Stdout == nil {
		th.Stdout = os.Stdout
	}
	return th.run(chunk, 0)
}

func (th *Thread) run(c *compiler.Chunk, startIP int) error {
	ip := startIP
	for ip < len(c.Code) {
		op := compiler.Opcode(c.Code[ip])
		switch op {
		case compiler.Constant:
			idx := int(c.Code[ip+1])
			if idx >= len(c.Constants) {
				return th.rtError(c, ip, "invalid constant index %d", idx)
			}
			th.push(constantToValue(c.Constants[idx]))
			ip += 2

		case compiler.Pop:
			if err := th.pop1(); err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			ip++

		case compiler.Add, compiler.Sub, compiler.Mul, compiler.Div:
			b, a, err := th.pop2()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			r, err := binaryArith(op, a, b)
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.push(r)
			ip++

		case compiler.Eq, compiler.Ne, compiler.Lt, compiler.Gt, compiler.Le, compiler.Ge:
			b, a, err := th.pop2()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			r, err := compare(op, a, b)
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.push(r)
			ip++

		case compiler.And, compiler.Or:
			b, a, err := th.pop2()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			r, err := logical(op, a, b)
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.push(r)
			ip++

		case compiler.Neg:
			v, err := th.peek1()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			r, err := negate(v)
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.stack[len(th.stack)-1] = r
			ip++

		case compiler.Not:
			v, err := th.peek1()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			r, err := not(v)
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.stack[len(th.stack)-1] = r
			ip++

		case compiler.Print:
			v, err := th.pop1v()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			fmt.Fprintln(th.Stdout, displayString(v))
			ip++

		case compiler.GetVariable:
			idx := int(c.Code[ip+1])
			if idx >= len(c.Identifiers) {
				return th.rtError(c, ip, "invalid identifier index %d", idx)
			}
			name := c.Identifiers[idx]
			v, ok := th.lookup(name)
			if !ok {
				return th.rtError(c, ip, "undefined variable %q", name)
			}
			th.push(v)
			ip += 2

		case compiler.SetVariable:
			idx := int(c.Code[ip+1])
			if idx >= len(c.Identifiers) {
				return th.rtError(c, ip, "invalid identifier index %d", idx)
			}
			name := c.Identifiers[idx]
			v, err := th.peek1()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			th.store(name, v)
			ip += 2

		case compiler.DefineFunction:
			nameIdx := int(c.Code[ip+1])
			constIdx := int(c.Code[ip+2])
			if nameIdx >= len(c.Identifiers) || constIdx >= len(c.Constants) {
				return th.rtError(c, ip, "invalid define_function operand")
			}
			th.globals.Put(c.Identifiers[nameIdx], constantToValue(c.Constants[constIdx]))
			ip += 3

		case compiler.Call:
			argc := int(c.Code[ip+1])
			next, err := th.call(c, ip, argc)
			if err != nil {
				return err
			}
			ip = next

		case compiler.Jump:
			off := int(c.Code[ip+1])<<8 | int(c.Code[ip+2])
			ip = ip + 3 + off

		case compiler.JumpIfFalse:
			cond, err := th.peek1()
			if err != nil {
				return th.rtError(c, ip, "%v", err)
			}
			b, ok := cond.(Bool)
			if !ok {
				return th.rtError(c, ip, "if condition must be a bool, got %s", cond.Tag())
			}
			off := int(c.Code[ip+1])<<8 | int(c.Code[ip+2])
			if !bool(b) {
				ip = ip + 3 + off
			} else {
				ip += 3
			}

		case compiler.Return:
			next, done := th.doReturn()
			if done {
				return nil
			}
			ip = next

		case compiler.BeginScope:
			th.beginScope()
			ip++

		case compiler.EndScope:
			th.endScope()
			ip++

		default:
			return th.rtError(c, ip, "illegal opcode %d", op)
		}
	}
	return nil
}

func (th *Thread) push(v Value) { th.stack = append(th.stack, v) }

func (th *Thread) pop1() error {
	if len(th.stack) == 0 {
		return fmt.Errorf("stack underflow")
	}
	th.stack = th.stack[:len(th.stack)-1]
	return nil
}

func (th *Thread) pop1v() (Value, error) {
	if len(th.stack) == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	v := th.stack[len(th.stack)-1]
	th.stack = th.stack[:len(th.stack)-1]
	return v, nil
}

func (th *Thread) pop2() (b, a Value, err error) {
	if len(th.stack) < 2 {
		return nil, nil, fmt.Errorf("stack underflow")
	}
	b = th.stack[len(th.stack)-1]
	a = th.stack[len(th.stack)-2]
	th.stack = th.stack[:len(th.stack)-2]
	return b, a, nil
}

func (th *Thread) peek1() (Value, error) {
	if len(th.stack) == 0 {
		return nil, fmt.Errorf("stack underflow")
	}
	return th.stack[len(th.stack)-1], nil
}

func (th *Thread) currentFrame() *frame {
	if len(th.frames) == 0 {
		return nil
	}
	return th.frames[len(th.frames)-1]
}

// lookup resolves GetVariable: the current frame's locals take priority over
// globals.
func (th *Thread) lookup(name string) (Value, bool) {
	if f := th.currentFrame(); f != nil {
		if v, ok := f.locals[name]; ok {
			return v, true
		}
	}
	return th.globals.Get(name)
}

// store resolves SetVariable: writes go to the current frame's locals only
// when name is one of that frame's parameters, otherwise to globals.
func (th *Thread) store(name string, v Value) {
	if f := th.currentFrame(); f != nil && f.paramNames[name] {
		f.locals[name] = v
		return
	}
	th.globals.Put(name, v)
}

func (th *Thread) beginScope() {
	var snap []scopeEntry
	th.globals.Iter(func(k string, v Value) (stop bool) {
		snap = append(snap, scopeEntry{name: k, val: v})
		return false
	})
	th.scopes = append(th.scopes, snap)
}

func (th *Thread) endScope() {
	if len(th.scopes) == 0 {
		return
	}
	snap := th.scopes[len(th.scopes)-1]
	th.scopes = th.scopes[:len(th.scopes)-1]

	before := make(map[string]Value, len(snap))
	for _, e := range snap {
		before[e.name] = e.val
	}
	var toDelete []string
	th.globals.Iter(func(k string, v Value) (stop bool) {
		if _, existed := before[k]; !existed {
			toDelete = append(toDelete, k)
		}
		return false
	})
	for _, k := range toDelete {
		th.globals.Delete(k)
	}
	for name, v := range before {
		th.globals.Put(name, v)
	}
}

// call implements the Call opcode: argc args are pushed first, the callee
// last, so the callee sits on top of the stack with its args just beneath
// it. It returns the instruction pointer to resume at, which for a user
// Function is the callee's own code offset.
func (th *Thread) call(c *compiler.Chunk, ip, argc int) (int, error) {
	if len(th.stack) < argc+1 {
		return 0, th.rtError(c, ip, "stack underflow")
	}
	calleeIdx := len(th.stack) - 1
	base := calleeIdx - argc
	callee := th.stack[calleeIdx]
	args := make([]Value, argc)
	copy(args, th.stack[base:calleeIdx])

	switch fn := callee.(type) {
	case *NativeFunction:
		if fn.Arity != argc {
			return 0, th.rtError(c, ip, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, argc)
		}
		if fn.Impl == nil {
			return 0, th.rtError(c, ip, "native function %s has no implementation bound", fn.Name)
		}
		result, err := fn.Impl(args)
		if err != nil {
			return 0, th.rtError(c, ip, "%v", err)
		}
		th.stack = th.stack[:base]
		th.push(result)
		return ip + 2, nil

	case *Function:
		if fn.Arity != argc {
			return 0, th.rtError(c, ip, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, argc)
		}
		f := newFrame(fn, ip+2, base, len(th.scopes), args)
		th.stack = th.stack[:base]
		th.frames = append(th.frames, f)
		return int(fn.CodeOffset), nil

	default:
		return 0, th.rtError(c, ip, "cannot call a value of type %s", callee.Tag())
	}
}

// doReturn implements the Return opcode. done is true when there is no
// active call frame to unwind to, meaning this Return halts the whole
// program, per the container-level entry point convention.
func (th *Thread) doReturn() (next int, done bool) {
	f := th.currentFrame()
	if f == nil {
		return 0, true
	}

	var result Value
	if len(th.stack) > f.stackBase {
		result = th.stack[len(th.stack)-1]
	} else {
		result = Unit{}
	}
	th.stack = th.stack[:f.stackBase]
	th.push(result)

	// A Return can leave the body from inside any number of open scopes
	// (the body's own, an if branch's); unwind them so each restores the
	// globals it shadowed.
	for len(th.scopes) > f.scopeBase {
		th.endScope()
	}

	th.frames = th.frames[:len(th.frames)-1]
	return f.returnIP, false
}

func (th *Thread) rtError(c *compiler.Chunk, ip int, format string, args ...any) error {
	line := 0
	if ip < len(c.Lines) {
		line = c.Lines[ip]
	}
	return fmt.Errorf("runtime error at instruction %d (line %d): %s", ip, line, fmt.Sprintf(format, args...))
}

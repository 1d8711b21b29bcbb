package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// lowerFuncDef lowers a user function definition: a new
// Function is appended to the program, its formals are materialized into
// Alloc'd slots so the body can treat every parameter like any other local,
// and its body is lowered in a fresh lexical frame.
func lowerFuncDef(c *LoweringContext, fd *parser.FuncDef) error {
	retType, err := retTypeFor(fd.RetType)
	if err != nil {
		return err
	}

	paramTypes := make([]*Type, len(fd.Params))
	for i, p := range fd.Params {
		if p.IsArray {
			dims, err := evalDims(c, p.Dims)
			if err != nil {
				return err
			}
			paramTypes[i] = PointerTo(buildArrayType(dims))
		} else {
			paramTypes[i] = Int32
		}
	}

	fn := &Function{Name: "@" + fd.Name, Type: FuncType(paramTypes, retType)}
	c.Program.Funcs = append(c.Program.Funcs, fn)
	if err := c.Scopes.Define(fd.Name, &Binding{Kind: BindFunction, Func: fn}); err != nil {
		return err
	}

	prevFunc, prevBuilder, prevSeq := c.Func, c.Builder, c.blockSeq
	c.Func = fn
	c.Builder = NewBuilder(fn)
	c.blockSeq = 0
	defer func() {
		c.Func, c.Builder, c.blockSeq = prevFunc, prevBuilder, prevSeq
	}()

	c.Scopes.PushFrame()
	defer c.Scopes.PopFrame()

	entry := &BasicBlock{Name: "%entry"}
	c.Builder.OpenBlock(entry)

	for i, p := range fd.Params {
		argRef := &Value{Type: paramTypes[i], Kind: KindFuncArgRef, ArgIndex: i}
		fn.Params = append(fn.Params, argRef)

		slot := &Value{Type: PointerTo(paramTypes[i]), Kind: KindAlloc}
		c.Builder.Add(slot)
		c.Builder.Add(&Value{Type: Unit, Kind: KindStore, StoreValue: argRef, StoreDest: slot})

		if p.IsArray {
			if err := c.Scopes.Define(p.Name, &Binding{Kind: BindPointer, Slot: slot, Dims: len(p.Dims)}); err != nil {
				return err
			}
		} else {
			if err := c.Scopes.Define(p.Name, &Binding{Kind: BindVar, Slot: slot}); err != nil {
				return err
			}
		}
	}

	if err := lowerBlock(c, fd.Body); err != nil {
		return err
	}

	c.Builder.CloseFunction()
	return nil
}

func retTypeFor(name string) (*Type, error) {
	switch name {
	case "int":
		return Int32, nil
	case "void":
		return Unit, nil
	default:
		return nil, errors.Errorf("unsupported return type %q", name)
	}
}

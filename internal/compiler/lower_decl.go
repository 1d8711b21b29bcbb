package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// lowerGlobalDecl lowers a file-scope const/var Decl.
func lowerGlobalDecl(c *LoweringContext, d *parser.Decl) error {
	for _, def := range d.Defs {
		if err := lowerGlobalDef(c, d.IsConst, def); err != nil {
			return err
		}
	}
	return nil
}

func lowerGlobalDef(c *LoweringContext, isConst bool, def *parser.Def) error {
	if !def.IsArr {
		return lowerGlobalScalar(c, isConst, def)
	}
	return lowerGlobalArray(c, def)
}

func lowerGlobalScalar(c *LoweringContext, isConst bool, def *parser.Def) error {
	var val int32
	if def.Init != nil {
		e, ok := def.Init.(*parser.InitExpr)
		if !ok {
			return errors.Errorf("%q: scalar initializer must be a single expression", def.Name)
		}
		v, err := EvalConst(c, e.Expr)
		if err != nil {
			return err
		}
		val = v
	}
	if isConst {
		return c.Scopes.Define(def.Name, &Binding{Kind: BindConst, ConstVal: val})
	}
	var init *Value
	if def.Init != nil {
		init = NewInteger(val)
	} else {
		init = NewZeroInit(Int32)
	}
	g := &Value{Type: PointerTo(Int32), Kind: KindGlobalAlloc, Name: "@" + def.Name, Init: init}
	c.Program.Globals = append(c.Program.Globals, g)
	return c.Scopes.Define(def.Name, &Binding{Kind: BindVar, Slot: g})
}

// lowerGlobalArray always treats the initializer as a constant expression
// tree, whether or not the Decl itself is `const` — SysY requires file-scope
// array initializers to fold at compile time regardless.
func lowerGlobalArray(c *LoweringContext, def *parser.Def) error {
	dims, err := evalDims(c, def.Dims)
	if err != nil {
		return err
	}
	arrType := buildArrayType(dims)
	var init *Value
	if def.Init != nil {
		flat, err := flattenArrayInit(c, dims, def.Init, constLeaf(c))
		if err != nil {
			return errors.Wrapf(err, "initializer for %q", def.Name)
		}
		init = foldAggregate(dims, strides(dims), 0, flat, 0)
	} else {
		init = NewZeroInit(arrType)
	}
	g := &Value{Type: PointerTo(arrType), Kind: KindGlobalAlloc, Name: "@" + def.Name, Init: init}
	c.Program.Globals = append(c.Program.Globals, g)
	return c.Scopes.Define(def.Name, &Binding{Kind: BindArray, Slot: g, Dims: len(dims)})
}

// lowerLocalDecl lowers a block-scope const/var Decl.
func lowerLocalDecl(c *LoweringContext, d *parser.Decl) error {
	for _, def := range d.Defs {
		if err := lowerLocalDef(c, d.IsConst, def); err != nil {
			return err
		}
	}
	return nil
}

func lowerLocalDef(c *LoweringContext, isConst bool, def *parser.Def) error {
	if !def.IsArr {
		return lowerLocalScalar(c, isConst, def)
	}
	return lowerLocalArray(c, isConst, def)
}

func lowerLocalScalar(c *LoweringContext, isConst bool, def *parser.Def) error {
	if isConst {
		if def.Init == nil {
			return errors.Errorf("const %q requires an initializer", def.Name)
		}
		e, ok := def.Init.(*parser.InitExpr)
		if !ok {
			return errors.Errorf("%q: scalar initializer must be a single expression", def.Name)
		}
		v, err := EvalConst(c, e.Expr)
		if err != nil {
			return err
		}
		return c.Scopes.Define(def.Name, &Binding{Kind: BindConst, ConstVal: v})
	}
	slot := &Value{Type: PointerTo(Int32), Kind: KindAlloc}
	c.Builder.Add(slot)
	if def.Init != nil {
		e, ok := def.Init.(*parser.InitExpr)
		if !ok {
			return errors.Errorf("%q: scalar initializer must be a single expression", def.Name)
		}
		v, err := Emit(c, e.Expr)
		if err != nil {
			return err
		}
		storeInto(c, slot, v)
	}
	return c.Scopes.Define(def.Name, &Binding{Kind: BindVar, Slot: slot})
}

func lowerLocalArray(c *LoweringContext, isConst bool, def *parser.Def) error {
	dims, err := evalDims(c, def.Dims)
	if err != nil {
		return err
	}
	arrType := buildArrayType(dims)
	slot := &Value{Type: PointerTo(arrType), Kind: KindAlloc}
	c.Builder.Add(slot)
	if def.Init != nil {
		leaf := runtimeLeaf(c)
		if isConst {
			leaf = constLeaf(c)
		}
		flat, err := flattenArrayInit(c, dims, def.Init, leaf)
		if err != nil {
			return errors.Wrapf(err, "initializer for %q", def.Name)
		}
		emitArrayInitStores(c, slot, dims, flat)
	}
	return c.Scopes.Define(def.Name, &Binding{Kind: BindArray, Slot: slot, Dims: len(dims)})
}

// constLeaf folds each initializer leaf at compile time (global context, or
// a local const array).
func constLeaf(c *LoweringContext) func(parser.Expr) (*Value, error) {
	return func(e parser.Expr) (*Value, error) {
		v, err := EvalConst(c, e)
		if err != nil {
			return nil, err
		}
		return NewInteger(v), nil
	}
}

// runtimeLeaf lowers each initializer leaf as ordinary runtime code (a
// local non-const array's initializer may reference variables).
func runtimeLeaf(c *LoweringContext) func(parser.Expr) (*Value, error) {
	return func(e parser.Expr) (*Value, error) { return Emit(c, e) }
}

func evalDims(c *LoweringContext, exprs []parser.Expr) ([]int, error) {
	dims := make([]int, len(exprs))
	for i, e := range exprs {
		v, err := EvalConst(c, e)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, errors.Errorf("array dimension must be positive, got %d", v)
		}
		dims[i] = int(v)
	}
	return dims, nil
}

// emitArrayInitStores walks every flattened element to its nested
// GetElemPtr address and stores it, one Store per element — this compiler
// performs no CSE, so each element's address chain is recomputed from the
// base slot independently: codegen allocates no registers, a stance this
// extends to addressing too.
func emitArrayInitStores(c *LoweringContext, slot *Value, dims []int, flat []*Value) {
	total := 1
	for _, d := range dims {
		total *= d
	}
	for i := 0; i < total; i++ {
		ptr := slot
		for _, idx := range unflattenIndex(dims, i) {
			ptr = getElemPtr(c, ptr, NewInteger(int32(idx)))
		}
		storeInto(c, ptr, flat[i])
	}
}

func unflattenIndex(dims []int, flat int) []int {
	idxs := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		idxs[i] = flat % dims[i]
		flat /= dims[i]
	}
	return idxs
}

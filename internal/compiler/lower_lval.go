package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// resolveChain narrows src through lv's index expressions, dispatching on
// binding kind (not runtime type inspection). It returns
// the resulting pointer (never loaded) and the binding's total declared
// dimension count N, so callers can compare it against len(lv.Indices) to
// decide whether a Load, a decay, or an error is appropriate.
func resolveChain(c *LoweringContext, b *Binding, lv *parser.LVal) (ptr *Value, n int, err error) {
	switch b.Kind {
	case BindArray:
		ptr = b.Slot
		n = b.Dims
		for _, idxExpr := range lv.Indices {
			idx, err := Emit(c, idxExpr)
			if err != nil {
				return nil, 0, err
			}
			ptr = getElemPtr(c, ptr, idx)
		}
		return ptr, n, nil
	case BindPointer:
		ptr = &Value{Type: ptrBase(b.Slot.Type), Kind: KindLoad, Src: b.Slot}
		c.Builder.Add(ptr)
		n = 1 + b.Dims
		for i, idxExpr := range lv.Indices {
			idx, err := Emit(c, idxExpr)
			if err != nil {
				return nil, 0, err
			}
			if i == 0 {
				ptr = getPtr(c, ptr, idx)
			} else {
				ptr = getElemPtr(c, ptr, idx)
			}
		}
		return ptr, n, nil
	default:
		return nil, 0, errors.Errorf("internal: resolveChain on non-array binding kind %d", b.Kind)
	}
}

func ptrBase(t *Type) *Type {
	if t.Kind != TyPointer {
		panic("internal: expected pointer type")
	}
	return t.Base
}

func getElemPtr(c *LoweringContext, src, idx *Value) *Value {
	base := ptrBase(src.Type)
	if base.Kind != TyArray {
		panic("internal: GetElemPtr src must be Pointer<Array<T,n>>")
	}
	v := &Value{Type: PointerTo(base.Base), Kind: KindGetElemPtr, Src: src, Index: idx}
	c.Builder.Add(v)
	return v
}

func getPtr(c *LoweringContext, src, idx *Value) *Value {
	v := &Value{Type: src.Type, Kind: KindGetPtr, Src: src, Index: idx}
	c.Builder.Add(v)
	return v
}

// emitLValRead reads lv as an r-value expression: Const yields its folded
// value; Var loads its slot; Array/Pointer require full indexing (an
// under-indexed array is only meaningful in call-argument position, see
// emitLValAsArg).
func emitLValRead(c *LoweringContext, lv *parser.LVal) (*Value, error) {
	b, err := c.Scopes.Lookup(lv.Name)
	if err != nil {
		return nil, err
	}
	switch b.Kind {
	case BindConst:
		if len(lv.Indices) != 0 {
			return nil, errors.Errorf("%q is a scalar constant, cannot be indexed", lv.Name)
		}
		return NewInteger(b.ConstVal), nil
	case BindVar:
		if len(lv.Indices) != 0 {
			return nil, errors.Errorf("%q is a scalar variable, cannot be indexed", lv.Name)
		}
		load := &Value{Type: Int32, Kind: KindLoad, Src: b.Slot}
		c.Builder.Add(load)
		return load, nil
	case BindArray, BindPointer:
		ptr, n, err := resolveChain(c, b, lv)
		if err != nil {
			return nil, err
		}
		if len(lv.Indices) != n {
			return nil, errors.Errorf("%q used as a scalar without full indexing", lv.Name)
		}
		load := &Value{Type: Int32, Kind: KindLoad, Src: ptr}
		c.Builder.Add(load)
		return load, nil
	case BindFunction:
		return nil, errors.Errorf("%q is a function, not a value", lv.Name)
	default:
		return nil, errors.Errorf("internal: unknown binding kind %d", b.Kind)
	}
}

// emitLValAddr resolves lv's storage address for an assignment's
// left-hand side. Assignment always targets a scalar slot.
func emitLValAddr(c *LoweringContext, lv *parser.LVal) (*Value, error) {
	b, err := c.Scopes.Lookup(lv.Name)
	if err != nil {
		return nil, err
	}
	switch b.Kind {
	case BindConst:
		return nil, errors.Errorf("cannot assign to constant %q", lv.Name)
	case BindVar:
		if len(lv.Indices) != 0 {
			return nil, errors.Errorf("%q is a scalar variable, cannot be indexed", lv.Name)
		}
		return b.Slot, nil
	case BindArray, BindPointer:
		ptr, n, err := resolveChain(c, b, lv)
		if err != nil {
			return nil, err
		}
		if len(lv.Indices) != n {
			return nil, errors.Errorf("assignment to %q requires indexing all %d dimension(s)", lv.Name, n)
		}
		return ptr, nil
	default:
		return nil, errors.Errorf("cannot assign to %q", lv.Name)
	}
}

// emitLValAsArg lowers lv in call-argument position, applying the
// under-indexed array decay rule uniformly for zero or partial indexing.
func emitLValAsArg(c *LoweringContext, lv *parser.LVal) (*Value, error) {
	b, err := c.Scopes.Lookup(lv.Name)
	if err != nil {
		return nil, err
	}
	switch b.Kind {
	case BindConst:
		if len(lv.Indices) != 0 {
			return nil, errors.Errorf("%q is a scalar constant, cannot be indexed", lv.Name)
		}
		return NewInteger(b.ConstVal), nil
	case BindVar:
		if len(lv.Indices) != 0 {
			return nil, errors.Errorf("%q is a scalar variable, cannot be indexed", lv.Name)
		}
		load := &Value{Type: Int32, Kind: KindLoad, Src: b.Slot}
		c.Builder.Add(load)
		return load, nil
	case BindArray, BindPointer:
		ptr, n, err := resolveChain(c, b, lv)
		if err != nil {
			return nil, err
		}
		k := len(lv.Indices)
		if k == n {
			load := &Value{Type: Int32, Kind: KindLoad, Src: ptr}
			c.Builder.Add(load)
			return load, nil
		}
		decayNeeded := b.Kind == BindArray || k >= 1
		if decayNeeded {
			ptr = getElemPtr(c, ptr, NewInteger(0))
		}
		return ptr, nil
	default:
		return nil, errors.Errorf("%q cannot be used as a call argument", lv.Name)
	}
}

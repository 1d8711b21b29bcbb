package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// EvalConst folds e to a compile-time i32. It fails
// whenever e references a non-Const binding or calls a function.
func EvalConst(c *LoweringContext, e parser.Expr) (int32, error) {
	switch x := e.(type) {
	case *parser.IntLit:
		return x.Val, nil
	case *parser.LValExpr:
		return evalConstLVal(c, x.LVal)
	case *parser.UnaryExpr:
		v, err := EvalConst(c, x.X)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case "+":
			return v, nil
		case "-":
			return -v, nil
		case "!":
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, errors.Errorf("internal: unknown unary op %q", x.Op)
	case *parser.BinaryExpr:
		return evalConstBinary(c, x)
	case *parser.CallExpr:
		return 0, errors.Errorf("function call %q is not a constant expression", x.Func)
	default:
		return 0, errors.Errorf("internal: unknown expr node %T", e)
	}
}

func evalConstLVal(c *LoweringContext, lv *parser.LVal) (int32, error) {
	b, err := c.Scopes.Lookup(lv.Name)
	if err != nil {
		return 0, err
	}
	if b.Kind != BindConst {
		return 0, errors.Errorf("%q is not a constant expression", lv.Name)
	}
	if len(lv.Indices) != 0 {
		return 0, errors.Errorf("%q is a scalar constant, cannot be indexed", lv.Name)
	}
	return b.ConstVal, nil
}

func evalConstBinary(c *LoweringContext, x *parser.BinaryExpr) (int32, error) {
	l, err := EvalConst(c, x.L)
	if err != nil {
		return 0, err
	}
	// Short-circuit in constant contexts still only needs the value; no
	// control flow exists at fold time.
	if x.Op == "&&" {
		if l == 0 {
			return 0, nil
		}
		r, err := EvalConst(c, x.R)
		if err != nil {
			return 0, err
		}
		if r != 0 {
			return 1, nil
		}
		return 0, nil
	}
	if x.Op == "||" {
		if l != 0 {
			return 1, nil
		}
		r, err := EvalConst(c, x.R)
		if err != nil {
			return 0, err
		}
		if r != 0 {
			return 1, nil
		}
		return 0, nil
	}
	r, err := EvalConst(c, x.R)
	if err != nil {
		return 0, err
	}
	switch x.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, errors.New("division by zero in constant expression")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, errors.New("modulo by zero in constant expression")
		}
		return l % r, nil
	case "==":
		return boolToI32(l == r), nil
	case "!=":
		return boolToI32(l != r), nil
	case "<":
		return boolToI32(l < r), nil
	case ">":
		return boolToI32(l > r), nil
	case "<=":
		return boolToI32(l <= r), nil
	case ">=":
		return boolToI32(l >= r), nil
	}
	return 0, errors.Errorf("internal: unknown binary op %q", x.Op)
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Emit lowers e to a runtime Value, appending instructions as needed.
func Emit(c *LoweringContext, e parser.Expr) (*Value, error) {
	switch x := e.(type) {
	case *parser.IntLit:
		return NewInteger(x.Val), nil
	case *parser.LValExpr:
		return emitLValRead(c, x.LVal)
	case *parser.UnaryExpr:
		return emitUnary(c, x)
	case *parser.BinaryExpr:
		return emitBinary(c, x)
	case *parser.CallExpr:
		return emitCall(c, x)
	default:
		return nil, errors.Errorf("internal: unknown expr node %T", e)
	}
}

func emitUnary(c *LoweringContext, x *parser.UnaryExpr) (*Value, error) {
	v, err := Emit(c, x.X)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "+":
		return v, nil
	case "-":
		return emitBinaryOp(c, OpSub, NewInteger(0), v), nil
	case "!":
		return emitBinaryOp(c, OpEq, v, NewInteger(0)), nil
	}
	return nil, errors.Errorf("internal: unknown unary op %q", x.Op)
}

func emitBinary(c *LoweringContext, x *parser.BinaryExpr) (*Value, error) {
	if x.Op == "&&" {
		return emitShortCircuit(c, x, true)
	}
	if x.Op == "||" {
		return emitShortCircuit(c, x, false)
	}
	l, err := Emit(c, x.L)
	if err != nil {
		return nil, err
	}
	r, err := Emit(c, x.R)
	if err != nil {
		return nil, err
	}
	op, ok := binOpFor(x.Op)
	if !ok {
		return nil, errors.Errorf("internal: unknown binary op %q", x.Op)
	}
	return emitBinaryOp(c, op, l, r), nil
}

func binOpFor(op string) (BinaryOp, bool) {
	switch op {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "%":
		return OpMod, true
	case "==":
		return OpEq, true
	case "!=":
		return OpNotEq, true
	case "<":
		return OpLt, true
	case ">":
		return OpGt, true
	case "<=":
		return OpLe, true
	case ">=":
		return OpGe, true
	}
	return 0, false
}

func emitBinaryOp(c *LoweringContext, op BinaryOp, l, r *Value) *Value {
	v := &Value{Type: Int32, Kind: KindBinary, Op: op, Lhs: l, Rhs: r}
	c.Builder.Add(v)
	return v
}

// emitShortCircuit expands "&&"/"||" to control flow. isAnd picks between
// the two symmetric shapes. Per DESIGN.md's open-question decision, the
// temp/branch scaffold is skipped entirely when the current block is
// already terminated (dead code), so no unreachable Alloc ever consumes a
// stack slot.
func emitShortCircuit(c *LoweringContext, x *parser.BinaryExpr, isAnd bool) (*Value, error) {
	if c.Builder.Terminated() {
		return NewInteger(0), nil
	}

	slot := &Value{Type: PointerTo(Int32), Kind: KindAlloc}
	c.Builder.Add(slot)

	var initVal int32
	if isAnd {
		initVal = 0
	} else {
		initVal = 1
	}
	storeInto(c, slot, NewInteger(initVal))

	l, err := Emit(c, x.L)
	if err != nil {
		return nil, err
	}

	evalBB := &BasicBlock{Name: c.nextBlockName("sc_rhs")}
	endBB := &BasicBlock{Name: c.nextBlockName("sc_end")}

	var cond *Value
	if isAnd {
		cond = emitBinaryOp(c, OpNotEq, l, NewInteger(0))
		c.Builder.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: evalBB, FalseBB: endBB})
	} else {
		cond = emitBinaryOp(c, OpEq, l, NewInteger(0))
		c.Builder.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: evalBB, FalseBB: endBB})
	}

	c.Builder.OpenBlock(evalBB)
	r, err := Emit(c, x.R)
	if err != nil {
		return nil, err
	}
	rBool := emitBinaryOp(c, OpNotEq, r, NewInteger(0))
	storeInto(c, slot, rBool)
	c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: endBB})

	c.Builder.OpenBlock(endBB)
	load := &Value{Type: Int32, Kind: KindLoad, Src: slot}
	c.Builder.Add(load)
	return load, nil
}

func storeInto(c *LoweringContext, dest, value *Value) {
	c.Builder.Add(&Value{Type: Unit, Kind: KindStore, StoreValue: value, StoreDest: dest})
}

func emitCall(c *LoweringContext, x *parser.CallExpr) (*Value, error) {
	b, err := c.Scopes.Lookup(x.Func)
	if err != nil {
		return nil, err
	}
	if b.Kind != BindFunction {
		return nil, errors.Errorf("%q is not a function", x.Func)
	}
	if len(x.Args) != len(b.Func.Type.Params) {
		return nil, errors.Errorf("function %q expects %d argument(s), got %d", x.Func, len(b.Func.Type.Params), len(x.Args))
	}
	args := make([]*Value, len(x.Args))
	for i, a := range x.Args {
		v, err := emitCallArg(c, a, b.Func.Type.Params[i])
		if err != nil {
			return nil, err
		}
		if !v.Type.Equal(b.Func.Type.Params[i]) {
			return nil, errors.Errorf("function %q argument %d: type %s does not match parameter type %s", x.Func, i+1, v.Type, b.Func.Type.Params[i])
		}
		args[i] = v
	}
	call := &Value{Type: b.Func.Type.Ret, Kind: KindCall, Callee: b.Func, Args: args}
	c.Builder.Add(call)
	return call, nil
}

// emitCallArg lowers one call argument, applying the array-decay rule
// when the formal is a pointer and the actual is an under-indexed (or
// zero-indexed) array l-value.
func emitCallArg(c *LoweringContext, e parser.Expr, formal *Type) (*Value, error) {
	if lve, ok := e.(*parser.LValExpr); ok && formal.Kind == TyPointer {
		return emitLValAsArg(c, lve.LVal)
	}
	return Emit(c, e)
}

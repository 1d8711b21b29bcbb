package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// buildArrayType builds the nested array<...> type for declared dimensions
// dims (outermost first), base Int32.
func buildArrayType(dims []int) *Type {
	t := Int32
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrayOf(t, dims[i])
	}
	return t
}

// strides computes the suffix-product stride vector: strides[n]=1,
// strides[i] = strides[i+1]*dims[i] for i=n-1..0, so strides[i] is the
// total element count of a single index-step at level i. This is an
// inclusive suffix product (strides[0] already equals the full dimension
// product), matching original_source/src/ast/array_ast.cpp's `pro` array
// rather than an exclusive one, since only the inclusive form makes the
// top-level flatten target equal the array's total element count.
func strides(dims []int) []int {
	n := len(dims)
	s := make([]int, n+1)
	s[n] = 1
	for i := n - 1; i >= 0; i-- {
		s[i] = s[i+1] * dims[i]
	}
	return s
}

// flattenArrayInit flattens init against declared dims, using leaf to
// lower each leaf expression (EvalConst-wrapped for constant contexts,
// Emit for runtime ones). Returns exactly strides[0] values.
func flattenArrayInit(c *LoweringContext, dims []int, init parser.InitVal, leaf func(parser.Expr) (*Value, error)) ([]*Value, error) {
	list, ok := init.(*parser.InitList)
	if !ok {
		return nil, errors.New("array initializer must be brace-enclosed")
	}
	s := strides(dims)
	var buf []*Value
	if err := subFlatten(c, s, 0, &buf, list, leaf); err != nil {
		return nil, err
	}
	return buf, nil
}

func subFlatten(c *LoweringContext, s []int, align int, buf *[]*Value, list *parser.InitList, leaf func(parser.Expr) (*Value, error)) error {
	targetEnd := len(*buf) + s[align]
	for _, item := range list.Items {
		switch it := item.(type) {
		case *parser.InitExpr:
			v, err := leaf(it.Expr)
			if err != nil {
				return err
			}
			*buf = append(*buf, v)
		case *parser.InitList:
			a := align + 1
			for len(*buf)%s[a] != 0 {
				a++
			}
			if err := subFlatten(c, s, a, buf, it, leaf); err != nil {
				return err
			}
		default:
			return errors.Errorf("internal: unknown init-val node %T", item)
		}
		if len(*buf) > targetEnd {
			return errors.New("initializer list longer than its target slot")
		}
	}
	for len(*buf) < targetEnd {
		*buf = append(*buf, NewInteger(0))
	}
	return nil
}

// foldAggregate rebuilds a flat buffer into the nested Aggregate value a
// global's declared array type demands.
func foldAggregate(dims []int, s []int, align int, buf []*Value, pos int) *Value {
	if s[align] == 1 {
		return buf[pos]
	}
	t := buildArrayType(dimsFrom(dims, align))
	elems := make([]*Value, dims[align])
	for i := 0; i < dims[align]; i++ {
		elems[i] = foldAggregate(dims, s, align+1, buf, pos+s[align+1]*i)
	}
	return NewAggregate(t, elems)
}

func dimsFrom(dims []int, align int) []int {
	return dims[align:]
}

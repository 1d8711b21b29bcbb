package compiler

// ValueKind tags the variant carried by a Value.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindZeroInit
	KindAggregate
	KindFuncArgRef
	KindAlloc
	KindGlobalAlloc
	KindLoad
	KindStore
	KindGetElemPtr
	KindGetPtr
	KindBinary
	KindBranch
	KindJump
	KindCall
	KindReturn
)

// BinaryOp enumerates the integer binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
)

// Value is a node of the shared-ownership IR graph. Every value has a
// type, an optional name (globals/functions/parameters/stack variables
// only — temporaries are anonymous), and a tagged-variant payload. Values
// are allocated once during lowering and referenced thereafter by pointer;
// the owning Program is the single arena and nothing is ever freed
// individually (see SPEC_FULL.md §3's arena/handle note).
type Value struct {
	Type *Type
	Name string
	Kind ValueKind

	// KindInteger
	Int int32

	// KindAggregate
	Elems []*Value

	// KindFuncArgRef
	ArgIndex int

	// KindGlobalAlloc
	Init *Value

	// KindLoad / operand of GetElemPtr,GetPtr (Src)
	Src *Value

	// KindStore
	StoreValue *Value
	StoreDest  *Value

	// KindGetElemPtr / KindGetPtr
	Index *Value

	// KindBinary
	Op       BinaryOp
	Lhs, Rhs *Value

	// KindBranch
	Cond    *Value
	TrueBB  *BasicBlock
	FalseBB *BasicBlock

	// KindJump
	Target *BasicBlock

	// KindCall
	Callee *Function
	Args   []*Value

	// KindReturn
	RetValue *Value // nil iff function's return type is Unit
}

// IsTerminator reports whether v ends a basic block.
func (v *Value) IsTerminator() bool {
	switch v.Kind {
	case KindBranch, KindJump, KindReturn:
		return true
	default:
		return false
	}
}

// NewInteger builds an Int32 constant.
func NewInteger(n int32) *Value {
	return &Value{Type: Int32, Kind: KindInteger, Int: n}
}

// NewZeroInit builds an all-zero aggregate of type t.
func NewZeroInit(t *Type) *Value {
	return &Value{Type: t, Kind: KindZeroInit}
}

// NewAggregate builds a nested constant array literal.
func NewAggregate(t *Type, elems []*Value) *Value {
	return &Value{Type: t, Kind: KindAggregate, Elems: elems}
}

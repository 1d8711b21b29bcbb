package compiler

// BasicBlock is a maximal straight-line instruction sequence terminated by
// exactly one terminator, which must be its last instruction.
type BasicBlock struct {
	Name   string
	Params []*Value
	Insts  []*Value
}

// Terminator returns the block's terminator instruction, or nil if the
// block was never properly closed (a compiler bug, since the grammar
// guarantees every reachable path ends in one — see builder.go).
func (bb *BasicBlock) Terminator() *Value {
	if len(bb.Insts) == 0 {
		return nil
	}
	last := bb.Insts[len(bb.Insts)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Function is a declaration (no body, BBs empty) iff it encodes one of the
// eight library intrinsics; otherwise BBs[0] is its entry.
type Function struct {
	Name   string
	Type   *Type // Kind == TyFunction
	Params []*Value
	BBs    []*BasicBlock
}

// IsDecl reports whether Function has no body.
func (f *Function) IsDecl() bool {
	return len(f.BBs) == 0
}

// Entry returns the function's entry block, or nil for a declaration.
func (f *Function) Entry() *BasicBlock {
	if len(f.BBs) == 0 {
		return nil
	}
	return f.BBs[0]
}

// Program is the root of the IR graph: module-level globals plus all
// functions (declarations and definitions). Program is the single owner
// of every Value, BasicBlock, and Function reachable from it.
type Program struct {
	Globals []*Value // KindGlobalAlloc values
	Funcs   []*Function
}

// NewProgram builds an empty program.
func NewProgram() *Program {
	return &Program{}
}

// LibraryIntrinsics lists the eight externally linked functions that must
// be pre-bound in the outermost scope before any user code is lowered.
var LibraryIntrinsics = []struct {
	Name   string
	Params []*Type
	Ret    *Type
}{
	{"getint", nil, Int32},
	{"getch", nil, Int32},
	{"getarray", []*Type{PointerTo(Int32)}, Int32},
	{"putint", []*Type{Int32}, Unit},
	{"putch", []*Type{Int32}, Unit},
	{"putarray", []*Type{Int32, PointerTo(Int32)}, Unit},
	{"starttime", nil, Unit},
	{"stoptime", nil, Unit},
}

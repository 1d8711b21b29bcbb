package compiler

// Builder maintains the "current basic block" during lowering: it
// buffers instructions for the open block and finalizes (truncates at the
// first terminator, appends to the function) whenever a new block opens or
// the function closes. Instructions appended after a terminator within the
// same source block are dropped by finalization (which prints a warning on
// the warn logger), never by Add.
type Builder struct {
	fn      *Function
	pending []*Value
	cur     *BasicBlock
}

// NewBuilder starts building into fn, which must already have no blocks.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// OpenBlock finalizes the previously open block (if any) and makes bb the
// new current block.
func (b *Builder) OpenBlock(bb *BasicBlock) {
	b.finalize()
	b.fn.BBs = append(b.fn.BBs, bb)
	b.cur = bb
	b.pending = nil
}

// Add appends inst to the pending buffer of the current block.
func (b *Builder) Add(inst *Value) {
	if b.cur == nil {
		panic("internal: Add with no open block")
	}
	b.pending = append(b.pending, inst)
}

// Terminated reports whether the pending buffer already contains a
// terminator, i.e. further Adds in this source block are dead code.
func (b *Builder) Terminated() bool {
	for _, inst := range b.pending {
		if inst.IsTerminator() {
			return true
		}
	}
	return false
}

// CloseFunction finalizes the last open block.
func (b *Builder) CloseFunction() {
	b.finalize()
	b.cur = nil
}

// finalize scans the pending buffer front to back and truncates it at the
// first terminator (inclusive), then commits it as the current block's
// instruction list. A block with no terminator at all is committed as-is
// — the compiler never injects an implicit terminator; the source grammar
// guarantees one exists.
func (b *Builder) finalize() {
	if b.cur == nil {
		return
	}
	insts := b.pending
	for i, inst := range insts {
		if inst.IsTerminator() {
			if dropped := len(insts) - (i + 1); dropped > 0 {
				warn.Printf("%s: dropping %d unreachable instruction(s) after a terminator in %s", b.fn.Name, dropped, b.cur.Name)
			}
			insts = insts[:i+1]
			break
		}
	}
	b.cur.Insts = insts
}

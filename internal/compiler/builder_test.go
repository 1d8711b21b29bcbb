package compiler

import "testing"

func newTestFunc(name string) *Function {
	return &Function{Name: name, Type: FuncType(nil, Int32)}
}

func TestBuilderCommitsSingleBlock(t *testing.T) {
	fn := newTestFunc("@f")
	b := NewBuilder(fn)
	bb := &BasicBlock{Name: "%entry"}
	b.OpenBlock(bb)
	b.Add(&Value{Type: Unit, Kind: KindAlloc})
	b.Add(&Value{Kind: KindReturn, RetValue: NewInteger(0)})
	b.CloseFunction()

	if len(fn.BBs) != 1 {
		t.Fatalf("got %d blocks, want 1", len(fn.BBs))
	}
	if len(fn.BBs[0].Insts) != 2 {
		t.Fatalf("got %d insts, want 2", len(fn.BBs[0].Insts))
	}
}

func TestBuilderTruncatesDeadCodeAfterTerminator(t *testing.T) {
	fn := newTestFunc("@f")
	b := NewBuilder(fn)
	bb := &BasicBlock{Name: "%entry"}
	b.OpenBlock(bb)
	b.Add(&Value{Kind: KindReturn, RetValue: NewInteger(1)})
	b.Add(&Value{Kind: KindAlloc}) // dead: unreachable after return
	b.CloseFunction()

	if len(fn.BBs[0].Insts) != 1 {
		t.Fatalf("got %d insts, want 1 (dead code should be truncated)", len(fn.BBs[0].Insts))
	}
	if fn.BBs[0].Insts[0].Kind != KindReturn {
		t.Errorf("surviving instruction should be the terminator, got %v", fn.BBs[0].Insts[0].Kind)
	}
}

func TestBuilderTerminatedReflectsPendingBuffer(t *testing.T) {
	fn := newTestFunc("@f")
	b := NewBuilder(fn)
	b.OpenBlock(&BasicBlock{Name: "%entry"})
	if b.Terminated() {
		t.Fatal("empty pending buffer should not be reported as terminated")
	}
	b.Add(&Value{Kind: KindAlloc})
	if b.Terminated() {
		t.Fatal("non-terminator instruction should not mark the block terminated")
	}
	b.Add(&Value{Kind: KindJump, Target: &BasicBlock{Name: "%end"}})
	if !b.Terminated() {
		t.Fatal("block with a jump should be reported as terminated")
	}
}

func TestBuilderMultipleBlocksEachFinalizeIndependently(t *testing.T) {
	fn := newTestFunc("@f")
	b := NewBuilder(fn)
	entry := &BasicBlock{Name: "%entry"}
	b.OpenBlock(entry)
	b.Add(&Value{Kind: KindJump, Target: &BasicBlock{Name: "%next"}})

	next := &BasicBlock{Name: "%next"}
	b.OpenBlock(next)
	b.Add(&Value{Kind: KindReturn})
	b.CloseFunction()

	if len(fn.BBs) != 2 {
		t.Fatalf("got %d blocks, want 2", len(fn.BBs))
	}
	if len(fn.BBs[0].Insts) != 1 || len(fn.BBs[1].Insts) != 1 {
		t.Fatalf("expected exactly one instruction per block, got %d and %d",
			len(fn.BBs[0].Insts), len(fn.BBs[1].Insts))
	}
}

package compiler

import (
	"strings"
	"testing"
)

func buildSmallProgram() *Program {
	prog := NewProgram()

	global := &Value{Type: PointerTo(Int32), Kind: KindGlobalAlloc, Name: "@g", Init: NewInteger(9)}
	prog.Globals = append(prog.Globals, global)

	fn := &Function{Name: "@add1", Type: FuncType([]*Type{Int32}, Int32)}
	prog.Funcs = append(prog.Funcs, fn)

	b := NewBuilder(fn)
	entry := &BasicBlock{Name: "%entry"}
	b.OpenBlock(entry)

	arg := &Value{Type: Int32, Kind: KindFuncArgRef, ArgIndex: 0}
	fn.Params = append(fn.Params, arg)

	slot := &Value{Type: PointerTo(Int32), Kind: KindAlloc}
	b.Add(slot)
	b.Add(&Value{Type: Unit, Kind: KindStore, StoreValue: arg, StoreDest: slot})

	load := &Value{Type: Int32, Kind: KindLoad, Src: slot}
	b.Add(load)

	sum := &Value{Type: Int32, Kind: KindBinary, Op: OpAdd, Lhs: load, Rhs: NewInteger(1)}
	b.Add(sum)

	cond := &Value{Type: Int32, Kind: KindBinary, Op: OpGt, Lhs: sum, Rhs: NewInteger(0)}
	b.Add(cond)

	thenBB := &BasicBlock{Name: "%then"}
	endBB := &BasicBlock{Name: "%end"}
	b.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: thenBB, FalseBB: endBB})

	b.OpenBlock(thenBB)
	b.Add(&Value{Type: Unit, Kind: KindJump, Target: endBB})

	b.OpenBlock(endBB)
	b.Add(&Value{Kind: KindReturn, RetValue: sum})
	b.CloseFunction()

	main := &Function{Name: "@main", Type: FuncType(nil, Int32)}
	prog.Funcs = append(prog.Funcs, main)
	mb := NewBuilder(main)
	mb.OpenBlock(&BasicBlock{Name: "%entry"})
	call := &Value{Type: Int32, Kind: KindCall, Callee: fn, Args: []*Value{NewInteger(41)}}
	mb.Add(call)
	mb.Add(&Value{Kind: KindReturn, RetValue: call})
	mb.CloseFunction()

	return prog
}

func TestEmitTextContainsExpectedShapes(t *testing.T) {
	text := EmitText(buildSmallProgram())
	for _, want := range []string{
		"global @g: i32 = 9",
		"fun @add1(%arg0: i32): i32 {",
		"store %arg0,",
		"add ",
		"gt ",
		"br ",
		"jump %end",
		"call @add1(41)",
		"ret",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("emitted text missing expected fragment %q\n--- text ---\n%s", want, text)
		}
	}
}

func TestParseTextRoundTrip(t *testing.T) {
	prog := buildSmallProgram()
	text := EmitText(prog)

	reparsed, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	again := EmitText(reparsed)
	if again != text {
		t.Fatalf("round trip mismatch:\n--- original ---\n%s\n--- reparsed ---\n%s", text, again)
	}
}

func TestParseTextRejectsMalformedInput(t *testing.T) {
	tests := []struct{ name, text string }{
		{"bad global", "global @g: i32 9\n"},
		{"bad function header", "fun @f(: i32 {\n}\n"},
		{"unknown opcode", "fun @f(): i32 {\n%entry:\n  %0 = frobnicate 1, 2\n  ret %0\n}\n"},
		{"unknown block", "fun @f(): i32 {\n%entry:\n  jump %nope\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseText(tt.text); err == nil {
				t.Fatalf("expected an error parsing %q", tt.text)
			}
		})
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	tests := []*Type{
		Int32,
		Unit,
		PointerTo(Int32),
		ArrayOf(Int32, 5),
		ArrayOf(ArrayOf(Int32, 3), 2),
		PointerTo(ArrayOf(Int32, 4)),
	}
	for _, typ := range tests {
		t.Run(typ.String(), func(t *testing.T) {
			parsed, err := parseType(typ.String())
			if err != nil {
				t.Fatalf("parseType(%q): %v", typ.String(), err)
			}
			if !parsed.Equal(typ) {
				t.Errorf("parseType(%q) = %s, want %s", typ.String(), parsed, typ)
			}
		})
	}
}

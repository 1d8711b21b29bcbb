package compiler

import (
	"fmt"
	"strings"
)

// immOK reports whether n fits RISC-V's 12-bit signed immediate range, as
// used by addi/lw/sw. Anything outside it must be materialized through a
// scratch register first.
func immOK(n int) bool {
	return n >= -2048 && n <= 2047
}

func bareName(name string) string {
	return strings.TrimPrefix(name, "@")
}

func blockLabel(name string) string {
	return strings.TrimPrefix(name, "%")
}

// codegen walks a lowered Program and renders RISC-V32 assembly text,
// grounded on original_source/src/riscv.cpp's koopa2riscv driver (single
// .data section for every global, one .text section for every function
// body; no further passes).
type codegen struct {
	sb          strings.Builder
	frame       *Frame
	funcName    string
	skipCounter int
}

// Codegen renders prog as RISC-V32 assembly text.
func Codegen(prog *Program) string {
	g := &codegen{}
	g.sb.WriteString(".data\n")
	for _, gl := range prog.Globals {
		g.emitGlobal(gl)
	}
	g.sb.WriteString(".text\n")
	for _, fn := range prog.Funcs {
		g.emitFunc(fn)
	}
	return g.sb.String()
}

func (g *codegen) emitGlobal(gl *Value) {
	name := bareName(gl.Name)
	fmt.Fprintf(&g.sb, ".globl %s\n%s:\n", name, name)
	g.emitGlobalInit(gl.Init, gl.Type.Base)
}

func (g *codegen) emitGlobalInit(v *Value, t *Type) {
	switch v.Kind {
	case KindZeroInit:
		fmt.Fprintf(&g.sb, "\t.zero %d\n", SizeOf(t))
	case KindAggregate:
		for _, e := range v.Elems {
			g.emitGlobalInit(e, t.Base)
		}
	case KindInteger:
		fmt.Fprintf(&g.sb, "\t.word %d\n", v.Int)
	}
}

func (g *codegen) emitFunc(fn *Function) {
	if fn.IsDecl() {
		return
	}
	name := bareName(fn.Name)
	fmt.Fprintf(&g.sb, ".globl %s\n%s:\n", name, name)

	g.frame = newFrame(fn)
	g.funcName = name
	g.skipCounter = 0

	if g.frame.Size > 0 {
		g.emitAddSP(-g.frame.Size)
	}
	if g.frame.HasCall {
		offset := g.frame.Size - 4
		if !immOK(offset) {
			g.li("t0", offset)
			g.sb.WriteString("\tadd t0, sp, t0\n")
			g.sb.WriteString("\tsw ra, 0(t0)\n")
		} else {
			fmt.Fprintf(&g.sb, "\tsw ra, %d(sp)\n", offset)
		}
	}

	for _, bb := range fn.BBs {
		g.emitBlock(bb)
	}
}

func (g *codegen) emitBlock(bb *BasicBlock) {
	fmt.Fprintf(&g.sb, "\n%s_%s:\n", g.funcName, blockLabel(bb.Name))
	for _, inst := range bb.Insts {
		g.emitValue(inst)
	}
}

func (g *codegen) emitValue(v *Value) {
	switch v.Kind {
	case KindAlloc, KindGlobalAlloc, KindInteger, KindZeroInit, KindAggregate, KindFuncArgRef:
		// Alloc reserves a frame slot lazily on first fetch; the others
		// never occur as a standalone block instruction.
	case KindLoad:
		g.emitLoad(v)
	case KindStore:
		g.emitStore(v)
	case KindGetPtr:
		g.emitGetPtr(v)
	case KindGetElemPtr:
		g.emitGetElemPtr(v)
	case KindBinary:
		g.emitBinary(v)
	case KindBranch:
		g.emitBranch(v)
	case KindJump:
		g.emitJump(v)
	case KindCall:
		g.emitCall(v)
	case KindReturn:
		g.emitReturn(v)
	}
}

func (g *codegen) li(reg string, n int) {
	fmt.Fprintf(&g.sb, "\tli %s, %d\n", reg, n)
}

func (g *codegen) emitAddSP(delta int) {
	if !immOK(delta) {
		g.li("t0", delta)
		g.sb.WriteString("\tadd sp, sp, t0\n")
	} else {
		fmt.Fprintf(&g.sb, "\taddi sp, sp, %d\n", delta)
	}
}

// loadReg materializes v into reg: an immediate for a constant, a
// global-relative load for a GlobalAlloc, or a (possibly out-of-range)
// stack load otherwise.
func (g *codegen) loadReg(v *Value, reg string) {
	switch v.Kind {
	case KindInteger:
		g.li(reg, int(v.Int))
	case KindGlobalAlloc:
		fmt.Fprintf(&g.sb, "\tla t0, %s\n", bareName(v.Name))
		fmt.Fprintf(&g.sb, "\tlw %s, 0(t0)\n", reg)
	default:
		addr := g.frame.fetch(v)
		if !immOK(addr) {
			g.li("t6", addr)
			g.sb.WriteString("\tadd t6, t6, sp\n")
			fmt.Fprintf(&g.sb, "\tlw %s, 0(t6)\n", reg)
		} else {
			fmt.Fprintf(&g.sb, "\tlw %s, %d(sp)\n", reg, addr)
		}
	}
}

func (g *codegen) storeStack(addr int, reg string) {
	if !immOK(addr) {
		g.li("t6", addr)
		g.sb.WriteString("\tadd t6, t6, sp\n")
		fmt.Fprintf(&g.sb, "\tsw %s, 0(t6)\n", reg)
	} else {
		fmt.Fprintf(&g.sb, "\tsw %s, %d(sp)\n", reg, addr)
	}
}

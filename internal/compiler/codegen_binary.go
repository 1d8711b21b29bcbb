package compiler

// emitBinary lowers one Binary instruction to its RISC-V sequence. Every
// comparison op that has no single-instruction RISC-V form is built from
// sltu/slt-style pseudo-ops the same way original_source/src/riscv.cpp's
// value_binary does: xor+seqz/snez for (in)equality, slt/sgt plus xori for
// the non-strict comparisons.
func (g *codegen) emitBinary(v *Value) {
	addr := g.frame.fetch(v)
	g.sb.WriteString("\n")
	g.loadReg(v.Lhs, "t0")
	g.loadReg(v.Rhs, "t1")

	switch v.Op {
	case OpNotEq:
		g.sb.WriteString("\txor t0, t0, t1\n")
		g.sb.WriteString("\tsnez t0, t0\n")
	case OpEq:
		g.sb.WriteString("\txor t0, t0, t1\n")
		g.sb.WriteString("\tseqz t0, t0\n")
	case OpGt:
		g.sb.WriteString("\tsgt t0, t0, t1\n")
	case OpLt:
		g.sb.WriteString("\tslt t0, t0, t1\n")
	case OpGe:
		g.sb.WriteString("\tslt t0, t0, t1\n")
		g.sb.WriteString("\txori t0, t0, 1\n")
	case OpLe:
		g.sb.WriteString("\tsgt t0, t0, t1\n")
		g.sb.WriteString("\txori t0, t0, 1\n")
	case OpAdd:
		g.sb.WriteString("\tadd t0, t0, t1\n")
	case OpSub:
		g.sb.WriteString("\tsub t0, t0, t1\n")
	case OpMul:
		g.sb.WriteString("\tmul t0, t0, t1\n")
	case OpDiv:
		g.sb.WriteString("\tdiv t0, t0, t1\n")
	case OpMod:
		g.sb.WriteString("\trem t0, t0, t1\n")
	case OpAnd:
		g.sb.WriteString("\tand t0, t0, t1\n")
	case OpOr:
		g.sb.WriteString("\tor t0, t0, t1\n")
	case OpXor:
		g.sb.WriteString("\txor t0, t0, t1\n")
	case OpShl:
		g.sb.WriteString("\tsll t0, t0, t1\n")
	case OpShr:
		g.sb.WriteString("\tsrl t0, t0, t1\n")
	case OpSar:
		g.sb.WriteString("\tsra t0, t0, t1\n")
	}
	g.storeStack(addr, "t0")
}

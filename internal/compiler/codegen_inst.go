package compiler

import (
	"fmt"

	"github.com/samber/lo"
)

func (g *codegen) emitLoad(v *Value) {
	addr := g.frame.fetch(v)
	g.sb.WriteString("\n")
	g.loadReg(v.Src, "t0")
	if v.Src.Kind == KindGetElemPtr || v.Src.Kind == KindGetPtr {
		g.sb.WriteString("\tlw t0, 0(t0)\n")
	}
	g.storeStack(addr, "t0")
}

func (g *codegen) emitStore(v *Value) {
	g.sb.WriteString("\n")

	var dest string
	switch {
	case v.StoreDest.Kind == KindGlobalAlloc:
		fmt.Fprintf(&g.sb, "\tla t1, %s\n", bareName(v.StoreDest.Name))
		dest = "0(t1)"
	case v.StoreDest.Kind == KindGetElemPtr || v.StoreDest.Kind == KindGetPtr:
		g.loadReg(v.StoreDest, "t1")
		dest = "0(t1)"
	default:
		addr := g.frame.fetch(v.StoreDest)
		if !immOK(addr) {
			g.li("t1", addr)
			g.sb.WriteString("\tadd t1, t1, sp\n")
			dest = "0(t1)"
		} else {
			dest = fmt.Sprintf("%d(sp)", addr)
		}
	}

	if v.StoreValue.Kind == KindFuncArgRef {
		idx := v.StoreValue.ArgIndex
		if idx < 8 {
			fmt.Fprintf(&g.sb, "\tsw a%d, %s\n", idx, dest)
			return
		}
		offset := (idx - 8) * 4
		if !immOK(offset) {
			g.li("t2", offset)
			g.sb.WriteString("\tadd t2, t2, sp\n")
			g.sb.WriteString("\tlw t0, 0(t2)\n")
		} else {
			fmt.Fprintf(&g.sb, "\tlw t0, %d(sp)\n", offset)
		}
		fmt.Fprintf(&g.sb, "\tsw t0, %s\n", dest)
		return
	}

	g.loadReg(v.StoreValue, "t0")
	fmt.Fprintf(&g.sb, "\tsw t0, %s\n", dest)
}

func (g *codegen) emitSrcAddr(src *Value) {
	srcAddr := g.frame.fetch(src)
	if !immOK(srcAddr) {
		g.li("t0", srcAddr)
		g.sb.WriteString("\tadd t0, sp, t0\n")
	} else {
		fmt.Fprintf(&g.sb, "\taddi t0, sp, %d\n", srcAddr)
	}
}

func (g *codegen) emitGetPtr(v *Value) {
	addr := g.frame.fetch(v)
	g.sb.WriteString("\n")
	g.emitSrcAddr(v.Src)
	g.sb.WriteString("\tlw t0, 0(t0)\n")

	g.loadReg(v.Index, "t1")
	elemSize := SizeOf(v.Src.Type.Base)
	g.li("t2", elemSize)
	g.sb.WriteString("\tmul t1, t1, t2\n")
	g.sb.WriteString("\tadd t0, t0, t1\n")
	g.storeStack(addr, "t0")
}

func (g *codegen) emitGetElemPtr(v *Value) {
	addr := g.frame.fetch(v)
	g.sb.WriteString("\n")

	if v.Src.Kind == KindGlobalAlloc {
		fmt.Fprintf(&g.sb, "\tla t0, %s\n", bareName(v.Src.Name))
	} else {
		g.emitSrcAddr(v.Src)
		if v.Src.Kind == KindGetElemPtr || v.Src.Kind == KindGetPtr {
			g.sb.WriteString("\tlw t0, 0(t0)\n")
		}
	}

	g.loadReg(v.Index, "t1")
	elemSize := SizeOf(v.Src.Type.Base.Base)
	g.li("t2", elemSize)
	g.sb.WriteString("\tmul t1, t1, t2\n")
	g.sb.WriteString("\tadd t0, t0, t1\n")
	g.storeStack(addr, "t0")
}

func (g *codegen) emitBranch(v *Value) {
	g.sb.WriteString("\n")
	g.loadReg(v.Cond, "t0")
	skip := g.skipCounter
	g.skipCounter++
	fmt.Fprintf(&g.sb, "\tbnez t0, %s_skip%d\n", g.funcName, skip)
	fmt.Fprintf(&g.sb, "\tj %s_%s\n", g.funcName, blockLabel(v.FalseBB.Name))
	fmt.Fprintf(&g.sb, "%s_skip%d:\n", g.funcName, skip)
	fmt.Fprintf(&g.sb, "\tj %s_%s\n", g.funcName, blockLabel(v.TrueBB.Name))
}

func (g *codegen) emitJump(v *Value) {
	g.sb.WriteString("\n")
	fmt.Fprintf(&g.sb, "\tj %s_%s\n", g.funcName, blockLabel(v.Target.Name))
}

func (g *codegen) emitCall(v *Value) {
	g.sb.WriteString("\n")

	regArgs := v.Args
	if len(regArgs) > 8 {
		regArgs = regArgs[:8]
	}
	for i, a := range regArgs {
		g.loadReg(a, fmt.Sprintf("a%d", i))
	}

	calleeSize, _ := funcSize(v.Callee)
	calleeSize = align16(calleeSize)

	var stackArgs []lo.Tuple2[int, *Value]
	for i := 8; i < len(v.Args); i++ {
		offset := (i-8)*4 - calleeSize
		stackArgs = append(stackArgs, lo.Tuple2[int, *Value]{A: offset, B: v.Args[i]})
	}
	for _, pair := range stackArgs {
		offset, arg := pair.Unpack()
		g.loadReg(arg, "t0")
		if !immOK(offset) {
			g.li("t6", offset)
			g.sb.WriteString("\tadd t6, t6, sp\n")
			g.sb.WriteString("\tsw t0, 0(t6)\n")
		} else {
			fmt.Fprintf(&g.sb, "\tsw t0, %d(sp)\n", offset)
		}
	}

	fmt.Fprintf(&g.sb, "\tcall %s\n", bareName(v.Callee.Name))
	if !v.Type.Equal(Unit) {
		addr := g.frame.fetch(v)
		g.storeStack(addr, "a0")
	}
}

func (g *codegen) emitReturn(v *Value) {
	g.sb.WriteString("\n")
	if v.RetValue != nil {
		g.loadReg(v.RetValue, "a0")
	}
	if g.frame.HasCall {
		offset := g.frame.Size - 4
		if !immOK(offset) {
			g.li("t6", offset)
			g.sb.WriteString("\tadd t6, t6, sp\n")
			g.sb.WriteString("\tlw ra, 0(t6)\n")
		} else {
			fmt.Fprintf(&g.sb, "\tlw ra, %d(sp)\n", offset)
		}
	}
	if g.frame.Size != 0 {
		g.emitAddSP(g.frame.Size)
	}
	g.sb.WriteString("\tret\n")
}

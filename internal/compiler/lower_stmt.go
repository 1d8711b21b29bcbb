package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// lowerBlock lowers a brace-enclosed statement/declaration sequence in its
// own lexical frame.
func lowerBlock(c *LoweringContext, blk *parser.Block) error {
	c.Scopes.PushFrame()
	defer c.Scopes.PopFrame()
	for _, item := range blk.Items {
		if err := lowerBlockItem(c, item); err != nil {
			return err
		}
	}
	return nil
}

func lowerBlockItem(c *LoweringContext, item parser.BlockItem) error {
	switch it := item.(type) {
	case *parser.Decl:
		return lowerLocalDecl(c, it)
	case parser.Stmt:
		return lowerStmt(c, it)
	default:
		return errors.Errorf("internal: unknown block item %T", item)
	}
}

func lowerStmt(c *LoweringContext, s parser.Stmt) error {
	switch st := s.(type) {
	case *parser.AssignStmt:
		addr, err := emitLValAddr(c, st.LVal)
		if err != nil {
			return err
		}
		v, err := Emit(c, st.Exp)
		if err != nil {
			return err
		}
		storeInto(c, addr, v)
		return nil
	case *parser.ExprStmt:
		if st.Exp == nil {
			return nil
		}
		_, err := Emit(c, st.Exp)
		return err
	case *parser.BlockStmt:
		return lowerBlock(c, st.Block)
	case *parser.IfStmt:
		return lowerIf(c, st)
	case *parser.WhileStmt:
		return lowerWhile(c, st)
	case *parser.BreakStmt:
		loop, err := c.currentLoop()
		if err != nil {
			return err
		}
		c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: loop.EndBB})
		return nil
	case *parser.ContinueStmt:
		loop, err := c.currentLoop()
		if err != nil {
			return err
		}
		c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: loop.EntryBB})
		return nil
	case *parser.ReturnStmt:
		return lowerReturn(c, st)
	default:
		return errors.Errorf("internal: unknown statement node %T", s)
	}
}

func lowerReturn(c *LoweringContext, st *parser.ReturnStmt) error {
	if st.Exp == nil {
		if !c.Func.Type.Ret.Equal(Unit) {
			return errors.Errorf("function %q must return a value", c.Func.Name)
		}
		c.Builder.Add(&Value{Type: Unit, Kind: KindReturn})
		return nil
	}
	if c.Func.Type.Ret.Equal(Unit) {
		return errors.Errorf("void function %q cannot return a value", c.Func.Name)
	}
	v, err := Emit(c, st.Exp)
	if err != nil {
		return err
	}
	c.Builder.Add(&Value{Type: Unit, Kind: KindReturn, RetValue: v})
	return nil
}

// lowerIf lowers if/else to explicit branches. Per the dead-code-skip
// convention established for short-circuit evaluation (lower_expr.go), an
// if reached only after the enclosing block has already terminated is
// dropped entirely rather than emitting unreachable blocks.
func lowerIf(c *LoweringContext, st *parser.IfStmt) error {
	if c.Builder.Terminated() {
		return nil
	}
	cond, err := Emit(c, st.Cond)
	if err != nil {
		return err
	}

	thenBB := &BasicBlock{Name: c.nextBlockName("if_then")}
	endBB := &BasicBlock{Name: c.nextBlockName("if_end")}

	if st.Else == nil {
		c.Builder.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: thenBB, FalseBB: endBB})
		c.Builder.OpenBlock(thenBB)
		if err := lowerStmt(c, st.Then); err != nil {
			return err
		}
		if !c.Builder.Terminated() {
			c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: endBB})
		}
		c.Builder.OpenBlock(endBB)
		return nil
	}

	elseBB := &BasicBlock{Name: c.nextBlockName("if_else")}
	c.Builder.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: thenBB, FalseBB: elseBB})

	c.Builder.OpenBlock(thenBB)
	if err := lowerStmt(c, st.Then); err != nil {
		return err
	}
	if !c.Builder.Terminated() {
		c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: endBB})
	}

	c.Builder.OpenBlock(elseBB)
	if err := lowerStmt(c, st.Else); err != nil {
		return err
	}
	if !c.Builder.Terminated() {
		c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: endBB})
	}

	c.Builder.OpenBlock(endBB)
	return nil
}

// lowerWhile lowers while to a three-block shape: entry (condition test,
// loop-context target for continue), body, end (loop-context target for
// break).
func lowerWhile(c *LoweringContext, st *parser.WhileStmt) error {
	if c.Builder.Terminated() {
		return nil
	}
	entryBB := &BasicBlock{Name: c.nextBlockName("while_entry")}
	bodyBB := &BasicBlock{Name: c.nextBlockName("while_body")}
	endBB := &BasicBlock{Name: c.nextBlockName("while_end")}

	c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: entryBB})
	c.Builder.OpenBlock(entryBB)
	cond, err := Emit(c, st.Cond)
	if err != nil {
		return err
	}
	c.Builder.Add(&Value{Type: Unit, Kind: KindBranch, Cond: cond, TrueBB: bodyBB, FalseBB: endBB})

	c.Builder.OpenBlock(bodyBB)
	c.pushLoop(loopCtx{EntryBB: entryBB, BodyBB: bodyBB, EndBB: endBB})
	err = lowerStmt(c, st.Body)
	c.popLoop()
	if err != nil {
		return err
	}
	if !c.Builder.Terminated() {
		c.Builder.Add(&Value{Type: Unit, Kind: KindJump, Target: entryBB})
	}

	c.Builder.OpenBlock(endBB)
	return nil
}

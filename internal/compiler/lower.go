package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// loopCtx is one entry of the loop-context stack a while statement pushes
// for its body: break targets EndBB, continue targets EntryBB.
type loopCtx struct {
	EntryBB *BasicBlock
	BodyBB  *BasicBlock
	EndBB   *BasicBlock
}

// LoweringContext threads every piece of mutable state AST→IR lowering
// needs, replacing original_source's module-global scope/builder
// singletons with one explicit value passed through every lowering
// function.
type LoweringContext struct {
	Scopes  *Scopes
	Builder *Builder
	Loops   []loopCtx
	Program *Program
	Func    *Function

	blockSeq int // per-function counter for unique block names
}

func (c *LoweringContext) nextBlockName(prefix string) string {
	c.blockSeq++
	return fmt.Sprintf("%%%s_%d", prefix, c.blockSeq)
}

func (c *LoweringContext) pushLoop(l loopCtx) { c.Loops = append(c.Loops, l) }
func (c *LoweringContext) popLoop()            { c.Loops = c.Loops[:len(c.Loops)-1] }
func (c *LoweringContext) currentLoop() (loopCtx, error) {
	if len(c.Loops) == 0 {
		return loopCtx{}, errors.New("break/continue outside a loop")
	}
	return c.Loops[len(c.Loops)-1], nil
}

// Lower lowers a whole translation unit to an IR Program.
func Lower(cu *parser.CompUnit) (*Program, error) {
	prog := NewProgram()
	scopes := NewScopes()

	for _, lib := range LibraryIntrinsics {
		fn := &Function{Name: lib.Name, Type: FuncType(lib.Params, lib.Ret)}
		prog.Funcs = append(prog.Funcs, fn)
		if err := scopes.Define(lib.Name, &Binding{Kind: BindFunction, Func: fn}); err != nil {
			return nil, err
		}
	}

	c := &LoweringContext{Scopes: scopes, Program: prog}

	for _, item := range cu.Items {
		switch it := item.(type) {
		case *parser.Decl:
			if err := lowerGlobalDecl(c, it); err != nil {
				return nil, err
			}
		case *parser.FuncDef:
			if err := lowerFuncDef(c, it); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Errorf("internal: unknown top-level item %T", item)
		}
	}
	return prog, nil
}

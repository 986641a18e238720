package mir

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/hir"
)

// lowerBlock lowers every statement of b into the current block, in
// its own name scope. Control-flow statements (if/loop/try/return/...)
// open and close blocks as they go, so by the time lowerBlock returns,
// lc.b.Current() may be a different block than when it was called.
func (lc *lowerCtx) lowerBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	lc.pushScope()
	for _, s := range b.Statements {
		if lc.b.Current().Terminated {
			break
		}
		lc.lowerStmt(s)
	}
	lc.popScope()
}

// lowerStmt lowers one statement into the current block. It mirrors
// the statement-kind table internal/hir/lower_stmt.go leaves behind
// after desugaring: the AST forms that survive HIR lowering unchanged
// (block/expression/if/for/return/break/continue/throw) plus the HIR-
// only replacements for loop, try, and local declarations.
func (lc *lowerCtx) lowerStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		lc.lowerBlock(stmt)
	case *ast.ExpressionStmt:
		lc.lowerExpr(stmt.Expr)
	case *hir.DeclStmt:
		lc.lowerFieldDecl(stmt.Field)
	case *ast.DeclStmt:
		// A local val/var or destructuring decl is always rewritten to
		// *hir.DeclStmt by HIR lowering; anything else (a local nested
		// class/function/type-alias) reaching here has no MIR lowering
		// yet and is silently skipped rather than miscompiled.
	case *ast.IfStmt:
		lc.lowerIfStmt(stmt)
	case *ast.ForStmt:
		lc.lowerForStmt(stmt)
	case *hir.Loop:
		lc.lowerLoopStmt(stmt)
	case *ast.ReturnStmt:
		lc.lowerReturnStmt(stmt)
	case *ast.BreakStmt:
		lc.lowerJump(lc.breakTargets)
	case *ast.ContinueStmt:
		lc.lowerJump(lc.continueTargets)
	case *ast.ThrowStmt:
		v := lc.lowerExpr(stmt.Value)
		lc.b.Terminate(Terminator{Kind: TermThrow, ThrowLocal: v})
		lc.b.SetCurrent(lc.b.NewBlock())
	case *hir.Try:
		lc.lowerTryStmt(stmt)
	}
}

// lowerJump terminates the current block with a goto to the innermost
// enclosing loop's break/continue target, then opens a fresh block so
// any statement lexically following the jump (dead code, but still
// present in the tree) has somewhere to lower into.
func (lc *lowerCtx) lowerJump(targets []int) {
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: targets[len(targets)-1]})
	lc.b.SetCurrent(lc.b.NewBlock())
}

// lowerReturnStmt terminates the current block with TermReturn.
func (lc *lowerCtx) lowerReturnStmt(stmt *ast.ReturnStmt) {
	if stmt.Value != nil {
		v := lc.lowerExpr(stmt.Value)
		lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: v})
	} else {
		lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: NoDest})
	}
	lc.b.SetCurrent(lc.b.NewBlock())
}

// lowerFieldDecl allocates a fresh local for a lowered val/var and
// binds its name, rather than aliasing whatever local its initializer
// expression happened to evaluate into (an identifier initializer,
// `val y = x`, must not let later writes to y clobber x).
func (lc *lowerCtx) lowerFieldDecl(f *hir.Field) {
	if f == nil {
		return
	}
	declType := FromTypeRef(f.Type)
	var initVal int
	hasInit := f.Initializer != nil
	if hasInit {
		initVal = lc.lowerExpr(f.Initializer)
		if f.Type == nil {
			declType = lc.b.fn.Locals[initVal].Type
		}
	}
	idx := lc.b.NewLocal(f.Name, declType)
	lc.bind(f.Name, idx)
	if hasInit {
		lc.b.Emit(Instruction{Op: OpMove, Dest: idx, Operands: []int{initVal}})
	}
}

// lowerIfStmt is the statement-position counterpart of lowerIfExpr:
// same three-block shape, but branches don't produce a joined value,
// and a branch that already terminated itself (return/throw/break/
// continue) skips its goto to the join block.
func (lc *lowerCtx) lowerIfStmt(stmt *ast.IfStmt) {
	cond := lc.lowerExpr(stmt.Cond)

	thenBlock := lc.b.NewBlock()
	var elseBlock *BasicBlock
	if stmt.Else != nil {
		elseBlock = lc.b.NewBlock()
	}
	joinBlock := lc.b.NewBlock()
	if stmt.Else != nil {
		lc.b.Terminate(Terminator{Kind: TermBranch, Cond: cond, Then: thenBlock.ID, Else: elseBlock.ID})
	} else {
		lc.b.Terminate(Terminator{Kind: TermBranch, Cond: cond, Then: thenBlock.ID, Else: joinBlock.ID})
	}

	lc.b.SetCurrent(thenBlock)
	lc.lowerStmt(stmt.Then)
	if !lc.b.Current().Terminated {
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})
	}

	if stmt.Else != nil {
		lc.b.SetCurrent(elseBlock)
		lc.lowerStmt(stmt.Else)
		if !lc.b.Current().Terminated {
			lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})
		}
	}

	lc.b.SetCurrent(joinBlock)
}

// lowerLoopStmt lowers hir.Loop, which unifies while (PostTest=false)
// and do-while (PostTest=true): the only difference is which block the
// loop enters on first execution, since `continue` in both forms jumps
// back to the condition re-check rather than the body's first
// instruction.
func (lc *lowerCtx) lowerLoopStmt(loop *hir.Loop) {
	condBlock := lc.b.NewBlock()
	bodyBlock := lc.b.NewBlock()
	exitBlock := lc.b.NewBlock()

	if loop.PostTest {
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: bodyBlock.ID})
	} else {
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: condBlock.ID})
	}

	lc.b.SetCurrent(condBlock)
	cond := lc.lowerExpr(loop.Cond)
	lc.b.Terminate(Terminator{Kind: TermBranch, Cond: cond, Then: bodyBlock.ID, Else: exitBlock.ID})

	lc.b.SetCurrent(bodyBlock)
	lc.pushLoop(exitBlock.ID, condBlock.ID)
	if loop.Body != nil {
		lc.lowerStmt(loop.Body)
	}
	lc.popLoop()
	if !lc.b.Current().Terminated {
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: condBlock.ID})
	}

	lc.b.SetCurrent(exitBlock)
}

// lowerForStmt desugars `for (x in iterable) body` against
// java.util.Iterator's hasNext()/next() protocol, the same iteration
// contract Nova's collection types and ranges expose at runtime.
func (lc *lowerCtx) lowerForStmt(stmt *ast.ForStmt) {
	iterable := lc.lowerExpr(stmt.Iterable)
	iter := lc.b.NewLocal("", NamedObject("java/util/Iterator"))
	lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: iter, Operands: []int{iterable}, Extra: MethodRef{Name: "iterator"}})

	condBlock := lc.b.NewBlock()
	bodyBlock := lc.b.NewBlock()
	exitBlock := lc.b.NewBlock()
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: condBlock.ID})

	lc.b.SetCurrent(condBlock)
	hasNext := lc.b.NewLocal("", TBoolean)
	lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: hasNext, Operands: []int{iter}, Extra: MethodRef{Name: "hasNext"}})
	lc.b.Terminate(Terminator{Kind: TermBranch, Cond: hasNext, Then: bodyBlock.ID, Else: exitBlock.ID})

	lc.b.SetCurrent(bodyBlock)
	lc.pushScope()
	elem := lc.b.NewLocal(stmt.VarName, TObject)
	lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: elem, Operands: []int{iter}, Extra: MethodRef{Name: "next"}})
	lc.bind(stmt.VarName, elem)
	lc.pushLoop(exitBlock.ID, condBlock.ID)
	if stmt.Body != nil {
		lc.lowerStmt(stmt.Body)
	}
	lc.popLoop()
	lc.popScope()
	if !lc.b.Current().Terminated {
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: condBlock.ID})
	}

	lc.b.SetCurrent(exitBlock)
}

// exceptionType resolves a catch clause's declared type, defaulting to
// Throwable for an untyped/placeholder binding (`catch (_)`, synthesized
// by the use-statement lowering's close-suppression handler).
func exceptionType(t ast.TypeRef) Type {
	if t == nil {
		return NamedObject("java/lang/Throwable")
	}
	return FromTypeRef(t)
}

// lowerTryStmt lowers hir.Try into the try/catch table plus handler
// blocks per §4.2's try/catch-table contract. Finally is inlined at
// every normal and handled-exceptional exit (duplicated, not a jsr/ret
// subroutine: the JVM verifier has disallowed jsr/ret since class file
// version 51). A Finally with no catch clauses still has to run on the
// unhandled-exception path, so it gets a synthesized catch-all handler
// that reraises after running.
func (lc *lowerCtx) lowerTryStmt(t *hir.Try) {
	tryBlock := lc.b.NewBlock()
	afterBlock := lc.b.NewBlock()
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: tryBlock.ID})

	lc.b.SetCurrent(tryBlock)
	if t.Body != nil {
		lc.lowerBlock(t.Body)
	}
	tryEnd := len(lc.b.Function().Blocks) - 1
	if !lc.b.Current().Terminated {
		if t.Finally != nil {
			lc.lowerBlock(t.Finally)
		}
		if !lc.b.Current().Terminated {
			lc.b.Terminate(Terminator{Kind: TermGoto, Target: afterBlock.ID})
		}
	}

	for _, c := range t.Catches {
		handler := lc.b.NewBlock()
		lc.b.SetCurrent(handler)
		lc.pushScope()
		excType := exceptionType(c.ParamType)
		excLocal := lc.b.NewLocal(c.ParamName, excType)
		lc.bind(c.ParamName, excLocal)
		if c.Body != nil {
			lc.lowerBlock(c.Body)
		}
		lc.popScope()
		if !lc.b.Current().Terminated {
			if t.Finally != nil {
				lc.lowerBlock(t.Finally)
			}
			if !lc.b.Current().Terminated {
				lc.b.Terminate(Terminator{Kind: TermGoto, Target: afterBlock.ID})
			}
		}
		lc.b.AddTry(TryEntry{TryStart: tryBlock.ID, TryEnd: tryEnd, Handler: handler.ID, ExceptionType: excType.ClassName, ExceptionLocal: excLocal})
	}

	if t.Finally != nil && len(t.Catches) == 0 {
		handler := lc.b.NewBlock()
		lc.b.SetCurrent(handler)
		excLocal := lc.b.NewLocal("", NamedObject("java/lang/Throwable"))
		lc.lowerBlock(t.Finally)
		if !lc.b.Current().Terminated {
			lc.b.Terminate(Terminator{Kind: TermThrow, ThrowLocal: excLocal})
		}
		lc.b.AddTry(TryEntry{TryStart: tryBlock.ID, TryEnd: tryEnd, Handler: handler.ID, ExceptionType: "java/lang/Throwable", ExceptionLocal: excLocal})
	}

	lc.b.SetCurrent(afterBlock)
}

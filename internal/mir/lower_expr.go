package mir

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/hir"
)

var binOpMap = map[ast.BinaryOp]BinOp{
	ast.OpAdd: BinAdd, ast.OpSub: BinSub, ast.OpMul: BinMul, ast.OpDiv: BinDiv, ast.OpMod: BinMod,
	ast.OpEq: BinEq, ast.OpNeq: BinNeq, ast.OpLt: BinLt, ast.OpLe: BinLe, ast.OpGt: BinGt, ast.OpGe: BinGe,
	ast.OpBitAnd: BinBitAnd, ast.OpBitOr: BinBitOr, ast.OpBitXor: BinBitXor,
	ast.OpShl: BinShl, ast.OpShr: BinShr, ast.OpUshr: BinUshr,
}

// lowerExpr evaluates e, emitting instructions into the current block,
// and returns the local index holding its value. Short-circuiting
// `&&`/`||`, if-expressions, `?` propagation, jump-as-expression and
// block expressions can branch across blocks; the `in`/`!in` tests are
// a `contains` call (negated for `!in`) in the current block, as are
// the other forms.
func (lc *lowerCtx) lowerExpr(e ast.Expression) int {
	switch expr := e.(type) {
	case *ast.Literal:
		return lc.lowerLiteral(expr)
	case *ast.Identifier:
		if idx, ok := lc.resolve(expr.Name); ok {
			return idx
		}
		// Unresolved identifier: a static field/top-level binding the
		// emitter's pre-scan will resolve by name.
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpGetStatic, Dest: dest, Extra: FieldRef{Name: expr.Name}})
		return dest
	case *ast.ThisExpr:
		idx, _ := lc.resolve("this")
		return idx
	case *ast.SuperExpr:
		idx, _ := lc.resolve("this")
		return idx
	case *ast.BinaryExpr:
		return lc.lowerBinary(expr)
	case *ast.UnaryExpr:
		return lc.lowerUnary(expr)
	case *ast.IndexExpr:
		target := lc.lowerExpr(expr.Target)
		index := lc.lowerExpr(expr.Index)
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpIndexGet, Dest: dest, Operands: []int{target, index}})
		return dest
	case *ast.MemberExpr:
		target := lc.lowerExpr(expr.Target)
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpGetField, Dest: dest, Operands: []int{target}, Extra: FieldRef{Name: expr.Name}})
		return dest
	case *ast.AssignExpr:
		return lc.lowerAssign(expr)
	case *ast.IfExpr:
		return lc.lowerIfExpr(expr)
	case *ast.TypeCheckExpr:
		value := lc.lowerExpr(expr.Value)
		dest := lc.b.NewLocal("", TBoolean)
		lc.b.Emit(Instruction{Op: OpTypeCheck, Dest: dest, Operands: []int{value}, Extra: TypeCheckExtra{typeName(expr.Type), expr.Negate}})
		return dest
	case *ast.TypeCastExpr:
		value := lc.lowerExpr(expr.Value)
		dest := lc.b.NewLocal("", FromTypeRef(expr.Type))
		lc.b.Emit(Instruction{Op: OpTypeCast, Dest: dest, Operands: []int{value}, Extra: typeName(expr.Type)})
		return dest
	case *ast.RangeExpr:
		start := lc.lowerExpr(expr.Start)
		end := lc.lowerExpr(expr.End)
		dest := lc.b.NewLocal("", NamedObject("nova/lang/Range"))
		lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: []int{start, end}, Extra: "nova/lang/Range"})
		return dest
	case *ast.SpreadExpr:
		return lc.lowerExpr(expr.Value)
	case *ast.AwaitExpr:
		value := lc.lowerExpr(expr.Value)
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpInvokeStatic, Dest: dest, Operands: []int{value}, Extra: MethodRef{Owner: "nova/lang/NovaAsync", Name: "await", Desc: ""}})
		return dest
	case *ast.MethodRefExpr:
		var recv []int
		if expr.Target != nil {
			recv = append(recv, lc.lowerExpr(expr.Target))
		}
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpInvokeStatic, Dest: dest, Operands: recv, Extra: MethodRef{Owner: "nova/lang/MethodHandleCache", Name: "resolve:" + expr.Name}})
		return dest
	case *ast.NotNullExpr:
		value := lc.lowerExpr(expr.Value)
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpInvokeStatic, Dest: dest, Operands: []int{value}, Extra: MethodRef{Owner: "nova/lang/NovaValue", Name: "requireNonNull", Desc: ""}})
		return dest
	case *ast.ErrorPropagationExpr:
		return lc.lowerErrorPropagation(expr)
	case *ast.JumpAsExpr:
		return lc.lowerJumpAsExpr(expr)
	case *hir.Call:
		return lc.lowerCall(expr)
	case *hir.Lambda:
		return lc.lowerLambda(expr)
	case *hir.CollectionLiteral:
		return lc.lowerCollectionLiteral(expr)
	case *hir.ObjectLiteral:
		return lc.lowerObjectLiteral(expr)
	case *hir.New:
		var args []int
		for _, a := range expr.Args {
			args = append(args, lc.lowerExpr(a))
		}
		dest := lc.b.NewLocal("", FromTypeRef(expr.Type))
		lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: args, Extra: typeName(expr.Type)})
		return dest
	case *hir.BlockExpr:
		for _, s := range expr.Statements {
			lc.lowerStmt(s)
		}
		return lc.lowerExpr(expr.Result)
	default:
		return lc.b.NewLocal("", TObject)
	}
}

// TypeCheckExtra is an OpTypeCheck instruction's Extra payload: the
// type being tested against and whether the result should be inverted
// (`is not` tests, §4.3 "Type check/cast").
type TypeCheckExtra struct {
	TypeName string
	Negate   bool
}

func typeName(t ast.TypeRef) string {
	return FromTypeRef(t).ClassName
}

func (lc *lowerCtx) lowerLiteral(lit *ast.Literal) int {
	switch lit.Kind {
	case ast.LitInt:
		dest := lc.b.NewLocal("", TInt)
		lc.b.Emit(Instruction{Op: OpConstInt, Dest: dest, Extra: lit.Int})
		return dest
	case ast.LitFloat:
		dest := lc.b.NewLocal("", TDouble)
		lc.b.Emit(Instruction{Op: OpConstDouble, Dest: dest, Extra: lit.Flt})
		return dest
	case ast.LitString:
		dest := lc.b.NewLocal("", NamedObject("java/lang/String"))
		lc.b.Emit(Instruction{Op: OpConstString, Dest: dest, Extra: lit.Str})
		return dest
	case ast.LitChar:
		dest := lc.b.NewLocal("", TChar)
		lc.b.Emit(Instruction{Op: OpConstChar, Dest: dest, Extra: lit.Chr})
		return dest
	case ast.LitBool:
		dest := lc.b.NewLocal("", TBoolean)
		lc.b.Emit(Instruction{Op: OpConstBool, Dest: dest, Extra: lit.Bool})
		return dest
	case ast.LitNull:
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpConstNull, Dest: dest})
		return dest
	default:
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpConstNull, Dest: dest})
		return dest
	}
}

// lowerBinary emits a BINARY instruction directly for everything
// except `&&`/`||`, which short-circuit across blocks, and `in`/`!in`,
// which call the range's membership predicate.
func (lc *lowerCtx) lowerBinary(expr *ast.BinaryExpr) int {
	switch expr.Op {
	case ast.OpAnd:
		return lc.lowerShortCircuit(expr, true)
	case ast.OpOr:
		return lc.lowerShortCircuit(expr, false)
	case ast.OpIn, ast.OpNotIn:
		left := lc.lowerExpr(expr.Left)
		right := lc.lowerExpr(expr.Right)
		dest := lc.b.NewLocal("", TBoolean)
		lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: dest, Operands: []int{right, left}, Extra: MethodRef{Name: "contains"}})
		if expr.Op == ast.OpNotIn {
			neg := lc.b.NewLocal("", TBoolean)
			lc.b.Emit(Instruction{Op: OpUnary, Dest: neg, Operands: []int{dest}, Extra: UnNot})
			return neg
		}
		return dest
	default:
		op, ok := binOpMap[expr.Op]
		if !ok {
			op = BinAdd
		}
		left := lc.lowerExpr(expr.Left)
		right := lc.lowerExpr(expr.Right)
		destType := TObject
		if op.IsComparison() {
			destType = TBoolean
		}
		dest := lc.b.NewLocal("", destType)
		lc.b.Emit(Instruction{Op: OpBinary, Dest: dest, Operands: []int{left, right}, Extra: op})
		return dest
	}
}

// lowerShortCircuit implements `&&`/`||` with a branch rather than an
// eager BINARY, so the right operand is only evaluated when needed.
func (lc *lowerCtx) lowerShortCircuit(expr *ast.BinaryExpr, isAnd bool) int {
	result := lc.b.NewLocal("", TBoolean)
	left := lc.lowerExpr(expr.Left)

	rhsBlock := lc.b.NewBlock()
	shortBlock := lc.b.NewBlock()
	joinBlock := lc.b.NewBlock()

	if isAnd {
		lc.b.Terminate(Terminator{Kind: TermBranch, Cond: left, Then: rhsBlock.ID, Else: shortBlock.ID})
	} else {
		lc.b.Terminate(Terminator{Kind: TermBranch, Cond: left, Then: shortBlock.ID, Else: rhsBlock.ID})
	}

	lc.b.SetCurrent(rhsBlock)
	right := lc.lowerExpr(expr.Right)
	lc.b.Emit(Instruction{Op: OpMove, Dest: result, Operands: []int{right}})
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})

	lc.b.SetCurrent(shortBlock)
	lc.b.Emit(Instruction{Op: OpConstBool, Dest: result, Extra: !isAnd})
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})

	lc.b.SetCurrent(joinBlock)
	return result
}

func (lc *lowerCtx) lowerUnary(expr *ast.UnaryExpr) int {
	operand := lc.lowerExpr(expr.Operand)
	var op UnOp
	destType := TObject
	switch expr.Op {
	case ast.OpNeg:
		op = UnNeg
	case ast.OpNot:
		op = UnNot
		destType = TBoolean
	case ast.OpBNot:
		op = UnBNot
	}
	dest := lc.b.NewLocal("", destType)
	lc.b.Emit(Instruction{Op: OpUnary, Dest: dest, Operands: []int{operand}, Extra: op})
	return dest
}

// lowerAssign stores Value into Target, resolving Target's shape
// (identifier, member, index) into the matching MOVE/SET_FIELD/
// SET_STATIC/INDEX_SET instruction, and returns the stored value's
// local so assignment remains usable as an expression.
func (lc *lowerCtx) lowerAssign(expr *ast.AssignExpr) int {
	value := lc.lowerExpr(expr.Value)
	switch target := expr.Target.(type) {
	case *ast.Identifier:
		if idx, ok := lc.resolve(target.Name); ok {
			lc.b.Emit(Instruction{Op: OpMove, Dest: idx, Operands: []int{value}})
			return idx
		}
		lc.b.Emit(Instruction{Op: OpSetStatic, Operands: []int{value}, Extra: FieldRef{Name: target.Name}})
		return value
	case *ast.MemberExpr:
		recv := lc.lowerExpr(target.Target)
		lc.b.Emit(Instruction{Op: OpSetField, Operands: []int{recv, value}, Extra: FieldRef{Name: target.Name}})
		return value
	case *ast.IndexExpr:
		recv := lc.lowerExpr(target.Target)
		idx := lc.lowerExpr(target.Index)
		lc.b.Emit(Instruction{Op: OpIndexSet, Operands: []int{recv, idx, value}})
		return value
	default:
		return value
	}
}

func (lc *lowerCtx) lowerIfExpr(expr *ast.IfExpr) int {
	result := lc.b.NewLocal("", TObject)
	cond := lc.lowerExpr(expr.Cond)

	thenBlock := lc.b.NewBlock()
	elseBlock := lc.b.NewBlock()
	joinBlock := lc.b.NewBlock()
	lc.b.Terminate(Terminator{Kind: TermBranch, Cond: cond, Then: thenBlock.ID, Else: elseBlock.ID})

	lc.b.SetCurrent(thenBlock)
	thenVal := lc.lowerExpr(expr.Then)
	lc.b.Emit(Instruction{Op: OpMove, Dest: result, Operands: []int{thenVal}})
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})

	lc.b.SetCurrent(elseBlock)
	if expr.Else != nil {
		elseVal := lc.lowerExpr(expr.Else)
		lc.b.Emit(Instruction{Op: OpMove, Dest: result, Operands: []int{elseVal}})
	} else {
		lc.b.Emit(Instruction{Op: OpConstNull, Dest: result})
	}
	lc.b.Terminate(Terminator{Kind: TermGoto, Target: joinBlock.ID})

	lc.b.SetCurrent(joinBlock)
	return result
}

// lowerErrorPropagation implements `e?` (propagate a Result's Err):
// evaluate e, and if it is an Err, return it immediately from the
// enclosing function; otherwise unwrap its Ok value. This is a design
// decision for a form spec.md names but §4.2 leaves undetailed: Result
// is the only type whose TYPE_CHECK/TYPE_CAST the emitter special-cases
// (§4.3 "Type check/cast"), so propagation is expressed with the same
// TYPE_CHECK opcode rather than a dedicated MIR instruction.
func (lc *lowerCtx) lowerErrorPropagation(expr *ast.ErrorPropagationExpr) int {
	value := lc.lowerExpr(expr.Value)
	isErr := lc.b.NewLocal("", TBoolean)
	lc.b.Emit(Instruction{Op: OpTypeCheck, Dest: isErr, Operands: []int{value}, Extra: TypeCheckExtra{TypeName: "Err"}})

	propagateBlock := lc.b.NewBlock()
	continueBlock := lc.b.NewBlock()
	lc.b.Terminate(Terminator{Kind: TermBranch, Cond: isErr, Then: propagateBlock.ID, Else: continueBlock.ID})

	lc.b.SetCurrent(propagateBlock)
	lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: value})

	lc.b.SetCurrent(continueBlock)
	dest := lc.b.NewLocal("", TObject)
	lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: dest, Operands: []int{value}, Extra: MethodRef{Name: "unwrap"}})
	return dest
}

func (lc *lowerCtx) lowerJumpAsExpr(expr *ast.JumpAsExpr) int {
	switch expr.Kind {
	case ast.JumpReturn:
		if expr.Value != nil {
			v := lc.lowerExpr(expr.Value)
			lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: v})
		} else {
			lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: NoDest})
		}
	case ast.JumpThrow:
		v := lc.lowerExpr(expr.Value)
		lc.b.Terminate(Terminator{Kind: TermThrow, ThrowLocal: v})
	case ast.JumpBreak:
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: lc.breakTargets[len(lc.breakTargets)-1]})
	case ast.JumpContinue:
		lc.b.Terminate(Terminator{Kind: TermGoto, Target: lc.continueTargets[len(lc.continueTargets)-1]})
	}
	// The block is now terminated; a fresh unreachable block lets the
	// caller's subsequent lowering (which always expects a live current
	// block) keep emitting without special-casing a jump in expr position.
	lc.b.SetCurrent(lc.b.NewBlock())
	return lc.b.NewLocal("", TNothing)
}

// lowerCall dispatches a hir.Call to NEW_OBJECT (the callee names a
// class declared in this module), an instance invocation (the callee
// is a member access), or a static invocation (a bare function name),
// per the HirNew-vs-call disambiguation deferred to this stage.
func (lc *lowerCtx) lowerCall(call *hir.Call) int {
	var args []int
	for _, a := range call.Args {
		args = append(args, lc.lowerExpr(a))
	}

	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		if lc.mctx.classNames[callee.Name] {
			dest := lc.b.NewLocal("", NamedObject(callee.Name))
			lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: args, Extra: callee.Name})
			return dest
		}
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpInvokeStatic, Dest: dest, Operands: args, Extra: MethodRef{Name: callee.Name}})
		return dest
	case *ast.MemberExpr:
		recv := lc.lowerExpr(callee.Target)
		dest := lc.b.NewLocal("", TObject)
		allOperands := append([]int{recv}, args...)
		lc.b.Emit(Instruction{Op: OpInvokeVirtual, Dest: dest, Operands: allOperands, Extra: MethodRef{Name: callee.Name}})
		return dest
	default:
		fn := lc.lowerExpr(call.Callee)
		dest := lc.b.NewLocal("", TObject)
		allOperands := append([]int{fn}, args...)
		lc.b.Emit(Instruction{Op: OpInvokeInterface, Dest: dest, Operands: allOperands, Extra: MethodRef{Name: "invoke"}})
		return dest
	}
}

// lowerLambda materializes a closure as a runtime method-handle value;
// the actual synthetic functional-interface class is a bytecode-
// emitter concern (§4.3 doesn't name one explicitly, so this stage
// just marks the spot with a NEW_OBJECT against a placeholder name the
// emitter's pre-scan recognizes).
func (lc *lowerCtx) lowerLambda(lam *hir.Lambda) int {
	dest := lc.b.NewLocal("", TObject)
	lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Extra: "$Lambda"})
	return dest
}

func (lc *lowerCtx) lowerCollectionLiteral(lit *hir.CollectionLiteral) int {
	switch lit.Kind {
	case ast.CollList, ast.CollSet:
		var elems []int
		for _, e := range lit.Elements {
			elems = append(elems, lc.lowerExpr(e))
		}
		dest := lc.b.NewLocal("", TObject)
		owner := "java/util/ArrayList"
		if lit.Kind == ast.CollSet {
			owner = "java/util/LinkedHashSet"
		}
		lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: elems, Extra: owner})
		return dest
	case ast.CollMap:
		var kv []int
		for i := range lit.Keys {
			kv = append(kv, lc.lowerExpr(lit.Keys[i]), lc.lowerExpr(lit.Values[i]))
		}
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: kv, Extra: "java/util/LinkedHashMap"})
		return dest
	default:
		dest := lc.b.NewLocal("", TObject)
		lc.b.Emit(Instruction{Op: OpConstNull, Dest: dest})
		return dest
	}
}

func (lc *lowerCtx) lowerObjectLiteral(lit *hir.ObjectLiteral) int {
	var args []int
	for _, a := range lit.SuperArgs {
		args = append(args, lc.lowerExpr(a))
	}
	dest := lc.b.NewLocal("", NamedObject(lit.Synthetic.Name))
	lc.b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: args, Extra: lit.Synthetic.Name})
	return dest
}

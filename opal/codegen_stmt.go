package opal

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// compileStmt lowers one statement. The returned value is non-nil only for
// statements that leave a usable value in the current block; an if merges
// branch values through a phi when both arms produce the same IR type.
func (cg *Codegen) compileStmt(stmt Statement) (value.Value, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		return cg.compileExpr(s.Expr)
	case *AssignStmt:
		return cg.compileAssign(s)
	case *PrintStmt:
		return cg.compilePrint(s)
	case *BlockStmt:
		var result value.Value
		for _, inner := range s.Statements {
			val, err := cg.compileStmt(inner)
			if err != nil {
				return nil, err
			}
			result = val
		}
		return result, nil
	case *IfStmt:
		return cg.compileIf(s)
	case *WhileStmt:
		return cg.compileWhile(s)
	case *ClassStmt:
		return nil, cg.compileClass(s)
	case *MethodStmt:
		_, err := cg.compileMethod(s)
		return nil, err
	case *ReturnStmt:
		return nil, cg.compileReturn(s)
	default:
		panic(fmt.Sprintf("opal: unhandled statement %T", stmt))
	}
}

// compileAssign stores into the name's stack slot, allocating it at
// function entry on the first assignment. Slot type is fixed by the first
// value; only i32, float, and pointer values may live in slots.
func (cg *Codegen) compileAssign(s *AssignStmt) (value.Value, error) {
	val, err := cg.compileExpr(s.Value)
	if err != nil {
		return nil, err
	}

	slot, ok := cg.vars[s.Name]
	if !ok {
		switch t := val.Type(); {
		case t.Equal(types.I32), t.Equal(types.Float):
			slot = cg.entryAlloca(t)
		default:
			if _, isPtr := t.(*types.PointerType); !isPtr {
				return nil, cg.errorAt(TypeError, s.Pos(), "cannot store value of type %s", t)
			}
			slot = cg.entryAlloca(t)
		}
		cg.vars[s.Name] = slot
	}

	cg.block.NewStore(val, slot)
	return val, nil
}

// compilePrint picks the printf format from the operand's IR type. Float
// operands widen to double first; C variadic calls promote floats and the
// emitted IR must match.
func (cg *Codegen) compilePrint(s *PrintStmt) (value.Value, error) {
	val, err := cg.compileExpr(s.Value)
	if err != nil {
		return nil, err
	}

	var format *ir.Global
	arg := val
	switch t := val.Type(); {
	case t.Equal(types.I32):
		format = cg.intFormat
	case t.Equal(types.Float):
		format = cg.floatFormat
		arg = cg.block.NewFPExt(val, types.Double)
	default:
		if _, isPtr := t.(*types.PointerType); !isPtr {
			return nil, cg.errorAt(TypeError, s.Pos(), "cannot print value of type %s", t)
		}
		format = cg.stringFormat
	}

	cg.block.NewCall(cg.printf, cg.stringPointer(format), arg)
	return val, nil
}

// compileIf lowers to then/[else]/merge blocks. The condition normalizes
// to i1 by comparing against its type's zero. Both arms fall through to a
// single merge block; when both produced a value of the identical type the
// merge carries a phi, otherwise the statement has no value.
func (cg *Codegen) compileIf(s *IfStmt) (value.Value, error) {
	cond, err := cg.compileCondition(s.Condition)
	if err != nil {
		return nil, err
	}

	thenBlock := cg.newBlock("then")
	mergeBlock := cg.newBlock("ifcont")

	var elseBlock *ir.Block
	if s.Alternate != nil {
		elseBlock = cg.newBlock("else")
		cg.block.NewCondBr(cond, thenBlock, elseBlock)
	} else {
		cg.block.NewCondBr(cond, thenBlock, mergeBlock)
	}

	cg.block = thenBlock
	thenValue, err := cg.compileStmt(s.Consequent)
	if err != nil {
		return nil, err
	}
	// The branch body may have ended in a different block than it started.
	thenEnd := cg.block
	if thenEnd.Term == nil {
		thenEnd.NewBr(mergeBlock)
	} else {
		thenValue = nil
	}

	var (
		elseValue value.Value
		elseEnd   *ir.Block
	)
	if s.Alternate != nil {
		cg.block = elseBlock
		elseValue, err = cg.compileStmt(s.Alternate)
		if err != nil {
			return nil, err
		}
		elseEnd = cg.block
		if elseEnd.Term == nil {
			elseEnd.NewBr(mergeBlock)
		} else {
			elseValue = nil
		}
	}

	cg.block = mergeBlock

	if thenValue != nil && elseValue != nil && thenValue.Type().Equal(elseValue.Type()) {
		phi := mergeBlock.NewPhi(ir.NewIncoming(thenValue, thenEnd), ir.NewIncoming(elseValue, elseEnd))
		return phi, nil
	}
	return nil, nil
}

// compileWhile lowers to cond/body/end blocks. The cond and end blocks are
// pushed on the continue and exit stacks while the body compiles.
func (cg *Codegen) compileWhile(s *WhileStmt) (value.Value, error) {
	condBlock := cg.newBlock("while.cond")
	bodyBlock := cg.newBlock("while.body")
	afterBlock := cg.newBlock("while.end")

	cg.continueBlocks = append(cg.continueBlocks, condBlock)
	cg.exitBlocks = append(cg.exitBlocks, afterBlock)

	cg.block.NewBr(condBlock)

	cg.block = condBlock
	cond, err := cg.compileCondition(s.Condition)
	if err != nil {
		return nil, err
	}
	cg.block.NewCondBr(cond, bodyBlock, afterBlock)

	cg.block = bodyBlock
	if _, err := cg.compileStmt(s.Body); err != nil {
		return nil, err
	}
	if cg.block.Term == nil {
		cg.block.NewBr(condBlock)
	}

	cg.block = afterBlock

	cg.continueBlocks = cg.continueBlocks[:len(cg.continueBlocks)-1]
	cg.exitBlocks = cg.exitBlocks[:len(cg.exitBlocks)-1]

	return nil, nil
}

// compileCondition emits the expression and normalizes it to i1 against
// the zero value of its type.
func (cg *Codegen) compileCondition(expr Expression) (value.Value, error) {
	cond, err := cg.compileExpr(expr)
	if err != nil {
		return nil, err
	}
	switch t := cond.Type().(type) {
	case *types.FloatType:
		return cg.block.NewFCmp(enum.FPredONE, cond, constant.NewFloat(t, 0)), nil
	case *types.PointerType:
		return cg.block.NewICmp(enum.IPredNE, cond, constant.NewNull(t)), nil
	default:
		return cg.block.NewICmp(enum.IPredNE, cond, constant.NewInt(types.I32, 0)), nil
	}
}

// compileClass registers the class and lowers each of its methods to a
// top-level function. Field defaults have no storage on this path and are
// skipped.
func (cg *Codegen) compileClass(s *ClassStmt) error {
	cg.classes[s.Name] = s.Parent
	for _, bodyStmt := range s.Body {
		if method, ok := bodyStmt.(*MethodStmt); ok {
			if _, err := cg.compileMethod(method); err != nil {
				return err
			}
		}
	}
	return nil
}

// compileMethod emits a method as a top-level function taking and
// returning i32. The variable environment is per-function: the enclosing
// function's slots are saved and restored around the body.
func (cg *Codegen) compileMethod(s *MethodStmt) (*ir.Func, error) {
	params := make([]*ir.Param, len(s.Params))
	for i, name := range s.Params {
		params[i] = ir.NewParam(name, types.I32)
	}
	fn := cg.module.NewFunc(s.Name, types.I32, params...)

	prevFn, prevBlock, prevVars := cg.fn, cg.block, cg.vars
	cg.fn = fn
	cg.block = fn.NewBlock("entry")
	cg.vars = make(map[string]*ir.InstAlloca)

	for i, param := range params {
		slot := cg.block.NewAlloca(types.I32)
		cg.block.NewStore(param, slot)
		cg.vars[s.Params[i]] = slot
	}

	_, err := cg.compileStmt(s.Body)
	if err == nil {
		cg.terminateOpenBlocks(fn)
	}

	cg.fn, cg.block, cg.vars = prevFn, prevBlock, prevVars
	if err != nil {
		return nil, err
	}

	cg.funcs[s.Name] = fn
	return fn, nil
}

// compileReturn terminates the current block. Lowering continues in a
// fresh block so trailing statements still have an insertion point; any
// such block that stays unreachable is finalized with a default return.
func (cg *Codegen) compileReturn(s *ReturnStmt) error {
	if s.Value == nil {
		cg.block.NewRet(constant.NewInt(types.I32, 0))
	} else {
		val, err := cg.compileExpr(s.Value)
		if err != nil {
			return err
		}
		cg.block.NewRet(val)
	}
	cg.block = cg.newBlock("post.ret")
	return nil
}

package opal

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func (cg *Codegen) compileExpr(expr Expression) (value.Value, error) {
	switch e := expr.(type) {
	case *IntegerLiteral:
		return constant.NewInt(types.I32, e.Value), nil
	case *FloatLiteral:
		return constant.NewFloat(types.Float, e.Value), nil
	case *StringLiteral:
		cg.strCount++
		g := cg.addGlobalString(e.Value, fmt.Sprintf("str.%d", cg.strCount))
		return cg.stringPointer(g), nil
	case *Identifier:
		slot, ok := cg.vars[e.Name]
		if !ok {
			return nil, cg.errorAt(NameError, e.Pos(), "variable %q is not defined", e.Name)
		}
		return cg.block.NewLoad(slot.ElemType, slot), nil
	case *UnaryExpr:
		return cg.compileUnary(e)
	case *BinaryExpr:
		return cg.compileBinary(e)
	case *MethodCallExpr:
		return cg.compileMethodCall(e)
	case *NewExpr:
		return cg.compileNew(e)
	case *FieldAccessExpr:
		return nil, cg.errorAt(TypeError, e.Pos(), "field access is not supported in compiled code")
	case *ThisExpr:
		return nil, cg.errorAt(ScopeError, e.Pos(), "'this' is not supported in compiled code")
	case *SuperExpr:
		return nil, cg.errorAt(ScopeError, e.Pos(), "'super' is not supported in compiled code")
	default:
		panic(fmt.Sprintf("opal: unhandled expression %T", expr))
	}
}

func (cg *Codegen) compileUnary(e *UnaryExpr) (value.Value, error) {
	operand, err := cg.compileExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	if e.Op == tokenPlus {
		return operand, nil
	}
	if operand.Type().Equal(types.Float) {
		return cg.block.NewFNeg(operand), nil
	}
	return cg.block.NewSub(constant.NewInt(types.I32, 0), operand), nil
}

// compileBinary widens the integer side when operand types disagree, then
// emits the integer or float form of the operation. Comparisons come back
// as i1 and zero-extend to i32 so the result stores and prints like any
// other integer.
func (cg *Codegen) compileBinary(e *BinaryExpr) (value.Value, error) {
	left, err := cg.compileExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := cg.compileExpr(e.Right)
	if err != nil {
		return nil, err
	}

	if !left.Type().Equal(right.Type()) {
		switch {
		case left.Type().Equal(types.I32) && right.Type().Equal(types.Float):
			left = cg.block.NewSIToFP(left, types.Float)
		case left.Type().Equal(types.Float) && right.Type().Equal(types.I32):
			right = cg.block.NewSIToFP(right, types.Float)
		default:
			return nil, cg.errorAt(TypeError, e.Pos(), "unsupported operand types for %s: %s and %s", e.Op, left.Type(), right.Type())
		}
	}

	isFloat := left.Type().Equal(types.Float)

	switch e.Op {
	case tokenPlus:
		if isFloat {
			return cg.block.NewFAdd(left, right), nil
		}
		return cg.block.NewAdd(left, right), nil
	case tokenMinus:
		if isFloat {
			return cg.block.NewFSub(left, right), nil
		}
		return cg.block.NewSub(left, right), nil
	case tokenAsterisk:
		if isFloat {
			return cg.block.NewFMul(left, right), nil
		}
		return cg.block.NewMul(left, right), nil
	case tokenSlash:
		if isFloat {
			return cg.block.NewFDiv(left, right), nil
		}
		return cg.block.NewSDiv(left, right), nil
	case tokenEQ, tokenNotEQ, tokenLT, tokenGT:
		var cmp value.Value
		if isFloat {
			cmp = cg.block.NewFCmp(floatPred(e.Op), left, right)
		} else {
			cmp = cg.block.NewICmp(intPred(e.Op), left, right)
		}
		return cg.block.NewZExt(cmp, types.I32), nil
	default:
		panic(fmt.Sprintf("opal: unhandled binary operator %s", e.Op))
	}
}

func intPred(op TokenType) enum.IPred {
	switch op {
	case tokenEQ:
		return enum.IPredEQ
	case tokenNotEQ:
		return enum.IPredNE
	case tokenLT:
		return enum.IPredSLT
	default:
		return enum.IPredSGT
	}
}

func floatPred(op TokenType) enum.FPred {
	switch op {
	case tokenEQ:
		return enum.FPredOEQ
	case tokenNotEQ:
		return enum.FPredONE
	case tokenLT:
		return enum.FPredOLT
	default:
		return enum.FPredOGT
	}
}

// compileMethodCall resolves by function name in the module's function
// table; the receiver expression does not lower on this path, there is no
// per-class dispatch.
func (cg *Codegen) compileMethodCall(e *MethodCallExpr) (value.Value, error) {
	fn, ok := cg.funcs[e.Method]
	if !ok {
		return nil, cg.errorAt(NameError, e.Pos(), "method %q not found", e.Method)
	}
	if len(fn.Params) != len(e.Args) {
		return nil, cg.errorAt(TypeError, e.Pos(), "method %q expects %d arguments but got %d", e.Method, len(fn.Params), len(e.Args))
	}
	args := make([]value.Value, len(e.Args))
	for i, argExpr := range e.Args {
		arg, err := cg.compileExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return cg.block.NewCall(fn, args...), nil
}

// compileNew checks the class registry and yields the placeholder object
// value. Compiled objects carry no storage; the i32 stands in for the
// instance.
func (cg *Codegen) compileNew(e *NewExpr) (value.Value, error) {
	if _, ok := cg.classes[e.ClassName]; !ok {
		return nil, cg.errorAt(NameError, e.Pos(), "class %q is not defined", e.ClassName)
	}
	return constant.NewInt(types.I32, 1), nil
}

package opal

import (
	"context"
	"fmt"
)

// evalStatement executes one statement and yields its value. Statements are
// value-producing: a block yields its last statement's value, an if yields
// the taken branch's value, and a return yields its operand without
// unwinding the enclosing block. That last point reproduces the language's
// observed semantics: return is not a non-local transfer, so a method's
// result is whatever its body's final statement evaluates to.
func (in *Interpreter) evalStatement(ctx context.Context, stmt Statement, env *Env) (Value, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		return in.evalExpression(ctx, s.Expr, env)
	case *AssignStmt:
		val, err := in.evalExpression(ctx, s.Value, env)
		if err != nil {
			return NewNil(), err
		}
		env.Define(s.Name, val)
		return val, nil
	case *PrintStmt:
		val, err := in.evalExpression(ctx, s.Value, env)
		if err != nil {
			return NewNil(), err
		}
		fmt.Fprintln(in.config.Output, val.String())
		return val, nil
	case *BlockStmt:
		result := NewNil()
		for _, inner := range s.Statements {
			val, err := in.evalStatement(ctx, inner, env)
			if err != nil {
				return NewNil(), err
			}
			result = val
		}
		return result, nil
	case *IfStmt:
		cond, err := in.evalExpression(ctx, s.Condition, env)
		if err != nil {
			return NewNil(), err
		}
		if cond.Truthy() {
			return in.evalStatement(ctx, s.Consequent, env)
		}
		if s.Alternate != nil {
			return in.evalStatement(ctx, s.Alternate, env)
		}
		return NewNil(), nil
	case *WhileStmt:
		result := NewNil()
		for {
			if err := ctx.Err(); err != nil {
				return NewNil(), err
			}
			cond, err := in.evalExpression(ctx, s.Condition, env)
			if err != nil {
				return NewNil(), err
			}
			if !cond.Truthy() {
				return result, nil
			}
			result, err = in.evalStatement(ctx, s.Body, env)
			if err != nil {
				return NewNil(), err
			}
		}
	case *ClassStmt:
		if err := in.registerClass(ctx, s, env); err != nil {
			return NewNil(), err
		}
		return NewNil(), nil
	case *MethodStmt:
		// Method nodes only matter inside a class body.
		return NewNil(), nil
	case *ReturnStmt:
		if s.Value == nil {
			return NewNil(), nil
		}
		return in.evalExpression(ctx, s.Value, env)
	default:
		panic(fmt.Sprintf("opal: unhandled statement %T", stmt))
	}
}

// registerClass scans the class body once: method declarations populate the
// method table verbatim, everything else is a field-default assignment
// evaluated against a scope seeded with the immediate parent's defaults.
// Registration overwrites any earlier class of the same name.
func (in *Interpreter) registerClass(ctx context.Context, stmt *ClassStmt, env *Env) error {
	def := &ClassDef{
		Name:    stmt.Name,
		Parent:  stmt.Parent,
		Methods: make(map[string]*MethodStmt),
		Fields:  make(map[string]Value),
	}

	classEnv := newEnv(in.globals)
	if stmt.Parent != "" {
		if parent, ok := in.classes[stmt.Parent]; ok {
			for name, val := range parent.Fields {
				classEnv.Define(name, val)
				def.Fields[name] = val
			}
		}
	}

	for _, bodyStmt := range stmt.Body {
		switch b := bodyStmt.(type) {
		case *MethodStmt:
			def.Methods[b.Name] = b
		case *AssignStmt:
			val, err := in.evalExpression(ctx, b.Value, classEnv)
			if err != nil {
				return err
			}
			def.Fields[b.Name] = val
		}
	}

	in.classes[stmt.Name] = def
	return nil
}

func (in *Interpreter) evalExpression(ctx context.Context, expr Expression, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *IntegerLiteral:
		return NewInt(e.Value), nil
	case *FloatLiteral:
		return NewFloat(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *Identifier:
		if val, ok := env.Get(e.Name); ok {
			return val, nil
		}
		return NewNil(), in.errorAt(NameError, e.Pos(), "variable %q is not defined", e.Name)
	case *UnaryExpr:
		return in.evalUnary(ctx, e, env)
	case *BinaryExpr:
		return in.evalBinary(ctx, e, env)
	case *FieldAccessExpr:
		return in.evalFieldAccess(ctx, e, env)
	case *MethodCallExpr:
		return in.evalMethodCall(ctx, e, env)
	case *NewExpr:
		return in.evalNew(ctx, e, env)
	case *ThisExpr:
		if val, ok := env.Get("this"); ok {
			return val, nil
		}
		return NewNil(), in.errorAt(ScopeError, e.Pos(), "'this' can only be used within a method")
	case *SuperExpr:
		return in.evalSuper(e, env)
	default:
		panic(fmt.Sprintf("opal: unhandled expression %T", expr))
	}
}

func (in *Interpreter) evalUnary(ctx context.Context, e *UnaryExpr, env *Env) (Value, error) {
	operand, err := in.evalExpression(ctx, e.Operand, env)
	if err != nil {
		return NewNil(), err
	}
	if !operand.IsNumeric() {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "bad operand type for unary %s: %s", e.Op, operand.Kind())
	}
	if e.Op == tokenPlus {
		return operand, nil
	}
	if operand.Kind() == KindInt {
		return NewInt(-operand.Int()), nil
	}
	return NewFloat(-operand.Float()), nil
}

func (in *Interpreter) evalBinary(ctx context.Context, e *BinaryExpr, env *Env) (Value, error) {
	left, err := in.evalExpression(ctx, e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := in.evalExpression(ctx, e.Right, env)
	if err != nil {
		return NewNil(), err
	}

	switch e.Op {
	case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash:
		return in.evalArithmetic(e, left, right)
	case tokenEQ:
		return NewBool(valuesEqual(left, right)), nil
	case tokenNotEQ:
		return NewBool(!valuesEqual(left, right)), nil
	case tokenLT, tokenGT:
		if !left.IsNumeric() || !right.IsNumeric() {
			return NewNil(), in.errorAt(TypeError, e.Pos(), "unsupported operand types for %s: %s and %s", e.Op, left.Kind(), right.Kind())
		}
		if left.Kind() == KindInt && right.Kind() == KindInt {
			if e.Op == tokenLT {
				return NewBool(left.Int() < right.Int()), nil
			}
			return NewBool(left.Int() > right.Int()), nil
		}
		if e.Op == tokenLT {
			return NewBool(left.AsFloat() < right.AsFloat()), nil
		}
		return NewBool(left.AsFloat() > right.AsFloat()), nil
	default:
		panic(fmt.Sprintf("opal: unhandled binary operator %s", e.Op))
	}
}

// evalArithmetic applies + - * / with the host's numeric semantics: two
// ints stay in int64 (truncating division), anything mixed widens to
// float64. Strings do not concatenate with +.
func (in *Interpreter) evalArithmetic(e *BinaryExpr, left, right Value) (Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "unsupported operand types for %s: %s and %s", e.Op, left.Kind(), right.Kind())
	}

	if left.Kind() == KindInt && right.Kind() == KindInt {
		l, r := left.Int(), right.Int()
		switch e.Op {
		case tokenPlus:
			return NewInt(l + r), nil
		case tokenMinus:
			return NewInt(l - r), nil
		case tokenAsterisk:
			return NewInt(l * r), nil
		default:
			if r == 0 {
				return NewNil(), in.errorAt(TypeError, e.Pos(), "integer division by zero")
			}
			return NewInt(l / r), nil
		}
	}

	l, r := left.AsFloat(), right.AsFloat()
	switch e.Op {
	case tokenPlus:
		return NewFloat(l + r), nil
	case tokenMinus:
		return NewFloat(l - r), nil
	case tokenAsterisk:
		return NewFloat(l * r), nil
	default:
		return NewFloat(l / r), nil
	}
}

func valuesEqual(left, right Value) bool {
	if left.IsNumeric() && right.IsNumeric() {
		if left.Kind() == KindInt && right.Kind() == KindInt {
			return left.Int() == right.Int()
		}
		return left.AsFloat() == right.AsFloat()
	}
	if left.Kind() != right.Kind() {
		return false
	}
	switch left.Kind() {
	case KindNil:
		return true
	case KindString:
		return left.String() == right.String()
	case KindBool:
		return left.Bool() == right.Bool()
	case KindObject:
		return left.Object() == right.Object()
	default:
		return false
	}
}

func (in *Interpreter) evalFieldAccess(ctx context.Context, e *FieldAccessExpr, env *Env) (Value, error) {
	recv, err := in.evalExpression(ctx, e.Receiver, env)
	if err != nil {
		return NewNil(), err
	}
	if recv.Kind() != KindObject {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "cannot read field %q of non-object value", e.Field)
	}
	obj := recv.Object()
	if val, ok := obj.Fields[e.Field]; ok {
		return val, nil
	}
	return NewNil(), in.errorAt(AttributeError, e.Pos(), "object of class %q has no field %q", obj.Class, e.Field)
}

// evalMethodCall resolves a method on the receiver's class, consulting the
// immediate parent's table when the class itself lacks the name. Resolution
// deliberately stops there: grandparent methods are unreachable.
func (in *Interpreter) evalMethodCall(ctx context.Context, e *MethodCallExpr, env *Env) (Value, error) {
	recv, err := in.evalExpression(ctx, e.Receiver, env)
	if err != nil {
		return NewNil(), err
	}
	if recv.Kind() != KindObject {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "cannot call method %q on non-object value", e.Method)
	}
	obj := recv.Object()

	classDef, ok := in.classes[obj.Class]
	if !ok {
		return NewNil(), in.errorAt(NameError, e.Pos(), "class %q is not defined", obj.Class)
	}

	method, ok := classDef.Methods[e.Method]
	if !ok {
		if classDef.Parent != "" {
			if parent, ok := in.classes[classDef.Parent]; ok {
				method = parent.Methods[e.Method]
			}
		}
		if method == nil {
			return NewNil(), in.errorAt(AttributeError, e.Pos(), "method %q not found in class %q or its parent", e.Method, obj.Class)
		}
	}

	if len(method.Params) != len(e.Args) {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "method %q expects %d arguments but got %d", e.Method, len(method.Params), len(e.Args))
	}

	// Arguments evaluate in the caller's scope; the body runs in a fresh
	// scope holding only this and the parameters.
	methodEnv := newEnv(in.globals)
	methodEnv.Define("this", recv)
	for i, param := range method.Params {
		arg, err := in.evalExpression(ctx, e.Args[i], env)
		if err != nil {
			return NewNil(), err
		}
		methodEnv.Define(param, arg)
	}

	return in.evalStatement(ctx, method.Body, methodEnv)
}

func (in *Interpreter) evalNew(ctx context.Context, e *NewExpr, env *Env) (Value, error) {
	classDef, ok := in.classes[e.ClassName]
	if !ok {
		return NewNil(), in.errorAt(NameError, e.Pos(), "class %q is not defined", e.ClassName)
	}

	obj := &Instance{Class: e.ClassName, Fields: make(map[string]Value, len(classDef.Fields))}
	for name, val := range classDef.Fields {
		obj.Fields[name] = val
	}
	objVal := NewObject(obj)

	if init, ok := classDef.Methods["init"]; ok {
		if len(init.Params) != len(e.Args) {
			return NewNil(), in.errorAt(TypeError, e.Pos(), "constructor of %q expects %d arguments but got %d", e.ClassName, len(init.Params), len(e.Args))
		}
		initEnv := newEnv(in.globals)
		initEnv.Define("this", objVal)
		for i, param := range init.Params {
			arg, err := in.evalExpression(ctx, e.Args[i], env)
			if err != nil {
				return NewNil(), err
			}
			initEnv.Define(param, arg)
		}
		if _, err := in.evalStatement(ctx, init.Body, initEnv); err != nil {
			return NewNil(), err
		}
	}

	return objVal, nil
}

// evalSuper builds a view of this whose class tag is the immediate parent.
// The field map is shared with the original instance, so the proxy sees the
// same state; only method resolution starts one level up.
func (in *Interpreter) evalSuper(e *SuperExpr, env *Env) (Value, error) {
	thisVal, ok := env.Get("this")
	if !ok {
		return NewNil(), in.errorAt(ScopeError, e.Pos(), "'super' can only be used within a method")
	}
	obj := thisVal.Object()

	classDef, ok := in.classes[obj.Class]
	if !ok {
		return NewNil(), in.errorAt(NameError, e.Pos(), "class %q is not defined", obj.Class)
	}
	if classDef.Parent == "" {
		return NewNil(), in.errorAt(TypeError, e.Pos(), "class %q has no parent class", obj.Class)
	}

	return NewObject(&Instance{Class: classDef.Parent, Fields: obj.Fields}), nil
}

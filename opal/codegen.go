package opal

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// Codegen lowers a Program to an LLVM IR module for ahead-of-time
// compilation. One Codegen builds one module; the class table, function
// table, and block cursor are instance state for that single run.
//
// The compiled object model is deliberately thinner than the interpreter's:
// methods become top-level i32 functions, `new` yields a placeholder i32,
// and field storage does not exist.
type Codegen struct {
	module *ir.Module

	printf      *ir.Func
	intToString *ir.Func
	mainFunc    *ir.Func

	fn    *ir.Func
	block *ir.Block
	vars  map[string]*ir.InstAlloca

	classes map[string]string // class name -> parent name ("" for none)
	funcs   map[string]*ir.Func

	intFormat    *ir.Global
	floatFormat  *ir.Global
	stringFormat *ir.Global

	// Condition and after blocks of enclosing while loops, innermost last.
	// Nothing reads them yet; they are where break/continue would land.
	continueBlocks []*ir.Block
	exitBlocks     []*ir.Block

	strCount   int
	blockCount int

	source string
}

// NewCodegen constructs a code generator with an empty module containing
// the runtime declarations and format string constants.
func NewCodegen() *Codegen {
	cg := &Codegen{
		module:  ir.NewModule(),
		vars:    make(map[string]*ir.InstAlloca),
		classes: make(map[string]string),
		funcs:   make(map[string]*ir.Func),
	}

	i8ptr := types.NewPointer(types.I8)

	cg.printf = cg.module.NewFunc("printf", types.I32, ir.NewParam("format", i8ptr))
	cg.printf.Sig.Variadic = true
	cg.intToString = cg.module.NewFunc("int_to_string", i8ptr, ir.NewParam("value", types.I32))

	cg.intFormat = cg.addGlobalString("%d\n", "int_format")
	cg.floatFormat = cg.addGlobalString("%f\n", "float_format")
	cg.stringFormat = cg.addGlobalString("%s\n", "string_format")

	cg.mainFunc = cg.module.NewFunc("main", types.I32)
	cg.fn = cg.mainFunc
	cg.block = cg.mainFunc.NewBlock("entry")

	return cg
}

// Compile lowers the program into the module and returns it. Every block
// created during lowering ends in a terminator once Compile returns.
func (cg *Codegen) Compile(program *Program) (*ir.Module, error) {
	for _, stmt := range program.Statements {
		if _, err := cg.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	cg.terminateOpenBlocks(cg.mainFunc)
	return cg.module, nil
}

// CompileSource parses and lowers source text; codegen errors carry a
// source code frame through this entry point.
func (cg *Codegen) CompileSource(source string) (*ir.Module, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	cg.source = source
	defer func() { cg.source = "" }()
	return cg.Compile(program)
}

func (cg *Codegen) errorAt(kind ErrorKind, pos Position, format string, args ...any) error {
	return &RuntimeError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		CodeFrame: formatCodeFrame(cg.source, pos),
	}
}

func (cg *Codegen) addGlobalString(s, name string) *ir.Global {
	g := cg.module.NewGlobalDef(name, constant.NewCharArrayFromString(s+"\x00"))
	g.Immutable = true
	return g
}

// stringPointer decays a global char array to the i8* its users expect.
func (cg *Codegen) stringPointer(g *ir.Global) *ir.InstGetElementPtr {
	zero := constant.NewInt(types.I32, 0)
	return cg.block.NewGetElementPtr(g.ContentType, g, zero, zero)
}

func (cg *Codegen) newBlock(prefix string) *ir.Block {
	cg.blockCount++
	return cg.fn.NewBlock(fmt.Sprintf("%s.%d", prefix, cg.blockCount))
}

// entryAlloca materializes a stack slot at the current function's entry so
// the slot is visible from the first block no matter where the assignment
// appears.
func (cg *Codegen) entryAlloca(elemType types.Type) *ir.InstAlloca {
	alloca := ir.NewAlloca(elemType)
	entry := cg.fn.Blocks[0]
	entry.Insts = append([]ir.Instruction{alloca}, entry.Insts...)
	return alloca
}

// terminateOpenBlocks gives every unterminated block a default `ret i32 0`
// so the function verifies.
func (cg *Codegen) terminateOpenBlocks(fn *ir.Func) {
	for _, block := range fn.Blocks {
		if block.Term == nil {
			block.NewRet(constant.NewInt(types.I32, 0))
		}
	}
}

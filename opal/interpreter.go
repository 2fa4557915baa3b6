package opal

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Config controls interpreter execution.
type Config struct {
	// Output receives print statement output, one value per line.
	// Defaults to os.Stdout.
	Output io.Writer
}

// Interpreter walks a program's AST directly. The class registry and the
// global scope belong to the instance and live for its lifetime; they are
// never package state.
type Interpreter struct {
	config  Config
	classes map[string]*ClassDef
	globals *Env
	source  string
}

// NewInterpreter constructs an Interpreter with an empty global scope and
// class registry.
func NewInterpreter(cfg Config) *Interpreter {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Interpreter{
		config:  cfg,
		classes: make(map[string]*ClassDef),
		globals: newEnv(nil),
	}
}

// Run executes the program and returns the last evaluated value. Classes
// and globals registered during the run persist on the interpreter, so
// successive Run calls see earlier definitions.
func (in *Interpreter) Run(ctx context.Context, program *Program) (Value, error) {
	result := NewNil()
	for _, stmt := range program.Statements {
		if err := ctx.Err(); err != nil {
			return NewNil(), err
		}
		val, err := in.evalStatement(ctx, stmt, in.globals)
		if err != nil {
			return NewNil(), err
		}
		result = val
	}
	return result, nil
}

// RunSource parses and runs source text. Runtime errors carry a source
// code frame when executed through this entry point.
func (in *Interpreter) RunSource(ctx context.Context, source string) (Value, error) {
	program, err := Parse(source)
	if err != nil {
		return NewNil(), err
	}
	in.source = source
	defer func() { in.source = "" }()
	return in.Run(ctx, program)
}

// Globals returns a snapshot of the interpreter's global scope.
func (in *Interpreter) Globals() map[string]Value {
	snapshot := make(map[string]Value, len(in.globals.values))
	for name, val := range in.globals.values {
		snapshot[name] = val
	}
	return snapshot
}

func (in *Interpreter) errorAt(kind ErrorKind, pos Position, format string, args ...any) error {
	return &RuntimeError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		CodeFrame: formatCodeFrame(in.source, pos),
	}
}

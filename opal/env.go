package opal

// Env is one link in the scope chain. Lookups walk outward to the global
// scope; assignment always writes the innermost scope, matching the
// language's method-call semantics.
type Env struct {
	parent *Env
	values map[string]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]Value)}
}

func (e *Env) Get(name string) (Value, bool) {
	if val, ok := e.values[name]; ok {
		return val, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, false
}

func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

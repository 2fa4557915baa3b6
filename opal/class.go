package opal

// ClassDef is a registered class: methods stored verbatim as AST nodes and
// field defaults evaluated once at declaration time. Definitions are never
// mutated after registration; re-declaring a name replaces the entry.
type ClassDef struct {
	Name    string
	Parent  string // empty for root classes
	Methods map[string]*MethodStmt
	Fields  map[string]Value
}

// Instance is an interpreter object: a class tag plus a field map cloned
// from the class defaults at construction time. Identity is reference-like;
// passing an instance around shares the same fields.
type Instance struct {
	Class  string
	Fields map[string]Value
}

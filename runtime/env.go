package runtime

import "sync"

// Function is a host-registered function callable from scripts.
type Function func(args ...Value) (Value, error)

// Environment is the variable/function registry consulted by the
// evaluator. Names that are not found resolve to the Null sentinel at
// evaluation time rather than failing the dialogue.
type Environment interface {
	GetVariable(name string) (Value, bool)
	SetVariable(name string, value Value)
	GetFunction(name string) (Function, bool)
}

// Member is implemented by host objects that expose named members.
type Member interface {
	Member(name string) (Value, bool)
}

// Indexable is implemented by host objects that support [expr] indexing.
type Indexable interface {
	Index(key Value) (Value, bool)
}

// Callable is implemented by host objects that can be invoked.
type Callable interface {
	Call(args []Value) (Value, error)
}

// MapEnvironment is the default in-memory Environment. Safe for use from
// a background validator and a live runner at once.
type MapEnvironment struct {
	mu    sync.RWMutex
	vars  map[string]Value
	funcs map[string]Function
}

func NewMapEnvironment() *MapEnvironment {
	return &MapEnvironment{
		vars:  map[string]Value{},
		funcs: map[string]Function{},
	}
}

func (e *MapEnvironment) GetVariable(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

func (e *MapEnvironment) SetVariable(name string, value Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
}

func (e *MapEnvironment) GetFunction(name string) (Function, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.funcs[name]
	return f, ok
}

// RegisterFunction makes fn callable from scripts by name.
func (e *MapEnvironment) RegisterFunction(name string, fn Function) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = fn
}

// Variables returns a copy of the current variable table.
func (e *MapEnvironment) Variables() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[string]Value, len(e.vars))
	for k, v := range e.vars {
		cp[k] = v
	}
	return cp
}

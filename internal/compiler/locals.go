package compiler

import "github.com/vk/loxgo/internal/span"

// local is one stack-slot variable in the function currently being compiled.
type local struct {
	name        string
	depth       int
	slot        int
	declaredAt  span.Span
	initialized bool
	captured    bool
	used        bool
	lintable    bool
}

// locals tracks the slot assignment of scoped variables. Slot numbers are
// positions on the VM value stack relative to the call frame base.
type locals struct {
	stack      []local
	scopeDepth int
}

func (l *locals) beginScope() {
	l.scopeDepth++
}

// endScope drops the scope and returns its locals, innermost declarations
// last.
func (l *locals) endScope() []local {
	l.scopeDepth--

	index := len(l.stack)
	for i, entry := range l.stack {
		if entry.depth > l.scopeDepth {
			index = i
			break
		}
	}

	dropped := l.stack[index:]
	l.stack = l.stack[:index]
	return dropped
}

func (l *locals) get(name string) *local {
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i].name == name {
			return &l.stack[i]
		}
	}
	return nil
}

func (l *locals) getAtDepth(name string, depth int) *local {
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i].depth == depth && l.stack[i].name == name {
			return &l.stack[i]
		}
	}
	return nil
}

func (l *locals) getAtCurrentDepth(name string) *local {
	return l.getAtDepth(name, l.scopeDepth)
}

func (l *locals) markCaptured(slot int) {
	for i := range l.stack {
		if l.stack[i].slot == slot {
			l.stack[i].captured = true
			l.stack[i].used = true
			return
		}
	}
}

func (l *locals) markInitialized() {
	l.stack[len(l.stack)-1].initialized = true
}

// insert declares a new local in the current scope. It returns nil when the
// name is already taken at this depth.
func (l *locals) insert(name string, declaredAt span.Span) *local {
	if l.getAtCurrentDepth(name) != nil {
		return nil
	}

	l.stack = append(l.stack, local{
		name:       name,
		depth:      l.scopeDepth,
		slot:       len(l.stack),
		declaredAt: declaredAt,
	})
	return &l.stack[len(l.stack)-1]
}

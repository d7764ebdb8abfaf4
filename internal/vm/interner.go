package vm

// Symbol is an interned identifier. Symbol 0 is reserved as invalid.
type Symbol uint32

// Interner maps identifier strings to stable symbols so globals, fields
// and methods compare by integer.
type Interner struct {
	next    Symbol
	symbols map[string]Symbol
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{next: 1, symbols: make(map[string]Symbol)}
}

// Intern returns the symbol for name, allocating one on first use.
func (i *Interner) Intern(name string) Symbol {
	if symbol, ok := i.symbols[name]; ok {
		return symbol
	}
	symbol := i.next
	i.next++
	i.symbols[name] = symbol
	return symbol
}

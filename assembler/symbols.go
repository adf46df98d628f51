package assembler

import (
	"sort"
	"strings"
)

// SymbolTable maps case-sensitive names to constants and labels. A name can be defined
// once.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

func (t *SymbolTable) Define(sym Symbol) error {
	if prev, ok := t.symbols[sym.Name]; ok {
		return Errors.DuplicateSymbol(sym.Name, prev.Line)
	}
	t.symbols[sym.Name] = sym
	return nil
}

func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Sorted returns every symbol ordered by name.
func (t *SymbolTable) Sorted() []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, sym := range t.symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func checkValidSymbolName(str string) (bool, string) {
	if len(str) == 0 {
		return false, "symbol names must not be empty"
	}

	// must only contain alphanumeric characters and underscores
	for _, char := range str {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return false, "symbol names must only contain alphanumeric characters and underscores"
		}
	}

	if isDigit(str[0]) {
		return false, "symbol names must not start with a digit"
	}
	if looksLikeRegister(str) {
		return false, "symbol names must not look like a register"
	}
	switch strings.ToUpper(str) {
	case "X", "Y", "Z":
		return false, "X, Y and Z are pointer registers"
	}

	return true, ""
}

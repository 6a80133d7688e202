package collide

import (
	"strings"

	"disambig/internal/diag"
	"disambig/internal/names"
)

// ReservedWord is one seed entry of the reserved table.
type ReservedWord struct {
	Word string
	// Param marks words that are only reserved for parameters and locals.
	Param bool
}

// Reserved is the frozen table of words generated names must never equal.
// Non-parameter words are classified SuperMemberName, parameter-context
// words ParameterName; both start with zero counts.
type Reserved struct {
	table *Table
}

// NewReserved interns words into pool and seeds the table. Empty and
// repeated words are reported through r and skipped.
func NewReserved(pool *names.Pool, words []ReservedWord, r diag.Reporter) *Reserved {
	type seenKey struct {
		id    names.ID
		param bool
	}
	seen := make(map[seenKey]bool, len(words))
	t := NewTable(len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			diag.ReportWarning(r, diag.CfgInvalidReserved, diag.Subject{Scope: "reserved"}, "empty reserved word ignored").Emit()
			continue
		}
		id := pool.Intern(text)
		key := seenKey{id: id, param: w.Param}
		if seen[key] {
			diag.ReportWarning(r, diag.CfgInvalidReserved, diag.Subject{Scope: "reserved", Symbol: text}, "reserved word listed twice").Emit()
			continue
		}
		seen[key] = true
		kind := SuperMemberName
		if w.Param {
			kind = ParameterName
		}
		t.Append(NewRecord(id, kind))
	}
	t.Freeze()
	return &Reserved{table: t}
}

// Find returns the most recently seeded entry for name.
func (r *Reserved) Find(name names.ID) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	return r.table.Find(name)
}

// Len reports the number of reserved entries.
func (r *Reserved) Len() int {
	if r == nil {
		return 0
	}
	return r.table.Len()
}

// DefaultReservedWords returns the built-in seed: keywords and common macro
// names of the generated C++ headers, plus the names generated function
// bodies use for locals.
func DefaultReservedWords() []ReservedWord {
	words := make([]ReservedWord, 0, len(cppKeywords)+len(cppMacros)+len(paramLocals))
	for _, w := range cppKeywords {
		words = append(words, ReservedWord{Word: w})
	}
	for _, w := range cppMacros {
		words = append(words, ReservedWord{Word: w})
	}
	for _, w := range paramLocals {
		words = append(words, ReservedWord{Word: w, Param: true})
	}
	return words
}

var cppKeywords = []string{
	"alignas", "alignof", "and", "and_eq", "asm", "auto", "bitand", "bitor",
	"bool", "break", "case", "catch", "char", "char8_t", "char16_t", "char32_t",
	"class", "compl", "concept", "const", "consteval", "constexpr", "constinit",
	"const_cast", "continue", "co_await", "co_return", "co_yield", "decltype",
	"default", "delete", "do", "double", "dynamic_cast", "else", "enum",
	"explicit", "export", "extern", "false", "float", "for", "friend", "goto",
	"if", "inline", "int", "long", "mutable", "namespace", "new", "noexcept",
	"not", "not_eq", "nullptr", "operator", "or", "or_eq", "private",
	"protected", "public", "register", "reinterpret_cast", "requires", "return",
	"short", "signed", "sizeof", "static", "static_assert", "static_cast",
	"struct", "switch", "template", "this", "thread_local", "throw", "true",
	"try", "typedef", "typeid", "typename", "union", "unsigned", "using",
	"virtual", "void", "volatile", "wchar_t", "while", "xor", "xor_eq",
}

var cppMacros = []string{
	"TRUE", "FALSE", "IN", "OUT", "PF_MAX", "SIZE_MAX", "INT_MAX", "INT_MIN",
	"min", "max", "NULL", "EOF", "DELETE", "ERROR",
}

var paramLocals = []string{
	"Parms", "Params", "Func", "Flgs",
}

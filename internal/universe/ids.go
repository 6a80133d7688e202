package universe

// ScopeID identifies a type or a function. Types and functions share one id
// space, the way a reflection source hands out object indices.
type ScopeID uint32

const (
	// NoScope marks the absence of a scope reference (e.g. a root type's ancestor).
	NoScope ScopeID = 0
)

// IsValid reports whether the id refers to a scope.
func (id ScopeID) IsValid() bool { return id != NoScope }

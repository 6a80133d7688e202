package collide

import "fmt"

// Kind is both the namespace a symbol belongs to and the index of a
// collision counter. MemberName/FunctionName and their Super* partners
// share adjacent ordinals: an ancestor hit bumps ownKind+1.
type Kind uint8

const (
	MemberName Kind = iota
	SuperMemberName
	FunctionName
	SuperFunctionName
	ParameterName

	// NumKinds is the number of counter slots in a Record.
	NumKinds = 5
)

func (k Kind) String() string {
	switch k {
	case MemberName:
		return "member"
	case SuperMemberName:
		return "super-member"
	case FunctionName:
		return "function"
	case SuperFunctionName:
		return "super-function"
	case ParameterName:
		return "parameter"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsOwn reports whether k may classify a registered symbol.
// The Super* kinds exist only as counter slots and as the classification
// of non-parameter reserved words.
func (k Kind) IsOwn() bool {
	return k == MemberName || k == FunctionName || k == ParameterName
}

// IsValid reports whether k is one of the five defined kinds.
func (k Kind) IsValid() bool { return k < NumKinds }

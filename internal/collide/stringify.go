package collide

import "strconv"

// SuffixPolicy chooses the type name appended to a member that collides
// with an inherited member.
type SuffixPolicy uint8

const (
	// SuffixAncestor appends the name of the ancestor the member shadows.
	// Earlier releases appended the owner ("Value_Derived"); SuffixOwner
	// keeps that behaviour.
	SuffixAncestor SuffixPolicy = iota
	// SuffixOwner appends the name of the type declaring the member.
	SuffixOwner
)

func (p SuffixPolicy) String() string {
	switch p {
	case SuffixAncestor:
		return "ancestor"
	case SuffixOwner:
		return "owner"
	}
	return "unknown"
}

// ParseSuffixPolicy converts "ancestor" or "owner" to a SuffixPolicy.
func ParseSuffixPolicy(s string) (SuffixPolicy, error) {
	switch s {
	case "", "ancestor":
		return SuffixAncestor, nil
	case "owner":
		return SuffixOwner, nil
	}
	return SuffixAncestor, &policyError{value: s}
}

type policyError struct{ value string }

func (e *policyError) Error() string {
	return "invalid super suffix policy " + strconv.Quote(e.value) + " (expected ancestor|owner)"
}

// Stringify builds the final identifier for raw. typeName is only used for
// members with a super-member collision. The order of the checks matters.
func Stringify(raw string, r Record, typeName string) string {
	name := raw
	switch r.OwnKind() {
	case MemberName:
		if r.Count(SuperMemberName) > 0 {
			name += "_" + typeName
		}
		if c := r.Count(MemberName); c > 0 {
			name += "_" + strconv.Itoa(int(c)-1)
		}
	case FunctionName:
		if r.Count(MemberName) > 0 || r.Count(SuperMemberName) > 0 {
			name = "Func_" + name
		}
		if c := r.Count(FunctionName); c > 0 {
			name += "_" + strconv.Itoa(int(c)-1)
		}
	case ParameterName:
		if r.Count(MemberName) > 0 || r.Count(SuperMemberName) > 0 ||
			r.Count(FunctionName) > 0 || r.Count(SuperFunctionName) > 0 {
			name = "Param_" + name
		}
		if c := r.Count(ParameterName); c > 0 {
			name += "_" + strconv.Itoa(int(c)-1)
		}
	}
	return name
}

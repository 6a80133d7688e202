package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest scope written at each level; zero writes nothing.
var levelReach = [...]Scope{0, 0, ScopePhase, ScopeType, ScopeSymbol}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the level names case-insensitively; "" means off.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are written at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelReach) || scope == 0 {
		return false
	}
	return scope <= levelReach[l]
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopePhase
	ScopeType
	ScopeSymbol
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeType:
		return "type"
	case ScopeSymbol:
		return "symbol"
	}
	return "unknown"
}

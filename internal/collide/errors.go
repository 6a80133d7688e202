package collide

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey means two distinct raw symbols of one scope produced the
	// same translation key, which points at a reflection-identity bug upstream.
	ErrDuplicateKey = errors.New("collide: duplicate translation key")
	// ErrNotFound means a key leads to no record: it was never published,
	// or a restored index points outside its tables.
	ErrNotFound = errors.New("collide: symbol was never registered")
	// ErrMissingFunctionScope is returned when a parameter is registered
	// without the function scope that owns it.
	ErrMissingFunctionScope = errors.New("collide: parameter registered without a function scope")
	// ErrInvalidKind is returned for registrations whose kind is not an own kind.
	ErrInvalidKind = errors.New("collide: kind cannot classify a symbol")
	// ErrAncestorCycle is wrapped by Index.Skipped for types whose
	// ancestor chain loops.
	ErrAncestorCycle = errors.New("collide: ancestor chain forms a cycle")
	// ErrUnknownScope is returned when a type id is not part of the source.
	ErrUnknownScope = errors.New("collide: unknown scope")
)

// KeyError carries the translation key a lookup or publish failed for.
type KeyError struct {
	Key Key
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Key)
}

func (e *KeyError) Unwrap() error { return e.Err }

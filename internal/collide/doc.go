// Package collide assigns collision-free names to the members, functions
// and parameters of a type universe.
//
// # Records
//
// Every registration appends a Record to the table of its scope. A record
// packs the kind it was registered as with one saturating counter per
// Kind. When a name is registered again, the record it collides with is
// copied, reclassified as the new kind and the counter picked by the kind
// of the earlier record is bumped. Hits found in an ancestor's table bump
// the super variant of that counter.
//
// # Search order
//
// Register looks for an earlier record of the same name in this order and
// stops at the first hit:
//
//  1. parameters only: the function's own table, then the reserved words
//  2. the type's own table
//  3. ancestor tables, nearest first
//  4. the reserved words
//
// A name the pool has never seen cannot collide, so the search is skipped.
//
// # Names
//
// Stringify turns a raw name and its record into the final identifier:
// "Value_Base" for a member shadowing an ancestor member, "Func_Value" for
// a function named like a member, "Param_x" for a parameter named like a
// member or function, and "_0", "_1", ... for repeats of the same kind.
//
// Index is the write side used while building. Resolver is the read side
// handed to renderers; it answers by Key, the composite identity of a
// symbol (scope, kind, name and layout), through the Translation table.
package collide

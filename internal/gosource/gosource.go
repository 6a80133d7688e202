// Package gosource walks Go packages and describes their struct types as a
// universe: embedding the first struct plays the role of an ancestor,
// fields become members and methods become functions.
package gosource

import (
	"cmp"
	"context"
	"fmt"
	"go/types"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/tools/go/packages"

	"disambig/internal/universe"
)

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo

// Options tunes Load.
type Options struct {
	// Dir is the directory the patterns are resolved in.
	Dir string
	// Arch selects the gc size model used for offsets; default amd64.
	Arch string
}

// Load type-checks the packages matching patterns and converts every named
// non-generic struct type into a universe type.
func Load(ctx context.Context, opts Options, patterns ...string) (*universe.Universe, error) {
	doc, err := LoadDocument(ctx, opts, patterns...)
	if err != nil {
		return nil, err
	}
	return universe.Build(doc)
}

// LoadDocument is Load without the final id assignment, for callers that
// want to write the universe file out.
func LoadDocument(ctx context.Context, opts Options, patterns ...string) (*universe.Document, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	arch := opts.Arch
	if arch == "" {
		arch = "amd64"
	}
	sizes := types.SizesFor("gc", arch)
	if sizes == nil {
		return nil, fmt.Errorf("gosource: unknown architecture %q", arch)
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	var errs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	slices.SortFunc(pkgs, func(a, b *packages.Package) int { return strings.Compare(a.ID, b.ID) })

	w := &walker{sizes: sizes, names: make(map[*types.TypeName]string), taken: make(map[string]bool)}
	for _, pkg := range pkgs {
		w.collect(pkg.Types)
	}
	return w.document()
}

type walker struct {
	sizes types.Sizes
	order []*types.TypeName
	names map[*types.TypeName]string
	taken map[string]bool
}

// collect records the struct types of pkg. A name already used by another
// package is qualified with the package name.
func (w *walker) collect(pkg *types.Package) {
	if pkg == nil {
		return
	}
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || obj.IsAlias() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		if _, ok := named.Underlying().(*types.Struct); !ok {
			continue
		}
		if _, seen := w.names[obj]; seen {
			continue
		}
		display := obj.Name()
		if w.taken[display] {
			display = pkg.Name() + "_" + obj.Name()
		}
		w.taken[display] = true
		w.names[obj] = display
		w.order = append(w.order, obj)
	}
}

func (w *walker) document() (*universe.Document, error) {
	doc := &universe.Document{Types: make([]universe.TypeDoc, 0, len(w.order))}
	for _, obj := range w.order {
		td, err := w.typeDoc(obj)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", obj.Pkg().Path(), obj.Name(), err)
		}
		doc.Types = append(doc.Types, td)
	}
	return doc, nil
}

func (w *walker) typeDoc(obj *types.TypeName) (universe.TypeDoc, error) {
	named := obj.Type().(*types.Named)
	st := named.Underlying().(*types.Struct)
	td := universe.TypeDoc{Name: w.names[obj]}

	fields := make([]*types.Var, st.NumFields())
	for i := range fields {
		fields[i] = st.Field(i)
	}
	offsets := w.sizes.Offsetsof(fields)
	for i, f := range fields {
		if td.Extends == "" && f.Embedded() {
			if anc, ok := w.ancestor(f.Type()); ok {
				td.Extends = anc
				continue
			}
		}
		m, err := w.member(f.Name(), f.Type(), offsets[i])
		if err != nil {
			return td, err
		}
		td.Members = append(td.Members, m)
	}

	methods := make([]*types.Func, named.NumMethods())
	for i := range methods {
		methods[i] = named.Method(i)
	}
	slices.SortStableFunc(methods, func(a, b *types.Func) int { return cmp.Compare(a.Pos(), b.Pos()) })
	for _, fn := range methods {
		sig := fn.Type().(*types.Signature)
		fd := universe.FunctionDoc{Name: fn.Name()}
		for i := range sig.Params().Len() {
			p := sig.Params().At(i)
			name := p.Name()
			if name == "" || name == "_" {
				name = fmt.Sprintf("arg%d", i)
			}
			m, err := w.member(name, p.Type(), 0)
			if err != nil {
				return td, err
			}
			m.Number = uint32(i)
			fd.Params = append(fd.Params, m)
		}
		td.Functions = append(td.Functions, fd)
	}
	return td, nil
}

// ancestor reports the display name of the struct type t embeds, if it
// was collected.
func (w *walker) ancestor(t types.Type) (string, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return "", false
	}
	name, ok := w.names[named.Obj()]
	return name, ok
}

func (w *walker) member(name string, t types.Type, offset int64) (universe.MemberDoc, error) {
	off, err := safecast.Conv[uint32](offset)
	if err != nil {
		return universe.MemberDoc{}, fmt.Errorf("offset of %s: %w", name, err)
	}
	size, err := safecast.Conv[uint32](w.sizes.Sizeof(t))
	if err != nil {
		return universe.MemberDoc{}, fmt.Errorf("size of %s: %w", name, err)
	}
	return universe.MemberDoc{Name: name, Offset: off, Size: size}, nil
}

package gosource

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"disambig/internal/universe"
)

const shapesGo = `package shapes

type Base struct {
	Value int32
	name  string
}

func (b Base) Area() int { return 0 }

type Derived struct {
	Base
	Value int64
}

func (d *Derived) Scale(factor int, _ float64) {}

func (d Derived) Name() string { return "" }

type notAStruct int

type Pair[T any] struct{ A, B T }
`

func writeModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":    "module example.com/shapes\n\ngo 1.22\n",
		"shapes.go": shapesGo,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadStructs(t *testing.T) {
	u, err := Load(context.Background(), Options{Dir: writeModule(t)}, "./...")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(u.Types) != 2 {
		t.Fatalf("got %d types, want Base and Derived: %+v", len(u.Types), u.Types)
	}
	base, derived := u.Types[0], u.Types[1]
	if base.Name != "Base" || derived.Name != "Derived" {
		t.Fatalf("names = %q, %q", base.Name, derived.Name)
	}
	if derived.Super != base.ID {
		t.Fatalf("Derived should extend Base, super = %d", derived.Super)
	}
	wantBase := []universe.Member{{Name: "Value", Size: 4}, {Name: "name", Offset: 8, Size: 16}}
	if !reflect.DeepEqual(base.Members, wantBase) {
		t.Fatalf("Base members = %+v", base.Members)
	}
	wantDerived := []universe.Member{{Name: "Value", Offset: 24, Size: 8}}
	if !reflect.DeepEqual(derived.Members, wantDerived) {
		t.Fatalf("Derived members = %+v", derived.Members)
	}
	if len(derived.Functions) != 2 || derived.Functions[0].Name != "Scale" || derived.Functions[1].Name != "Name" {
		t.Fatalf("Derived functions = %+v", derived.Functions)
	}
	params := derived.Functions[0].Params
	if len(params) != 2 || params[0].Name != "factor" || params[1].Name != "arg1" {
		t.Fatalf("Scale params = %+v", params)
	}
}

func TestLoadReportsPackageErrors(t *testing.T) {
	dir := writeModule(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package shapes\n\nvar x int = \"s\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), Options{Dir: dir}); err == nil {
		t.Fatalf("expected type errors to fail the load")
	}
}

func TestUnknownArch(t *testing.T) {
	if _, err := LoadDocument(context.Background(), Options{Arch: "pdp11"}); err == nil {
		t.Fatalf("expected error for unknown arch")
	}
}

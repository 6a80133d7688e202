package universe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a universe. Types refer to their
// ancestor by name; scope ids are assigned on Build.
type Document struct {
	Types []TypeDoc `yaml:"types" json:"types" toml:"types" msgpack:"types"`
}

// TypeDoc describes one reflected type.
type TypeDoc struct {
	Name      string        `yaml:"name" json:"name" toml:"name" msgpack:"name"`
	Extends   string        `yaml:"extends,omitempty" json:"extends,omitempty" toml:"extends,omitempty" msgpack:"extends,omitempty"`
	Members   []MemberDoc   `yaml:"members,omitempty" json:"members,omitempty" toml:"members,omitempty" msgpack:"members,omitempty"`
	Functions []FunctionDoc `yaml:"functions,omitempty" json:"functions,omitempty" toml:"functions,omitempty" msgpack:"functions,omitempty"`
}

// MemberDoc describes a data member or a parameter.
type MemberDoc struct {
	Name   string `yaml:"name" json:"name" toml:"name" msgpack:"name"`
	Number uint32 `yaml:"number,omitempty" json:"number,omitempty" toml:"number,omitempty" msgpack:"number,omitempty"`
	Offset uint32 `yaml:"offset,omitempty" json:"offset,omitempty" toml:"offset,omitempty" msgpack:"offset,omitempty"`
	Size   uint32 `yaml:"size,omitempty" json:"size,omitempty" toml:"size,omitempty" msgpack:"size,omitempty"`
}

// FunctionDoc describes a function and its parameters.
type FunctionDoc struct {
	Name   string      `yaml:"name" json:"name" toml:"name" msgpack:"name"`
	Number uint32      `yaml:"number,omitempty" json:"number,omitempty" toml:"number,omitempty" msgpack:"number,omitempty"`
	Params []MemberDoc `yaml:"params,omitempty" json:"params,omitempty" toml:"params,omitempty" msgpack:"params,omitempty"`
}

// Format is a universe file encoding.
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".mp", ".msgpack":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("universe: unsupported file extension %q (want .yaml, .json, .toml or .msgpack)", filepath.Ext(path))
}

// LoadFile reads, decodes and builds the universe stored at path.
func LoadFile(path string) (*Universe, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading universe %s: %w", path, err)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	u, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&doc); errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unknown format %d", format)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serialises doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		return msgpack.Marshal(doc)
	}
	return nil, fmt.Errorf("universe: unknown format %d", format)
}

// Build assigns scope ids and resolves ancestors by name. Types get ids
// 1..n in document order, functions continue after the last type.
// Function declaration indices restart at zero for every type.
func Build(doc *Document) (*Universe, error) {
	byName := make(map[string]ScopeID, len(doc.Types))
	types := make([]Type, len(doc.Types))
	var errs []error
	for i, td := range doc.Types {
		name := norm.NFC.String(td.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("type #%d has no name", i))
			continue
		}
		if _, dup := byName[name]; dup {
			errs = append(errs, fmt.Errorf("type %q declared twice", name))
			continue
		}
		raw, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
		id := ScopeID(raw)
		byName[name] = id
		types[i] = Type{ID: id, Name: name}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	first, err := safecast.Conv[uint32](len(doc.Types) + 1)
	if err != nil {
		return nil, fmt.Errorf("too many types: %w", err)
	}
	next := ScopeID(first)
	for i, td := range doc.Types {
		t := &types[i]
		if td.Extends != "" {
			super, ok := byName[norm.NFC.String(td.Extends)]
			if !ok {
				errs = append(errs, fmt.Errorf("type %q extends unknown type %q", t.Name, td.Extends))
			}
			t.Super = super
		}
		t.Members = members(td.Members)
		for j, fd := range td.Functions {
			index, err := safecast.Conv[uint32](j)
			if err != nil {
				return nil, fmt.Errorf("type %q function #%d: %w", t.Name, j, err)
			}
			t.Functions = append(t.Functions, Function{
				ID:     next,
				Name:   norm.NFC.String(fd.Name),
				Number: fd.Number,
				Index:  index,
				Params: members(fd.Params),
			})
			next++
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	u, err := New(types)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func members(docs []MemberDoc) []Member {
	if len(docs) == 0 {
		return nil
	}
	out := make([]Member, len(docs))
	for i, d := range docs {
		out[i] = Member{Name: norm.NFC.String(d.Name), Number: d.Number, Offset: d.Offset, Size: d.Size}
	}
	return out
}

// ToDocument converts u back to its on-disk form.
func ToDocument(u *Universe) *Document {
	doc := &Document{Types: make([]TypeDoc, 0, len(u.Types))}
	for _, t := range u.Types {
		td := TypeDoc{Name: t.Name, Members: memberDocs(t.Members)}
		if anc, ok := u.Type(t.Super); ok {
			td.Extends = anc.Name
		}
		for _, f := range t.Functions {
			td.Functions = append(td.Functions, FunctionDoc{Name: f.Name, Number: f.Number, Params: memberDocs(f.Params)})
		}
		doc.Types = append(doc.Types, td)
	}
	return doc
}

func memberDocs(ms []Member) []MemberDoc {
	if len(ms) == 0 {
		return nil
	}
	out := make([]MemberDoc, len(ms))
	for i, m := range ms {
		out[i] = MemberDoc{Name: m.Name, Number: m.Number, Offset: m.Offset, Size: m.Size}
	}
	return out
}

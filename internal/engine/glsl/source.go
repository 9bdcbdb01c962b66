// Package glsl builds GLSL shader sources from a small declaration tree.
//
// A Source is an ordered list of top-level declarations, the statements of
// main, and function bodies emitted after main. Keeping the pieces separate
// lets callers inspect what was declared without parsing text.
package glsl

import (
	"fmt"
	"strings"
)

// DefaultVersion is the directive emitted when Source.Version is empty.
const DefaultVersion = "#version 410 core"

// DeclKind classifies a top-level declaration.
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclDefine
	DeclInput
	DeclOutput
	DeclUniform
	DeclPrototype
)

func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclDefine:
		return "define"
	case DeclInput:
		return "in"
	case DeclOutput:
		return "out"
	case DeclUniform:
		return "uniform"
	case DeclPrototype:
		return "prototype"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Decl is one top-level declaration.
type Decl struct {
	Kind DeclKind
	Name string
	// Type is the value type, or the return type of a prototype.
	Type string
	// Fields are the members of a struct, e.g. "vec3 position".
	Fields []string
	// Value is the replacement text of a define.
	Value string
	// ArraySize makes a uniform an array, e.g. "NR_POINT_LIGHTS".
	ArraySize string
	// Location is the attribute location of an input; negative means none.
	Location int
	// Params is the parameter list of a prototype.
	Params string
}

// Struct declares a struct type.
func Struct(name string, fields ...string) Decl {
	return Decl{Kind: DeclStruct, Name: name, Fields: fields}
}

// Define declares a preprocessor macro.
func Define(name string, value any) Decl {
	return Decl{Kind: DeclDefine, Name: name, Value: fmt.Sprint(value)}
}

// In declares a stage input without a layout location.
func In(typ, name string) Decl {
	return Decl{Kind: DeclInput, Type: typ, Name: name, Location: -1}
}

// Attribute declares a vertex input at a fixed location.
func Attribute(location int, typ, name string) Decl {
	return Decl{Kind: DeclInput, Type: typ, Name: name, Location: location}
}

// Out declares a stage output.
func Out(typ, name string) Decl {
	return Decl{Kind: DeclOutput, Type: typ, Name: name}
}

// Uniform declares a uniform.
func Uniform(typ, name string) Decl {
	return Decl{Kind: DeclUniform, Type: typ, Name: name}
}

// UniformArray declares a uniform array sized by size (a literal or macro).
func UniformArray(typ, name, size string) Decl {
	return Decl{Kind: DeclUniform, Type: typ, Name: name, ArraySize: size}
}

// Prototype forward-declares a function.
func Prototype(ret, name, params string) Decl {
	return Decl{Kind: DeclPrototype, Type: ret, Name: name, Params: params}
}

func (d Decl) String() string {
	switch d.Kind {
	case DeclStruct:
		var b strings.Builder
		b.WriteString("struct " + d.Name + " {\n")
		for _, f := range d.Fields {
			b.WriteString("    " + f + ";\n")
		}
		b.WriteString("};")
		return b.String()
	case DeclDefine:
		return "#define " + d.Name + " " + d.Value
	case DeclInput:
		if d.Location >= 0 {
			return fmt.Sprintf("layout (location = %d) in %s %s;", d.Location, d.Type, d.Name)
		}
		return "in " + d.Type + " " + d.Name + ";"
	case DeclOutput:
		return "out " + d.Type + " " + d.Name + ";"
	case DeclUniform:
		if d.ArraySize != "" {
			return "uniform " + d.Type + " " + d.Name + "[" + d.ArraySize + "];"
		}
		return "uniform " + d.Type + " " + d.Name + ";"
	case DeclPrototype:
		return d.Type + " " + d.Name + "(" + d.Params + ");"
	default:
		return ""
	}
}

// Func is a function definition emitted after main.
type Func struct {
	Signature string
	Body      []string
}

func (f Func) String() string {
	var b strings.Builder
	b.WriteString(f.Signature + " {\n")
	for _, line := range f.Body {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// Source is a complete shader stage.
type Source struct {
	Version string
	Decls   []Decl
	Main    []string
	Funcs   []Func
}

// Add appends declarations.
func (s *Source) Add(decls ...Decl) {
	s.Decls = append(s.Decls, decls...)
}

// Body appends statements to main.
func (s *Source) Body(lines ...string) {
	s.Main = append(s.Main, lines...)
}

// Names returns the names of declarations of the given kind in order.
func (s *Source) Names(kind DeclKind) []string {
	var out []string
	for _, d := range s.Decls {
		if d.Kind == kind {
			out = append(out, d.Name)
		}
	}
	return out
}

// Lookup returns the first declaration of kind with the given name.
func (s *Source) Lookup(kind DeclKind, name string) (Decl, bool) {
	for _, d := range s.Decls {
		if d.Kind == kind && d.Name == name {
			return d, true
		}
	}
	return Decl{}, false
}

// Samplers returns the names of sampler2D uniforms in declaration order.
func (s *Source) Samplers() []string {
	var out []string
	for _, d := range s.Decls {
		if d.Kind == DeclUniform && d.Type == "sampler2D" {
			out = append(out, d.Name)
		}
	}
	return out
}

// String renders the source text.
func (s *Source) String() string {
	var b strings.Builder
	version := s.Version
	if version == "" {
		version = DefaultVersion
	}
	b.WriteString(version + "\n\n")

	prev := DeclKind(-1)
	for _, d := range s.Decls {
		// blank line between groups and around structs
		if prev >= 0 && (d.Kind != prev || d.Kind == DeclStruct) {
			b.WriteString("\n")
		}
		b.WriteString(d.String() + "\n")
		prev = d.Kind
	}

	b.WriteString("\nvoid main() {\n")
	for _, line := range s.Main {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString("}\n")

	for _, f := range s.Funcs {
		b.WriteString("\n" + f.String() + "\n")
	}
	return b.String()
}

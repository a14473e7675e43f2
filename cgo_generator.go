package espeakgen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	cgoBindingsFile = "bindings.go"
	cgoGeneratorRev = "cgo/2"
)

// goReserved are identifiers a wrapper parameter must not shadow.
var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"bool": true, "byte": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "float32": true, "float64": true,
	"string": true, "error": true, "nil": true, "true": true, "false": true,
	"len": true, "cap": true, "new": true, "make": true, "append": true,
	"C": true, "unsafe": true,
}

// CgoGenerator writes a single cgo binding file without external binding
// tools.
//
// The header is run through the C preprocessor with the directive include
// paths and every espeak-prefixed prototype is parsed. Each function gets
// an exported Go wrapper calling it through cgo, named like the c-for-go
// rules name it (espeak_Synth -> Synth, espeak_ng_InitializePath ->
// NgInitializePath). Arithmetic parameters and results use Go types; all
// other types are the cgo C types. Variadic functions and types cgo cannot
// express are listed in the file but not wrapped.
type CgoGenerator struct{}

// Name returns the generator name
func (g *CgoGenerator) Name() string {
	return GeneratorCgo
}

// RequiredTools returns the tools needed for cgo generation
func (g *CgoGenerator) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: getCCompiler(), Alternatives: []string{"gcc", "clang"}, Purpose: "C preprocessor"},
	}
}

// CheckTools verifies that a C preprocessor is available
func (g *CgoGenerator) CheckTools() error {
	return CheckRequiredTools(g.RequiredTools())
}

// Version returns the revision of the built-in template
func (g *CgoGenerator) Version(context.Context, *Config) string {
	return cgoGeneratorRev
}

// Generate preprocesses the header and writes bindings.go
func (g *CgoGenerator) Generate(ctx context.Context, config *Config, req *BindingRequest, result *Result) ([]string, error) {
	args := append([]string{"-E", "-P"}, CFlags(req.Directives)...)
	args = append(args, "-I"+filepath.Dir(req.Header), req.Header)

	preprocessed, err := command{step: "preprocess", dir: req.OutDir, name: getCCompiler(), args: args}.output(ctx, config, result)
	if err != nil {
		return nil, err
	}

	prototypes := ParsePrototypes(preprocessed)
	if len(prototypes) == 0 {
		return nil, fmt.Errorf("%s declares no espeak functions", req.Header)
	}
	for _, proto := range prototypes {
		if proto.Skip != "" {
			config.logger().Warn("function not wrapped", "function", proto.Name, "reason", proto.Skip)
		}
	}

	source, err := renderCgoBindings(req, prototypes)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(req.OutDir, cgoBindingsFile)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return nil, fmt.Errorf("couldn't write bindings: %w", err)
	}
	return []string{path}, nil
}

// DeclaredFunctions returns the sorted names of the espeak-prefixed
// functions declared in preprocessed C source.
func DeclaredFunctions(source []byte) []string {
	prototypes := ParsePrototypes(source)
	functions := make([]string, 0, len(prototypes))
	for _, proto := range prototypes {
		functions = append(functions, proto.Name)
	}
	return functions
}

func renderCgoBindings(req *BindingRequest, prototypes []Prototype) ([]byte, error) {
	var (
		wrappers bytes.Buffer
		wrapped  []string
		skipped  []Prototype
	)
	used := map[string]bool{"Functions": true}
	for _, proto := range prototypes {
		if proto.Skip != "" {
			skipped = append(skipped, proto)
			continue
		}
		writeCgoWrapper(&wrappers, proto, uniqueName(goFuncName(proto.Name), proto.Name, used))
		wrapped = append(wrapped, proto.Name)
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by espeakgen; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "// Package %s provides Go bindings for espeak-ng.\n", req.PackageName)
	fmt.Fprintf(&buf, "package %s\n\n", req.PackageName)

	buf.WriteString("/*\n")
	for _, line := range FormatCgoDirectives(req.Directives) {
		buf.WriteString(line + "\n")
	}
	fmt.Fprintf(&buf, "#include %s\n", strconv.Quote(req.Header))
	buf.WriteString("*/\n")
	buf.WriteString("import \"C\"\n\n")
	if bytes.Contains(wrappers.Bytes(), []byte("unsafe.Pointer")) {
		buf.WriteString("import \"unsafe\"\n\n")
	}

	fmt.Fprintf(&buf, "// Functions lists the espeak-ng functions wrapped from %s.\n", filepath.Base(req.Header))
	buf.WriteString("var Functions = []string{\n")
	for _, name := range wrapped {
		fmt.Fprintf(&buf, "%s,\n", strconv.Quote(name))
	}
	buf.WriteString("}\n")

	if len(skipped) > 0 {
		buf.WriteString("\n// Not wrapped:\n//\n")
		for _, proto := range skipped {
			fmt.Fprintf(&buf, "//\t%s // %s\n", proto.Decl, proto.Skip)
		}
		buf.WriteString("\n")
	}

	buf.Write(wrappers.Bytes())

	source, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated bindings do not parse: %w", err)
	}
	return source, nil
}

// writeCgoWrapper writes the Go function calling proto through cgo.
func writeCgoWrapper(buf *bytes.Buffer, proto Prototype, name string) {
	used := make(map[string]bool)
	params := make([]string, 0, len(proto.Params))
	args := make([]string, 0, len(proto.Params))
	for i, param := range proto.Params {
		paramName := goParamName(param.Name, i, used)
		params = append(params, paramName+" "+param.Type.Go)
		if param.Type.Convert != "" {
			args = append(args, param.Type.Convert+"("+paramName+")")
		} else {
			args = append(args, paramName)
		}
	}

	var results string
	if !proto.Result.Void() {
		results = " " + proto.Result.Go
	}

	fmt.Fprintf(buf, "\n// %s calls %s.\n//\n//\t%s\n", name, proto.Name, proto.Decl)
	fmt.Fprintf(buf, "func %s(%s)%s {\n", name, strings.Join(params, ", "), results)

	call := fmt.Sprintf("C.%s(%s)", proto.Name, strings.Join(args, ", "))
	switch {
	case proto.Result.Void():
		fmt.Fprintf(buf, "\t%s\n", call)
	case proto.Result.Convert != "":
		fmt.Fprintf(buf, "\treturn %s(%s)\n", proto.Result.Go, call)
	default:
		fmt.Fprintf(buf, "\treturn %s\n", call)
	}
	buf.WriteString("}\n")
}

// goFuncName derives the exported Go name of a C function.
func goFuncName(name string) string {
	trimmed := name
	switch {
	case strings.HasPrefix(name, "espeak_ng_"):
		trimmed = "Ng" + strings.TrimPrefix(name, "espeak_ng_")
	case strings.HasPrefix(name, "espeak_"):
		trimmed = strings.TrimPrefix(name, "espeak_")
	}
	if trimmed == "" || trimmed == "Ng" || !isLetter(trimmed[0]) {
		trimmed = name
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}

// uniqueName returns name, or the capitalised C name when name is taken.
func uniqueName(name, cName string, used map[string]bool) string {
	if used[name] {
		name = strings.ToUpper(cName[:1]) + cName[1:]
	}
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

func goParamName(name string, index int, used map[string]bool) string {
	if name == "" || goReserved[name] || used[name] {
		name = fmt.Sprintf("p%d", index)
	}
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// getCCompiler returns the C compiler, honouring $CC
func getCCompiler() string {
	if cc := strings.TrimSpace(os.Getenv("CC")); cc != "" {
		return cc
	}
	return "cc"
}

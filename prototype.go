package espeakgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Prototype is an espeak function declaration found in preprocessed C
// source.
type Prototype struct {
	Name   string  // C function name
	Result CType   // Return type
	Params []Param // Parameters in declaration order
	Decl   string  // Normalised declaration, attributes removed

	// Skip is the reason the function cannot be wrapped through cgo, empty
	// when it can.
	Skip string
}

// Param is one function parameter. Name is empty for unnamed parameters.
type Param struct {
	Name string
	Type CType
}

// CType describes how a C type crosses the cgo boundary.
type CType struct {
	C       string // Normalised C spelling, e.g. "char *"
	Go      string // Go type used in wrapper signatures
	Convert string // cgo conversion for arguments; empty when Go is already the cgo type
}

// Void reports whether t is the plain void type.
func (t CType) Void() bool {
	return t.C == "void"
}

var (
	attributePattern = regexp.MustCompile(`\b(__attribute__|__asm__|__asm|__declspec)\s*\(`)
	prototypePattern = regexp.MustCompile(`^(.*?)\b(espeak\w*)\s*\((.*)\)$`)
	funcPointerName  = regexp.MustCompile(`\(\s*\*\s*(\w*)\s*\)`)
	arraySuffix      = regexp.MustCompile(`\[[^\]]*\]`)
)

var typeQualifiers = map[string]bool{
	"const": true, "__const": true, "volatile": true, "restrict": true,
	"__restrict": true, "__restrict__": true, "register": true,
	"extern": true, "static": true, "inline": true, "__inline": true,
	"__inline__": true, "__extension__": true,
}

var basicKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"signed": true, "unsigned": true, "float": true, "double": true, "_Bool": true,
}

var tagKeywords = map[string]bool{"struct": true, "enum": true, "union": true}

// basicScalars maps cgo names of the C arithmetic types to Go types.
var basicScalars = map[string]string{
	"char":      "byte",
	"schar":     "int8",
	"uchar":     "uint8",
	"short":     "int16",
	"ushort":    "uint16",
	"int":       "int32",
	"uint":      "uint32",
	"long":      "int64",
	"ulong":     "uint64",
	"longlong":  "int64",
	"ulonglong": "uint64",
	"float":     "float32",
	"double":    "float64",
}

// typedefScalars are library typedefs passed as Go integers.
var typedefScalars = map[string]string{
	"size_t":   "uint",
	"int8_t":   "int8",
	"int16_t":  "int16",
	"int32_t":  "int32",
	"int64_t":  "int64",
	"uint8_t":  "uint8",
	"uint16_t": "uint16",
	"uint32_t": "uint32",
	"uint64_t": "uint64",
}

// ParsePrototypes returns the espeak-prefixed function declarations in
// preprocessed C source, sorted by name. Typedefs and function
// definitions are ignored; the first declaration of a name wins.
func ParsePrototypes(source []byte) []Prototype {
	seen := make(map[string]bool)

	var prototypes []Prototype
	for _, statement := range topLevelStatements(string(source)) {
		proto, ok := parsePrototype(statement)
		if !ok || seen[proto.Name] {
			continue
		}
		seen[proto.Name] = true
		prototypes = append(prototypes, proto)
	}

	sort.Slice(prototypes, func(i, j int) bool {
		return prototypes[i].Name < prototypes[j].Name
	})
	return prototypes
}

// topLevelStatements splits C source into whitespace-normalised
// statements at file scope. Function bodies are dropped with their heads.
func topLevelStatements(source string) []string {
	var lines []string
	for _, line := range strings.Split(source, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines = append(lines, line)
		}
	}

	var (
		statements []string
		current    strings.Builder
		head       string
		depth      int
	)
	for _, r := range strings.Join(lines, "\n") {
		switch r {
		case '{':
			if depth == 0 {
				head = current.String()
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 && strings.HasSuffix(strings.TrimSpace(stripAttributes(head)), ")") {
				current.Reset()
				continue
			}
		case ';':
			if depth == 0 {
				if statement := normaliseSpace(current.String()); statement != "" {
					statements = append(statements, statement)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(r)
	}
	return statements
}

func parsePrototype(statement string) (Prototype, bool) {
	decl := normaliseSpace(stripAttributes(statement))
	if strings.HasPrefix(decl, "typedef ") {
		return Prototype{}, false
	}

	m := prototypePattern.FindStringSubmatch(decl)
	if m == nil {
		return Prototype{}, false
	}

	proto := Prototype{Name: m[2], Decl: decl + ";"}
	if strings.ContainsAny(m[1], "()") {
		proto.Skip = "returns a function pointer"
		return proto, true
	}

	result, _, ok := parseCType(m[1], false)
	if !ok {
		proto.Skip = fmt.Sprintf("unsupported return type %q", strings.TrimSpace(m[1]))
		return proto, true
	}
	proto.Result = result

	params, variadic, err := parseParams(m[3])
	switch {
	case err != nil:
		proto.Skip = err.Error()
	case variadic:
		proto.Skip = "variadic"
	}
	proto.Params = params
	return proto, true
}

func parseParams(list string) ([]Param, bool, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "void" {
		return nil, false, nil
	}

	var (
		params   []Param
		variadic bool
	)
	for _, part := range splitTopLevel(list) {
		part = strings.TrimSpace(part)
		switch {
		case part == "...":
			variadic = true
		case strings.Contains(part, "("):
			m := funcPointerName.FindStringSubmatch(part)
			if m == nil {
				return nil, false, fmt.Errorf("unsupported parameter %q", part)
			}
			// cgo represents every C function pointer as *[0]byte.
			params = append(params, Param{Name: m[1], Type: CType{C: part, Go: "*[0]byte"}})
		default:
			typ, name, ok := parseCType(part, true)
			if !ok || typ.Void() {
				return nil, false, fmt.Errorf("unsupported parameter %q", part)
			}
			params = append(params, Param{Name: name, Type: typ})
		}
	}
	return params, variadic, nil
}

// parseCType parses a C type, with a trailing parameter name when named
// is set, into its cgo representation.
func parseCType(spelling string, named bool) (CType, string, bool) {
	pointers := len(arraySuffix.FindAllString(spelling, -1))
	spelling = arraySuffix.ReplaceAllString(spelling, " ")
	pointers += strings.Count(spelling, "*")

	var words []string
	for _, word := range strings.Fields(strings.ReplaceAll(spelling, "*", " ")) {
		if !typeQualifiers[word] {
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return CType{}, "", false
	}

	var name string
	if named {
		var ok bool
		if words, name, ok = splitDeclarator(words); !ok {
			return CType{}, "", false
		}
	}

	var base, scalar string
	switch {
	case tagKeywords[words[0]]:
		if len(words) != 2 {
			return CType{}, "", false
		}
		base = "C." + words[0] + "_" + words[1]
	case allBasic(words):
		cgoName, ok := basicType(words)
		if !ok {
			return CType{}, "", false
		}
		if cgoName == "void" {
			base = "void"
		} else {
			base = "C." + cgoName
			scalar = basicScalars[cgoName]
		}
	case len(words) == 1:
		base = "C." + words[0]
		scalar = typedefScalars[words[0]]
	default:
		return CType{}, "", false
	}

	typ := CType{C: strings.TrimSpace(strings.Join(words, " ") + " " + strings.Repeat("*", pointers))}
	switch {
	case pointers > 0 && base == "void":
		typ.Go = strings.Repeat("*", pointers-1) + "unsafe.Pointer"
	case pointers > 0:
		typ.Go = strings.Repeat("*", pointers) + base
	case base == "void":
	case scalar != "":
		typ.Go = scalar
		typ.Convert = base
	default:
		typ.Go = base
	}
	return typ, name, true
}

// splitDeclarator separates a trailing parameter name from type words.
func splitDeclarator(words []string) ([]string, string, bool) {
	if tagKeywords[words[0]] {
		switch len(words) {
		case 2:
			return words, "", true
		case 3:
			return words[:2], words[2], true
		default:
			return nil, "", false
		}
	}

	last := words[len(words)-1]
	if len(words) > 1 && !basicKeywords[last] {
		return words[:len(words)-1], last, true
	}
	return words, "", true
}

func allBasic(words []string) bool {
	for _, word := range words {
		if !basicKeywords[word] {
			return false
		}
	}
	return true
}

// basicType returns the cgo name of an arithmetic type spelled with C
// keywords, e.g. "unsigned long int" -> "ulong".
func basicType(words []string) (string, bool) {
	var (
		unsigned, signed bool
		longs            int
		kind             string
	)
	for _, word := range words {
		switch word {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "long":
			longs++
		case "int":
			if kind != "" && kind != "short" {
				return "", false
			}
			if kind == "" {
				kind = "int"
			}
		case "short":
			if kind != "" && kind != "int" {
				return "", false
			}
			kind = "short"
		default:
			if kind != "" {
				return "", false
			}
			kind = word
		}
	}

	if longs > 0 {
		if kind != "" && kind != "int" {
			return "", false
		}
		switch longs {
		case 1:
			kind = "long"
		case 2:
			kind = "longlong"
		default:
			return "", false
		}
	}
	if kind == "" && (unsigned || signed) {
		kind = "int"
	}

	if unsigned && signed {
		return "", false
	}
	switch kind {
	case "void", "float", "double":
		if unsigned || signed {
			return "", false
		}
		return kind, true
	case "char":
		switch {
		case unsigned:
			return "uchar", true
		case signed:
			return "schar", true
		}
		return "char", true
	case "short", "int", "long", "longlong":
		if unsigned {
			return "u" + kind, true
		}
		return kind, true
	}
	return "", false
}

// stripAttributes removes GNU attributes, asm labels and declspecs.
func stripAttributes(s string) string {
	for {
		loc := attributePattern.FindStringIndex(s)
		if loc == nil {
			return s
		}
		end := matchingParen(s, loc[1]-1)
		if end < 0 {
			return s[:loc[0]]
		}
		s = s[:loc[0]] + " " + s[end+1:]
	}
}

// matchingParen returns the index of the parenthesis closing the one at
// open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits a parameter list on commas outside parentheses.
func splitTopLevel(list string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, list[start:])
}

func normaliseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package espeakgen

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Directive formats.
const (
	FormatCgo     = "cgo"
	FormatLDFlags = "ldflags"
	FormatCargo   = "cargo"
)

// ErrUnknownFormat is returned by Emit for an unrecognised format name.
var ErrUnknownFormat = errors.New("unknown directive format")

// LDFlags renders the linker flags for d.
//
// Static libraries are wrapped in -Wl,-Bstatic / -Wl,-Bdynamic so the
// system linker picks the archive even when a shared object sits next to
// it. Library order is preserved.
func LDFlags(d *LinkDirectives) []string {
	if d == nil {
		return nil
	}

	var flags []string
	for _, path := range d.SearchPaths {
		flags = append(flags, "-L"+path)
	}

	static := false
	for _, lib := range d.Libraries {
		if lib.Static != static {
			if lib.Static {
				flags = append(flags, "-Wl,-Bstatic")
			} else {
				flags = append(flags, "-Wl,-Bdynamic")
			}
			static = lib.Static
		}
		flags = append(flags, "-l"+lib.Name)
	}
	if static {
		flags = append(flags, "-Wl,-Bdynamic")
	}

	return flags
}

// CFlags renders the include flags for d.
func CFlags(d *LinkDirectives) []string {
	if d == nil {
		return nil
	}
	flags := make([]string, 0, len(d.IncludePaths))
	for _, path := range d.IncludePaths {
		flags = append(flags, "-I"+path)
	}
	return flags
}

// FormatCgoDirectives renders d as cgo preamble lines.
func FormatCgoDirectives(d *LinkDirectives) []string {
	var lines []string
	if cflags := CFlags(d); len(cflags) > 0 {
		lines = append(lines, "#cgo CFLAGS: "+strings.Join(cflags, " "))
	}
	if ldflags := LDFlags(d); len(ldflags) > 0 {
		lines = append(lines, "#cgo LDFLAGS: "+strings.Join(ldflags, " "))
	}
	return lines
}

// FormatCargoDirectives renders d in Cargo build-script syntax.
func FormatCargoDirectives(d *LinkDirectives) []string {
	if d == nil {
		return nil
	}

	var lines []string
	for _, path := range d.SearchPaths {
		lines = append(lines, "cargo:rustc-link-search=native="+path)
	}
	for _, lib := range d.Libraries {
		if lib.Static {
			lines = append(lines, "cargo:rustc-link-lib=static="+lib.Name)
		} else {
			lines = append(lines, "cargo:rustc-link-lib="+lib.Name)
		}
	}
	for _, input := range d.RerunIfChanged {
		lines = append(lines, "cargo:rerun-if-changed="+input)
	}
	return lines
}

// FormatDirectives renders d in the named format.
func FormatDirectives(format string, d *LinkDirectives) ([]string, error) {
	switch format {
	case FormatCgo, "":
		return FormatCgoDirectives(d), nil
	case FormatLDFlags:
		flags := LDFlags(d)
		if len(flags) == 0 {
			return nil, nil
		}
		return []string{strings.Join(flags, " ")}, nil
	case FormatCargo:
		return FormatCargoDirectives(d), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Emit writes d to w in the named format, one directive per line.
func Emit(w io.Writer, format string, d *LinkDirectives) error {
	lines, err := FormatDirectives(format, d)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

package espeakgen

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Supported target architectures.
const (
	ArchAArch64 = "aarch64"
	ArchX86     = "x86"
	ArchX86_64  = "x86_64"
)

// DefaultGCCRoot holds one directory per target triple, each containing one
// directory per installed gcc version.
const DefaultGCCRoot = "/usr/lib/gcc"

// DefaultGCCVersion is the toolchain version used when none is configured
// or discovered.
const DefaultGCCVersion = "11"

// ErrUnsupportedArch is returned for any architecture outside the known set.
var ErrUnsupportedArch = errors.New("unsupported architecture")

var archAliases = map[string]string{
	ArchAArch64: ArchAArch64,
	"arm64":     ArchAArch64,
	ArchX86:     ArchX86,
	"386":       ArchX86,
	"i386":      ArchX86,
	"i686":      ArchX86,
	ArchX86_64:  ArchX86_64,
	"amd64":     ArchX86_64,
}

// x86 shares the x86_64 multiarch directory.
var multiarchTriples = map[string]string{
	ArchAArch64: "aarch64-linux-gnu",
	ArchX86:     "x86_64-linux-gnu",
	ArchX86_64:  "x86_64-linux-gnu",
}

// NormalizeArch maps an architecture identifier (including GOARCH names) to
// one of ArchAArch64, ArchX86 or ArchX86_64.
func NormalizeArch(arch string) (string, error) {
	if normalized, ok := archAliases[strings.ToLower(strings.TrimSpace(arch))]; ok {
		return normalized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedArch, arch)
}

// MultiarchTriple returns the Debian multiarch triple for arch.
func MultiarchTriple(arch string) (string, error) {
	normalized, err := NormalizeArch(arch)
	if err != nil {
		return "", err
	}
	return multiarchTriples[normalized], nil
}

// SearchPaths returns the native library search directories for arch, in
// the order they are passed to the linker.
//
// One /usr/lib/gcc/<triple>/<version> entry is produced per toolchain
// version; with no versions DefaultGCCVersion is used. An unsupported arch
// returns ErrUnsupportedArch and no paths.
//
// # Example
//
//	paths, _ := SearchPaths("aarch64")
//	// [/usr/lib/aarch64-linux-gnu /usr/lib/gcc/aarch64-linux-gnu/11 /usr/lib /usr/local/lib]
func SearchPaths(arch string, gccVersions ...string) ([]string, error) {
	triple, err := MultiarchTriple(arch)
	if err != nil {
		return nil, err
	}

	return searchPaths(triple, DefaultGCCRoot, gccVersions), nil
}

func searchPaths(triple, gccRoot string, gccVersions []string) []string {
	if len(gccVersions) == 0 {
		gccVersions = []string{DefaultGCCVersion}
	}

	paths := []string{filepath.Join("/usr/lib", triple)}
	for _, version := range gccVersions {
		paths = append(paths, filepath.Join(gccRoot, triple, version))
	}
	paths = append(paths, "/usr/lib", "/usr/local/lib")

	return uniqueStrings(paths)
}

package espeakgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Generator names.
const (
	GeneratorCForGo = "c-for-go"
	GeneratorCgo    = "cgo"
)

const (
	bindingsDirName = "bindings"
	stampFileName   = ".bindings.stamp"
)

// ErrUnknownGenerator is returned for an unrecognised generator name.
var ErrUnknownGenerator = errors.New("unknown binding generator")

// BindingRequest is the input of a binding generator.
type BindingRequest struct {
	Header      string          // Absolute path of the wrapper header
	OutDir      string          // Directory receiving the generated files
	PackageName string          // Go package name of the bindings
	Directives  *LinkDirectives // Linker and include directives
}

// Generator translates the wrapper header into Go bindings.
//
// Generate must be deterministic: the same header, directives and
// generator version always produce byte-identical files.
type Generator interface {
	// Name returns the configuration name of this generator.
	Name() string

	// Version identifies the generator build. It is part of the change
	// tracking fingerprint.
	Version(ctx context.Context, config *Config) string

	// Generate writes the bindings and returns the generated file paths.
	Generate(ctx context.Context, config *Config, req *BindingRequest, result *Result) ([]string, error)
}

// generators maps names to the built-in generators.
var generators = map[string]Generator{
	GeneratorCForGo: &CForGoGenerator{},
	GeneratorCgo:    &CgoGenerator{},
}

// GeneratorFor returns the generator registered under name.
func GeneratorFor(name string) (Generator, error) {
	if name == "" {
		name = GeneratorCForGo
	}
	if generator, ok := generators[name]; ok {
		return generator, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
}

// GenerateBindings runs the configured generator against the wrapper header.
//
// A fingerprint of the header path and content, the generator name and
// version, the package name and the directives is compared with the one recorded by the
// previous run. When they match and every recorded file still exists, the
// generator is not invoked and result.Skipped is set.
//
// Any failure (missing header, generator failure) is returned and leaves
// the previous stamp untouched, writing a new stamp only after success.
func GenerateBindings(ctx context.Context, config *Config, directives *LinkDirectives, result *Result) error {
	generator, err := GeneratorFor(config.Generator)
	if err != nil {
		return err
	}

	if checker, ok := generator.(ToolChecker); ok {
		if missing := MissingTools(checker.RequiredTools()); len(missing) > 0 {
			result.MissingTools = append(result.MissingTools, missing...)
			return checker.CheckTools()
		}
	}

	header, err := filepath.Abs(config.headerPath())
	if err != nil {
		return fmt.Errorf("failed to resolve header path: %w", err)
	}
	content, err := os.ReadFile(header)
	if err != nil {
		return fmt.Errorf("failed to read wrapper header: %w", err)
	}

	req := &BindingRequest{
		Header:      header,
		OutDir:      filepath.Join(config.OutDir, bindingsDirName),
		PackageName: config.packageName(),
		Directives:  directives,
	}

	fingerprint := bindingFingerprint(content, generator.Name(), generator.Version(ctx, config), req)
	stampPath := filepath.Join(config.OutDir, stampFileName)

	if files, ok := readStamp(stampPath, fingerprint); ok {
		config.logger().Info("bindings up to date", "generator", generator.Name(), "header", header)
		result.Steps = append(result.Steps, "bindings (cached)")
		result.Bindings = files
		result.Skipped = true
		return nil
	}

	result.Steps = append(result.Steps, "bindings")
	config.logger().Info("generating bindings", "generator", generator.Name(), "header", header)

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create bindings directory: %w", err)
	}

	files, err := generator.Generate(ctx, config, req, result)
	if err != nil {
		return fmt.Errorf("unable to generate bindings: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("unable to generate bindings: %s produced no files", generator.Name())
	}

	sort.Strings(files)
	if err := writeStamp(stampPath, fingerprint, files); err != nil {
		return fmt.Errorf("couldn't write bindings stamp: %w", err)
	}

	result.Bindings = files
	return nil
}

// CleanBindings removes generated bindings and the change tracking stamp.
func CleanBindings(config *Config) error {
	for _, path := range []string{
		filepath.Join(config.OutDir, bindingsDirName),
		filepath.Join(config.OutDir, stampFileName),
	} {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}

func bindingFingerprint(header []byte, name, version string, req *BindingRequest) string {
	h := sha256.New()
	for _, part := range []string{
		string(header),
		req.Header,
		name,
		version,
		req.PackageName,
		strings.Join(CFlags(req.Directives), " "),
		strings.Join(LDFlags(req.Directives), " "),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// readStamp reports the recorded files when the stamp at path matches
// fingerprint and all of them exist.
func readStamp(path, fingerprint string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	lines := splitOutput(data)
	if len(lines) < 2 || lines[0] != fingerprint {
		return nil, false
	}

	files := lines[1:]
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return nil, false
		}
	}
	return files, true
}

func writeStamp(path, fingerprint string, files []string) error {
	content := fingerprint + "\n" + strings.Join(files, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

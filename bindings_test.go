package espeakgen

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const preprocessedHeader = `typedef int espeak_ERROR;
typedef int (t_espeak_callback)(short*, int, void*);
int espeak_Initialize(int output, int buflength, const char *path, int options);
espeak_ERROR espeak_Synth(const void *text, unsigned int size);
espeak_ERROR espeak_Cancel(void);
int espeak_ng_InitializePath(const char *path);
__attribute__((visibility("default"))) void espeak_SetUriCallback(int (*UriCallback)(int, const char *, const char *));
int espeak_Log(const char *format, ...);
static inline int espeak_Twice(int x) { return 2 * x; }
`

func writeHeader(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "wrapper.h")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	return path
}

func cgoConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Arch:        "x86_64",
		OutDir:      filepath.Join(dir, "out"),
		Header:      writeHeader(t, dir, "#include <espeak-ng/speak_lib.h>\n"),
		Generator:   GeneratorCgo,
		PackageName: "espeak",
	}
}

func TestDeclaredFunctions(t *testing.T) {
	functions := DeclaredFunctions([]byte(preprocessedHeader))

	expected := []string{"espeak_Cancel", "espeak_Initialize", "espeak_Log", "espeak_SetUriCallback", "espeak_Synth", "espeak_ng_InitializePath"}
	if strings.Join(functions, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, functions)
	}
}

func TestGenerateBindingsCgo(t *testing.T) {
	t.Setenv("CC", "")
	stubLookPath(t, "cc")
	fake := &fakeCommands{stdout: map[string]string{"cc": preprocessedHeader}}
	installFakeCommands(t, fake)

	config := cgoConfig(t)
	directives := &LinkDirectives{Libraries: SelectLibraries(false, nil)}
	result := &Result{}

	if err := GenerateBindings(context.Background(), config, directives, result); err != nil {
		t.Fatalf("GenerateBindings returned error: %v", err)
	}
	if result.Skipped {
		t.Error("first generation must not be skipped")
	}
	if len(result.Bindings) != 1 {
		t.Fatalf("expected one binding file, got %v", result.Bindings)
	}

	source, err := os.ReadFile(result.Bindings[0])
	if err != nil {
		t.Fatalf("failed to read bindings: %v", err)
	}
	for _, want := range []string{
		"// Code generated by espeakgen; DO NOT EDIT.",
		"package espeak",
		"#cgo LDFLAGS: -lespeak-ng",
		`#include "` + config.Header + `"`,
		`import "C"`,
		`import "unsafe"`,
		`"espeak_Synth",`,
		"func Initialize(output int32, buflength int32, path *C.char, options int32) int32 {",
		"return int32(C.espeak_Initialize(C.int(output), C.int(buflength), path, C.int(options)))",
		"func Synth(text unsafe.Pointer, size uint32) C.espeak_ERROR {",
		"return C.espeak_Synth(text, C.uint(size))",
		"func Cancel() C.espeak_ERROR {",
		"func NgInitializePath(path *C.char) int32 {",
		"func SetUriCallback(UriCallback *[0]byte) {",
		"\tC.espeak_SetUriCallback(UriCallback)\n",
		"int espeak_Log(const char *format, ...); // variadic",
	} {
		if !bytes.Contains(source, []byte(want)) {
			t.Errorf("bindings missing %q:\n%s", want, source)
		}
	}
	for _, unwanted := range []string{"func Log(", `"espeak_Log",`, "Twice"} {
		if bytes.Contains(source, []byte(unwanted)) {
			t.Errorf("bindings must not contain %q:\n%s", unwanted, source)
		}
	}
}

func TestGenerateBindingsChangeTracking(t *testing.T) {
	t.Setenv("CC", "")
	stubLookPath(t, "cc")
	fake := &fakeCommands{stdout: map[string]string{"cc": preprocessedHeader}}
	installFakeCommands(t, fake)

	config := cgoConfig(t)
	directives := &LinkDirectives{Libraries: SelectLibraries(false, nil)}

	generate := func() *Result {
		t.Helper()
		result := &Result{}
		if err := GenerateBindings(context.Background(), config, directives, result); err != nil {
			t.Fatalf("GenerateBindings returned error: %v", err)
		}
		return result
	}

	generate()
	if len(fake.calls) != 1 {
		t.Fatalf("expected one preprocessor run, got %d", len(fake.calls))
	}

	if result := generate(); !result.Skipped {
		t.Error("unchanged header must not regenerate")
	}
	if len(fake.calls) != 1 {
		t.Errorf("unchanged header ran the generator again: %v", fake.commandNames())
	}

	if err := os.WriteFile(config.Header, []byte("#include <espeak-ng/espeak_ng.h>\n"), 0o600); err != nil {
		t.Fatalf("failed to update header: %v", err)
	}
	if result := generate(); result.Skipped {
		t.Error("changed header must regenerate")
	}
	if len(fake.calls) != 2 {
		t.Errorf("expected a second preprocessor run, got %d", len(fake.calls))
	}

	// Changed link flags invalidate the stamp too.
	directives = &LinkDirectives{Libraries: SelectLibraries(true, nil)}
	if result := generate(); result.Skipped {
		t.Error("changed directives must regenerate")
	}

	// Same content at another path must regenerate: the path is in the output.
	moved := writeHeader(t, t.TempDir(), "#include <espeak-ng/espeak_ng.h>\n")
	oldHeader := config.Header
	config.Header = moved
	result := generate()
	if result.Skipped {
		t.Error("moved header must regenerate")
	}
	source, err := os.ReadFile(result.Bindings[0])
	if err != nil {
		t.Fatalf("failed to read bindings: %v", err)
	}
	if !bytes.Contains(source, []byte(`#include "`+moved+`"`)) || bytes.Contains(source, []byte(oldHeader)) {
		t.Errorf("bindings must include the moved header:\n%s", source)
	}

	// A deleted output invalidates the stamp.
	if err := os.Remove(filepath.Join(config.OutDir, bindingsDirName, cgoBindingsFile)); err != nil {
		t.Fatalf("failed to remove bindings: %v", err)
	}
	if result := generate(); result.Skipped {
		t.Error("missing output must regenerate")
	}
}

func TestGenerateBindingsDeterministic(t *testing.T) {
	t.Setenv("CC", "")
	stubLookPath(t, "cc")
	installFakeCommands(t, &fakeCommands{stdout: map[string]string{"cc": preprocessedHeader}})

	config := cgoConfig(t)
	directives := staticDirectives()

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		if err := CleanBindings(config); err != nil {
			t.Fatalf("CleanBindings returned error: %v", err)
		}
		result := &Result{}
		if err := GenerateBindings(context.Background(), config, directives, result); err != nil {
			t.Fatalf("GenerateBindings returned error: %v", err)
		}
		data, err := os.ReadFile(result.Bindings[0])
		if err != nil {
			t.Fatalf("failed to read bindings: %v", err)
		}
		outputs = append(outputs, data)
	}

	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Errorf("bindings differ between runs:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

func TestGenerateBindingsFailures(t *testing.T) {
	t.Setenv("CC", "")

	t.Run("missing header", func(t *testing.T) {
		stubLookPath(t, "cc")
		config := cgoConfig(t)
		config.Header = filepath.Join(t.TempDir(), "missing.h")

		if err := GenerateBindings(context.Background(), config, nil, &Result{}); err == nil {
			t.Fatal("expected an error for a missing header")
		}
	})

	t.Run("no declarations", func(t *testing.T) {
		stubLookPath(t, "cc")
		installFakeCommands(t, &fakeCommands{stdout: map[string]string{"cc": "typedef int foo;\n"}})
		config := cgoConfig(t)

		err := GenerateBindings(context.Background(), config, nil, &Result{})
		if err == nil || !strings.Contains(err.Error(), "declares no espeak functions") {
			t.Fatalf("expected a parse failure, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(config.OutDir, stampFileName)); !os.IsNotExist(statErr) {
			t.Error("a failed generation must not write a stamp")
		}
	})

	t.Run("preprocessor failure", func(t *testing.T) {
		stubLookPath(t, "cc")
		installFakeCommands(t, &fakeCommands{exitCode: func([]string) int { return 1 }})

		var stepErr *StepError
		err := GenerateBindings(context.Background(), cgoConfig(t), nil, &Result{})
		if !errors.As(err, &stepErr) {
			t.Fatalf("expected *StepError, got %v", err)
		}
	})

	t.Run("missing tool", func(t *testing.T) {
		stubLookPath(t)
		result := &Result{}
		if err := GenerateBindings(context.Background(), cgoConfig(t), nil, result); err == nil {
			t.Fatal("expected an error when no C preprocessor is available")
		}
		if len(result.MissingTools) != 1 || result.MissingTools[0] != "cc" {
			t.Errorf("expected cc to be reported missing, got %v", result.MissingTools)
		}
	})

	t.Run("unknown generator", func(t *testing.T) {
		config := cgoConfig(t)
		config.Generator = "bindgen"
		if err := GenerateBindings(context.Background(), config, nil, &Result{}); !errors.Is(err, ErrUnknownGenerator) {
			t.Fatalf("expected ErrUnknownGenerator, got %v", err)
		}
	})
}

func TestCForGoGenerator(t *testing.T) {
	t.Setenv("CFORGO", "")
	stubLookPath(t, "c-for-go")
	fake := &fakeCommands{stdout: map[string]string{
		"go": "/usr/bin/c-for-go: go1.25.1\n\tpath\tgithub.com/xlab/c-for-go\n\tmod\tgithub.com/xlab/c-for-go\tv1.3.0\th1:abc=\n",
	}}
	installFakeCommands(t, fake)

	config := cgoConfig(t)
	config.Generator = GeneratorCForGo

	// c-for-go writes the package directory; the fake does not.
	pkgDir := filepath.Join(config.OutDir, bindingsDirName, "espeak")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("failed to create package directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "espeak.go"), []byte("package espeak\n"), 0o600); err != nil {
		t.Fatalf("failed to write bindings: %v", err)
	}

	result := &Result{}
	if err := GenerateBindings(context.Background(), config, staticDirectives(), result); err != nil {
		t.Fatalf("GenerateBindings returned error: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected go version and c-for-go calls, got %v", fake.commandNames())
	}
	manifestPath := filepath.Join(config.OutDir, bindingsDirName, cforgoManifestName)
	run := fake.calls[1]
	expected := []string{"c-for-go", "-nostamp", "-out", filepath.Join(config.OutDir, bindingsDirName), manifestPath}
	if strings.Join(run, " ") != strings.Join(expected, " ") {
		t.Errorf("unexpected c-for-go invocation %v", run)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	var manifest cforgoManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid YAML: %v", err)
	}
	if manifest.Generator.PackageName != "espeak" {
		t.Errorf("unexpected package name %q", manifest.Generator.PackageName)
	}
	if manifest.Parser.SourcesPaths[0] != config.Header {
		t.Errorf("manifest must parse the wrapper header, got %v", manifest.Parser.SourcesPaths)
	}
	if manifest.Translator.Rules["global"][0] != (cforgoRule{Action: "accept", From: "^espeak"}) {
		t.Errorf("unexpected first global rule %+v", manifest.Translator.Rules["global"][0])
	}
	if len(manifest.Generator.FlagGroups) != 1 || manifest.Generator.FlagGroups[0].Name != "LDFLAGS" {
		t.Errorf("expected one LDFLAGS group, got %+v", manifest.Generator.FlagGroups)
	}

	if len(result.Bindings) != 1 || filepath.Base(result.Bindings[0]) != "espeak.go" {
		t.Errorf("unexpected bindings %v", result.Bindings)
	}
}

func TestParseModuleVersion(t *testing.T) {
	if v := parseModuleVersion([]byte("x: go1.25\n\tmod\tgithub.com/xlab/c-for-go\tv1.2.3\th1:x\n")); v != "v1.2.3" {
		t.Errorf("expected v1.2.3, got %s", v)
	}
	if v := parseModuleVersion([]byte("garbage")); v != "unknown" {
		t.Errorf("expected unknown, got %s", v)
	}
}

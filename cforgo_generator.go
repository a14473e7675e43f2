package espeakgen

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const cforgoManifestName = "espeak.yml"

// CForGoGenerator translates the header with the external c-for-go tool.
//
// A manifest is written next to the output with a fixed rule set: accept
// every espeak-prefixed declaration, export the Go names, and expand
// #define and enum constants. c-for-go is run with -nostamp so the output
// depends on the inputs only.
type CForGoGenerator struct{}

// cforgoManifest mirrors the c-for-go YAML manifest.
type cforgoManifest struct {
	Generator  cforgoGenerator  `yaml:"GENERATOR"`
	Parser     cforgoParser     `yaml:"PARSER"`
	Translator cforgoTranslator `yaml:"TRANSLATOR"`
}

type cforgoGenerator struct {
	PackageName        string            `yaml:"PackageName"`
	PackageDescription string            `yaml:"PackageDescription"`
	PackageLicense     string            `yaml:"PackageLicense"`
	Includes           []string          `yaml:"Includes"`
	FlagGroups         []cforgoFlagGroup `yaml:"FlagGroups,omitempty"`
}

type cforgoFlagGroup struct {
	Name  string   `yaml:"name"`
	Flags []string `yaml:"flags"`
}

type cforgoParser struct {
	IncludePaths []string `yaml:"IncludePaths"`
	SourcesPaths []string `yaml:"SourcesPaths"`
}

type cforgoTranslator struct {
	ConstRules map[string]string       `yaml:"ConstRules"`
	Rules      map[string][]cforgoRule `yaml:"Rules"`
}

type cforgoRule struct {
	Action    string `yaml:"action,omitempty"`
	From      string `yaml:"from,omitempty"`
	To        string `yaml:"to,omitempty"`
	Transform string `yaml:"transform,omitempty"`
}

// Name returns the generator name
func (g *CForGoGenerator) Name() string {
	return GeneratorCForGo
}

// RequiredTools returns the tools needed for c-for-go generation
func (g *CForGoGenerator) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: getCForGoPath(), Purpose: "Translates C headers into Go bindings"},
	}
}

// CheckTools verifies that c-for-go is available
func (g *CForGoGenerator) CheckTools() error {
	return CheckRequiredTools(g.RequiredTools())
}

// Version reads the module version embedded in the c-for-go binary with
// `go version -m`. Returns "unknown" when it cannot be determined.
func (g *CForGoGenerator) Version(ctx context.Context, config *Config) string {
	path, err := execLookPath(getCForGoPath())
	if err != nil {
		return "unknown"
	}

	out, err := command{step: "c-for-go version", name: "go", args: []string{"version", "-m", path}}.output(ctx, config, &Result{})
	if err != nil {
		return "unknown"
	}
	return parseModuleVersion(out)
}

// Generate writes the manifest and runs c-for-go
func (g *CForGoGenerator) Generate(ctx context.Context, config *Config, req *BindingRequest, result *Result) ([]string, error) {
	manifestPath := filepath.Join(req.OutDir, cforgoManifestName)

	data, err := yaml.Marshal(g.manifest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode c-for-go manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write c-for-go manifest: %w", err)
	}

	args := []string{"-nostamp", "-out", req.OutDir, manifestPath}
	if err := (command{step: "c-for-go", dir: req.OutDir, name: getCForGoPath(), args: args}).run(ctx, config, result); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(req.OutDir, req.PackageName, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob generated bindings: %v", err)
	}
	return matches, nil
}

func (g *CForGoGenerator) manifest(req *BindingRequest) *cforgoManifest {
	manifest := &cforgoManifest{
		Generator: cforgoGenerator{
			PackageName:        req.PackageName,
			PackageDescription: "Package " + req.PackageName + " provides Go bindings for espeak-ng.",
			PackageLicense:     "THE AUTOGENERATED LICENSE. ALL THE RIGHTS ARE RESERVED BY ROBOTS.",
			Includes:           []string{req.Header},
		},
		Parser: cforgoParser{
			IncludePaths: uniqueStrings(append(append([]string{filepath.Dir(req.Header)}, includePaths(req.Directives)...), "/usr/include")),
			SourcesPaths: []string{req.Header},
		},
		Translator: cforgoTranslator{
			ConstRules: map[string]string{
				"defines": "expand",
				"enum":    "expand",
			},
			Rules: map[string][]cforgoRule{
				"global": {
					{Action: "accept", From: "^espeak"},
					{Action: "accept", From: "^t_espeak"},
					{Action: "replace", From: "^espeak_ng_", To: "Ng"},
					{Action: "replace", From: "^espeak", To: ""},
					{Transform: "export"},
				},
				"private": {
					{Transform: "unexport"},
				},
				"post-global": {
					{Action: "replace", From: "_$"},
				},
			},
		},
	}

	if cflags := CFlags(req.Directives); len(cflags) > 0 {
		manifest.Generator.FlagGroups = append(manifest.Generator.FlagGroups, cforgoFlagGroup{Name: "CFLAGS", Flags: cflags})
	}
	if ldflags := LDFlags(req.Directives); len(ldflags) > 0 {
		manifest.Generator.FlagGroups = append(manifest.Generator.FlagGroups, cforgoFlagGroup{Name: "LDFLAGS", Flags: ldflags})
	}

	return manifest
}

func includePaths(d *LinkDirectives) []string {
	if d == nil {
		return nil
	}
	return d.IncludePaths
}

// parseModuleVersion extracts the main module version from
// `go version -m` output:
//
//	/home/me/go/bin/c-for-go: go1.25.1
//		path	github.com/xlab/c-for-go
//		mod	github.com/xlab/c-for-go	v1.3.0	h1:...
func parseModuleVersion(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 3 && fields[0] == "mod" {
			return fields[2]
		}
	}
	return "unknown"
}

// getCForGoPath returns the c-for-go executable, honouring $CFORGO
func getCForGoPath() string {
	if path := os.Getenv("CFORGO"); path != "" {
		return path
	}
	return "c-for-go"
}

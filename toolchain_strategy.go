package espeakgen

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var gccVersionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// ToolchainStrategy links the static library set like SystemStrategy, with
// one gcc library directory per toolchain version instead of the fixed 11.
//
// Versions come from the numeric entries of Config.Toolchain.GCCVersions
// when there are any, otherwise from
// the version directories found under <GCCRoot>/<triple>, newest first.
// When neither yields anything DefaultGCCVersion is used.
//
// The strategy always links statically; Config.Static is ignored.
type ToolchainStrategy struct{}

// Name returns the strategy name
func (s *ToolchainStrategy) Name() string {
	return StrategyToolchain
}

// Provision resolves the directives; nothing is fetched or built
func (s *ToolchainStrategy) Provision(ctx context.Context, config *Config) (*Result, error) {
	return runCommonProvision(ctx, config, s.Name(), CommonProvisionSteps{
		FetchFunc:     noStep,
		ConfigureFunc: noStep,
		BuildFunc:     s.logVersions,
		LinkFunc:      s.Directives,
	})
}

// Clean is a no-op; the strategy creates nothing
func (s *ToolchainStrategy) Clean(context.Context, *Config) error {
	return nil
}

func (s *ToolchainStrategy) logVersions(_ context.Context, config *Config, result *Result) error {
	triple, err := MultiarchTriple(config.Arch)
	if err != nil {
		return err
	}
	versions := s.versions(config, triple)
	config.logger().Info("resolved toolchain versions", "triple", triple, "versions", versions)
	if config.Verbose {
		result.Output = append(result.Output, "gcc versions: "+strings.Join(versions, ", "))
	}
	return nil
}

// Directives resolves the static directives with per-version gcc paths
func (s *ToolchainStrategy) Directives(config *Config) (*LinkDirectives, error) {
	triple, err := MultiarchTriple(config.Arch)
	if err != nil {
		return nil, err
	}

	static := *config
	static.Static = true
	return systemDirectives(&static, s.root(config), s.versions(config, triple))
}

func (s *ToolchainStrategy) root(config *Config) string {
	if config.Toolchain.GCCRoot != "" {
		return config.Toolchain.GCCRoot
	}
	return DefaultGCCRoot
}

func (s *ToolchainStrategy) versions(config *Config, triple string) []string {
	if configured := validGCCVersions(config.Toolchain.GCCVersions); len(configured) > 0 {
		return configured
	}
	if found := DiscoverGCCVersions(s.root(config), triple); len(found) > 0 {
		return found
	}
	return []string{DefaultGCCVersion}
}

// validGCCVersions drops entries that are not dotted numeric versions.
func validGCCVersions(versions []string) []string {
	var valid []string
	for _, version := range versions {
		version = strings.TrimSpace(version)
		if gccVersionPattern.MatchString(version) {
			valid = append(valid, version)
		}
	}
	return valid
}

// DiscoverGCCVersions lists the gcc version directories under
// root/triple, newest first. A missing directory yields no versions.
func DiscoverGCCVersions(root, triple string) []string {
	entries, err := os.ReadDir(filepath.Join(root, triple))
	if err != nil {
		return nil
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && gccVersionPattern.MatchString(entry.Name()) {
			versions = append(versions, entry.Name())
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
	return versions
}

// compareVersions compares dotted numeric versions component by component.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

package espeakgen

// Library is a native library the host binary links against.
type Library struct {
	Name   string
	Static bool
}

// LinkDirectives describes how the host build links espeak-ng.
//
// The zero value links nothing. Directives are consumed by the emitters in
// directive.go and by the binding generators.
type LinkDirectives struct {
	SearchPaths    []string  // -L directories, in order
	Libraries      []Library // libraries, linked in order
	IncludePaths   []string  // -I directories for the binding generator
	RerunIfChanged []string  // inputs whose change must trigger regeneration
}

// DynamicLibrary is the only library linked when static linking is off.
const DynamicLibrary = "espeak-ng"

// StaticLibraries is the declared static link set. The C++ runtime and the
// audio libraries espeak-ng was built against precede the engine itself.
var StaticLibraries = []string{
	"stdc++",
	"sonic",
	"pthread",
	"pcaudio",
	"asound",
	"espeak-ng",
}

// SelectLibraries returns the libraries to link.
//
// With static set, every name in names (StaticLibraries when names is
// empty) is linked statically in the given order. Otherwise exactly one
// dynamic DynamicLibrary is returned.
func SelectLibraries(static bool, names []string) []Library {
	if !static {
		return []Library{{Name: DynamicLibrary}}
	}

	if len(names) == 0 {
		names = StaticLibraries
	}

	libs := make([]Library, 0, len(names))
	for _, name := range names {
		libs = append(libs, Library{Name: name, Static: true})
	}
	return libs
}

// systemDirectives resolves the directives shared by the system and
// toolchain strategies. Search paths are only emitted for static linking;
// the dynamic case relies on the linker's default paths.
func systemDirectives(config *Config, gccRoot string, gccVersions []string) (*LinkDirectives, error) {
	directives := &LinkDirectives{
		Libraries:      SelectLibraries(config.Static, config.Libraries),
		RerunIfChanged: []string{config.headerPath()},
	}

	// Arch is validated even for dynamic linking.
	triple, err := MultiarchTriple(config.Arch)
	if err != nil {
		return nil, err
	}

	if config.Static {
		directives.SearchPaths = searchPaths(triple, gccRoot, gccVersions)
	}
	return directives, nil
}

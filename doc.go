// Package espeakgen provisions the espeak-ng speech synthesis library for Go
// programs that link against it with cgo.
//
// The package locates or builds espeak-ng, decides how the host binary links
// against it and generates foreign-function bindings from a fixed C header.
// It is meant to run once per build, before `go build`, either through the
// espeakgen command, a mage target or directly from Go code.
//
// # Strategies
//
// The provisioner obtains the native library with one of three strategies:
//   - system - pre-installed libraries at architecture-specific system paths
//   - toolchain - same as system, plus per-gcc-version library paths
//   - source - git clone, autogen, configure, make and make install into an
//     isolated prefix under the output directory
//
// # Basic Usage
//
//	config := espeakgen.DefaultConfig()
//	config.Strategy = espeakgen.StrategySource
//	config.OutDir = "build/espeak-ng"
//
//	registry := espeakgen.NewRegistry()
//	result, err := registry.Run(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = espeakgen.Emit(os.Stdout, espeakgen.FormatCgo, result.Directives)
//
// # Architecture
//
//	Registry
//	├── SystemStrategy (system)
//	├── ToolchainStrategy (toolchain)
//	└── SourceStrategy (source)
//	        │
//	        ▼
//	Generator (c-for-go | cgo) over headers/wrapper.h
//
// Every step runs to completion before the next begins. Any failure stops the
// run; there is no retry and no partial success.
//
// # Platform Support
//
// Linux only. Library search paths follow the Debian multiarch layout.
package espeakgen

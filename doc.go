// Package staticlib compiles bundled C sources into static archives.
//
// This package is the Go equivalent of native build scripts like Rust's
// cc crate: a library author ships a handful of C files next to their
// package and needs them compiled, with defines and include paths, into
// a static archive the surrounding build can link against.
//
// # Supported Toolchains
//
// The package includes toolchains for:
//   - GNU-style drivers (cc, gcc, clang) with ar/llvm-ar archiving
//   - MSVC (cl.exe + lib.exe) on Windows
//   - Generic single-command drivers (zig cc, tcc) via templates
//
// # Basic Usage
//
// Create a factory and build a step:
//
//	factory := staticlib.NewToolchainFactory()
//
//	config := &staticlib.BuildConfig{
//	    PackageDir: "/path/to/package",
//	    OutDir:     "/path/to/out",
//	    Verbose:    true,
//	}
//
//	step := &staticlib.Step{
//	    Name:        "smack",
//	    Sources:     []string{"src/smack-rust.c"},
//	    IncludeDirs: []string{"src"},
//	    Defines:     []staticlib.Define{{Name: "CARGO_BUILD"}},
//	    Archive:     "libsmack.a",
//	}
//
//	results, err := factory.BuildAllSteps(ctx, config, []*staticlib.Step{step})
//
// The built-in step above is available as LibsmackStep.
//
// # Architecture
//
// The package uses a factory pattern with registered toolchains:
//
//	ToolchainFactory
//	├── MSVCToolchain    (cl.exe + lib.exe, Windows only)
//	├── GNUToolchain     (cc/gcc/clang + ar)
//	└── GenericToolchain (user-supplied command template)
//
// Each toolchain implements the Toolchain interface and can:
//   - Report whether it can build on the current host
//   - Build a step with proper error handling
//   - Clean build artifacts
//
// # Rebuild Triggers
//
// Every step declares the files whose modification forces a rebuild.
// Triggers are honored locally (an up-to-date archive is not rebuilt)
// and can be emitted as rerun-if-changed directives for an enclosing
// build orchestrator. Header dependencies discovered through compiler
// depfiles join the trigger set on subsequent builds.
//
// # Requirements
//
// Requires Go 1.25 or later and a host C compiler discoverable through
// PATH or the CC environment variable.
//
// # Platform Support
//
// Full support on Linux and macOS. Windows is supported through MSVC or
// a MinGW cc on PATH.
package staticlib

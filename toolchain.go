package staticlib

import "context"

// Toolchain defines the interface all static-archive toolchains implement.
//
// Each toolchain wraps one compiler family (GNU drivers, MSVC, a custom
// command) and must implement these four methods to integrate with the
// ToolchainFactory.
//
// # Toolchain Lifecycle
//
//  1. CanBuild() - Factory calls this to find a toolchain usable on the host
//  2. Build() - Factory calls this to compile a step
//  3. Clean() - Optional cleanup of build artifacts
//
// # Thread Safety
//
// Toolchain implementations should be stateless and thread-safe. The
// same toolchain instance may be used to build multiple steps
// concurrently.
type Toolchain interface {
	// Name returns the human-readable name of this toolchain.
	//
	// This name is used in error messages and logs.
	// Examples: "GNU", "MSVC", "ZigCC"
	Name() string

	// CanBuild reports whether this toolchain is usable on the current
	// host: the platform matches and its driver binaries are present.
	CanBuild() bool

	// Build compiles the step's sources and packs them into a static
	// archive.
	//
	// Returns:
	//   - BuildResult with Success=true and the Archive path on success
	//   - BuildResult with Success=false and Error on failure
	//
	// An up-to-date step (archive newer than every rebuild trigger) is
	// skipped and reported with Success=true and Skipped=true, unless
	// config.AlwaysBuild is set.
	Build(ctx context.Context, config *BuildConfig, step *Step) (*BuildResult, error)

	// Clean removes the step's objects, depfiles and archive.
	//
	// Returns nil if there is nothing to clean.
	Clean(ctx context.Context, config *BuildConfig, step *Step) error
}

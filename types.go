package staticlib

import (
	"context"
	"path/filepath"
)

// BuildResult contains the output and status of a single step build.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Skipped flag set when the archive was already up to date
//   - Output lines captured from the compiler and archiver
//   - Archive path of the produced static library
//   - Error information if the build failed
type BuildResult struct {
	Success bool     // True if the archive is available for linking
	Skipped bool     // True if the archive was up to date and nothing ran
	Output  []string // Lines of output from the compiler/archiver
	Archive string   // Path to the static archive, relative to PackageDir when possible
	Objects []string // Paths to the compiled object files
	Error   error    // Error if the build failed, nil otherwise

	// MissingTools lists build tools that were not found on the host,
	// when tool discovery is the reason the build failed.
	MissingTools []string
}

// BuildConfig contains configuration for the build process.
//
// Source paths:
//   - PackageDir: root directory the step's relative paths resolve against
//   - OutDir: directory for objects and the archive (default PackageDir/build)
//   - DestPath: optional directory the finished archive is also copied into,
//     for builds whose link step consumes artifacts from a fixed location
//
// Build behavior:
//   - Env: extra environment variables set for every tool invocation
//   - Verbose: record the exact commands in BuildResult.Output
//   - AlwaysBuild: ignore rebuild triggers and recompile unconditionally
//   - CleanFirst: remove prior artifacts before compiling
//   - Parallel: cap on concurrent object compilations (0 or 1 = serial)
//   - StopOnFailure: stop a multi-step plan after the first failed step
type BuildConfig struct {
	PackageDir string // Root directory of the enclosing package
	OutDir     string // Destination for objects and archives
	DestPath   string // Optional extra directory the archive is copied into

	Env map[string]string // Environment variables for tool invocations

	Verbose       bool // Record commands in the build output
	AlwaysBuild   bool // Skip staleness checks and always recompile
	CleanFirst    bool // Remove previous artifacts before building
	Parallel      int  // Concurrent object compilations (0 = serial)
	StopOnFailure bool // Stop a plan after the first failed step
}

// buildDir returns the directory objects and archives are written to.
func (c *BuildConfig) buildDir() string {
	if c.OutDir != "" {
		if filepath.IsAbs(c.OutDir) || c.PackageDir == "" {
			return c.OutDir
		}
		return filepath.Join(c.PackageDir, c.OutDir)
	}
	return filepath.Join(c.PackageDir, "build")
}

// CommonBuildSteps defines the standard 3-step build pattern shared by
// the toolchains.
//
// Every static-archive toolchain follows the same shape:
//  1. Compile: translate each source file into an object file
//  2. Archive: pack the object files into a static archive
//  3. Find: locate and verify the produced archive
//
// This structure lets toolchains implement the pattern consistently
// while customizing each phase.
type CommonBuildSteps struct {
	// CompileFunc translates the step's sources into object files.
	CompileFunc func(ctx context.Context, config *BuildConfig, step *Step, buildDir string, result *BuildResult) error

	// ArchiveFunc packs the compiled objects into the static archive.
	ArchiveFunc func(ctx context.Context, config *BuildConfig, step *Step, buildDir string, result *BuildResult) error

	// FindFunc locates the archive after the build completes.
	FindFunc func(config *BuildConfig, step *Step, buildDir string) (string, error)
}

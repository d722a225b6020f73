package staticlib

import (
	"context"
	"fmt"
	"os"
)

// runCommonBuild executes the standard 3-step build process.
//
// Every static-archive toolchain follows the same shape:
//  1. Compile: translate each source into an object file
//  2. Archive: pack the objects into a static archive
//  3. Find: locate and verify the produced archive
//
// Before any tool runs, the step is validated (sources must exist) and
// checked against its rebuild triggers: if the archive is newer than
// every trigger, nothing is compiled and the result reports
// Skipped=true. config.AlwaysBuild disables the check.
//
// If any phase fails, processing stops, result.Error is set, and the
// BuildResult plus the error are returned. The BuildResult.Output field
// is populated by the phase functions as they execute. Compilation is
// atomic from the caller's perspective: there is no partial-success
// state.
func runCommonBuild(ctx context.Context, config *BuildConfig, step *Step, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Output:  []string{},
	}

	if err := step.Validate(config); err != nil {
		result.Error = err
		return result, err
	}

	buildDir := config.buildDir()

	// Staleness short-circuit: skip when the archive already covers
	// every rebuild trigger.
	if !config.AlwaysBuild && !config.CleanFirst {
		stale, err := Stale(config, step)
		if err == nil && !stale {
			archive, finErr := finalizeArchive(config, step, ArchivePath(config, step))
			if finErr != nil {
				result.Error = finErr
				return result, finErr
			}
			result.Success = true
			result.Skipped = true
			result.Archive = packageRelative(config, archive)
			if config.Verbose {
				result.Output = append(result.Output,
					fmt.Sprintf("%s is up to date", result.Archive))
			}
			return result, nil
		}
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		err = fmt.Errorf("failed to create build directory %s: %w", buildDir, err)
		result.Error = err
		return result, err
	}

	if config.CleanFirst {
		if err := removeStepArtifacts(config, step); err != nil {
			result.Error = err
			return result, err
		}
	}

	// Phase 1: compile sources to objects
	if err := steps.CompileFunc(ctx, config, step, buildDir, result); err != nil {
		result.Error = err
		return result, err
	}

	// Phase 2: pack objects into the archive
	if err := steps.ArchiveFunc(ctx, config, step, buildDir, result); err != nil {
		result.Error = err
		return result, err
	}

	// Phase 3: locate the archive
	archive, err := steps.FindFunc(config, step, buildDir)
	if err != nil {
		result.Error = err
		return result, err
	}

	archive, err = finalizeArchive(config, step, archive)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Archive = packageRelative(config, archive)
	result.Success = true
	return result, nil
}

package staticlib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// GNUToolchain drives GNU-style compiler front ends - the most common
// way to build a C static archive on Unix hosts.
//
// Each source is compiled with `cc -c` (plus -I, -D and any extra
// flags), emitting a depfile via -MMD so header dependencies feed the
// rebuild triggers, and the objects are packed with `ar rcs`.
type GNUToolchain struct{}

// Name returns the toolchain name
func (t *GNUToolchain) Name() string {
	return "GNU"
}

// RequiredTools returns the tools needed for GNU-style builds
func (t *GNUToolchain) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:         "cc",
			Alternatives: []string{"gcc", "clang"},
			Purpose:      "C compiler",
		},
		{
			Name:         "ar",
			Alternatives: []string{"llvm-ar"},
			Purpose:      "static archiver",
		},
		{
			Name:     "ranlib",
			Optional: true,
			Purpose:  "archive symbol index",
		},
	}
}

// CheckTools verifies that a compiler and archiver are available
func (t *GNUToolchain) CheckTools() error {
	return CheckRequiredTools(t.RequiredTools())
}

// CanBuild reports whether a GNU-style compiler and archiver are
// present on the host.
func (t *GNUToolchain) CanBuild() bool {
	return t.compilerPath() != "" && t.archiverPath() != ""
}

// Build compiles the step's sources and packs them with ar
func (t *GNUToolchain) Build(ctx context.Context, config *BuildConfig, step *Step) (*BuildResult, error) {
	if err := t.CheckTools(); err != nil {
		result := &BuildResult{
			Success:      false,
			Error:        err,
			MissingTools: missingToolNames(t.RequiredTools()),
		}
		return result, err
	}

	return runCommonBuild(ctx, config, step, CommonBuildSteps{
		CompileFunc: t.compileObjects,
		ArchiveFunc: t.runArchiver,
		FindFunc:    t.findArchive,
	})
}

// Clean removes the step's objects, depfiles and archive.
func (t *GNUToolchain) Clean(_ context.Context, config *BuildConfig, step *Step) error {
	return removeStepArtifacts(config, step)
}

// compileObjects translates each source into an object file, a bounded
// number at a time when config.Parallel allows it. Output is collected
// per source and appended in source order so diagnostics stay readable.
func (t *GNUToolchain) compileObjects(ctx context.Context, config *BuildConfig, step *Step, buildDir string, result *BuildResult) error {
	compiler := t.compilerPath()

	jobs := config.Parallel
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(step.Sources) {
		jobs = len(step.Sources)
	}

	outputs := make([][]string, len(step.Sources))
	objects := make([]string, len(step.Sources))
	errs := make([]error, len(step.Sources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)

	for i, src := range step.Sources {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			objects[i], outputs[i], errs[i] = t.compileOne(ctx, config, step, buildDir, compiler, src)
		}(i, src)
	}
	wg.Wait()

	var firstErr error
	for i := range step.Sources {
		result.Output = append(result.Output, outputs[i]...)
		if errs[i] != nil && firstErr == nil {
			firstErr = errs[i]
		}
		if errs[i] == nil {
			result.Objects = append(result.Objects, objects[i])
		}
	}

	if firstErr != nil {
		return BuildError(t.Name(), result.Output, firstErr)
	}

	return nil
}

// compileOne runs the compiler for a single translation unit.
func (t *GNUToolchain) compileOne(ctx context.Context, config *BuildConfig, step *Step, buildDir, compiler, src string) (object string, output []string, err error) {
	object = filepath.Join(buildDir, step.objectName(src))
	depfile := filepath.Join(buildDir, step.depfileName(src))

	args := t.compileArgs(step, src, object, depfile)

	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Dir = config.PackageDir
	cmd.Env = mergedEnv(config)

	if config.Verbose {
		output = append(output, fmt.Sprintf("Running: %s %s", compiler, strings.Join(args, " ")))
	}

	raw, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
		output = append(output, strings.Split(trimmed, "\n")...)
	}

	if err != nil {
		return object, output, fmt.Errorf("compiling %s: %w", src, err)
	}

	return object, output, nil
}

// compileArgs builds the argument list for one translation unit.
func (t *GNUToolchain) compileArgs(step *Step, src, object, depfile string) []string {
	args := []string{"-c", "-o", object, "-MMD", "-MF", depfile}

	for _, inc := range step.IncludeDirs {
		args = append(args, "-I"+inc)
	}
	for _, def := range step.Defines {
		args = append(args, def.Flag("-D"))
	}
	args = append(args, step.Flags...)
	args = append(args, src)

	return args
}

// runArchiver packs the compiled objects with ar rcs, then runs ranlib
// when present (a no-op on hosts where ar already writes the index).
func (t *GNUToolchain) runArchiver(ctx context.Context, config *BuildConfig, step *Step, _ string, result *BuildResult) error {
	archiver := t.archiverPath()
	archive := ArchivePath(config, step)

	// Stale archives keep old members under `ar r`; start fresh.
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return BuildError("Archiver", result.Output, err)
	}

	args := append([]string{"rcs", archive}, result.Objects...)

	cmd := exec.CommandContext(ctx, archiver, args...)
	cmd.Dir = config.PackageDir
	cmd.Env = mergedEnv(config)

	if config.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("Running: %s %s", archiver, strings.Join(args, " ")))
	}

	output, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
	}

	if err != nil {
		return BuildError("Archiver", result.Output, err)
	}

	if ranlib := lookTool("ranlib"); ranlib != "" {
		ranlibCmd := exec.CommandContext(ctx, ranlib, archive)
		ranlibCmd.Dir = config.PackageDir
		ranlibOut, _ := ranlibCmd.CombinedOutput()
		if trimmed := strings.TrimSpace(string(ranlibOut)); trimmed != "" {
			result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
		}
	}

	return nil
}

// findArchive verifies the archive exists and is non-empty
func (t *GNUToolchain) findArchive(config *BuildConfig, step *Step, _ string) (string, error) {
	return verifyArchive(ArchivePath(config, step))
}

// compilerPath returns the C compiler to use: the CC environment
// variable when set, otherwise the first of cc, gcc, clang on PATH.
func (t *GNUToolchain) compilerPath() string {
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}
	return lookTool("cc", "gcc", "clang")
}

// archiverPath returns the archiver to use: the AR environment variable
// when set, otherwise the first of ar, llvm-ar on PATH.
func (t *GNUToolchain) archiverPath() string {
	if ar := os.Getenv("AR"); ar != "" {
		return ar
	}
	return lookTool("ar", "llvm-ar")
}

// mergedEnv combines the process environment with config overrides.
func mergedEnv(config *BuildConfig) []string {
	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}

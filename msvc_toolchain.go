package staticlib

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const platformWindows = "windows"

// MSVCToolchain drives the Visual C++ toolchain: cl.exe for compilation
// and lib.exe for archiving. Only usable on Windows hosts with the
// tools on PATH (a developer command prompt or vcvars environment).
type MSVCToolchain struct{}

// Name returns the toolchain name
func (t *MSVCToolchain) Name() string {
	return "MSVC"
}

// RequiredTools returns the tools needed for MSVC builds
func (t *MSVCToolchain) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    "cl",
			Purpose: "Visual C++ compiler",
		},
		{
			Name:    "lib",
			Purpose: "Visual C++ static library manager",
		},
	}
}

// CheckTools verifies that cl and lib are available
func (t *MSVCToolchain) CheckTools() error {
	return CheckRequiredTools(t.RequiredTools())
}

// CanBuild reports whether this is a Windows host with cl and lib on PATH
func (t *MSVCToolchain) CanBuild() bool {
	if runtime.GOOS != platformWindows {
		return false
	}
	return lookTool("cl") != "" && lookTool("lib") != ""
}

// Build compiles the step's sources with cl and packs them with lib
func (t *MSVCToolchain) Build(ctx context.Context, config *BuildConfig, step *Step) (*BuildResult, error) {
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
		ArchiveFunc: t.runLib,
		FindFunc:    t.findArchive,
	})
}

// Clean removes the step's objects and archive.
func (t *MSVCToolchain) Clean(_ context.Context, config *BuildConfig, step *Step) error {
	return removeStepArtifacts(config, step)
}

// compileObjects runs cl /c once per source. cl has no depfile output
// comparable to -MMD, so rebuild triggers stay at the declared set.
func (t *MSVCToolchain) compileObjects(ctx context.Context, config *BuildConfig, step *Step, buildDir string, result *BuildResult) error {
	for _, src := range step.Sources {
		object := filepath.Join(buildDir, t.msvcObjectName(step, src))

		args := []string{"/nologo", "/c", "/Fo" + object}
		for _, inc := range step.IncludeDirs {
			args = append(args, "/I", inc)
		}
		for _, def := range step.Defines {
			args = append(args, def.Flag("/D"))
		}
		args = append(args, step.Flags...)
		args = append(args, src)

		cmd := exec.CommandContext(ctx, "cl", args...)
		cmd.Dir = config.PackageDir
		cmd.Env = mergedEnv(config)

		if config.Verbose {
			result.Output = append(result.Output, fmt.Sprintf("Running: cl %s", strings.Join(args, " ")))
		}

		output, err := cmd.CombinedOutput()
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
		}

		if err != nil {
			return BuildError(t.Name(), result.Output, fmt.Errorf("compiling %s: %w", src, err))
		}

		result.Objects = append(result.Objects, object)
	}

	return nil
}

// runLib packs the objects with lib.exe
func (t *MSVCToolchain) runLib(ctx context.Context, config *BuildConfig, step *Step, _ string, result *BuildResult) error {
	archive := ArchivePath(config, step)

	args := append([]string{"/nologo", "/OUT:" + archive}, result.Objects...)

	cmd := exec.CommandContext(ctx, "lib", args...)
	cmd.Dir = config.PackageDir
	cmd.Env = mergedEnv(config)

	if config.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("Running: lib %s", strings.Join(args, " ")))
	}

	output, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
	}

	if err != nil {
		return BuildError(t.Name(), result.Output, err)
	}

	return nil
}

// findArchive verifies the archive exists and is non-empty
func (t *MSVCToolchain) findArchive(config *BuildConfig, step *Step, _ string) (string, error) {
	return verifyArchive(ArchivePath(config, step))
}

// msvcObjectName maps a source to its .obj name
func (t *MSVCToolchain) msvcObjectName(step *Step, src string) string {
	return strings.TrimSuffix(step.objectName(src), ".o") + ".obj"
}

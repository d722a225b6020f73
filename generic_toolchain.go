package staticlib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GenericToolchain provides a configurable toolchain for any compiler
// driver that can produce a static archive in a single command.
//
// This toolchain supports alternative C compilers like zig cc, tcc or
// cross toolchain wrappers without requiring a new Go file for each
// driver.
//
// # Configuration
//
// GenericToolchain is configured with:
//   - Required tools and alternatives
//   - A command template with placeholders
//
// The command template supports:
//
//	{{input}}   - the step's source files, expanded in place
//	{{output}}  - the archive path inside the build directory
//	{{include}} - one -I flag per include dir, expanded in place
//	{{define}}  - one -D flag per define, expanded in place
//
// # Example: zig
//
//	zig := NewGenericToolchain(&GenericToolchainConfig{
//	    Name:  "ZigCC",
//	    Tools: []ToolRequirement{{Name: "zig", Purpose: "Zig C compiler"}},
//	    Command: []string{
//	        "zig", "build-lib", "-static",
//	        "{{include}}", "{{define}}", "-femit-bin={{output}}", "{{input}}",
//	    },
//	})
type GenericToolchain struct {
	name    string
	tools   []ToolRequirement
	command []string
}

// GenericToolchainConfig defines configuration for a GenericToolchain.
type GenericToolchainConfig struct {
	// Name is the human-readable toolchain name (e.g., "ZigCC", "TCC")
	Name string

	// Tools are the required driver binaries
	Tools []ToolRequirement

	// Command is the command template producing the archive
	Command []string
}

// NewGenericToolchain creates a GenericToolchain from configuration.
func NewGenericToolchain(config *GenericToolchainConfig) *GenericToolchain {
	return &GenericToolchain{
		name:    config.Name,
		tools:   config.Tools,
		command: config.Command,
	}
}

// Name returns the toolchain name
func (t *GenericToolchain) Name() string {
	return t.name
}

// RequiredTools returns the tools needed by this toolchain
func (t *GenericToolchain) RequiredTools() []ToolRequirement {
	return t.tools
}

// CheckTools verifies that all required tools are available
func (t *GenericToolchain) CheckTools() error {
	return CheckRequiredTools(t.RequiredTools())
}

// CanBuild reports whether every required tool is present on the host
func (t *GenericToolchain) CanBuild() bool {
	return t.CheckTools() == nil
}

// Build runs the configured command to produce the archive directly;
// there is no separate compile phase.
func (t *GenericToolchain) Build(ctx context.Context, config *BuildConfig, step *Step) (*BuildResult, error) {
	if err := t.CheckTools(); err != nil {
		result := &BuildResult{
			Success:      false,
			Error:        err,
			MissingTools: missingToolNames(t.RequiredTools()),
		}
		return result, err
	}

	return runCommonBuild(ctx, config, step, CommonBuildSteps{
		CompileFunc: t.runCommand,
		ArchiveFunc: t.noArchive,
		FindFunc:    t.findArchive,
	})
}

// Clean removes the step's archive.
func (t *GenericToolchain) Clean(_ context.Context, config *BuildConfig, step *Step) error {
	if err := os.Remove(ArchivePath(config, step)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// runCommand expands the template and executes the single build command
func (t *GenericToolchain) runCommand(ctx context.Context, config *BuildConfig, step *Step, _ string, result *BuildResult) error {
	expanded := t.expandCommand(config, step)
	if len(expanded) == 0 {
		return BuildError(t.name, result.Output, fmt.Errorf("empty build command"))
	}

	cmd := exec.CommandContext(ctx, expanded[0], expanded[1:]...)
	cmd.Dir = config.PackageDir
	cmd.Env = mergedEnv(config)

	if config.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("Running: %s", strings.Join(expanded, " ")))
	}

	output, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
	}

	if err != nil {
		return BuildError(t.name, result.Output, err)
	}

	return nil
}

// noArchive is a no-op since the build command emits the archive itself
func (t *GenericToolchain) noArchive(_ context.Context, _ *BuildConfig, _ *Step, _ string, _ *BuildResult) error {
	return nil
}

// findArchive verifies the archive exists and is non-empty
func (t *GenericToolchain) findArchive(config *BuildConfig, step *Step, _ string) (string, error) {
	return verifyArchive(ArchivePath(config, step))
}

// expandCommand substitutes the template placeholders. List-valued
// placeholders ({{input}}, {{include}}, {{define}}) expand to zero or
// more arguments in place; scalar placeholders are substituted inside
// their argument.
func (t *GenericToolchain) expandCommand(config *BuildConfig, step *Step) []string {
	output := ArchivePath(config, step)

	var expanded []string
	for _, arg := range t.command {
		switch arg {
		case "{{input}}":
			expanded = append(expanded, step.Sources...)
		case "{{include}}":
			for _, inc := range step.IncludeDirs {
				expanded = append(expanded, "-I"+inc)
			}
		case "{{define}}":
			for _, def := range step.Defines {
				expanded = append(expanded, def.Flag("-D"))
			}
		default:
			expanded = append(expanded, strings.ReplaceAll(arg, "{{output}}", output))
		}
	}

	return expanded
}

package staticlib

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath resolves tool binaries on PATH. It is a variable so
// tests can substitute a fake lookup.
var execLookPath = exec.LookPath

// ToolChecker is an optional interface for toolchains that want to
// report their tool dependencies up front.
//
// Toolchains implement this interface to declare which host binaries
// they need and to verify availability before a build is attempted,
// which produces a better error than a failed exec.
//
// # Platform Support
//
// Tool alternatives handle platform differences:
//   - Linux: gcc/ar by default
//   - macOS/FreeBSD: clang, with ar from the system toolchain
//   - Windows: cl + lib (MSVC), or a MinGW gcc/ar pair
//
// # Consumer Usage
//
//	if checker, ok := toolchain.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
//
// Implementations should be thread-safe.
type ToolChecker interface {
	// RequiredTools returns the list of tools this toolchain needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	//
	// Returns nil if all required tools are found, or an error naming
	// the missing ones. Optional tools don't cause errors if missing.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// A requirement is satisfied by its primary Name or by any of its
// Alternatives. Optional requirements never fail a check.
//
// Examples:
//
//	ToolRequirement{Name: "gcc", Alternatives: []string{"clang", "cc"}, Purpose: "C compiler"}
//	ToolRequirement{Name: "ranlib", Optional: true, Purpose: "Archive index"}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "gcc", "ar").
	Name string

	// Alternatives are other binary names that satisfy this requirement.
	Alternatives []string

	// Optional indicates the tool won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why the tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
//
// Returns nil if the tool is found, or an error naming it otherwise.
// Thread-safe.
func CheckToolAvailable(tool string) error {
	_, err := execLookPath(tool)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// The primary tool name is checked first, then each alternative in
// order. Optional tools are checked but never fail. All missing
// required tools are reported in a single error:
//
//	missing required tools: gcc (C compiler), ar (static archiver)
//
// Thread-safe.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found && len(req.Alternatives) > 0 {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}

// lookTool returns the resolved path of the first available binary from
// names, or "" when none is present.
func lookTool(names ...string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		if path, err := execLookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// missingToolNames extracts the bare tool names from a CheckRequiredTools
// error for BuildResult.MissingTools reporting.
func missingToolNames(requirements []ToolRequirement) []string {
	var missing []string
	for _, req := range requirements {
		if req.Optional {
			continue
		}
		if lookTool(append([]string{req.Name}, req.Alternatives...)...) == "" {
			missing = append(missing, req.Name)
		}
	}
	return missing
}

package staticlib

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchesPattern checks if a filename matches any of the given regex
// patterns.
//
// This is a helper for toolchain implementations to classify files by
// name. Invalid patterns are silently skipped.
//
// Example:
//
//	if MatchesPattern(filename, `\.c$`, `\.cc$`) {
//	    // C or C++ source
//	}
//
// Thread-safe.
func MatchesPattern(filename string, patterns ...string) bool {
	for _, pattern := range patterns {
		if matched, _ := regexp.MatchString(pattern, filename); matched {
			return true
		}
	}
	return false
}

// MatchesExtension checks if a filename has any of the given extensions
// (case-insensitive, with or without the leading dot).
//
// Example:
//
//	if MatchesExtension(filename, ".a", ".lib") {
//	    // static archive
//	}
//
// Thread-safe.
func MatchesExtension(filename string, extensions ...string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// IsCSource reports whether the file is a C-family translation unit the
// toolchains know how to compile: C, C++, Objective-C or assembly.
func IsCSource(filename string) bool {
	return MatchesExtension(filename, ".c", ".cc", ".cpp", ".cxx", ".m", ".s")
}

// BuildError creates a standardized build error with output context.
//
// This helper formats toolchain failures consistently, folding the
// captured compiler/archiver output into the error so diagnostics
// surface to the invoking user.
//
// Format with error and output:
//
//	GNU build failed: exit status 1
//
//	Build output:
//	cc -c -o build/src_smack-rust.o -Isrc -DCARGO_BUILD src/smack-rust.c
//	src/smack-rust.c:4:2: error: unknown type name
//
// Thread-safe.
func BuildError(toolchain string, output []string, err error) error {
	outputStr := strings.Join(output, "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", toolchain, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", toolchain)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

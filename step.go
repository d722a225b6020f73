package staticlib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Define is a preprocessor symbol passed to the compiler.
//
// An empty Value defines the bare symbol (-DNAME); a non-empty Value
// defines NAME=VALUE. This mirrors how native build scripts distinguish
// define("CARGO_BUILD", None) from define("VERSION", "3").
type Define struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}

// Flag renders the define as a compiler argument using the given prefix
// ("-D" for GNU-style drivers, "/D" for MSVC).
func (d Define) Flag(prefix string) string {
	if d.Value == "" {
		return prefix + d.Name
	}
	return prefix + d.Name + "=" + d.Value
}

// ParseDefine parses "NAME" or "NAME=VALUE" into a Define.
func ParseDefine(s string) (Define, error) {
	name, value, _ := strings.Cut(s, "=")
	if name == "" {
		return Define{}, fmt.Errorf("empty define name in %q", s)
	}
	return Define{Name: name, Value: value}, nil
}

// Step describes one native-library build step: a set of C sources
// compiled with defines and include paths into a single static archive.
//
// All paths are relative to BuildConfig.PackageDir. RerunIfChanged
// lists the files whose modification forces a rebuild; when empty it
// defaults to Sources.
type Step struct {
	Name           string   // Short identifier used in logs and object naming
	Sources        []string // C source files, relative to the package root
	IncludeDirs    []string // Header search paths
	Defines        []Define // Preprocessor symbols
	Flags          []string // Extra compiler flags passed verbatim
	Archive        string   // Archive name: "smack", "libsmack" or "libsmack.a"
	RerunIfChanged []string // Rebuild triggers; defaults to Sources
}

// LibsmackStep returns the built-in step this package ships as its
// default plan: compile src/smack-rust.c with CARGO_BUILD defined and
// src on the include path into libsmack.a, rebuilding whenever the
// source changes.
func LibsmackStep() *Step {
	return &Step{
		Name:           "smack",
		Sources:        []string{"src/smack-rust.c"},
		IncludeDirs:    []string{"src"},
		Defines:        []Define{{Name: "CARGO_BUILD"}},
		Archive:        "libsmack.a",
		RerunIfChanged: []string{"src/smack-rust.c"},
	}
}

// Validate checks that the step is buildable: it has at least one
// source, every source exists under the package root and is a
// recognized C-family file, and an archive name is set.
//
// A missing source is a hard build failure, not a recoverable
// condition.
func (s *Step) Validate(config *BuildConfig) error {
	if len(s.Sources) == 0 {
		return fmt.Errorf("step %q has no sources", s.displayName())
	}
	if ArchiveBaseName(s.Archive) == "" {
		return fmt.Errorf("step %q has no archive name", s.displayName())
	}

	for _, src := range s.Sources {
		if !IsCSource(src) {
			return fmt.Errorf("step %q: %s is not a recognized C source file", s.displayName(), src)
		}
		path := filepath.Join(config.PackageDir, src)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("step %q: source %s: %w", s.displayName(), src, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("step %q: source %s is not a regular file", s.displayName(), src)
		}
	}

	return nil
}

// triggers returns the declared rebuild triggers, falling back to the
// source list when none were declared.
func (s *Step) triggers() []string {
	if len(s.RerunIfChanged) > 0 {
		return s.RerunIfChanged
	}
	return s.Sources
}

// objectName maps a source path to a unique object file name within the
// build directory. Path separators are flattened so sources with the
// same base name in different directories do not collide.
func (s *Step) objectName(source string) string {
	flat := strings.NewReplacer("/", "_", "\\", "_").Replace(filepath.ToSlash(source))
	ext := filepath.Ext(flat)
	return strings.TrimSuffix(flat, ext) + ".o"
}

// depfileName maps a source path to the dependency file the compiler
// writes next to its object.
func (s *Step) depfileName(source string) string {
	obj := s.objectName(source)
	return strings.TrimSuffix(obj, ".o") + ".d"
}

func (s *Step) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return ArchiveBaseName(s.Archive)
}

package staticlib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/magefile/mage/target"
)

// RerunPrefix is the directive prefix an enclosing build orchestrator
// consumes to learn which files must retrigger this step.
const RerunPrefix = "rerun-if-changed="

// Directives writes one rerun-if-changed line per rebuild trigger of
// the step, in declaration order, for consumption by an enclosing
// build orchestrator:
//
//	rerun-if-changed=src/smack-rust.c
//
// Triggers are emitted as declared (package-relative, slash-separated).
func Directives(w io.Writer, step *Step) error {
	for _, trigger := range uniqueStrings(step.triggers()) {
		if _, err := fmt.Fprintf(w, "%s%s\n", RerunPrefix, filepath.ToSlash(trigger)); err != nil {
			return err
		}
	}
	return nil
}

// Stale reports whether the step's archive must be rebuilt: the archive
// is missing, or at least one rebuild trigger is newer than it.
//
// The trigger set is the step's declared triggers plus any header
// dependencies recorded in compiler depfiles from a previous build.
// Depfile entries that no longer exist on disk are treated as stale
// rather than fatal, since a deleted header must retrigger the build.
func Stale(config *BuildConfig, step *Step) (bool, error) {
	archive := ArchivePath(config, step)

	var triggers []string
	for _, trigger := range uniqueStrings(step.triggers()) {
		triggers = append(triggers, filepath.Join(config.PackageDir, trigger))
	}

	for _, dep := range recordedDeps(config, step) {
		if _, err := os.Stat(dep); err != nil {
			return true, nil
		}
		triggers = append(triggers, dep)
	}

	return target.Path(archive, triggers...)
}

// recordedDeps returns the prerequisite paths recorded in the step's
// depfiles from a previous compile, absolute against the package root.
// Missing depfiles are fine: the first build has none.
func recordedDeps(config *BuildConfig, step *Step) []string {
	buildDir := config.buildDir()
	var deps []string

	for _, src := range step.Sources {
		data, err := os.ReadFile(filepath.Join(buildDir, step.depfileName(src)))
		if err != nil {
			continue
		}
		for _, dep := range ParseDepfile(data) {
			if !filepath.IsAbs(dep) {
				dep = filepath.Join(config.PackageDir, dep)
			}
			deps = append(deps, dep)
		}
	}

	return uniqueStrings(deps)
}

package staticlib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ArchiveBaseName normalizes an archive name to its bare library name:
// "smack", "libsmack", "libsmack.a" and "smack.lib" all yield "smack".
//
// This matches the loose naming native build scripts accept, where
// compile("libsmack.a") and compile("smack") produce the same artifact.
func ArchiveBaseName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	base = strings.TrimSuffix(base, ".a")
	base = strings.TrimSuffix(base, ".lib")
	base = strings.TrimPrefix(base, "lib")
	return base
}

// ArchiveFileName returns the platform file name for a library:
// libNAME.a with GNU-style archivers, NAME.lib with MSVC.
func ArchiveFileName(name string) string {
	base := ArchiveBaseName(name)
	if runtime.GOOS == "windows" {
		return base + ".lib"
	}
	return "lib" + base + ".a"
}

// ArchivePath returns the full path of the step's archive inside the
// build directory.
func ArchivePath(config *BuildConfig, step *Step) string {
	return filepath.Join(config.buildDir(), ArchiveFileName(step.Archive))
}

// packageRelative rewrites path relative to the package root when the
// path lives under it, for stable reporting in BuildResult.
func packageRelative(config *BuildConfig, path string) string {
	if config.PackageDir == "" {
		return path
	}
	rel, err := filepath.Rel(config.PackageDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// verifyArchive checks that the archive exists and is a regular,
// non-empty file. Every toolchain's FindFunc ends here.
func verifyArchive(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("archive not produced at %s: %w", path, err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return "", fmt.Errorf("archive at %s is empty or not a regular file", path)
	}
	return path, nil
}

// removeStepArtifacts deletes the step's archive, objects and depfiles
// from the build directory. Missing files are fine.
func removeStepArtifacts(config *BuildConfig, step *Step) error {
	buildDir := config.buildDir()

	paths := []string{ArchivePath(config, step)}
	for _, src := range step.Sources {
		obj := step.objectName(src)
		paths = append(paths,
			filepath.Join(buildDir, obj),
			filepath.Join(buildDir, strings.TrimSuffix(obj, ".o")+".obj"),
			filepath.Join(buildDir, step.depfileName(src)))
	}

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// finalizeArchive copies the archive into config.DestPath when set and
// returns the path the caller should report. The copy keeps the
// platform file name so downstream link steps find it by convention.
func finalizeArchive(config *BuildConfig, step *Step, archivePath string) (string, error) {
	if config.DestPath == "" {
		return archivePath, nil
	}

	dest := config.DestPath
	if !filepath.IsAbs(dest) && config.PackageDir != "" {
		dest = filepath.Join(config.PackageDir, dest)
	}
	destPath := filepath.Join(dest, ArchiveFileName(step.Archive))

	if err := copyFile(archivePath, destPath); err != nil {
		return "", fmt.Errorf("installing archive to %s: %w", dest, err)
	}

	return destPath, nil
}

// copyFile copies src to dst, creating parent directories and
// preserving the source mode.
func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}

package staticlib

import "strings"

// ParseDepfile extracts the prerequisite paths from a Makefile-style
// dependency file, as written by GNU-compatible compilers under -MMD:
//
//	build/src_smack-rust.o: src/smack-rust.c src/smack.h \
//	 src/smack-internal.h
//
// The target (everything up to the first unescaped colon) is dropped;
// the remaining tokens are the prerequisites. Line continuations,
// escaped spaces ("\ ") and "$$" escapes are handled. Duplicate
// prerequisites are collapsed, order preserved.
func ParseDepfile(data []byte) []string {
	joined := joinContinuations(string(data))

	var deps []string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rest, ok := splitTarget(line)
		if !ok {
			continue
		}

		deps = append(deps, splitPaths(rest)...)
	}

	return uniqueStrings(deps)
}

// joinContinuations folds "backslash, newline" sequences into single
// spaces so each rule occupies one logical line.
func joinContinuations(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			b.WriteByte(' ')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitTarget drops the rule target, returning everything after the
// first colon that is not part of a Windows drive prefix (C:\...).
func splitTarget(line string) (string, bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != ':' {
			continue
		}
		// A colon followed by a path separator one character into a
		// token is a drive letter, not the rule separator.
		if i+1 < len(line) && (line[i+1] == '\\' || line[i+1] == '/') {
			continue
		}
		return line[i+1:], true
	}
	return "", false
}

// splitPaths tokenizes prerequisite paths on unescaped whitespace.
func splitPaths(s string) []string {
	var paths []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			paths = append(paths, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == ' ':
			cur.WriteByte(' ')
			i++
		case c == '$' && i+1 < len(s) && s[i+1] == '$':
			cur.WriteByte('$')
			i++
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	return paths
}

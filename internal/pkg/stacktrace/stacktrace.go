// Package stacktrace trims raw goroutine stacks down to project frames.
package stacktrace

import "strings"

// InternalPaths returns the file:line locations of frames under an internal/
// directory, in stack order.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		_, rest, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rest, ".go:") {
			continue
		}
		if sp := strings.IndexByte(rest, ' '); sp != -1 {
			rest = rest[:sp]
		}
		paths = append(paths, "internal/"+rest)
	}
	return paths
}

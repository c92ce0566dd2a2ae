package pipeline

import (
	"path/filepath"
	"strings"
)

// Filter drops paths matched by the ignore list. Paths are relative to a
// source root so that the root's own ancestors never match.
func Filter[T any](inCh <-chan T, pathOf func(T) string, ignoreList []string) <-chan T {
	outCh := make(chan T, cap(inCh))

	go func() {
		defer close(outCh)

		for item := range inCh {
			if ShouldIgnore(pathOf(item), ignoreList) {
				continue
			}
			outCh <- item
		}
	}()

	return outCh
}

func ShouldIgnore(path string, ignoreList []string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")

	for _, part := range parts {
		for _, pattern := range ignoreList {
			matched, err := filepath.Match(pattern, part)
			if err == nil && matched {
				return true
			}
		}
	}

	return false
}

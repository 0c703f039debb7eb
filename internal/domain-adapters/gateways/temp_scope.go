package gateways

import (
	"fmt"
	"os"
)

// tempScope tracks the temporary directories of one call. cleanup removes
// all of them except the one handed to the caller with release.
type tempScope struct {
	root     string
	dirs     []string
	released string
}

func newTempScope(root string) *tempScope {
	return &tempScope{root: root}
}

func (s *tempScope) mkdir(pattern string) (string, error) {
	dir, err := os.MkdirTemp(s.root, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	s.dirs = append(s.dirs, dir)
	return dir, nil
}

// release transfers ownership of dir to the caller
func (s *tempScope) release(dir string) string {
	s.released = dir
	return dir
}

func (s *tempScope) cleanup() error {
	var firstErr error
	for _, dir := range s.dirs {
		if dir == s.released {
			continue
		}
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.dirs = nil
	return firstErr
}

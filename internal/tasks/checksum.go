package tasks

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/gopool/internal/pool"
)

// ChecksumTask hashes every regular file matching Pattern in lexical order. If
// Needle is set, files containing it are collected in Matches and the task
// raises a signal.
type ChecksumTask struct {
	Pattern string `mapstructure:"pattern"`
	Needle  string `mapstructure:"needle"`

	Files   []string `mapstructure:"-"`
	Matches []string `mapstructure:"-"`
	Digest  string   `mapstructure:"-"`
}

func newChecksumTask(params Params) (pool.Task, error) {
	task := &ChecksumTask{}
	if err := decodeParams(params, task); err != nil {
		return nil, err
	}
	if task.Pattern == "" {
		return nil, fmt.Errorf("%w: pattern is required", ErrInvalidParams)
	}
	if !doublestar.ValidatePathPattern(task.Pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", ErrInvalidParams, task.Pattern)
	}
	return task, nil
}

func (c *ChecksumTask) Execute(tc pool.TaskContext) error {
	files, err := FindFiles([]string{c.Pattern})
	if err != nil {
		return fmt.Errorf("find files: %w", err)
	}
	c.Files = files

	h := sha256.New()
	needle := []byte(c.Needle)
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		h.Write(data)
		if len(needle) > 0 && bytes.Contains(data, needle) {
			c.Matches = append(c.Matches, name)
		}
	}
	c.Digest = hex.EncodeToString(h.Sum(nil))

	if len(c.Matches) > 0 {
		tc.RaiseSignal()
	}
	return nil
}

func (c *ChecksumTask) Report() map[string]any {
	files := make([]any, len(c.Files))
	for i, f := range c.Files {
		files[i] = f
	}
	matches := make([]any, len(c.Matches))
	for i, m := range c.Matches {
		matches[i] = m
	}
	return map[string]any{
		"digest":  c.Digest,
		"files":   files,
		"matches": matches,
	}
}

// FindFiles expands the glob patterns and returns the matching regular files,
// sorted and without duplicates. Symlinks are skipped.
func FindFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				files = append(files, name)
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

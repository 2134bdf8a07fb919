package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ListFiles recursively lists files under a directory, skipping .git and
// anything matched by the directory's top-level .gitignore.
type ListFiles struct{}

// NewListFiles creates the list_files tool.
func NewListFiles() *ListFiles { return &ListFiles{} }

func (t *ListFiles) Name() string { return "list_files" }

func (t *ListFiles) Description() string {
	return "Recursively lists files under a directory. Input: a directory path (defaults to '.'). " +
		"Use it to map unfamiliar parts of the project before reading files."
}

// Run walks the directory and returns one path per line.
func (t *ListFiles) Run(_ context.Context, input string) (string, error) {
	dir := strings.TrimSpace(input)
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Sprintf("Error: Directory %s not found.", dir), nil
	}

	ignore := loadGitignore(filepath.Join(dir, ".gitignore"))

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" || ignore.matches(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !ignore.matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking %s: %w", dir, err)
	}

	if len(files) == 0 {
		return fmt.Sprintf("The directory %s is empty.", dir), nil
	}
	return strings.Join(files, "\n"), nil
}

// gitignore is a minimal matcher over the common .gitignore pattern forms:
// bare names, directory patterns ("name/"), and basename globs ("*.log").
// Negations and nested ignore files are not honored.
type gitignore struct {
	patterns []string
}

func loadGitignore(path string) *gitignore {
	g := &gitignore{}

	data, err := os.ReadFile(path)
	if err != nil {
		return g
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		g.patterns = append(g.patterns, strings.TrimSuffix(line, "/"))
	}
	return g
}

func (g *gitignore) matches(rel string) bool {
	base := filepath.Base(rel)
	for _, p := range g.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

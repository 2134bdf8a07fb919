package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// maxReadSize bounds how much file content is handed back to the engine;
// larger files are truncated with a notice rather than flooding the prompt.
const maxReadSize = 64 * 1024

// ReadFile returns the contents of a single file.
type ReadFile struct{}

// NewReadFile creates the read_file tool.
func NewReadFile() *ReadFile { return &ReadFile{} }

func (t *ReadFile) Name() string { return "read_file" }

func (t *ReadFile) Description() string {
	return "Reads and returns the full content of one file. Input: a file path. " +
		"Use it after locating a file of interest with list_files or run_shell_command."
}

// Run reads the file at the given path.
func (t *ReadFile) Run(_ context.Context, input string) (string, error) {
	path := strings.TrimSpace(input)
	if path == "" {
		return "Error: read_file requires a file path.", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Sprintf("Error: File '%s' not found.", path), nil
		}
		return fmt.Sprintf("Error reading file '%s': %v", path, err), nil
	}

	if len(data) > maxReadSize {
		return string(data[:maxReadSize]) + "\n... (truncated)", nil
	}
	return string(data), nil
}

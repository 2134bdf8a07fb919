package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// defaultShellTimeout bounds a single command run so a hung command cannot
// wedge the whole session.
const defaultShellTimeout = 60 * time.Second

// Shell executes a shell command and returns its output wrapped with
// STDOUT:/STDERR: provenance markers. The classifier maps those markers to
// observation events, which is how command output lands in the evidence
// log instead of the reasoning log.
type Shell struct {
	timeout time.Duration
}

// NewShell creates the run_shell_command tool.
func NewShell() *Shell {
	return &Shell{timeout: defaultShellTimeout}
}

func (t *Shell) Name() string { return "run_shell_command" }

func (t *Shell) Description() string {
	return "Executes a shell command and returns its stdout and stderr. Input: a valid shell " +
		"command string. The most direct tool for counting, finding, and inspecting system state."
}

// Run executes the command under sh -c.
func (t *Shell) Run(ctx context.Context, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return fmt.Sprintf("\nSTDERR: Error executing command '%s': %v\nSTDOUT: %s\nSTDERR: %s",
			input, err, stdout.String(), stderr.String()), nil
	}

	output := fmt.Sprintf("\nSTDOUT: %s\n", stdout.String())
	if stderr.Len() > 0 {
		output += fmt.Sprintf("\nSTDERR: %s\n", stderr.String())
	}
	return output, nil
}

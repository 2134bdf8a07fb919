// Package tools implements the tool collaborators the reasoning engine can
// invoke: file listing, file reading, shell execution, and semantic
// codebase search. Tool output is plain text; the shell and search tools
// prepend STDOUT:/STDERR:/CONTEXT: provenance markers that the trace
// classifier folds into observation events.
package tools

import "context"

// Tool is a named capability the engine can invoke with a free-text input.
type Tool interface {
	// Name is the identifier the engine writes on Action: lines.
	Name() string

	// Description is the usage guidance included in the engine prompt.
	Description() string

	// Run executes the tool. Errors that describe a failed-but-handled
	// operation (missing file, failed command) are returned as output
	// text, not as an error: the engine should observe them and continue.
	Run(ctx context.Context, input string) (string, error)
}

// ByName returns the tool with the given name, or nil.
func ByName(ts []Tool, name string) Tool {
	for _, t := range ts {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Names returns the tool names in order.
func Names(ts []Tool) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name()
	}
	return names
}

package main

import (
	"fmt"

	"context"

	"dagger/chainstream/internal/dagger"
)

// Build and return directory of go binaries
//
// The chainstream binary needs CGO for its sqlite drivers, so builds run in
// the shared bookworm container rather than a matrix of static
// cross-compiles.
func (t *Chainstream) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := t.goContainer().
			WithEnvVariable("GOARCH", goarch).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/chainstream"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/embeddings"
	"github.com/cognicodeco/chainstream/pkg/vector"
)

// defaultSearchTopK is how many chunks a search retrieves from the index.
const defaultSearchTopK = 10

// Search performs semantic search over an embedded codebase index. Results
// are wrapped with the CONTEXT: marker so the classifier files them as
// observation evidence.
type Search struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *zap.Logger
}

// NewSearch creates the codebase_search tool over the given embedder and
// vector index.
func NewSearch(embedder embeddings.Embedder, driver vector.Driver, logger *zap.Logger) *Search {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Search{
		embedder: embedder,
		driver:   driver,
		logger:   logger,
	}
}

func (t *Search) Name() string { return "codebase_search" }

func (t *Search) Description() string {
	return "Performs semantic search over the codebase. Input: a conceptual question or topic. " +
		"Returns retrieved context, not a final answer; synthesize it yourself. Prefer " +
		"run_shell_command with find for simple file lookups."
}

// Run embeds the query and retrieves the most similar indexed chunks.
func (t *Search) Run(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "Error: codebase_search requires a query.", nil
	}

	t.logger.Debug("running codebase search", zap.String("query", query))

	embedding, err := t.embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error: could not embed search query: %v", err), nil
	}

	results, err := t.driver.Query(ctx, embedding, defaultSearchTopK)
	if err != nil {
		return fmt.Sprintf("Error: codebase search failed: %v", err), nil
	}

	if len(results) == 0 {
		return "No relevant information found in codebase for the query.", nil
	}

	var sb strings.Builder
	for _, r := range results {
		if r.Path != "" {
			fmt.Fprintf(&sb, "[%s]\n", r.Path)
		}
		sb.WriteString(r.Text)
		sb.WriteString("\n\n")
	}

	return fmt.Sprintf("\nCONTEXT: %s\n", strings.TrimSpace(sb.String())), nil
}

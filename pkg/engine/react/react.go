// Package react implements the Engine interface with a ReAct
// (reason-and-act) loop: the model thinks, picks a tool, the executor runs
// it, and the observation is fed back into the scratchpad until the model
// produces a final answer. The executor writes the verbose interleaved
// trace (chain boundaries, Thought/Action/Action Input lines, tool
// observations) to the trace writer as it goes; the pump's classifier
// consumes that text, so what is written here is the wire contract with
// the capture side.
package react

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/llm"
	"github.com/cognicodeco/chainstream/pkg/tools"
)

// defaultMaxIterations bounds the think/act loop.
const defaultMaxIterations = 8

// promptTemplate is the classic ReAct scratchpad format. The model is
// instructed to emit exactly the tag lines the trace classifier matches.
const promptTemplate = `You are a ReAct agent. Your responses must follow the format: Thought, Action, Action Input.
Answer the following questions as best you can. You have access to the following tools:
%s

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: %s
Thought:%s`

// Completer is the chat-completion capability the executor drives. It is
// satisfied by llm.Client and by fakes in tests.
type Completer interface {
	Chat(ctx context.Context, messages []llm.Message, stop ...string) (string, error)
}

// Config holds executor settings.
type Config struct {
	// MaxIterations bounds the loop. Zero selects the default.
	MaxIterations int
}

// Executor runs queries through the ReAct loop. A single Executor is built
// at process start and reused across sessions; it holds no per-query state,
// so serialized reuse is safe.
type Executor struct {
	completer Completer
	tools     []tools.Tool
	config    Config
	logger    *zap.Logger
}

// New creates an Executor over the given completer and tool set.
func New(completer Completer, ts []tools.Tool, config Config, logger *zap.Logger) *Executor {
	if config.MaxIterations <= 0 {
		config.MaxIterations = defaultMaxIterations
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		completer: completer,
		tools:     ts,
		config:    config,
		logger:    logger,
	}
}

// Invoke runs one query to completion, writing the verbose trace to w.
func (e *Executor) Invoke(ctx context.Context, query string, w io.Writer) error {
	e.logger.Info("invoking agent", zap.String("query", query))

	fmt.Fprintf(w, "\n> Entering new ReAct chain...\n")

	var scratchpad strings.Builder
	for i := 0; i < e.config.MaxIterations; i++ {
		prompt := fmt.Sprintf(promptTemplate,
			e.toolDescriptions(),
			strings.Join(tools.Names(e.tools), ", "),
			query,
			scratchpad.String(),
		)

		// The stop sequence keeps the model from inventing its own
		// Observation: the executor supplies the real one.
		output, err := e.completer.Chat(ctx,
			[]llm.Message{{Role: "user", Content: prompt}},
			"Observation:",
		)
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}

		output = strings.TrimSpace(output)
		fmt.Fprintf(w, "Thought:%s\n", ensureLeadingSpace(output))
		scratchpad.WriteString(" " + output + "\n")

		if answer, ok := parseFinalAnswer(output); ok {
			e.logger.Debug("agent produced final answer",
				zap.Int("iterations", i+1),
				zap.Int("answer_len", len(answer)),
			)
			fmt.Fprintf(w, "\n> Finished chain.\n")
			return nil
		}

		action, input, ok := parseAction(output)
		if !ok {
			// Lenient recovery: tell the model its output was malformed
			// and let it retry, instead of failing the session.
			observation := "Invalid format. Expected 'Action:' and 'Action Input:' lines, or 'Final Answer:'."
			fmt.Fprintf(w, "Observation: %s\n", observation)
			scratchpad.WriteString("Observation: " + observation + "\nThought:")
			continue
		}

		observation := e.runTool(ctx, action, input)
		fmt.Fprintf(w, "Observation: %s\n", observation)
		scratchpad.WriteString("Observation: " + observation + "\nThought:")
	}

	return fmt.Errorf("agent stopped after %d iterations without a final answer", e.config.MaxIterations)
}

// runTool dispatches one action. Tool failures become observations so the
// model can route around them.
func (e *Executor) runTool(ctx context.Context, action, input string) string {
	tool := tools.ByName(e.tools, action)
	if tool == nil {
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.",
			action, strings.Join(tools.Names(e.tools), ", "))
	}

	e.logger.Debug("running tool",
		zap.String("tool", action),
		zap.String("input", input),
	)

	result, err := tool.Run(ctx, input)
	if err != nil {
		return fmt.Sprintf("Tool %s failed: %v", action, err)
	}
	return result
}

func (e *Executor) toolDescriptions() string {
	var sb strings.Builder
	for _, t := range e.tools {
		fmt.Fprintf(&sb, "%s: %s\n", t.Name(), t.Description())
	}
	return sb.String()
}

// parseFinalAnswer extracts the text after a "Final Answer:" marker.
func parseFinalAnswer(output string) (string, bool) {
	idx := strings.Index(output, "Final Answer:")
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(output[idx+len("Final Answer:"):]), true
}

// parseAction extracts the tool name and input from the model output.
// The input runs from the "Action Input:" marker to the end of the output,
// so multi-line inputs survive.
func parseAction(output string) (action, input string, ok bool) {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if rest, found := strings.CutPrefix(trimmed, "Action Input:"); found {
			parts := append([]string{strings.TrimSpace(rest)}, lines[i+1:]...)
			input = strings.TrimSpace(strings.Join(parts, "\n"))
			continue
		}
		if rest, found := strings.CutPrefix(trimmed, "Action:"); found {
			action = strings.TrimSpace(rest)
		}
	}

	return action, input, action != ""
}

func ensureLeadingSpace(s string) string {
	if s == "" || strings.HasPrefix(s, " ") {
		return s
	}
	return " " + s
}

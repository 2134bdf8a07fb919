// Package askcmder provides the ask command for querying a running
// chainstream server and rendering its reasoning trace live.
package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/cliui"
	"github.com/cognicodeco/chainstream/pkg/config"
	"github.com/cognicodeco/chainstream/pkg/logger"
	"github.com/cognicodeco/chainstream/pkg/sse"
	"github.com/cognicodeco/chainstream/pkg/trace"
	"github.com/cognicodeco/chainstream/pkg/transcript"
)

type askCommander struct {
	target  string
	timeout uint
	debug   bool

	logger *zap.Logger
}

// invokeRequest is the body sent to the server's invoke endpoint.
type invokeRequest struct {
	Query string `json:"query"`
}

const askLongDesc string = `Ask the chainstream agent a question.

The command streams the agent's reasoning trace as it happens: thoughts,
tool calls, and observations are printed live, and the final answer is
rendered as markdown when the agent finishes.

Examples:
  chainstream ask "how many go files are in this project?"
  chainstream ask --target http://localhost:8081 "what does pkg/pump do?"`

const askShortDesc string = "Ask the agent a question and watch it think"

var askFlagKeys = []string{
	config.FlagTarget,
	config.FlagTimeout,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, askFlagKeys)

			cfg, err := config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.target = cfg.Client.Target
			cmder.timeout = cfg.Client.TimeoutSeconds
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run(strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func (c *askCommander) run(query string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	body, err := json.Marshal(invokeRequest{Query: query})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := c.target + "/v1/agent/invoke"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// No client timeout: agent runs are open-ended, inactivity is policed
	// per-event below.
	client := &http.Client{}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Println()
	snap, timedOut := c.consumeStream(resp.Body)

	fmt.Println()
	if timedOut {
		fmt.Printf("  %s %s\n", cliui.FailMark, transcript.TimedOutNotice)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(snap.Answer)
	if err != nil {
		c.logger.Debug("markdown rendering failed, printing raw", zap.Error(err))
		rendered = snap.Answer
	}
	fmt.Println(rendered)

	return nil
}

// consumeStream prints events as they arrive and folds them into the
// transcript. It gives up after the configured inactivity window so a
// wedged server cannot hang the terminal forever.
func (c *askCommander) consumeStream(body io.Reader) (transcript.Snapshot, bool) {
	reader := sse.NewReader(body, c.logger)
	acc := transcript.NewAccumulator()

	inactivity := time.Duration(c.timeout) * time.Second

	type result struct {
		ev  *trace.Event
		err error
	}
	events := make(chan result)

	// done lets the reader goroutine exit once the inactivity timeout has
	// abandoned the receive loop, instead of blocking on the send forever.
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(events)
		for {
			ev, err := reader.Next()
			select {
			case events <- result{ev: ev, err: err}:
			case <-done:
				return
			}
			if ev == nil || err != nil {
				return
			}
		}
	}()

	for {
		select {
		case r, ok := <-events:
			if !ok {
				return acc.Snapshot(), false
			}
			if r.err != nil {
				c.logger.Debug("stream read failed", zap.Error(r.err))
				return acc.Snapshot(), false
			}
			if r.ev == nil {
				return acc.Snapshot(), false
			}

			snap := acc.Apply(*r.ev)
			c.printEvent(*r.ev)

			if r.ev.Type == trace.TagStreamEnd {
				return snap, false
			}

		case <-time.After(inactivity):
			c.logger.Debug("stream inactivity timeout",
				zap.Duration("timeout", inactivity),
			)
			return acc.FinishTimeout(), true
		}
	}
}

// printEvent renders one event to the terminal in its trace style.
func (c *askCommander) printEvent(ev trace.Event) {
	switch ev.Type {
	case trace.TagThought:
		fmt.Printf("  %s\n\n", cliui.ThoughtStyle.Render(ev.Content))
	case trace.TagAction:
		fmt.Printf("  %s %s\n", cliui.LabelStyle.Render("action:"), cliui.ActionStyle.Render(ev.Content))
	case trace.TagActionInput:
		fmt.Printf("  %s %s\n\n", cliui.LabelStyle.Render("input:"), cliui.ActionStyle.Render(ev.Content))
	case trace.TagObservation:
		fmt.Printf("  %s %s\n\n", cliui.LabelStyle.Render("observed:"), cliui.ObservationStyle.Render(ev.Content))
	case trace.TagError:
		fmt.Fprintf(os.Stderr, "  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(ev.Content))
	case trace.TagFinalAnswer, trace.TagStreamEnd:
		// The answer is rendered once, after the stream closes.
	}
}

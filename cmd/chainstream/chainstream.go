// Package chainstreamcmder
package chainstreamcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/cognicodeco/chainstream/cmd/chainstream/ask"
	servecmder "github.com/cognicodeco/chainstream/cmd/chainstream/serve"
)

const chainstreamLongDesc string = `Chainstream streams an agent's reasoning trace as typed events.

Run the server and ask questions using:
  chainstream serve    Run the streaming agent server
  chainstream ask      Ask the agent a question and watch it think`

const chainstreamShortDesc string = "Chainstream - Streaming Reasoning Agent"

func NewChainstreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainstream",
		Short: chainstreamShortDesc,
		Long:  chainstreamLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing chainstream.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())

	return cmd
}

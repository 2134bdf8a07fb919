package main

import (
	"os"

	chainstreamcmder "github.com/cognicodeco/chainstream/cmd/chainstream"
)

func main() {
	cmd := chainstreamcmder.NewChainstreamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

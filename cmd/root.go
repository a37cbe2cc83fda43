// Package cmd implements the blinx CLI using cobra.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinxlabs/blinx/internal/session"
)

const version = "0.1.0"

// rootCmd is the base command. With no subcommand it starts a chat.
var rootCmd = &cobra.Command{
	Use:           "blinx",
	Short:         "Blinx: chat with a Solana trading assistant",
	Long:          "Blinx relays your messages to a hosted assistant that can look up Solana token data and trade on your behalf.",
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// A failed chat turn has already been reported.
		if !errors.Is(err, session.ErrAborted) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(statusCmd)
}

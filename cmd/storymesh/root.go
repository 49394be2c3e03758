package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storymesh",
	Short: "storymesh bridges a console game engine to realtime web observers",
	Long: `storymesh wraps a synchronous, line-oriented game engine and exposes it
as a concurrent multi-observer service: engine output is classified into
narration and debug channels and broadcast over websockets, while remote
observers feed the engine's blocking input reads.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

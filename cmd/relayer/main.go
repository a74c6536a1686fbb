package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/cli"

	cmd "github.com/rollkit/sequencer-relayer/cmd/relayer/commands"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.AddCommand(
		cmd.NewInitCmd(),
		cmd.NewStartCmd(),
		cmd.VersionCmd,
	)

	// Prepare the base command and execute
	executor := cli.PrepareBaseCmd(rootCmd, "RELAYER", os.ExpandEnv(filepath.Join("$HOME", ".sequencer-relayer")))
	if err := executor.Execute(); err != nil {
		// Print to stderr and exit with error
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/rollkit/sequencer-relayer/config"
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

// registerFlagsRootCmd registers the flags for the root command
func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String(config.FlagLogLevel, config.DefaultRelayerConfig().LogLevel, "set the log level; default is info. other options include debug, info, error, none")
}

// RootCmd is the root command for the sequencer-relayer
var RootCmd = &cobra.Command{
	Use:   "relayer",
	Short: "Relays sequencer blocks to a data availability layer.",
	Long: `
The relayer polls a sequencer node for new blocks, verifies their hashes and publishes
them to Celestia, split into one signed blob per rollup namespace.
If the --home flag is not specified, the relayer uses "~/.sequencer-relayer" to store
its key, config and data.
`,
}

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rollkit/sequencer-relayer/config"
)

// GitSHA is set at build time
var GitSHA string

// VersionCmd prints the relayer version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 2, ' ', 0)
		fmt.Fprintf(w, "\nrelayer version:\t%v\n", config.Version)
		if GitSHA != "" {
			fmt.Fprintf(w, "relayer git sha:\t%v\n", GitSHA)
		}
		fmt.Fprintln(w, "")
		return w.Flush()
	},
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	tmflags "github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
	tmos "github.com/tendermint/tendermint/libs/os"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/conv"
)

// NewStartCmd returns the command that starts the relayer.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the sequencer-relayer",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := parseConfig(viper.GetViper())
			if err != nil {
				return err
			}

			// create logger
			logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
			logger, err = tmflags.ParseLogLevel(conf.LogLevel, logger, config.DefaultRelayerConfig().LogLevel)
			if err != nil {
				return fmt.Errorf("failed to parse log level: %w", err)
			}

			signer, err := conv.LoadSigningKey(conf.KeyFilePath())
			if err != nil {
				return err
			}

			node, err := newRelayerNode(conf, signer, logger)
			if err != nil {
				return fmt.Errorf("failed to create relayer: %w", err)
			}
			if err := node.Start(); err != nil {
				_ = node.Stop()
				return err
			}
			logger.Info("Started relayer", "signer", signer.PubKey().Address())

			// Stop upon receiving SIGTERM or CTRL-C.
			tmos.TrapSignal(logger, func() {
				if err := node.Stop(); err != nil {
					logger.Error("unable to stop the relayer", "error", err)
				}
			})
			// Run forever.
			select {}
		},
	}

	config.AddFlags(cmd)
	return cmd
}

func parseConfig(v *viper.Viper) (config.RelayerConfig, error) {
	conf := config.DefaultRelayerConfig()
	if err := conf.GetViperConfig(v); err != nil {
		return conf, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(conf.RootDir, 0o700); err != nil {
		return conf, fmt.Errorf("failed to create root directory: %w", err)
	}
	return conf, nil
}

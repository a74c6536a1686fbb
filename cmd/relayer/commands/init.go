package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/conv"
)

// ConfigFileName is the name of the config file written by init, under the config
// directory of the root directory.
const ConfigFileName = "config.toml"

// NewInitCmd returns the command that initializes the root directory: the config
// file and the signing key.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the relayer root directory",
		Long: `Writes the config file and generates the signing key, unless they already exist.
Values given with flags are written to the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := parseConfig(viper.GetViper())
			if err != nil {
				return err
			}
			return initRootDir(cmd, conf)
		},
	}
	config.AddFlags(cmd)
	return cmd
}

func initRootDir(cmd *cobra.Command, conf config.RelayerConfig) error {
	configDir := filepath.Join(conf.RootDir, "config")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("error creating directory %s: %w", configDir, err)
	}

	configFile := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Found config file %s\n", configFile)
	} else {
		if err := conf.WriteConfigFile(configFile); err != nil {
			return fmt.Errorf("error writing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated config file %s\n", configFile)
	}

	signer, err := conv.LoadSigningKey(conf.KeyFilePath())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signing key %s, public key %X\n", conf.KeyFilePath(), signer.PubKey().Bytes())
	return nil
}

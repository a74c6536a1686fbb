package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// FlagHome is the flag holding the relayer root directory, registered by tendermint's cli helpers.
	FlagHome = "home"
	// FlagLogLevel is the flag holding the log level.
	FlagLogLevel = "log_level"

	flagDBPath            = "relayer.db_path"
	flagKeyFile           = "relayer.key_file"
	flagSequencerEndpoint = "relayer.sequencer_endpoint"
	flagDALayer           = "relayer.da_layer"
	flagCelestiaEndpoint  = "relayer.celestia_endpoint"
	flagDATimeout         = "relayer.da_timeout"
	flagGasLimit          = "relayer.gas_limit"
	flagFee               = "relayer.fee"
	flagBlockTime         = "relayer.block_time"
	flagStartHeight       = "relayer.start_height"
	flagMaxSubmitAttempts = "relayer.max_submit_attempts"
	flagRollupMsgTypeURL  = "relayer.rollup_msg_type_url"
	flagRPCListenAddress  = "rpc.laddr"
	flagRPCCORSOrigins    = "rpc.cors_allowed_origins"
	flagRPCMaxOpenConns   = "rpc.max_open_connections"
	flagPrometheus        = "instrumentation.prometheus"
	flagMetricsNamespace  = "instrumentation.namespace"
)

const (
	// DALayerCelestia selects the celestia-node REST API.
	DALayerCelestia = "celestia"
	// DALayerMock selects the in-process mock DA layer.
	DALayerMock = "mock"
)

// RelayerConfig stores sequencer-relayer configuration.
type RelayerConfig struct {
	RootDir  string `mapstructure:"home"`
	LogLevel string `mapstructure:"log_level"`

	DBPath  string `mapstructure:"db_path"`
	KeyFile string `mapstructure:"key_file"`

	// SequencerEndpoint is the REST gateway of the sequencer node.
	SequencerEndpoint string `mapstructure:"sequencer_endpoint"`

	DALayer          string        `mapstructure:"da_layer"`
	CelestiaEndpoint string        `mapstructure:"celestia_endpoint"`
	DATimeout        time.Duration `mapstructure:"da_timeout"`
	GasLimit         uint64        `mapstructure:"gas_limit"`
	Fee              int64         `mapstructure:"fee"`

	// BlockTime defines how often the sequencer is polled for new blocks.
	BlockTime time.Duration `mapstructure:"block_time"`
	// StartHeight is the first sequencer height to relay. When zero, a relayer
	// without saved progress starts at the latest sequencer block.
	StartHeight       uint64 `mapstructure:"start_height"`
	MaxSubmitAttempts int    `mapstructure:"max_submit_attempts"`
	// RollupMsgTypeURL is the type URL of sequencer messages carrying rollup
	// transactions. Empty selects types.DefaultSequencerMsgTypeURL.
	RollupMsgTypeURL string `mapstructure:"rollup_msg_type_url"`

	RPC             RPCConfig              `mapstructure:"rpc"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// GetViperConfig reads configuration parameters from Viper instance.
func (rc *RelayerConfig) GetViperConfig(v *viper.Viper) error {
	rc.RootDir = v.GetString(FlagHome)
	rc.LogLevel = v.GetString(FlagLogLevel)
	rc.DBPath = v.GetString(flagDBPath)
	rc.KeyFile = v.GetString(flagKeyFile)
	rc.SequencerEndpoint = v.GetString(flagSequencerEndpoint)
	rc.DALayer = v.GetString(flagDALayer)
	rc.CelestiaEndpoint = v.GetString(flagCelestiaEndpoint)
	rc.DATimeout = v.GetDuration(flagDATimeout)
	rc.GasLimit = v.GetUint64(flagGasLimit)
	rc.Fee = v.GetInt64(flagFee)
	rc.BlockTime = v.GetDuration(flagBlockTime)
	rc.StartHeight = v.GetUint64(flagStartHeight)
	rc.MaxSubmitAttempts = v.GetInt(flagMaxSubmitAttempts)
	rc.RollupMsgTypeURL = v.GetString(flagRollupMsgTypeURL)
	rc.RPC.ListenAddress = v.GetString(flagRPCListenAddress)
	rc.RPC.CORSAllowedOrigins = v.GetStringSlice(flagRPCCORSOrigins)
	rc.RPC.MaxOpenConnections = v.GetInt(flagRPCMaxOpenConns)
	if rc.Instrumentation == nil {
		rc.Instrumentation = DefaultInstrumentationConfig()
	}
	rc.Instrumentation.Prometheus = v.GetBool(flagPrometheus)
	rc.Instrumentation.Namespace = v.GetString(flagMetricsNamespace)
	return rc.ValidateBasic()
}

// AddFlags adds relayer specific configuration options to cobra Command.
func AddFlags(cmd *cobra.Command) {
	def := DefaultRelayerConfig()
	cmd.Flags().String(flagDBPath, def.DBPath, "database path relative to the root directory")
	cmd.Flags().String(flagKeyFile, def.KeyFile, "signing key file relative to the root directory")
	cmd.Flags().String(flagSequencerEndpoint, def.SequencerEndpoint, "sequencer node REST endpoint")
	cmd.Flags().String(flagDALayer, def.DALayer, "Data Availability Layer Client name (celestia or mock)")
	cmd.Flags().String(flagCelestiaEndpoint, def.CelestiaEndpoint, "celestia-node REST endpoint")
	cmd.Flags().Duration(flagDATimeout, def.DATimeout, "timeout of a single DA request")
	cmd.Flags().Uint64(flagGasLimit, def.GasLimit, "gas limit of PayForData transactions")
	cmd.Flags().Int64(flagFee, def.Fee, "fee of PayForData transactions")
	cmd.Flags().Duration(flagBlockTime, def.BlockTime, "sequencer polling interval")
	cmd.Flags().Uint64(flagStartHeight, def.StartHeight, "first sequencer height to relay (0 for the latest block)")
	cmd.Flags().Int(flagMaxSubmitAttempts, def.MaxSubmitAttempts, "number of attempts to submit a block to the DA layer")
	cmd.Flags().String(flagRollupMsgTypeURL, def.RollupMsgTypeURL, "type URL of sequencer messages carrying rollup transactions")
	cmd.Flags().String(flagRPCListenAddress, def.RPC.ListenAddress, "RPC listen address, empty to disable")
	cmd.Flags().StringSlice(flagRPCCORSOrigins, def.RPC.CORSAllowedOrigins, "origins allowed to make cross-domain RPC requests")
	cmd.Flags().Int(flagRPCMaxOpenConns, def.RPC.MaxOpenConnections, "maximum number of simultaneous RPC connections (0 for unlimited)")
	cmd.Flags().Bool(flagPrometheus, def.Instrumentation.Prometheus, "serve Prometheus metrics under /metrics of the RPC server")
	cmd.Flags().String(flagMetricsNamespace, def.Instrumentation.Namespace, "namespace of Prometheus metrics")
}

// WriteConfigFile writes rc to a config file at path, in the format given by its
// extension. Root directory is not written.
func (rc RelayerConfig) WriteConfigFile(path string) error {
	v := viper.New()
	v.Set(FlagLogLevel, rc.LogLevel)
	v.Set(flagDBPath, rc.DBPath)
	v.Set(flagKeyFile, rc.KeyFile)
	v.Set(flagSequencerEndpoint, rc.SequencerEndpoint)
	v.Set(flagDALayer, rc.DALayer)
	v.Set(flagCelestiaEndpoint, rc.CelestiaEndpoint)
	v.Set(flagDATimeout, rc.DATimeout.String())
	v.Set(flagGasLimit, rc.GasLimit)
	v.Set(flagFee, rc.Fee)
	v.Set(flagBlockTime, rc.BlockTime.String())
	v.Set(flagStartHeight, rc.StartHeight)
	v.Set(flagMaxSubmitAttempts, rc.MaxSubmitAttempts)
	v.Set(flagRollupMsgTypeURL, rc.RollupMsgTypeURL)
	v.Set(flagRPCListenAddress, rc.RPC.ListenAddress)
	v.Set(flagRPCCORSOrigins, rc.RPC.CORSAllowedOrigins)
	v.Set(flagRPCMaxOpenConns, rc.RPC.MaxOpenConnections)
	if rc.Instrumentation != nil {
		v.Set(flagPrometheus, rc.Instrumentation.Prometheus)
		v.Set(flagMetricsNamespace, rc.Instrumentation.Namespace)
	}
	return v.WriteConfigAs(path)
}

// ValidateBasic performs basic validation and returns an error if any check fails.
func (rc *RelayerConfig) ValidateBasic() error {
	if rc.SequencerEndpoint == "" {
		return errors.New("sequencer endpoint can't be empty")
	}
	switch rc.DALayer {
	case DALayerCelestia:
		if rc.CelestiaEndpoint == "" {
			return errors.New("celestia endpoint can't be empty")
		}
	case DALayerMock:
	default:
		return fmt.Errorf("unknown DA layer %q", rc.DALayer)
	}
	if rc.BlockTime <= 0 {
		return errors.New("block_time must be positive")
	}
	if rc.MaxSubmitAttempts < 1 {
		return errors.New("max_submit_attempts must be at least 1")
	}
	if rc.DATimeout < 0 {
		return errors.New("da_timeout can't be negative")
	}
	if err := rc.RPC.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [rpc] section: %w", err)
	}
	if rc.Instrumentation != nil {
		if err := rc.Instrumentation.ValidateBasic(); err != nil {
			return fmt.Errorf("error in [instrumentation] section: %w", err)
		}
	}
	return nil
}

// DBDir returns the absolute database directory.
func (rc RelayerConfig) DBDir() string {
	return rootify(rc.DBPath, rc.RootDir)
}

// KeyFilePath returns the absolute path of the signing key file.
func (rc RelayerConfig) KeyFilePath() string {
	return rootify(rc.KeyFile, rc.RootDir)
}

func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

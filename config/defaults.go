package config

import (
	"time"
)

const (
	// Version is the current sequencer-relayer version
	// Please keep updated with each new release
	Version = "0.1.0"
	// DefaultSequencerEndpoint is the default REST gateway of the sequencer node
	DefaultSequencerEndpoint = "http://localhost:1317"
	// DefaultCelestiaEndpoint is the default celestia-node REST endpoint
	DefaultCelestiaEndpoint = "http://localhost:26659"
	// DefaultRPCListenAddress is the default listen address of the RPC server
	DefaultRPCListenAddress = "127.0.0.1:2450"
)

// DefaultRelayerConfig returns default values of RelayerConfig.
func DefaultRelayerConfig() RelayerConfig {
	return RelayerConfig{
		LogLevel:          "info",
		DBPath:            "data",
		KeyFile:           "config/node_key.json",
		SequencerEndpoint: DefaultSequencerEndpoint,
		DALayer:           DALayerCelestia,
		CelestiaEndpoint:  DefaultCelestiaEndpoint,
		DATimeout:         30 * time.Second,
		GasLimit:          2000000,
		Fee:               2000,
		BlockTime:         3 * time.Second,
		MaxSubmitAttempts: 5,
		RPC: RPCConfig{
			ListenAddress:      DefaultRPCListenAddress,
			CORSAllowedOrigins: []string{},
			CORSAllowedMethods: []string{"HEAD", "GET", "POST"},
			CORSAllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "X-Server-Time"},
			MaxOpenConnections: 900,
		},
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

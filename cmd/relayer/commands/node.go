package commands

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/multierr"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/da"
	"github.com/rollkit/sequencer-relayer/da/celestia"
	mockda "github.com/rollkit/sequencer-relayer/da/mock"
	"github.com/rollkit/sequencer-relayer/relayer"
	"github.com/rollkit/sequencer-relayer/rpc"
	"github.com/rollkit/sequencer-relayer/sequencer"
	"github.com/rollkit/sequencer-relayer/store"
)

// prefixes used in KV store to separate relayer progress from mock DA blobs
var (
	relayerPrefix = []byte{0}
	mockDAPrefix  = []byte{1}
)

// relayerNode connects all the components of a running relayer.
type relayerNode struct {
	kv      store.KVStore
	mockDA  *mockda.BlobClient
	relayer *relayer.Relayer
	rpc     *rpc.Server
	logger  log.Logger
}

func newRelayerNode(conf config.RelayerConfig, signer crypto.PrivKey, logger log.Logger) (n *relayerNode, err error) {
	if err := os.MkdirAll(conf.DBDir(), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	kv, err := store.NewDefaultKVStore(conf.RootDir, conf.DBPath, "relayer")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	n = &relayerNode{kv: kv, logger: logger}
	defer func() {
		if err != nil {
			_ = kv.Close()
		}
	}()

	progress, err := store.New(store.NewPrefixKV(kv, relayerPrefix))
	if err != nil {
		return nil, err
	}

	seqClient, err := sequencer.NewClient(conf.SequencerEndpoint, sequencer.WithTimeout(conf.DATimeout))
	if err != nil {
		return nil, err
	}

	var blobs da.BlobClient
	switch conf.DALayer {
	case config.DALayerCelestia:
		blobs, err = celestia.NewBlobClient(celestia.Config{
			BaseURL:  conf.CelestiaEndpoint,
			Timeout:  conf.DATimeout,
			Fee:      conf.Fee,
			GasLimit: conf.GasLimit,
		}, logger.With("module", "celestia"))
		if err != nil {
			return nil, err
		}
	case config.DALayerMock:
		n.mockDA = mockda.NewBlobClient(store.NewPrefixKV(kv, mockDAPrefix), 0, logger.With("module", "mock-da"))
		blobs = n.mockDA
	default:
		return nil, fmt.Errorf("unknown DA layer %q", conf.DALayer)
	}
	dac := da.NewClient(blobs, logger.With("module", "da"))

	metrics := relayer.NopMetrics()
	var rpcOptions []rpc.Option
	if conf.Instrumentation.IsPrometheusEnabled() {
		metrics = relayer.PrometheusMetrics(conf.Instrumentation.Namespace)
		rpcOptions = append(rpcOptions, rpc.WithMetrics(prometheus.DefaultGatherer))
	}

	n.relayer, err = relayer.NewRelayer(conf, seqClient, dac, signer, progress, metrics, logger.With("module", "relayer"))
	if err != nil {
		return nil, err
	}
	n.rpc, err = rpc.NewServer(n.relayer, dac, progress, conf.RPC, logger.With("module", "rpc"), rpcOptions...)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Start starts the mock DA layer, when used, the relayer and the RPC server.
func (n *relayerNode) Start() error {
	if n.mockDA != nil {
		if err := n.mockDA.Start(); err != nil {
			return fmt.Errorf("failed to start mock DA layer: %w", err)
		}
	}
	if err := n.relayer.Start(); err != nil {
		return fmt.Errorf("failed to start relayer: %w", err)
	}
	if err := n.rpc.Start(); err != nil {
		return fmt.Errorf("failed to start RPC server: %w", err)
	}
	return nil
}

// Stop stops every running component and closes the database.
func (n *relayerNode) Stop() error {
	var err error
	if n.rpc.IsRunning() {
		err = multierr.Append(err, n.rpc.Stop())
	}
	if n.relayer.IsRunning() {
		err = multierr.Append(err, n.relayer.Stop())
	}
	if n.mockDA != nil {
		err = multierr.Append(err, n.mockDA.Stop())
	}
	return multierr.Append(err, n.kv.Close())
}

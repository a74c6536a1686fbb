package commands

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/log/test"
	seqmock "github.com/rollkit/sequencer-relayer/sequencer/mock"
	"github.com/rollkit/sequencer-relayer/types"
)

func TestInitCmd(t *testing.T) {
	require := require.New(t)
	home := t.TempDir()

	cmd := NewInitCmd()
	v := viper.New()
	require.NoError(v.BindPFlags(cmd.Flags()))
	require.NoError(cmd.Flags().Set("relayer.sequencer_endpoint", "http://sequencer:1317"))
	v.Set(config.FlagHome, home)

	conf, err := parseConfig(v)
	require.NoError(err)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	require.NoError(initRootDir(cmd, conf))
	assert.Contains(t, out.String(), "Generated config file")
	assert.FileExists(t, filepath.Join(home, "config", ConfigFileName))
	assert.FileExists(t, filepath.Join(home, "config", "node_key.json"))
	firstKey := out.String()[bytes.Index(out.Bytes(), []byte("public key")):]

	out.Reset()
	require.NoError(initRootDir(cmd, conf))
	assert.Contains(t, out.String(), "Found config file")
	assert.Contains(t, out.String(), firstKey)

	written := viper.New()
	written.SetConfigFile(filepath.Join(home, "config", ConfigFileName))
	require.NoError(written.ReadInConfig())
	assert.Equal(t, "http://sequencer:1317", written.GetString("relayer.sequencer_endpoint"))
}

func TestVersionCmd(t *testing.T) {
	out := &bytes.Buffer{}
	VersionCmd.SetOut(out)
	require.NoError(t, VersionCmd.RunE(VersionCmd, nil))
	assert.Contains(t, out.String(), config.Version)
}

func startSequencer(t *testing.T) (*seqmock.Server, string) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := seqmock.NewServer(test.NewTestLogger(t))
	require.NoError(t, srv.Start(lis))
	t.Cleanup(srv.Stop)
	return srv, "http://" + lis.Addr().String()
}

func httpGet(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRelayerNode(t *testing.T) {
	require := require.New(t)

	seq, endpoint := startSequencer(t)
	seq.ProduceBlock(types.GetRandomTxs(2))
	seq.ProduceBlock(types.GetRandomTxs(1))

	conf := config.DefaultRelayerConfig()
	conf.RootDir = t.TempDir()
	conf.SequencerEndpoint = endpoint
	conf.DALayer = config.DALayerMock
	conf.BlockTime = 20 * time.Millisecond
	conf.StartHeight = 1
	conf.RPC.ListenAddress = "127.0.0.1:0"
	conf.Instrumentation.Prometheus = true
	require.NoError(conf.ValidateBasic())

	signer := ed25519.GenPrivKey()
	node, err := newRelayerNode(conf, signer, log.TestingLogger())
	require.NoError(err)
	require.NoError(node.Start())

	require.Eventually(func() bool {
		return node.relayer.Status().RelayedHeight == 2
	}, 5*time.Second, 10*time.Millisecond)

	addr := node.rpc.Addr()
	require.NotNil(addr)
	assert.Contains(t, httpGet(t, fmt.Sprintf("http://%s/status", addr)), `"relayed_height":2`)
	assert.Contains(t, httpGet(t, fmt.Sprintf("http://%s/submission?height=1", addr)), `"sequencer_height":1`)
	assert.Contains(t, httpGet(t, fmt.Sprintf("http://%s/metrics", addr)), "sequencer_relayer_relayed_height 2")

	require.NoError(node.Stop())
	_, err = os.Stat(conf.DBDir())
	require.NoError(err)

	// progress survives a restart
	seq.ProduceBlock(nil)
	conf.Instrumentation.Prometheus = false
	node, err = newRelayerNode(conf, signer, log.TestingLogger())
	require.NoError(err)
	require.NoError(node.Start())
	defer func() {
		require.NoError(node.Stop())
	}()

	require.Eventually(func() bool {
		return node.relayer.Status().RelayedHeight == 3
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRelayerNodeRejectsUnknownDALayer(t *testing.T) {
	conf := config.DefaultRelayerConfig()
	conf.RootDir = t.TempDir()
	conf.DALayer = "avail"
	_, err := newRelayerNode(conf, ed25519.GenPrivKey(), log.NewNopLogger())
	assert.ErrorContains(t, err, `unknown DA layer "avail"`)
}

package relayer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmlog "github.com/tendermint/tendermint/libs/log"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/da"
	mockda "github.com/rollkit/sequencer-relayer/da/mock"
	"github.com/rollkit/sequencer-relayer/log/test"
	"github.com/rollkit/sequencer-relayer/sequencer"
	seqmock "github.com/rollkit/sequencer-relayer/sequencer/mock"
	"github.com/rollkit/sequencer-relayer/store"
	"github.com/rollkit/sequencer-relayer/types"
)

var rollupA = types.NewNamespace([]byte("rollup-a"))

type testEnv struct {
	relayer   *Relayer
	sequencer *seqmock.Server
	da        *da.Client
	store     store.Store
	signer    crypto.PrivKey
}

func testConfig() config.RelayerConfig {
	conf := config.DefaultRelayerConfig()
	conf.BlockTime = 20 * time.Millisecond
	conf.MaxSubmitAttempts = 3
	return conf
}

func newTestEnv(t *testing.T, conf config.RelayerConfig, dac DAClient) *testEnv {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	seqSrv := seqmock.NewServer(test.NewTestLogger(t))
	require.NoError(t, seqSrv.Start(lis))
	t.Cleanup(seqSrv.Stop)
	seqClient, err := sequencer.NewClient("http://"+lis.Addr().String(), sequencer.WithTimeout(5*time.Second))
	require.NoError(t, err)

	// DA height stays at 1, as the mock DA layer is never started
	blobs := mockda.NewBlobClient(store.NewDefaultInMemoryKVStore(), time.Hour, test.NewTestLogger(t))
	dalc := da.NewClient(blobs, test.NewTestLogger(t))
	if dac == nil {
		dac = dalc
	}

	s, err := store.New(store.NewDefaultInMemoryKVStore())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	signer := ed25519.GenPrivKey()
	r, err := NewRelayer(conf, seqClient, dac, signer, s, NopMetrics(), tmlog.TestingLogger())
	require.NoError(t, err)

	return &testEnv{
		relayer:   r,
		sequencer: seqSrv,
		da:        dalc,
		store:     s,
		signer:    signer,
	}
}

func rollupTx(payload string) []byte {
	return types.NewSequencerMsgTx(types.DefaultSequencerMsgTypeURL, "rollup-a", []byte(payload))
}

func TestNewRelayerValidation(t *testing.T) {
	s, err := store.New(store.NewDefaultInMemoryKVStore())
	require.NoError(t, err)

	_, err = NewRelayer(testConfig(), nil, nil, nil, s, nil, tmlog.NewNopLogger())
	assert.Error(t, err)

	conf := testConfig()
	conf.BlockTime = 0
	_, err = NewRelayer(conf, nil, nil, ed25519.GenPrivKey(), s, nil, tmlog.NewNopLogger())
	assert.Error(t, err)
}

func TestRelayFromStartHeight(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	conf := testConfig()
	conf.StartHeight = 1
	env := newTestEnv(t, conf, nil)

	produced := []*types.BlockResponse{
		env.sequencer.ProduceBlock(types.GetRandomTxs(2)),
		env.sequencer.ProduceBlock([][]byte{rollupTx("a1"), types.GetRandomTxs(1)[0], rollupTx("a2")}),
		env.sequencer.ProduceBlock(nil),
	}

	require.NoError(env.relayer.loadProgress())
	require.NoError(env.relayer.relayPending(ctx))

	require.EqualValues(3, env.store.Height())
	status := env.relayer.Status()
	require.EqualValues(3, status.SequencerHeight)
	require.EqualValues(3, status.RelayedHeight)
	require.EqualValues(1, status.DAHeight)
	require.Equal(types.Base64String(env.signer.PubKey().Bytes()), status.Signer)

	for i, resp := range produced {
		sub, err := env.store.LoadSubmission(uint64(i + 1))
		require.NoError(err)
		require.Equal(resp.BlockID.Hash, sub.BlockHash)
		require.EqualValues(1, sub.DAHeight())
	}
	sub, err := env.store.LoadSubmission(2)
	require.NoError(err)
	require.Contains(sub.NamespaceHeights, rollupA)

	blocks, err := env.da.GetBlocks(ctx, 1, env.signer.PubKey())
	require.NoError(err)
	require.Len(blocks, 3)
	for i, block := range blocks {
		require.Equal(produced[i].BlockID.Hash, block.BlockHash)
		require.NoError(block.VerifyBlockHash())
		require.NoError(block.VerifyDataHash())
	}
	require.Len(blocks[1].RollupTxs[rollupA], 2)
	require.Len(blocks[1].SequencerTxs, 1)
}

func TestRelayStartsAtLatestBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil)

	for i := 0; i < 3; i++ {
		env.sequencer.ProduceBlock(types.GetRandomTxs(i))
	}

	require.NoError(env.relayer.loadProgress())
	require.NoError(env.relayer.relayPending(ctx))
	require.EqualValues(3, env.store.Height())

	_, err := env.store.LoadSubmission(1)
	require.ErrorIs(err, store.ErrKeyNotFound)

	env.sequencer.ProduceBlock(nil)
	env.sequencer.ProduceBlock(nil)
	require.NoError(env.relayer.relayPending(ctx))
	require.EqualValues(5, env.store.Height())
	_, err = env.store.LoadSubmission(4)
	require.NoError(err)
}

func TestRelayResumesFromStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	conf := testConfig()
	conf.StartHeight = 1
	env := newTestEnv(t, conf, nil)

	for i := 0; i < 4; i++ {
		env.sequencer.ProduceBlock(types.GetRandomTxs(1))
	}
	require.NoError(env.store.SaveSubmission(&store.Submission{
		SequencerHeight:  2,
		NamespaceHeights: map[types.Namespace]uint64{types.DefaultNamespace: 7},
	}))

	require.NoError(env.relayer.loadProgress())
	status := env.relayer.Status()
	require.EqualValues(2, status.RelayedHeight)
	require.EqualValues(7, status.DAHeight)

	require.NoError(env.relayer.relayPending(ctx))
	require.EqualValues(4, env.store.Height())

	blocks, err := env.da.GetBlocks(ctx, 1, nil)
	require.NoError(err)
	require.Len(blocks, 2)
}

func TestInvalidBlockIsSkipped(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	conf := testConfig()
	conf.StartHeight = 1
	env := newTestEnv(t, conf, nil)

	env.sequencer.ProduceBlock(types.GetRandomTxs(1))
	tampered := env.sequencer.ProduceBlock(types.GetRandomTxs(2))
	env.sequencer.ProduceBlock(types.GetRandomTxs(3))

	block := *tampered.Block
	block.Data.Txs = append([]types.Base64String{}, block.Data.Txs...)
	block.Data.Txs[0] = types.GetRandomBytes(10)
	env.sequencer.SetBlock(2, &types.BlockResponse{BlockID: tampered.BlockID, Block: &block})

	require.NoError(env.relayer.loadProgress())
	require.NoError(env.relayer.relayPending(ctx))

	require.EqualValues(3, env.store.Height())
	_, err := env.store.LoadSubmission(2)
	require.ErrorIs(err, store.ErrKeyNotFound)
	require.EqualValues(1, env.relayer.Status().InvalidBlocks)

	blocks, err := env.da.GetBlocks(ctx, 1, env.signer.PubKey())
	require.NoError(err)
	require.Len(blocks, 2)
}

type mockDAClient struct {
	mock.Mock
}

func (m *mockDAClient) SubmitBlock(ctx context.Context, block *types.SequencerBlock, signer crypto.PrivKey) (*da.ResultSubmitBlock, error) {
	args := m.Called(ctx, block, signer)
	res, _ := args.Get(0).(*da.ResultSubmitBlock)
	return res, args.Error(1)
}

type mockSequencerClient struct {
	mock.Mock
}

func (m *mockSequencerClient) GetLatestBlock(ctx context.Context) (*types.BlockResponse, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*types.BlockResponse)
	return res, args.Error(1)
}

func (m *mockSequencerClient) GetBlock(ctx context.Context, height uint64) (*types.BlockResponse, error) {
	args := m.Called(ctx, height)
	res, _ := args.Get(0).(*types.BlockResponse)
	return res, args.Error(1)
}

func TestLatestBlockWithoutBlock(t *testing.T) {
	ctx := context.Background()

	s, err := store.New(store.NewDefaultInMemoryKVStore())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	seq := &mockSequencerClient{}
	seq.On("GetLatestBlock", mock.Anything).Return(&types.BlockResponse{}, nil).Once()
	seq.On("GetLatestBlock", mock.Anything).Return(nil, nil).Once()
	dac := &mockDAClient{}

	r, err := NewRelayer(testConfig(), seq, dac, ed25519.GenPrivKey(), s, NopMetrics(), tmlog.TestingLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err = r.relayPending(ctx)
		assert.ErrorIs(t, err, types.ErrMalformedSource)
	}
	seq.AssertExpectations(t)
	dac.AssertNotCalled(t, "SubmitBlock", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, s.Height())
}

func TestSubmitRetry(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	initialBackoff = time.Millisecond
	dac := &mockDAClient{}
	env := newTestEnv(t, testConfig(), dac)
	env.sequencer.ProduceBlock(types.GetRandomTxs(1))

	submitErr := &da.SubmitError{Namespace: types.DefaultNamespace, Err: errors.New("node unavailable")}
	dac.On("SubmitBlock", mock.Anything, mock.Anything, env.signer).Return(nil, submitErr).Twice()
	dac.On("SubmitBlock", mock.Anything, mock.Anything, env.signer).Return(&da.ResultSubmitBlock{
		NamespaceHeights: map[types.Namespace]uint64{types.DefaultNamespace: 10},
	}, nil).Once()

	require.NoError(env.relayer.loadProgress())
	require.NoError(env.relayer.relayPending(ctx))

	dac.AssertNumberOfCalls(t, "SubmitBlock", 3)
	require.EqualValues(1, env.store.Height())
	require.EqualValues(10, env.relayer.Status().DAHeight)
}

func TestSubmitGivesUp(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	initialBackoff = time.Millisecond
	dac := &mockDAClient{}
	env := newTestEnv(t, testConfig(), dac)
	env.sequencer.ProduceBlock(types.GetRandomTxs(1))

	submitErr := &da.SubmitError{Namespace: types.DefaultNamespace, Err: errors.New("node unavailable")}
	dac.On("SubmitBlock", mock.Anything, mock.Anything, env.signer).Return(nil, submitErr)

	require.NoError(env.relayer.loadProgress())
	err := env.relayer.relayPending(ctx)
	require.ErrorIs(err, submitErr)
	require.Contains(err.Error(), "after 3 attempts")
	dac.AssertNumberOfCalls(t, "SubmitBlock", 3)
	require.EqualValues(0, env.store.Height())

	// the block is retried on the next tick
	err = env.relayer.relayPending(ctx)
	require.Error(err)
	dac.AssertNumberOfCalls(t, "SubmitBlock", 6)
}

func TestExponentialBackoff(t *testing.T) {
	initialBackoff = 100 * time.Millisecond
	r := &Relayer{conf: config.RelayerConfig{BlockTime: time.Second}}

	var backoff time.Duration
	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for _, e := range expected {
		backoff = r.exponentialBackoff(backoff)
		assert.Equal(t, e, backoff)
	}
}

func TestRelayerService(t *testing.T) {
	require := require.New(t)

	conf := testConfig()
	conf.StartHeight = 1
	env := newTestEnv(t, conf, nil)
	env.sequencer.ProduceBlock(types.GetRandomTxs(1))

	require.NoError(env.relayer.Start())
	defer func() {
		require.NoError(env.relayer.Stop())
	}()

	require.Eventually(func() bool {
		return env.store.Height() == 1
	}, 5*time.Second, 10*time.Millisecond)

	env.sequencer.ProduceBlock(types.GetRandomTxs(2))
	env.sequencer.ProduceBlock(types.GetRandomTxs(3))
	require.Eventually(func() bool {
		return env.relayer.Status().RelayedHeight == 3
	}, 5*time.Second, 10*time.Millisecond)
	require.Empty(env.relayer.Status().LastError)
}

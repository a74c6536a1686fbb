package sequencer_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkit/sequencer-relayer/log/test"
	"github.com/rollkit/sequencer-relayer/sequencer"
	"github.com/rollkit/sequencer-relayer/sequencer/mock"
	"github.com/rollkit/sequencer-relayer/types"
)

func startMockSequencer(t *testing.T) (*mock.Server, *sequencer.Client) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := mock.NewServer(&test.TestLogger{T: t})
	require.NoError(t, srv.Start(lis))
	t.Cleanup(srv.Stop)

	client, err := sequencer.NewClient("http://"+lis.Addr().String(), sequencer.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return srv, client
}

func TestGetLatestBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	srv, client := startMockSequencer(t)

	_, err := client.GetLatestBlock(ctx)
	require.Error(err)
	require.True(types.IsTransport(err))
	require.Contains(err.Error(), "no blocks yet")

	srv.ProduceBlock(types.GetRandomTxs(2))
	produced := srv.ProduceBlock(types.GetRandomTxs(3))

	resp, err := client.GetLatestBlock(ctx)
	require.NoError(err)
	require.Equal(produced, resp)

	height, err := resp.Block.Header.ParseHeight()
	require.NoError(err)
	require.EqualValues(2, height)
}

func TestGetBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	srv, client := startMockSequencer(t)

	first := srv.ProduceBlock(nil)
	second := srv.ProduceBlock(types.GetRandomTxs(1))

	resp, err := client.GetBlock(ctx, 1)
	require.NoError(err)
	require.Equal(first, resp)

	resp, err = client.GetBlock(ctx, 2)
	require.NoError(err)
	require.Equal(second, resp)
	require.Equal(first.BlockID.Hash, resp.Block.Header.LastBlockID.Hash)

	_, err = client.GetBlock(ctx, 3)
	require.True(types.IsTransport(err))
}

func TestServedBlocksVerify(t *testing.T) {
	ctx := context.Background()
	srv, client := startMockSequencer(t)

	for i := 0; i < 4; i++ {
		srv.ProduceBlock(types.GetRandomTxs(i))
	}

	for height := uint64(1); height <= 4; height++ {
		resp, err := client.GetBlock(ctx, height)
		require.NoError(t, err)
		sb, err := types.FromBlockResponse(resp, types.NewSequencerMsgClassifier(""))
		require.NoError(t, err)
		assert.NoError(t, sb.VerifyBlockHash())
		assert.NoError(t, sb.VerifyDataHash())
	}
}

func TestMissingBlockIsMalformed(t *testing.T) {
	ctx := context.Background()
	srv, client := startMockSequencer(t)

	srv.ProduceBlock(nil)
	srv.SetBlock(1, &types.BlockResponse{})

	_, err := client.GetBlock(ctx, 1)
	assert.ErrorIs(t, err, types.ErrMalformedSource)
}

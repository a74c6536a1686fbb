package celestia

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rollkit/sequencer-relayer/da"
	"github.com/rollkit/sequencer-relayer/libs/cnrc"
	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/types"
)

// BlobClient uses celestia-node public API.
type BlobClient struct {
	client *cnrc.Client

	config Config
	logger log.Logger
}

var _ da.BlobClient = &BlobClient{}

// Config stores Celestia client configuration parameters.
type Config struct {
	BaseURL  string        `json:"base_url"`
	Timeout  time.Duration `json:"timeout"`
	Fee      int64         `json:"fee"`
	GasLimit uint64        `json:"gas_limit"`
}

// NewBlobClient returns a client of the celestia-node at config.BaseURL.
func NewBlobClient(config Config, logger log.Logger) (*BlobClient, error) {
	client, err := cnrc.NewClient(config.BaseURL, cnrc.WithTimeout(config.Timeout))
	if err != nil {
		return nil, err
	}
	logger.Info("created Celestia client", "baseURL", config.BaseURL)
	return &BlobClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// SubmitBlob submits a blob in a PayForData transaction.
func (c *BlobClient) SubmitBlob(ctx context.Context, ns types.Namespace, blob []byte) (uint64, error) {
	txResponse, err := c.client.SubmitPFD(ctx, ns, blob, c.config.Fee, c.config.GasLimit)
	if err != nil {
		return 0, err
	}

	if txResponse.Code != 0 {
		return 0, fmt.Errorf("Codespace: '%s', Code: %d, Message: %s", txResponse.Codespace, txResponse.Code, txResponse.RawLog)
	}
	if txResponse.Height <= 0 {
		return 0, errors.New("transaction included at invalid height")
	}

	c.logger.Debug("submitted blob", "namespace", ns, "size", len(blob), "daHeight", txResponse.Height, "txHash", txResponse.TxHash)
	return uint64(txResponse.Height), nil
}

// NamespacedShares returns the shares of namespace ns at height.
func (c *BlobClient) NamespacedShares(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error) {
	return c.client.NamespacedShares(ctx, ns, height)
}

// NamespacedData returns the blobs of namespace ns at height.
func (c *BlobClient) NamespacedData(ctx context.Context, ns types.Namespace, height uint64) ([][]byte, error) {
	return c.client.NamespacedData(ctx, ns, height)
}

// LatestHeight returns the height of the node's head.
func (c *BlobClient) LatestHeight(ctx context.Context) (uint64, error) {
	head, err := c.client.Head(ctx)
	if err != nil {
		return 0, err
	}
	return head.RawHeader.Height, nil
}

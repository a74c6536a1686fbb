package sequencer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rollkit/sequencer-relayer/types"
)

const (
	latestBlockEndpoint = "/cosmos/base/tendermint/v1beta1/blocks/latest"
	blockEndpoint       = "/cosmos/base/tendermint/v1beta1/blocks/{height}"

	heightKey = "height"
)

// Client queries blocks from the REST gateway of a sequencer node.
type Client struct {
	c *resty.Client
}

type Option func(*Client) error

// WithTimeout sets the timeout of every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.c.SetTimeout(timeout)
		return nil
	}
}

// NewClient returns a Client of the sequencer node listening at endpoint.
func NewClient(endpoint string, options ...Option) (*Client, error) {
	c := &Client{
		c: resty.New(),
	}

	c.c.SetBaseURL(endpoint)

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// gatewayError is the error body of the Cosmos REST gateway.
type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetLatestBlock returns the newest block of the sequencer chain.
func (c *Client) GetLatestBlock(ctx context.Context) (*types.BlockResponse, error) {
	return c.get(c.c.R().SetContext(ctx), latestBlockEndpoint)
}

// GetBlock returns the block at height.
func (c *Client) GetBlock(ctx context.Context, height uint64) (*types.BlockResponse, error) {
	req := c.c.R().
		SetContext(ctx).
		SetPathParam(heightKey, strconv.FormatUint(height, 10))
	return c.get(req, blockEndpoint)
}

func (c *Client) get(req *resty.Request, path string) (*types.BlockResponse, error) {
	var (
		res    types.BlockResponse
		rpcErr gatewayError
	)
	resp, err := req.
		SetResult(&res).
		SetError(&rpcErr).
		Get(path)
	if err != nil {
		return nil, types.NewTransportError("get block", err)
	}
	if resp.IsError() {
		msg := rpcErr.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, types.NewTransportError("get block", fmt.Errorf("%s: %s", resp.Status(), msg))
	}
	if res.Block == nil {
		return nil, fmt.Errorf("%w: response without block", types.ErrMalformedSource)
	}
	return &res, nil
}

package cnrc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	c *resty.Client
}

func NewClient(baseURL string, options ...Option) (*Client, error) {
	c := &Client{
		c: resty.New(),
	}

	c.c.SetBaseURL(baseURL)

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Head returns the header of the latest DA block known to the node.
func (c *Client) Head(ctx context.Context) (*ExtendedHeader, error) {
	var res ExtendedHeader
	err := c.call(c.c.R().SetContext(ctx).SetResult(&res), headEndpoint)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Header returns the header of the DA block at height.
func (c *Client) Header(ctx context.Context, height uint64) (*ExtendedHeader, error) {
	var res ExtendedHeader
	req := c.c.R().
		SetContext(ctx).
		SetPathParam(heightKey, strconv.FormatUint(height, 10)).
		SetResult(&res)
	if err := c.call(req, headerPath()); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SubmitPFD(ctx context.Context, namespaceID [8]byte, data []byte, fee int64, gasLimit uint64) (*TxResponse, error) {
	req := SubmitPFDRequest{
		NamespaceID: hex.EncodeToString(namespaceID[:]),
		Data:        hex.EncodeToString(data),
		Fee:         fee,
		GasLimit:    gasLimit,
	}
	var res TxResponse
	var rpcErr string
	resp, err := c.c.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&res).
		SetError(&rpcErr).
		Post(submitPFDEndpoint)
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp, rpcErr); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) NamespacedShares(ctx context.Context, namespaceID [8]byte, height uint64) ([][]byte, error) {
	var res NamespacedSharesResponse

	err := c.callNamespacedEndpoint(ctx, namespaceID, height, namespacedSharesEndpoint, &res)
	if err != nil {
		return nil, err
	}

	return res.Shares, nil
}

func (c *Client) NamespacedData(ctx context.Context, namespaceID [8]byte, height uint64) ([][]byte, error) {
	var res NamespacedDataResponse

	err := c.callNamespacedEndpoint(ctx, namespaceID, height, namespacedDataEndpoint, &res)
	if err != nil {
		return nil, err
	}

	return res.Data, nil
}

// callNamespacedEndpoint fetches result of /namespaced_{type} family of endpoints into result (this should be pointer!)
func (c *Client) callNamespacedEndpoint(ctx context.Context, namespaceID [8]byte, height uint64, endpoint string, result interface{}) error {
	req := c.c.R().
		SetContext(ctx).
		SetResult(result)
	return c.call(req, namespacedPath(endpoint, namespaceID, height))
}

func (c *Client) call(req *resty.Request, path string) error {
	var rpcErr string
	resp, err := req.SetError(&rpcErr).Get(path)
	if err != nil {
		return err
	}
	return checkResponse(resp, rpcErr)
}

// checkResponse turns error responses into errors. celestia-node reports errors
// either as a JSON string or as plain text.
func checkResponse(resp *resty.Response, rpcErr string) error {
	if rpcErr != "" {
		return errors.New(rpcErr)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return nil
}

func headerPath() string {
	return fmt.Sprintf("%s/{%s}", headerEndpoint, heightKey)
}

func namespacedPath(endpoint string, namespaceID [8]byte, height uint64) string {
	return fmt.Sprintf("%s/%s/height/%d", endpoint, hex.EncodeToString(namespaceID[:]), height)
}
